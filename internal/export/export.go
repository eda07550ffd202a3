package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeberg.org/tubetrack/server/internal/attribution"
	"gopkg.in/yaml.v3"
)

// writes r in format f
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatCSV:
		return CSV(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatYAML:
		return YAML(w, r)
	case FormatMarkdown:
		return Markdown(w, r)
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// CSV writes an impact section followed by the snapshot history, separated
// by an empty line.
func CSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"playlist_id", "playlist_title", "views_contribution", "contribution_percentage", "days_in_playlist"},
	}

	for _, impact := range r.Result.Impacts {
		rows = append(rows, []string{
			impact.PlaylistID,
			impact.PlaylistTitle,
			strconv.FormatFloat(impact.ViewsContribution, 'f', 2, 64),
			strconv.FormatFloat(impact.ContributionPercentage, 'f', 2, 64),
			strconv.Itoa(impact.DaysInPlaylist),
		})
	}

	rows = append(rows,
		[]string{},
		[]string{"date", "total_views", "title", "playlist_ids", "playlist_titles"},
	)

	for _, snap := range r.Snapshots {
		ids := make([]string, 0, len(snap.Playlists))
		titles := make([]string, 0, len(snap.Playlists))

		for _, p := range snap.Playlists {
			ids = append(ids, p.ID)
			titles = append(titles, p.Title)
		}

		rows = append(rows, []string{
			snap.Date,
			strconv.FormatInt(snap.TotalViews, 10),
			snap.Title,
			strings.Join(ids, ";"),
			strings.Join(titles, ";"),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	return nil
}

func JSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("write json: %w", err)
	}

	return nil
}

func YAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}

	return enc.Close()
}

func Markdown(w io.Writer, r Report) error {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = r.VideoID
	}

	fmt.Fprintf(&b, "# Playlist impact: %s\n\n", escapeMarkdown(title))
	fmt.Fprintf(&b, "Video `%s`, generated %s.\n\n", r.VideoID, r.GeneratedAt.Format("2006-01-02 15:04 MST"))

	writeResultBody(&b, r.Result)

	if len(r.Snapshots) > 0 {
		b.WriteString("\n## Snapshot history\n\n")
		b.WriteString("| Date | Total views | Playlists |\n")
		b.WriteString("|---|---:|---|\n")

		for _, snap := range r.Snapshots {
			titles := make([]string, 0, len(snap.Playlists))
			for _, p := range snap.Playlists {
				titles = append(titles, escapeMarkdown(p.Title))
			}

			playlists := strings.Join(titles, ", ")
			if playlists == "" {
				playlists = "-"
			}

			fmt.Fprintf(&b, "| %s | %d | %s |\n", snap.Date, snap.TotalViews, playlists)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

// renders the impact of several videos as one markdown document
func MarkdownSummary(w io.Writer, heading string, results []attribution.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(heading))

	if len(results) == 0 {
		b.WriteString("No tracked videos yet.\n")
	}

	for _, result := range results {
		title := result.Title
		if title == "" {
			title = result.VideoID
		}

		fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(title))
		writeResultBody(&b, result)
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

func writeResultBody(b *strings.Builder, result attribution.Result) {
	if !result.Sufficient() {
		fmt.Fprintf(b, "_Need at least two snapshots to estimate impact (have %d)._\n", result.SnapshotCount)
		return
	}

	fmt.Fprintf(b, "- Total views: **%d**\n", result.TotalViews)
	fmt.Fprintf(b, "- Growth %s to %s: **%d**\n", result.FirstDate, result.LastDate, result.ViewGrowth)
	fmt.Fprintf(b, "- Unattributed growth: %d\n\n", result.UnattributedViews)

	if len(result.Impacts) == 0 {
		b.WriteString("_The video was never in a playlist._\n")
		return
	}

	b.WriteString("| Playlist | Views | Share | Intervals |\n")
	b.WriteString("|---|---:|---:|---:|\n")

	for _, impact := range result.Impacts {
		fmt.Fprintf(b, "| %s | %.0f | %.2f%% | %d |\n",
			escapeMarkdown(impact.PlaylistTitle),
			impact.ViewsContribution,
			impact.ContributionPercentage,
			impact.DaysInPlaylist,
		)
	}
}

var markdownEscaper = strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
