package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/snapshots"
)

type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Report is the exported view of one video: its impact estimate plus the
// snapshot history it was computed from.
type Report struct {
	VideoID     string               `json:"videoId" yaml:"videoId"`
	Title       string               `json:"title" yaml:"title"`
	GeneratedAt time.Time            `json:"generatedAt" yaml:"generatedAt"`
	Result      attribution.Result   `json:"result" yaml:"result"`
	Snapshots   []snapshots.Snapshot `json:"snapshots" yaml:"snapshots"`
}

// builds a report with the history sorted by date
func NewReport(videoID string, history []snapshots.Snapshot, now time.Time) Report {
	sorted := make([]snapshots.Snapshot, len(history))
	copy(sorted, history)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	result := attribution.Estimate(sorted)
	result.VideoID = videoID

	return Report{
		VideoID:     videoID,
		Title:       result.Title,
		GeneratedAt: now.UTC(),
		Result:      result,
		Snapshots:   sorted,
	}
}

// parses a format name; "md" and "yml" are accepted aliases
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	default:
		return "csv"
	}
}

// suggested download file name
func (r Report) FileName(f Format) string {
	return fmt.Sprintf("playlist-impact-%s-%s.%s", r.VideoID, r.GeneratedAt.Format("20060102"), f.Extension())
}
