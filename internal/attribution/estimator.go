package attribution

import (
	"sort"

	"codeberg.org/tubetrack/server/internal/snapshots"
)

// Estimate distributes the view growth of a video across the playlists that
// contained it. Each interval between consecutive snapshots is split equally
// across the playlists of the later snapshot. The input slice is not modified.
func Estimate(history []snapshots.Snapshot) Result {
	sorted := make([]snapshots.Snapshot, len(history))
	copy(sorted, history)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	result := Result{
		Status:        StatusInsufficientData,
		Impacts:       []PlaylistImpact{},
		SnapshotCount: len(sorted),
	}

	if len(sorted) == 0 {
		return result
	}

	first := sorted[0]
	latest := sorted[len(sorted)-1]

	result.VideoID = latest.VideoID
	result.Title = latest.Title
	result.TotalViews = latest.TotalViews
	result.FirstDate = first.Date
	result.LastDate = latest.Date

	if len(sorted) < 2 {
		return result
	}

	result.Status = StatusOK

	// candidate set in first-seen order, carrying the latest seen title
	index := make(map[string]int)
	impacts := make([]PlaylistImpact, 0)

	for _, snap := range sorted {
		for _, p := range snap.Playlists {
			if i, ok := index[p.ID]; ok {
				impacts[i].PlaylistTitle = p.Title
				continue
			}

			index[p.ID] = len(impacts)
			impacts = append(impacts, PlaylistImpact{
				PlaylistID:    p.ID,
				PlaylistTitle: p.Title,
			})
		}
	}

	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]

		delta := curr.TotalViews - prev.TotalViews
		if delta <= 0 {
			continue
		}

		result.ViewGrowth += delta

		active := activeSet(curr.Playlists)
		if len(active) == 0 {
			result.UnattributedViews += delta
			continue
		}

		share := float64(delta) / float64(len(active))
		for _, id := range active {
			impact := &impacts[index[id]]
			impact.ViewsContribution += share
			impact.DaysInPlaylist++
		}
	}

	for i := range impacts {
		if latest.TotalViews > 0 {
			impacts[i].ContributionPercentage = impacts[i].ViewsContribution / float64(latest.TotalViews) * 100
		}
	}

	sort.SliceStable(impacts, func(i, j int) bool {
		return impacts[i].ViewsContribution > impacts[j].ViewsContribution
	})

	result.Impacts = impacts
	return result
}

// distinct playlist ids of one snapshot, in order
func activeSet(playlists []snapshots.PlaylistRef) []string {
	ids := make([]string, 0, len(playlists))
	seen := make(map[string]struct{}, len(playlists))

	for _, p := range playlists {
		if _, ok := seen[p.ID]; ok {
			continue
		}

		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}

	return ids
}
