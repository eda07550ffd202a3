package attribution

// outcome of an estimate
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
)

// estimated share of a video's view growth credited to one playlist
type PlaylistImpact struct {
	PlaylistID             string  `json:"playlistId" yaml:"playlistId"`
	PlaylistTitle          string  `json:"playlistTitle" yaml:"playlistTitle"`
	ViewsContribution      float64 `json:"viewsContribution" yaml:"viewsContribution"`
	ContributionPercentage float64 `json:"contributionPercentage" yaml:"contributionPercentage"`
	DaysInPlaylist         int     `json:"daysInPlaylist" yaml:"daysInPlaylist"`
}

// Result of estimating one video's history.
//
// ViewGrowth is the sum of positive deltas over all intervals and
// UnattributedViews the part of it that fell into intervals with no
// playlist membership. TotalViews is the view count of the latest snapshot.
type Result struct {
	VideoID           string           `json:"videoId" yaml:"videoId"`
	Title             string           `json:"title" yaml:"title"`
	Status            Status           `json:"status" yaml:"status"`
	Impacts           []PlaylistImpact `json:"impacts" yaml:"impacts"`
	TotalViews        int64            `json:"totalViews" yaml:"totalViews"`
	ViewGrowth        int64            `json:"viewGrowth" yaml:"viewGrowth"`
	UnattributedViews int64            `json:"unattributedViews" yaml:"unattributedViews"`
	SnapshotCount     int              `json:"snapshotCount" yaml:"snapshotCount"`
	FirstDate         string           `json:"firstDate,omitempty" yaml:"firstDate,omitempty"`
	LastDate          string           `json:"lastDate,omitempty" yaml:"lastDate,omitempty"`
}

// reports whether the estimate had at least one interval to work with
func (r Result) Sufficient() bool {
	return r.Status == StatusOK
}

// sum of all playlist contributions
func (r Result) AttributedViews() float64 {
	var total float64
	for _, impact := range r.Impacts {
		total += impact.ViewsContribution
	}

	return total
}
