package snapshots

import (
	"context"
	"time"
)

// base KV key; each account gets its own "<base>:<accountId>" key
const DefaultKey = "youtube_video_snapshots"

// calendar day layout used for Snapshot.Date
const DateLayout = "2006-01-02"

// a playlist containing the video at snapshot time
type PlaylistRef struct {
	ID    string `json:"playlistId" yaml:"playlistId"`
	Title string `json:"playlistTitle" yaml:"playlistTitle"`
}

// one observation of a video on a given day
type Snapshot struct {
	VideoID    string        `json:"videoId" yaml:"videoId"`
	Date       string        `json:"date" yaml:"date"`
	TotalViews int64         `json:"totalViews" yaml:"totalViews"`
	Title      string        `json:"title" yaml:"title"`
	Playlists  []PlaylistRef `json:"playlists" yaml:"playlists"`
	RecordedAt time.Time     `json:"recordedAt" yaml:"recordedAt"`
}

// persisted form: video id -> snapshots in storage order
type Map map[string][]Snapshot

// Repository is the persistence capability set of the snapshot log.
type Repository interface {
	Load(ctx context.Context) (Map, error)
	Save(ctx context.Context, m Map) error
	AppendOrReplace(ctx context.Context, snapshot Snapshot) error
}

// returns the calendar day of t in its own location
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// returns the KV key holding the snapshots of one account
func KeyFor(accountID string) string {
	if accountID == "" {
		return DefaultKey
	}

	return DefaultKey + ":" + accountID
}
