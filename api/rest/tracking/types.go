package tracking

import (
	"context"

	"codeberg.org/tubetrack/server/api/rest/pagination"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// tracked video persistence used by the handlers
type TrackedRepository interface {
	Add(ctx context.Context, accountID, videoID, title string) (*tracked.Video, error)
	Remove(ctx context.Context, accountID, videoID string) error
	List(ctx context.Context, accountID string, limit, offset int) ([]tracked.Video, int, error)
}

type ListResponse struct {
	Videos     []tracked.Video `json:"videos"`
	Pagination pagination.Meta `json:"pagination"`
}

type VideoResponse struct {
	Video *tracked.Video `json:"video"`
}

type RemoveResponse struct {
	VideoID        string `json:"video_id"`
	HistoryCleared bool   `json:"history_cleared"`
}
