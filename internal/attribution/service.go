package attribution

import (
	"context"
	"fmt"

	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
)

// lists the videos an account tracks
type TrackedLister interface {
	ListAll(ctx context.Context, accountID string) ([]tracked.Video, error)
}

type Service struct {
	stores  *snapshots.Manager
	tracked TrackedLister
}

func NewService(stores *snapshots.Manager, tracked TrackedLister) *Service {
	return &Service{
		stores:  stores,
		tracked: tracked,
	}
}

// estimates the playlist impact of one video of an account
func (s *Service) VideoImpact(ctx context.Context, accountID, videoID string) Result {
	result := Estimate(s.stores.For(accountID).Snapshots(ctx, videoID))
	result.VideoID = videoID

	return result
}

// estimates every tracked video of an account, in tracking order
func (s *Service) AccountImpact(ctx context.Context, accountID string) ([]Result, error) {
	videos, err := s.tracked.ListAll(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked videos: %w", err)
	}

	results := make([]Result, 0, len(videos))

	for _, video := range videos {
		result := s.VideoImpact(ctx, accountID, video.VideoID)

		if result.Title == "" {
			result.Title = video.Title
		}

		results = append(results, result)
	}

	return results, nil
}
