package videos

import (
	"context"

	"codeberg.org/tubetrack/server/internal/attribution"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
)

// takes an out-of-schedule snapshot, implemented by scheduler.Runner
type SnapshotTaker interface {
	SnapshotVideo(ctx context.Context, account *accounts.Account, videoID string) (*snapshots.Snapshot, error)
}

type SnapshotsResponse struct {
	VideoID   string               `json:"video_id"`
	Count     int                  `json:"count"`
	Snapshots []snapshots.Snapshot `json:"snapshots"`
}

type SnapshotResponse struct {
	Snapshot *snapshots.Snapshot `json:"snapshot"`
}

type ImpactResponse struct {
	Result attribution.Result `json:"result"`
}

type AccountImpactResponse struct {
	Videos []attribution.Result `json:"videos"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
