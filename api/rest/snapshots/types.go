package snapshots

import (
	"context"

	"codeberg.org/tubetrack/server/internal/scheduler"
)

// manual run surface of scheduler.Runner
type RunTrigger interface {
	RunAccount(ctx context.Context, trigger scheduler.Trigger, accountID string) (*scheduler.RunReport, error)
	StartAccount(ctx context.Context, trigger scheduler.Trigger, accountID string) error
}

type StatusProvider interface {
	Status() scheduler.Status
}

type RunAcceptedResponse struct {
	Message string `json:"message"`
}

type RunResponse struct {
	Report *scheduler.RunReport `json:"report"`
}

type ScheduleResponse struct {
	Schedule scheduler.Status `json:"schedule"`
}
