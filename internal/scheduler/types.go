package scheduler

import (
	"context"
	"errors"
	"time"

	"codeberg.org/tubetrack/server/internal/events"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
)

var ErrRunInProgress = errors.New("snapshot run already in progress")

type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// why an account or video was skipped
type Failure struct {
	AccountID string `json:"account_id"`
	VideoID   string `json:"video_id,omitempty"`
	Reason    string `json:"reason"`
	NotFound  bool   `json:"not_found,omitempty"`
}

// RunReport is the outcome of one snapshot run.
type RunReport struct {
	RunID          string    `json:"run_id"`
	Trigger        Trigger   `json:"trigger"`
	Date           string    `json:"date"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Accounts       int       `json:"accounts"`
	Recorded       int       `json:"recorded"`
	NotFound       int       `json:"not_found"`
	Failed         int       `json:"failed"`
	FailedAccounts int       `json:"failed_accounts"`
	Failures       []Failure `json:"failures"`
}

// reports whether every video of every account was recorded
func (r *RunReport) Clean() bool {
	return len(r.Failures) == 0
}

// lists the accounts a scheduled run covers
type AccountSource interface {
	ListAll(ctx context.Context) ([]accounts.Account, error)
	FindByID(ctx context.Context, accountID string) (*accounts.Account, error)
}

// lists the videos of an account to snapshot
type TrackedSource interface {
	ListAll(ctx context.Context, accountID string) ([]tracked.Video, error)
}

// receives run progress
type Publisher interface {
	Publish(event *events.Event)
}

type Options struct {
	AnchorHour    int
	Location      *time.Location
	CheckInterval time.Duration
	CallDelay     time.Duration
	Clock         Clock
}

// schedule status exposed over the API
type Status struct {
	NextRun    time.Time  `json:"next_run"`
	AnchorHour int        `json:"anchor_hour"`
	Timezone   string     `json:"timezone"`
	Running    bool       `json:"running"`
	LastRun    *RunReport `json:"last_run,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}

	if o.CheckInterval <= 0 {
		o.CheckInterval = time.Minute
	}

	if o.CallDelay <= 0 {
		o.CallDelay = 500 * time.Millisecond
	}

	if o.Clock == nil {
		o.Clock = RealClock{}
	}

	return o
}
