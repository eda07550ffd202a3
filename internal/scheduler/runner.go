package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/tubetrack/server/internal/events"
	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Runner takes snapshots of tracked videos. At most one run executes at a
// time; accounts, playlists and videos are visited sequentially with a
// fixed delay between API calls.
type Runner struct {
	accounts  AccountSource
	tracked   TrackedSource
	youtube   youtube.Factory
	stores    *snapshots.Manager
	publisher Publisher
	opts      Options

	running atomic.Bool

	mu   sync.RWMutex
	last *RunReport
}

func NewRunner(
	accountSource AccountSource,
	trackedSource TrackedSource,
	factory youtube.Factory,
	stores *snapshots.Manager,
	publisher Publisher,
	opts Options,
) *Runner {
	return &Runner{
		accounts:  accountSource,
		tracked:   trackedSource,
		youtube:   factory,
		stores:    stores,
		publisher: publisher,
		opts:      opts.withDefaults(),
	}
}

// snapshots every tracked video of every account
func (r *Runner) Run(ctx context.Context, trigger Trigger) (*RunReport, error) {
	return r.run(ctx, trigger, func(ctx context.Context) ([]accounts.Account, error) {
		return r.accounts.ListAll(ctx)
	})
}

// snapshots the tracked videos of one account
func (r *Runner) RunAccount(ctx context.Context, trigger Trigger, accountID string) (*RunReport, error) {
	return r.run(ctx, trigger, r.findAccount(accountID))
}

func (r *Runner) findAccount(accountID string) func(context.Context) ([]accounts.Account, error) {
	return func(ctx context.Context) ([]accounts.Account, error) {
		account, err := r.accounts.FindByID(ctx, accountID)
		if err != nil {
			return nil, err
		}

		return []accounts.Account{*account}, nil
	}
}

// reserves the run slot and snapshots one account in the background.
// ErrRunInProgress is returned, without starting anything, when another run
// holds the slot.
func (r *Runner) StartAccount(ctx context.Context, trigger Trigger, accountID string) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}

	go func() {
		defer r.running.Store(false)

		if _, err := r.execute(ctx, trigger, r.findAccount(accountID)); err != nil {
			logger.ErrorErr(err, "background snapshot run failed", "account_id", accountID)
		}
	}()

	return nil
}

// reports whether a run is executing
func (r *Runner) Running() bool {
	return r.running.Load()
}

// the report of the most recent finished run
func (r *Runner) LastReport() *RunReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.last
}

// today's calendar day in the configured location
func (r *Runner) Today() string {
	return snapshots.DateOf(r.opts.Clock.Now().In(r.opts.Location))
}

func (r *Runner) run(
	ctx context.Context,
	trigger Trigger,
	list func(context.Context) ([]accounts.Account, error),
) (*RunReport, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}

	defer r.running.Store(false)

	return r.execute(ctx, trigger, list)
}

// runs with the slot already held by the caller
func (r *Runner) execute(
	ctx context.Context,
	trigger Trigger,
	list func(context.Context) ([]accounts.Account, error),
) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		Date:      r.Today(),
		StartedAt: r.opts.Clock.Now(),
		Failures:  []Failure{},
	}

	log := logger.With("run_id", report.RunID, "trigger", string(trigger))
	log.Info("snapshot run started", "date", report.Date)

	all, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	report.Accounts = len(all)
	limiter := rate.NewLimiter(rate.Every(r.opts.CallDelay), 1)

	// listings must reflect today's memberships
	ctx = youtube.WithRefresh(ctx)

	for i := range all {
		if ctx.Err() != nil {
			break
		}

		r.runAccount(ctx, limiter, &all[i], report)
	}

	report.FinishedAt = r.opts.Clock.Now()

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	log.Info("snapshot run finished",
		"accounts", report.Accounts,
		"recorded", report.Recorded,
		"not_found", report.NotFound,
		"failed", report.Failed,
		"failed_accounts", report.FailedAccounts,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	return report, nil
}

func (r *Runner) runAccount(ctx context.Context, limiter *rate.Limiter, account *accounts.Account, report *RunReport) {
	started := time.Now()

	var recorded, notFound, failed int

	r.publish(account.ID, events.TypeRunStarted, events.RunStartedPayload{
		RunID:   report.RunID,
		Trigger: string(report.Trigger),
		Date:    report.Date,
	})

	fail := func(err error) {
		// a cancelled run is not an account failure
		if ctx.Err() != nil {
			return
		}

		report.FailedAccounts++
		report.Failures = append(report.Failures, Failure{
			AccountID: account.ID,
			Reason:    err.Error(),
		})

		logger.ErrorErr(err, "snapshot run skipped account",
			"run_id", report.RunID,
			"account_id", account.ID,
		)

		r.publish(account.ID, events.TypeAccountFailed, events.AccountFailedPayload{
			RunID:  report.RunID,
			Reason: err.Error(),
		})
	}

	videos, err := r.tracked.ListAll(ctx, account.ID)
	if err != nil {
		fail(fmt.Errorf("list tracked videos: %w", err))
		return
	}

	if len(videos) == 0 {
		return
	}

	api, err := r.youtube.ForAccount(ctx, account)
	if err != nil {
		fail(err)
		return
	}

	memberships, err := r.memberships(ctx, limiter, api)
	if err != nil {
		fail(err)
		return
	}

	store := r.stores.For(account.ID)

	for _, video := range videos {
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		snap, err := r.record(ctx, api, store, report.Date, video.VideoID, memberships[video.VideoID])
		if err != nil && ctx.Err() != nil {
			break
		}

		if err != nil {
			isNotFound := errors.Is(err, youtube.ErrVideoNotFound)

			if isNotFound {
				notFound++
				report.NotFound++
			} else {
				failed++
				report.Failed++
			}

			report.Failures = append(report.Failures, Failure{
				AccountID: account.ID,
				VideoID:   video.VideoID,
				Reason:    err.Error(),
				NotFound:  isNotFound,
			})

			logger.Warn("failed to snapshot video",
				"run_id", report.RunID,
				"account_id", account.ID,
				"video_id", video.VideoID,
				"error", err,
			)

			r.publish(account.ID, events.TypeVideoFailed, events.VideoFailedPayload{
				RunID:   report.RunID,
				VideoID: video.VideoID,
				Reason:  err.Error(),
			})

			continue
		}

		recorded++
		report.Recorded++

		r.publish(account.ID, events.TypeVideoRecorded, events.VideoRecordedPayload{
			RunID:      report.RunID,
			VideoID:    snap.VideoID,
			Title:      snap.Title,
			TotalViews: snap.TotalViews,
			Playlists:  playlistIDs(snap.Playlists),
		})
	}

	r.publish(account.ID, events.TypeRunFinished, events.RunFinishedPayload{
		RunID:      report.RunID,
		Recorded:   recorded,
		NotFound:   notFound,
		Failed:     failed,
		DurationMS: time.Since(started).Milliseconds(),
	})
}

// maps video id to the playlists of the account that contain it. a failed
// playlist listing fails the whole account so that no snapshot is stored
// with incomplete memberships.
func (r *Runner) memberships(ctx context.Context, limiter *rate.Limiter, api youtube.API) (map[string][]snapshots.PlaylistRef, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	playlists, err := api.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]snapshots.PlaylistRef)

	for _, playlist := range playlists {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		ids, err := api.ListPlaylistVideoIDs(ctx, playlist.ID)
		if err != nil {
			return nil, err
		}

		ref := snapshots.PlaylistRef{ID: playlist.ID, Title: playlist.Title}
		for _, id := range ids {
			out[id] = append(out[id], ref)
		}
	}

	return out, nil
}

func (r *Runner) record(
	ctx context.Context,
	api youtube.API,
	store *snapshots.Store,
	date, videoID string,
	playlists []snapshots.PlaylistRef,
) (*snapshots.Snapshot, error) {
	video, err := api.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if playlists == nil {
		playlists = []snapshots.PlaylistRef{}
	}

	if err := store.RecordSnapshot(ctx, videoID, date, video.TotalViews, video.Title, playlists); err != nil {
		return nil, err
	}

	return &snapshots.Snapshot{
		VideoID:    videoID,
		Date:       date,
		TotalViews: video.TotalViews,
		Title:      video.Title,
		Playlists:  playlists,
	}, nil
}

// snapshots a single video of an account right now, outside of any run
func (r *Runner) SnapshotVideo(ctx context.Context, account *accounts.Account, videoID string) (*snapshots.Snapshot, error) {
	api, err := r.youtube.ForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Every(r.opts.CallDelay), 1)

	memberships, err := r.memberships(ctx, limiter, api)
	if err != nil {
		return nil, err
	}

	return r.record(ctx, api, r.stores.For(account.ID), r.Today(), videoID, memberships[videoID])
}

func (r *Runner) publish(accountID, eventType string, payload any) {
	if r.publisher == nil {
		return
	}

	event, err := events.NewEvent(eventType, accountID, payload)
	if err != nil {
		logger.ErrorErr(err, "failed to encode event", "type", eventType)
		return
	}

	r.publisher.Publish(event)
}

func playlistIDs(refs []snapshots.PlaylistRef) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}

	return ids
}
