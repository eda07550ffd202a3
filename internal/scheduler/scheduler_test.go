package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"codeberg.org/tubetrack/server/internal/events"
	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/internal/snapshots"
	"codeberg.org/tubetrack/server/internal/youtube"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"codeberg.org/tubetrack/server/tubetrack/tracked"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}

type fakeAccounts struct {
	list []accounts.Account
	err  error
}

func (f *fakeAccounts) ListAll(context.Context) ([]accounts.Account, error) {
	return f.list, f.err
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*accounts.Account, error) {
	for i := range f.list {
		if f.list[i].ID == id {
			return &f.list[i], nil
		}
	}

	return nil, accounts.ErrAccountNotFound
}

type fakeTracked map[string][]tracked.Video

func (f fakeTracked) ListAll(_ context.Context, accountID string) ([]tracked.Video, error) {
	return f[accountID], nil
}

type fakeAPI struct {
	playlists    []youtube.Playlist
	items        map[string][]string
	videos       map[string]youtube.Video
	videoErr     map[string]error
	playlistsErr error
	block        chan struct{}
}

func (a *fakeAPI) ListChannels(context.Context) ([]youtube.Channel, error) { return nil, nil }

func (a *fakeAPI) ListPlaylists(context.Context) ([]youtube.Playlist, error) {
	return a.playlists, a.playlistsErr
}

func (a *fakeAPI) ListPlaylistVideoIDs(_ context.Context, id string) ([]string, error) {
	return a.items[id], nil
}

func (a *fakeAPI) GetVideo(ctx context.Context, id string) (*youtube.Video, error) {
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := a.videoErr[id]; err != nil {
		return nil, err
	}

	video, ok := a.videos[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", youtube.ErrVideoNotFound, id)
	}

	return &video, nil
}

func (a *fakeAPI) GetVideos(context.Context, []string) (map[string]youtube.Video, error) {
	return a.videos, nil
}

type fakeFactory map[string]youtube.API

func (f fakeFactory) ForAccount(_ context.Context, account *accounts.Account) (youtube.API, error) {
	api, ok := f[account.ID]
	if !ok {
		return nil, errors.New("no credentials")
	}

	return api, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(event *events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
}

func (p *recordingPublisher) types(accountID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, e := range p.events {
		if e.AccountID == accountID {
			out = append(out, e.Type)
		}
	}

	return out
}

type fixture struct {
	clock     *fakeClock
	stores    *snapshots.Manager
	publisher *recordingPublisher
	api       *fakeAPI
	runner    *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)}
	stores := snapshots.NewManager(kvstore.NewMemoryStore())
	publisher := &recordingPublisher{}

	api := &fakeAPI{
		playlists: []youtube.Playlist{{ID: "PLa", Title: "A"}, {ID: "PLb", Title: "B"}},
		items: map[string][]string{
			"PLa": {"video000001", "video000002"},
			"PLb": {"video000001"},
		},
		videos: map[string]youtube.Video{
			"video000001": {ID: "video000001", Title: "One", TotalViews: 1000},
			"video000002": {ID: "video000002", Title: "Two", TotalViews: 50},
			"video000003": {ID: "video000003", Title: "Three", TotalViews: 7},
		},
		videoErr: map[string]error{},
	}

	accountSource := &fakeAccounts{list: []accounts.Account{{ID: "acc-1"}, {ID: "acc-2"}}}
	trackedSource := fakeTracked{
		"acc-1": {
			{VideoID: "video000001"},
			{VideoID: "video000002"},
			{VideoID: "video000003"},
			{VideoID: "deleted0000"},
		},
		"acc-2": {{VideoID: "video000001"}},
	}

	runner := NewRunner(accountSource, trackedSource, fakeFactory{"acc-1": api}, stores, publisher, Options{
		AnchorHour: 3,
		Location:   time.UTC,
		CallDelay:  time.Microsecond,
		Clock:      clock,
	})

	return &fixture{
		clock:     clock,
		stores:    stores,
		publisher: publisher,
		api:       api,
		runner:    runner,
	}
}

func TestNextAnchor(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before anchor", time.Date(2026, 3, 1, 2, 59, 0, 0, loc), time.Date(2026, 3, 1, 3, 0, 0, 0, loc)},
		{"at anchor", time.Date(2026, 3, 1, 3, 0, 0, 0, loc), time.Date(2026, 3, 2, 3, 0, 0, 0, loc)},
		{"after anchor", time.Date(2026, 3, 1, 15, 0, 0, 0, loc), time.Date(2026, 3, 2, 3, 0, 0, 0, loc)},
		{"month end", time.Date(2026, 3, 31, 4, 0, 0, 0, loc), time.Date(2026, 4, 1, 3, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextAnchor(tt.now, 3))
		})
	}
}

func TestNextAnchor_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	next := NextAnchor(time.Date(2026, 3, 1, 1, 0, 0, 0, loc), 3)

	assert.Equal(t, loc, next.Location())
	assert.Equal(t, 3, next.Hour())
}

func TestRun_RecordsSnapshotsWithMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.runner.Run(ctx, TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01", report.Date)
	assert.Equal(t, 2, report.Accounts)
	assert.Equal(t, 3, report.Recorded)
	assert.Equal(t, 1, report.NotFound)
	assert.Equal(t, 1, report.FailedAccounts)
	assert.False(t, report.Clean())

	one := f.stores.For("acc-1").Snapshots(ctx, "video000001")
	require.Len(t, one, 1)
	assert.Equal(t, int64(1000), one[0].TotalViews)
	assert.Equal(t, []snapshots.PlaylistRef{{ID: "PLa", Title: "A"}, {ID: "PLb", Title: "B"}}, one[0].Playlists)

	three := f.stores.For("acc-1").Snapshots(ctx, "video000003")
	require.Len(t, three, 1)
	assert.Empty(t, three[0].Playlists)

	assert.Empty(t, f.stores.For("acc-1").Snapshots(ctx, "deleted0000"))
	assert.Same(t, report, f.runner.LastReport())
}

func TestRun_VideoFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	f.api.videoErr["video000001"] = errors.New("connection reset")

	report, err := f.runner.Run(context.Background(), TriggerScheduled)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Recorded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.NotFound)
}

func TestRun_PlaylistFailureSkipsAccount(t *testing.T) {
	f := newFixture(t)
	f.api.playlistsErr = errors.New("quota")

	report, err := f.runner.Run(context.Background(), TriggerScheduled)
	require.NoError(t, err)

	assert.Zero(t, report.Recorded)
	assert.Equal(t, 2, report.FailedAccounts)
	assert.Empty(t, f.stores.For("acc-1").VideoIDs(context.Background()))
}

func TestRun_PublishesEvents(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.TypeRunStarted,
		events.TypeVideoRecorded,
		events.TypeVideoRecorded,
		events.TypeVideoRecorded,
		events.TypeVideoFailed,
		events.TypeRunFinished,
	}, f.publisher.types("acc-1"))

	assert.Equal(t, []string{events.TypeRunStarted, events.TypeAccountFailed}, f.publisher.types("acc-2"))
}

func TestRun_SameDayOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.runner.Run(ctx, TriggerManual)
	require.NoError(t, err)

	f.api.videos["video000001"] = youtube.Video{ID: "video000001", Title: "One", TotalViews: 1200}
	_, err = f.runner.Run(ctx, TriggerManual)
	require.NoError(t, err)

	got := f.stores.For("acc-1").Snapshots(ctx, "video000001")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1200), got[0].TotalViews)
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	f := newFixture(t)
	f.api.block = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.runner.Run(context.Background(), TriggerScheduled)
	}()

	require.Eventually(t, f.runner.Running, time.Second, time.Millisecond)

	_, err := f.runner.Run(context.Background(), TriggerManual)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(f.api.block)
	<-done
	assert.False(t, f.runner.Running())
}

func TestStartAccount_HoldsSlotBeforeReturning(t *testing.T) {
	f := newFixture(t)
	f.api.block = make(chan struct{})

	require.NoError(t, f.runner.StartAccount(context.Background(), TriggerManual, "acc-1"))

	// the slot is taken as soon as StartAccount returns
	assert.True(t, f.runner.Running())
	assert.ErrorIs(t, f.runner.StartAccount(context.Background(), TriggerManual, "acc-1"), ErrRunInProgress)

	_, err := f.runner.Run(context.Background(), TriggerScheduled)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(f.api.block)
	require.Eventually(t, func() bool { return !f.runner.Running() }, time.Second, time.Millisecond)

	report := f.runner.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, TriggerManual, report.Trigger)
	assert.Equal(t, 3, report.Recorded)
}

func TestRun_ContextCancelStops(t *testing.T) {
	f := newFixture(t)
	f.api.block = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		for !f.runner.Running() {
			time.Sleep(time.Millisecond)
		}

		cancel()
	}()

	report, err := f.runner.Run(ctx, TriggerScheduled)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Recorded)

	// shutdown is not a youtube failure
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.FailedAccounts)
	assert.Empty(t, report.Failures)
}

func TestRunAccount(t *testing.T) {
	f := newFixture(t)

	report, err := f.runner.RunAccount(context.Background(), TriggerManual, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Accounts)
	assert.Equal(t, 3, report.Recorded)

	_, err = f.runner.RunAccount(context.Background(), TriggerManual, "nobody")
	assert.ErrorIs(t, err, accounts.ErrAccountNotFound)
}

func TestSnapshotVideo(t *testing.T) {
	f := newFixture(t)
	account := &accounts.Account{ID: "acc-1"}

	snap, err := f.runner.SnapshotVideo(context.Background(), account, "video000002")
	require.NoError(t, err)
	assert.Equal(t, int64(50), snap.TotalViews)
	assert.Equal(t, []snapshots.PlaylistRef{{ID: "PLa", Title: "A"}}, snap.Playlists)

	_, err = f.runner.SnapshotVideo(context.Background(), account, "deleted0000")
	assert.ErrorIs(t, err, youtube.ErrVideoNotFound)
}

func TestScheduler_DueAndRearm(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC))

	s := New(f.runner, Options{AnchorHour: 3, Location: time.UTC, Clock: f.clock})
	ctx := context.Background()

	assert.Equal(t, time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC), s.Next())
	assert.False(t, s.Tick(ctx))

	f.clock.Set(time.Date(2026, 3, 1, 3, 0, 30, 0, time.UTC))
	assert.True(t, s.Due(f.clock.Now()))
	assert.True(t, s.Tick(ctx))
	assert.Equal(t, time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC), s.Next())

	// re-arming is idempotent for the rest of the day
	f.clock.Set(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC))
	assert.False(t, s.Tick(ctx))

	require.NotNil(t, f.runner.LastReport())
	assert.Equal(t, TriggerScheduled, f.runner.LastReport().Trigger)
}

func TestScheduler_MissedDaysRunOnce(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC))

	s := New(f.runner, Options{AnchorHour: 3, Location: time.UTC, Clock: f.clock})

	// the process slept through several anchors
	f.clock.Set(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC))
	assert.True(t, s.Tick(context.Background()))
	assert.False(t, s.Tick(context.Background()))
	assert.Equal(t, time.Date(2026, 3, 5, 3, 0, 0, 0, time.UTC), s.Next())
}

func TestScheduler_DeferredWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.api.block = make(chan struct{})
	f.clock.Set(time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC))

	s := New(f.runner, Options{AnchorHour: 3, Location: time.UTC, Clock: f.clock})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.runner.Run(context.Background(), TriggerManual)
	}()

	require.Eventually(t, f.runner.Running, time.Second, time.Millisecond)

	f.clock.Set(time.Date(2026, 3, 1, 3, 1, 0, 0, time.UTC))
	assert.False(t, s.Tick(context.Background()))
	assert.True(t, s.Due(f.clock.Now()))

	close(f.api.block)
	<-done
}

func TestScheduler_StartStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	s := New(f.runner, Options{AnchorHour: 3, Location: time.UTC, Clock: f.clock, CheckInterval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	go func() {
		s.Start(ctx)
		close(stopped)
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_Status(t *testing.T) {
	f := newFixture(t)
	s := New(f.runner, Options{AnchorHour: 3, Location: time.UTC, Clock: f.clock})

	status := s.Status()
	assert.Equal(t, 3, status.AnchorHour)
	assert.Equal(t, "UTC", status.Timezone)
	assert.False(t, status.Running)
	assert.Nil(t, status.LastRun)
}
