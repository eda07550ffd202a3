package snapshots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/internal/logger"
)

// Store is the snapshot log of one account, persisted as a single JSON
// document under one KV key. Every write persists the full map.
type Store struct {
	kv  kvstore.Store
	key string
	now func() time.Time

	// serializes read-modify-write cycles on key
	mu sync.Mutex
}

var _ Repository = (*Store)(nil)

// creates a store bound to key
func NewStore(kv kvstore.Store, key string) *Store {
	return &Store{
		kv:  kv,
		key: key,
		now: time.Now,
	}
}

// returns the KV key this store is bound to
func (s *Store) Key() string {
	return s.key
}

// reads the persisted map. a missing key or malformed JSON yields an empty
// map; backend failures are returned.
func (s *Store) Load(ctx context.Context) (Map, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Map{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}

	m := Map{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		logger.Warn("discarding malformed snapshot data",
			"key", s.key,
			"error", err,
		)

		return Map{}, nil
	}

	if m == nil {
		m = Map{}
	}

	return m, nil
}

// persists the full map
func (s *Store) Save(ctx context.Context, m Map) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode snapshots: %w", err)
	}

	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}

	return nil
}

// inserts snapshot, replacing any existing entry for the same (video, date)
func (s *Store) AppendOrReplace(ctx context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.Load(ctx)
	if err != nil {
		return err
	}

	list := m[snapshot.VideoID]
	replaced := false

	for i := range list {
		if list[i].Date == snapshot.Date {
			list[i] = snapshot
			replaced = true
			break
		}
	}

	if !replaced {
		list = append(list, snapshot)
	}

	m[snapshot.VideoID] = list

	return s.Save(ctx, m)
}

// records the state of a video on date. no monotonicity check is made
// on totalViews.
func (s *Store) RecordSnapshot(
	ctx context.Context,
	videoID, date string,
	totalViews int64,
	title string,
	playlists []PlaylistRef,
) error {
	snapshot := Snapshot{
		VideoID:    videoID,
		Date:       date,
		TotalViews: totalViews,
		Title:      title,
		Playlists:  dedupePlaylists(playlists),
		RecordedAt: s.now().UTC(),
	}

	if err := s.AppendOrReplace(ctx, snapshot); err != nil {
		return fmt.Errorf("record snapshot %s@%s: %w", videoID, date, err)
	}

	return nil
}

// returns the snapshots of a video in storage order. read failures are
// logged and yield an empty list.
func (s *Store) Snapshots(ctx context.Context, videoID string) []Snapshot {
	m, err := s.Load(ctx)
	if err != nil {
		logger.ErrorErr(err, "failed to load snapshots",
			"key", s.key,
			"video_id", videoID,
		)

		return []Snapshot{}
	}

	list := m[videoID]
	out := make([]Snapshot, len(list))
	copy(out, list)

	return out
}

// removes every snapshot of a video
func (s *Store) Clear(ctx context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.Load(ctx)
	if err != nil {
		return err
	}

	if _, ok := m[videoID]; !ok {
		return nil
	}

	delete(m, videoID)

	if err := s.Save(ctx, m); err != nil {
		return fmt.Errorf("clear snapshots %s: %w", videoID, err)
	}

	return nil
}

// returns the ids of every video with stored snapshots, sorted
func (s *Store) VideoIDs(ctx context.Context) []string {
	m, err := s.Load(ctx)
	if err != nil {
		logger.ErrorErr(err, "failed to load snapshots", "key", s.key)
		return []string{}
	}

	ids := make([]string, 0, len(m))
	for id, list := range m {
		if len(list) > 0 {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)
	return ids
}

// drops repeated playlist ids, keeping the first position and the last title
func dedupePlaylists(playlists []PlaylistRef) []PlaylistRef {
	out := make([]PlaylistRef, 0, len(playlists))
	seen := make(map[string]int, len(playlists))

	for _, p := range playlists {
		if i, ok := seen[p.ID]; ok {
			out[i].Title = p.Title
			continue
		}

		seen[p.ID] = len(out)
		out = append(out, p)
	}

	return out
}
