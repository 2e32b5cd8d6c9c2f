// Package progress holds the per-session completion state for a course and
// derives the aggregate completion percentage.
package progress

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/InkAurora/educblue-sub001/models"
	"github.com/InkAurora/educblue-sub001/upstream"
)

// Upstream is the slice of the API client the store depends on.
type Upstream interface {
	Progress(ctx context.Context, token, courseID string) (*models.ProgressSnapshot, error)
	MarkCompleted(ctx context.Context, token, courseID, sectionID, contentID string, payload upstream.CompletionPayload) error
}

// Store owns the in-memory progress snapshot for one course within one
// viewing session. The snapshot is only ever overwritten wholesale with the
// latest authoritative fetch; partial merges could resurrect stale records.
type Store struct {
	client   Upstream
	courseID string
	total    int // course content count, for legacy-shape derivation
	log      *zap.Logger

	mu       sync.RWMutex
	snapshot *models.ProgressSnapshot

	flight singleflight.Group
}

// NewStore builds a store for courseID. totalContent is the course's
// addressable content count, used when the upstream answers with the legacy
// bare-array shape that carries no percentage.
func NewStore(client Upstream, courseID string, totalContent int, log *zap.Logger) *Store {
	return &Store{
		client:   client,
		courseID: courseID,
		total:    totalContent,
		log:      log,
	}
}

// Refresh fetches the authoritative snapshot and replaces the held one.
// Concurrent refreshes collapse into a single upstream request. A refresh
// whose context was cancelled before the result arrived discards it rather
// than apply stale state.
func (s *Store) Refresh(ctx context.Context, token string) (*models.ProgressSnapshot, error) {
	v, err, _ := s.flight.Do("progress", func() (interface{}, error) {
		snap, err := s.client.Progress(ctx, token, s.courseID)
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.mu.Lock()
		s.snapshot = snap
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ProgressSnapshot), nil
}

// Snapshot returns the last-fetched snapshot, or nil before the first fetch.
func (s *Store) Snapshot() *models.ProgressSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// IsCompleted reports whether a record with the given content id exists in
// the last-fetched snapshot with completed=true. False for empty or not yet
// fetched snapshots.
func (s *Store) IsCompleted(contentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return false
	}
	r, ok := s.snapshot.Record(contentID)
	return ok && r.Completed
}

// Answer returns the stored free-text answer for a content id, if any.
func (s *Store) Answer(contentID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return "", false
	}
	r, ok := s.snapshot.Record(contentID)
	if !ok || r.Answer == "" {
		return "", false
	}
	return r.Answer, true
}

// Percentage derives the integer completion percentage from the held
// snapshot. The collaborator's own number wins when it sent one; otherwise
// the percentage is computed from raw records against the course's content
// count. Always an integer in [0,100], rounded half up.
func (s *Store) Percentage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return 0
	}
	if s.snapshot.HasPercentage {
		return clampPercent(s.snapshot.Percentage)
	}
	if s.total == 0 {
		return 0
	}
	return clampPercent(100 * float64(s.snapshot.CompletedCount()) / float64(s.total))
}

// MarkCompleted posts a completion for one content item and, on success,
// re-queries the authoritative snapshot exactly once; progress is never
// patched optimistically. The mutation is logically idempotent upstream: a
// second call for the same content id updates the record in place. On
// failure the prior snapshot is preserved untouched.
func (s *Store) MarkCompleted(ctx context.Context, token, sectionID, contentID string, payload upstream.CompletionPayload) error {
	if err := s.client.MarkCompleted(ctx, token, s.courseID, sectionID, contentID, payload); err != nil {
		return err
	}
	if _, err := s.Refresh(ctx, token); err != nil {
		// The mutation itself succeeded; the stale snapshot stays until the
		// next successful refresh.
		s.log.Warn("progress refresh after mutation failed",
			zap.String("courseId", s.courseID),
			zap.String("contentId", contentID),
			zap.Error(err))
	}
	return nil
}

func clampPercent(v float64) int {
	p := math.Floor(v + 0.5) // round half up
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}
