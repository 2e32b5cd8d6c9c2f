// Package viewer orchestrates the fetches behind one course-viewing session:
// identity before course, course before progress, a single in-flight request
// per resource, one progress re-fetch after each mutation, and teardown that
// discards late results.
package viewer

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/InkAurora/educblue-sub001/authz"
	"github.com/InkAurora/educblue-sub001/models"
	"github.com/InkAurora/educblue-sub001/progress"
	"github.com/InkAurora/educblue-sub001/upstream"
)

// Upstream is the full API surface a session needs.
type Upstream interface {
	progress.Upstream
	Me(ctx context.Context, token string) (*models.User, error)
	Course(ctx context.Context, token, courseID string) (*models.Course, error)
}

// Session is the unit of orchestration for one (viewer, course) pair. User
// and course are fetched at most once per session; progress is fetched once
// and then only re-fetched after successful mutations. Closing the session
// cancels anything still in flight and prevents stale results from being
// applied.
type Session struct {
	client   Upstream
	courseID string
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	flight singleflight.Group

	mu     sync.RWMutex
	token  string
	user   *models.User
	course *models.Course
	store  *progress.Store
}

// NewSession builds a session for one bearer token and course.
func NewSession(client Upstream, token, courseID string, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		client:   client,
		token:    token,
		courseID: courseID,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetToken swaps the bearer used for later upstream calls. Sessions outlive
// logins, so a reused session carries the viewer's current credential.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) bearer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Close tears the session down. In-flight fetches are cancelled and any
// result arriving afterwards is discarded.
func (s *Session) Close() { s.cancel() }

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool { return s.ctx.Err() != nil }

// scoped derives a context cancelled by either the caller or session
// teardown, so a request outlives neither.
func (s *Session) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() { stop(); cancel() }
}

// User resolves the viewer's identity, fetching it at most once per session.
func (s *Session) User(ctx context.Context) (*models.User, error) {
	s.mu.RLock()
	if u := s.user; u != nil {
		s.mu.RUnlock()
		return u, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.flight.Do("user", func() (interface{}, error) {
		fctx, done := s.scoped(ctx)
		defer done()
		user, err := s.client.Me(fctx, s.bearer())
		if err != nil {
			return nil, err
		}
		if s.Closed() {
			return nil, s.ctx.Err()
		}
		s.mu.Lock()
		s.user = user
		s.mu.Unlock()
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User), nil
}

// Course resolves the course, fetching it at most once per session. Identity
// is resolved first: authorization of everything downstream depends on both.
func (s *Session) Course(ctx context.Context) (*models.Course, error) {
	if _, err := s.User(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if c := s.course; c != nil {
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.flight.Do("course", func() (interface{}, error) {
		fctx, done := s.scoped(ctx)
		defer done()
		course, err := s.client.Course(fctx, s.bearer(), s.courseID)
		if err != nil {
			return nil, err
		}
		if s.Closed() {
			return nil, s.ctx.Err()
		}
		s.mu.Lock()
		s.course = course
		s.store = progress.NewStore(s.client, s.courseID, course.TotalContentCount(), s.log)
		s.mu.Unlock()
		return course, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Course), nil
}

// Authorize recomputes the authorization context from the session's user and
// course snapshots. It is evaluated fresh on every call; only the underlying
// snapshots are session-scoped.
func (s *Session) Authorize(ctx context.Context) (authz.Context, *models.Course, error) {
	course, err := s.Course(ctx)
	if err != nil {
		return authz.Context{}, nil, err
	}
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()

	actx := authz.Evaluate(user, course)
	if actx.NameMatchOnly {
		// Instructor matched by display name while the id did not; two
		// instructors can share a name, so leave a trace.
		s.log.Warn("instructor matched by display name only",
			zap.String("userId", user.ID),
			zap.String("courseId", course.Key()))
	}
	return actx, course, nil
}

// Progress returns the progress snapshot, fetching it on first use. Access
// is gated on authorization and fails closed.
func (s *Session) Progress(ctx context.Context) (*progress.Store, error) {
	store, err := s.authorizedStore(ctx)
	if err != nil {
		return nil, err
	}
	if store.Snapshot() == nil {
		fctx, done := s.scoped(ctx)
		defer done()
		if _, err := store.Refresh(fctx, s.bearer()); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// MarkCompleted routes a completion (or answer resubmission) through the
// store, which re-fetches the authoritative snapshot after success.
func (s *Session) MarkCompleted(ctx context.Context, sectionID, contentID string, payload upstream.CompletionPayload) (*progress.Store, error) {
	store, err := s.authorizedStore(ctx)
	if err != nil {
		return nil, err
	}
	fctx, done := s.scoped(ctx)
	defer done()
	if err := store.MarkCompleted(fctx, s.bearer(), sectionID, contentID, payload); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Session) authorizedStore(ctx context.Context) (*progress.Store, error) {
	actx, course, err := s.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if !actx.CanView() {
		return nil, &upstream.ForbiddenAccessError{CourseID: course.Key()}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store, nil
}
