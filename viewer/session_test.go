package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/InkAurora/educblue-sub001/models"
	"github.com/InkAurora/educblue-sub001/upstream"
)

// fakeAPI counts upstream calls so the orchestration rules are observable.
type fakeAPI struct {
	mu            sync.Mutex
	user          models.User
	course        models.Course
	records       map[string]models.ProgressRecord
	calls         []string
	tokens        []string
	meCalls       int
	courseCalls   int
	progressCalls int
	markCalls     int
	progressDelay time.Duration
}

func newFakeAPI(enrolled bool) *fakeAPI {
	user := models.User{ID: "u1", DisplayName: "Sam", Role: "student"}
	if enrolled {
		user.EnrolledCourses = []models.EnrolledCourseRef{{CourseID: "c1"}}
	}
	return &fakeAPI{
		user: user,
		course: models.Course{
			ID:         "c1",
			Title:      "Go Basics",
			Instructor: models.InstructorRef{ID: "inst-1", DisplayName: "Jamie"},
			Content: []models.ContentItem{
				{ID: "a"}, {ID: "b"},
			},
		},
		records: map[string]models.ProgressRecord{},
	}
}

func (f *fakeAPI) Me(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	f.meCalls++
	f.calls = append(f.calls, "me")
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	u := f.user
	return &u, nil
}

func (f *fakeAPI) Course(ctx context.Context, token, courseID string) (*models.Course, error) {
	f.mu.Lock()
	f.courseCalls++
	f.calls = append(f.calls, "course")
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	c := f.course
	return &c, nil
}

func (f *fakeAPI) Progress(ctx context.Context, token, courseID string) (*models.ProgressSnapshot, error) {
	f.mu.Lock()
	f.progressCalls++
	f.calls = append(f.calls, "progress")
	f.tokens = append(f.tokens, token)
	delay := f.progressDelay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	snap := &models.ProgressSnapshot{}
	for _, r := range f.records {
		snap.Records = append(snap.Records, r)
	}
	return snap, nil
}

func (f *fakeAPI) MarkCompleted(ctx context.Context, token, courseID, sectionID, contentID string, payload upstream.CompletionPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	f.calls = append(f.calls, "mark")
	f.tokens = append(f.tokens, token)
	f.records[contentID] = models.ProgressRecord{ContentID: contentID, Completed: payload.Completed, Answer: payload.Answer}
	return nil
}

func TestFetchOrderAndOncePerSession(t *testing.T) {
	api := newFakeAPI(true)
	sess := NewSession(api, "tok", "c1", zap.NewNop())
	defer sess.Close()

	_, _, err := sess.Authorize(context.Background())
	require.NoError(t, err)
	_, _, err = sess.Authorize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, api.meCalls, "identity fetched once per session")
	assert.Equal(t, 1, api.courseCalls, "course fetched once per session")
	require.GreaterOrEqual(t, len(api.calls), 2)
	assert.Equal(t, []string{"me", "course"}, api.calls[:2], "identity resolves before the course is used")
}

func TestProgressRequiresAuthorization(t *testing.T) {
	api := newFakeAPI(false) // not enrolled, not instructor, not admin
	sess := NewSession(api, "tok", "c1", zap.NewNop())
	defer sess.Close()

	_, err := sess.Progress(context.Background())
	var ferr *upstream.ForbiddenAccessError
	require.True(t, errors.As(err, &ferr), "unauthorized viewers never reach the progress fetch")
	assert.Equal(t, 0, api.progressCalls)
}

func TestConcurrentProgressFetchesCollapse(t *testing.T) {
	api := newFakeAPI(true)
	api.progressDelay = 30 * time.Millisecond
	sess := NewSession(api, "tok", "c1", zap.NewNop())
	defer sess.Close()

	// Resolve user/course up front so only the progress fetch is racing.
	_, _, err := sess.Authorize(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sess.Progress(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, api.progressCalls, "overlapping fetches for one resource collapse to one request")
}

func TestMutationTriggersExactlyOneRefetch(t *testing.T) {
	api := newFakeAPI(true)
	sess := NewSession(api, "tok", "c1", zap.NewNop())
	defer sess.Close()

	_, err := sess.Progress(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, api.progressCalls)

	store, err := sess.MarkCompleted(context.Background(), "s1", "a", upstream.CompletionPayload{Completed: true})
	require.NoError(t, err)

	assert.Equal(t, 1, api.markCalls)
	assert.Equal(t, 2, api.progressCalls, "one re-fetch per mutation, no polling")
	assert.True(t, store.IsCompleted("a"))
}

func TestCloseDiscardsInFlightResults(t *testing.T) {
	api := newFakeAPI(true)
	api.progressDelay = 100 * time.Millisecond
	sess := NewSession(api, "tok", "c1", zap.NewNop())

	_, _, err := sess.Authorize(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Progress(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	sess.Close()

	require.Error(t, <-done, "a fetch outstanding at teardown must not deliver state")
	assert.True(t, sess.Closed())
}

func TestClosedSessionRejectsMutations(t *testing.T) {
	api := newFakeAPI(true)
	sess := NewSession(api, "tok", "c1", zap.NewNop())

	_, err := sess.Progress(context.Background())
	require.NoError(t, err)

	sess.Close()
	_, err = sess.MarkCompleted(context.Background(), "s1", "a", upstream.CompletionPayload{Completed: true})
	require.Error(t, err)
	assert.Equal(t, 0, api.markCalls)
}

func TestRegistryReusesLiveSessions(t *testing.T) {
	api := newFakeAPI(true)
	reg := NewRegistry(api, time.Hour, zap.NewNop())

	s1 := reg.Acquire("u1", "tok", "c1")
	s2 := reg.Acquire("u1", "tok", "c1")
	assert.Same(t, s1, s2)

	other := reg.Acquire("u1", "tok", "c2")
	assert.NotSame(t, s1, other)

	reg.Drop("u1", "c1")
	assert.True(t, s1.Closed())
	s3 := reg.Acquire("u1", "tok", "c1")
	assert.NotSame(t, s1, s3)
}

func TestRegistryRefreshesTokenOnReuse(t *testing.T) {
	api := newFakeAPI(true)
	reg := NewRegistry(api, time.Hour, zap.NewNop())

	s1 := reg.Acquire("u1", "token-old", "c1")
	_, _, err := s1.Authorize(context.Background())
	require.NoError(t, err)

	// The viewer re-authenticates; the reused session must carry the new
	// bearer on every later upstream call.
	s2 := reg.Acquire("u1", "token-new", "c1")
	require.Same(t, s1, s2)

	_, err = s2.Progress(context.Background())
	require.NoError(t, err)

	api.mu.Lock()
	last := api.tokens[len(api.tokens)-1]
	api.mu.Unlock()
	assert.Equal(t, "token-new", last)
}

func TestRegistrySweepClosesIdleSessions(t *testing.T) {
	api := newFakeAPI(true)
	reg := NewRegistry(api, time.Nanosecond, zap.NewNop())

	sess := reg.Acquire("u1", "tok", "c1")
	time.Sleep(time.Millisecond)
	reg.Sweep()

	assert.Equal(t, 0, reg.Len())
	assert.True(t, sess.Closed())
}
