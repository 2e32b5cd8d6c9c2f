package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/InkAurora/educblue-sub001/config"
	controllers "github.com/InkAurora/educblue-sub001/controllers/course"
	courseRoutes "github.com/InkAurora/educblue-sub001/routers/courseRoutes"
	"github.com/InkAurora/educblue-sub001/upstream"
	"github.com/InkAurora/educblue-sub001/viewer"
)

// upstreamState is the fake EducBlue API backing the gateway under test.
type upstreamState struct {
	mu        sync.Mutex
	enrolled  bool
	sectioned bool
	records   []map[string]interface{}
}

func (s *upstreamState) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/users/me":
			enrolled := "[]"
			s.mu.Lock()
			if s.enrolled {
				enrolled = `[{"courseId":"c1"}]`
			}
			s.mu.Unlock()
			fmt.Fprintf(w, `{"id":"u1","displayName":"Sam","role":"student","enrolledCourses":%s}`, enrolled)

		case r.URL.Path == "/api/courses/c1":
			s.mu.Lock()
			sectioned := s.sectioned
			s.mu.Unlock()
			if sectioned {
				fmt.Fprint(w, `{
					"id": "c1",
					"title": "Go Basics",
					"instructor": {"id": "i1", "displayName": "Jamie"},
					"sections": [
						{"id": "s1", "title": "Intro", "content": [
							{"id": "1", "title": "A", "type": "markdown", "content": "alpha"},
							{"id": "2", "title": "B", "type": "video", "videoUrl": "https://v/2"}
						]},
						{"id": "s2", "title": "Practice", "content": [
							{"id": "3", "title": "C", "type": "markdown", "content": "gamma"}
						]}
					]
				}`)
				return
			}
			fmt.Fprint(w, `{
				"id": "c1",
				"title": "Go Basics",
				"instructor": {"id": "i1", "displayName": "Jamie"},
				"content": [
					{"id": "1", "title": "A", "type": "markdown", "content": "alpha"},
					{"id": "2", "title": "B", "type": "video", "videoUrl": "https://v/2"},
					{"id": "3", "title": "C", "type": "multipleChoice", "question": "2+2?",
					 "options": ["1", "2", "4", "8"], "correctOption": 2}
				]
			}`)

		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/progress/c1/"):
			contentID := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			s.mu.Lock()
			replaced := false
			for _, rec := range s.records {
				if rec["contentId"] == contentID {
					rec["completed"] = body["completed"]
					replaced = true
				}
			}
			if !replaced {
				s.records = append(s.records, map[string]interface{}{
					"contentId": contentID,
					"completed": body["completed"],
				})
			}
			s.mu.Unlock()
			fmt.Fprint(w, `{"contentId":"`+contentID+`","completed":true}`)

		case strings.HasPrefix(r.URL.Path, "/api/progress/c1"):
			s.mu.Lock()
			completed := 0
			for _, rec := range s.records {
				if rec["completed"] == true {
					completed++
				}
			}
			records, _ := json.Marshal(s.records)
			s.mu.Unlock()
			fmt.Fprintf(w, `{"progressRecords":%s,"progressPercentage":%d}`, records, completed*100/3)

		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"not found"}`)
		}
	})
}

func newViewerApp(t *testing.T, state *upstreamState) (*fiber.App, func()) {
	t.Helper()
	server := httptest.NewServer(state.handler())

	config.AppConfig = &config.Config{JWTKey: "test-secret"}
	client := upstream.New(server.URL, 5*time.Second, zap.NewNop())
	controllers.Init(viewer.NewRegistry(client, time.Hour, zap.NewNop()), zap.NewNop())

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	return app, server.Close
}

func viewerToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestContentViewScenario(t *testing.T) {
	state := &upstreamState{
		enrolled: true,
		records:  []map[string]interface{}{{"contentId": "1", "completed": true}},
	}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()
	token := viewerToken(t)

	// Viewing B (index 1): previous resolves to A's id, next to C's id.
	status, payload := doJSON(t, app, "GET", "/view/courses/c1/content/2", token, "")
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "1", data["previous"])
	assert.Equal(t, "3", data["next"])
	assert.Equal(t, false, data["completed"])
	assert.Equal(t, float64(33), data["percentage"])

	item := data["content"].(map[string]interface{})
	assert.Equal(t, "B", item["title"])
	assert.Equal(t, "https://v/2", item["videoUrl"])
}

func TestContentAddressableByPosition(t *testing.T) {
	state := &upstreamState{
		enrolled: true,
		records:  []map[string]interface{}{{"contentId": "1", "completed": true}},
	}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()
	token := viewerToken(t)

	// "0" matches no canonical id, so it resolves as a positional index.
	status, payload := doJSON(t, app, "GET", "/view/courses/c1/content/0", token, "")
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	item := data["content"].(map[string]interface{})
	assert.Equal(t, "A", item["title"])
	assert.Equal(t, true, data["completed"])
	assert.Nil(t, data["previous"], "first item has no previous")
}

func TestUnknownContentIs404(t *testing.T) {
	state := &upstreamState{enrolled: true}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()

	status, payload := doJSON(t, app, "GET", "/view/courses/c1/content/ghost", viewerToken(t), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Content not found!", payload["message"])
}

func TestContentFailsClosedToOverview(t *testing.T) {
	state := &upstreamState{enrolled: false}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()

	status, payload := doJSON(t, app, "GET", "/view/courses/c1/content/2", viewerToken(t), "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "/courses/c1", payload["redirect"], "no access means the overview, never the content")
}

func TestOverviewWithoutEnrollment(t *testing.T) {
	state := &upstreamState{enrolled: false}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()

	status, payload := doJSON(t, app, "GET", "/view/courses/c1/overview", viewerToken(t), "")
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	authorization := data["authorization"].(map[string]interface{})
	assert.Equal(t, false, authorization["isEnrolled"])
	assert.Len(t, data["outline"], 3)
}

func TestMarkCompleteRefreshesPercentage(t *testing.T) {
	state := &upstreamState{
		enrolled: true,
		records:  []map[string]interface{}{{"contentId": "1", "completed": true}},
	}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()
	token := viewerToken(t)

	status, payload := doJSON(t, app, "POST", "/view/courses/c1/sections/main/content/2/complete", token,
		`{"completed": true}`)
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, true, data["completed"])
	assert.Equal(t, float64(66), data["percentage"], "percentage comes from the re-fetched snapshot")
}

func TestMarkIncompleteIsRejected(t *testing.T) {
	state := &upstreamState{
		enrolled: true,
		records:  []map[string]interface{}{{"contentId": "2", "completed": true}},
	}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()
	token := viewerToken(t)

	// Completion is one-way: a false flag never reaches the upstream.
	status, payload := doJSON(t, app, "POST", "/view/courses/c1/sections/main/content/2/complete", token,
		`{"completed": false}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Content cannot be marked incomplete!", payload["message"])

	status, payload = doJSON(t, app, "GET", "/view/courses/c1/content/2", token, "")
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, true, data["completed"], "the completed record survives")
}

func TestSidebarSectionCrossing(t *testing.T) {
	state := &upstreamState{enrolled: true, sectioned: true}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()
	token := viewerToken(t)

	lastOfFirstSection := func(payload map[string]interface{}) map[string]interface{} {
		data := payload["data"].(map[string]interface{})
		entries := data["entries"].([]interface{})
		require.Len(t, entries, 3)
		return entries[1].(map[string]interface{})
	}

	// Default: navigation stops at the section boundary.
	status, payload := doJSON(t, app, "GET", "/view/courses/c1/sidebar", token, "")
	require.Equal(t, fiber.StatusOK, status)
	entry := lastOfFirstSection(payload)
	assert.Equal(t, "s1", entry["sectionId"])
	assert.Nil(t, entry["next"], "no crossing unless asked for")

	// across=true lets next step into the following section.
	status, payload = doJSON(t, app, "GET", "/view/courses/c1/sidebar?across=true", token, "")
	require.Equal(t, fiber.StatusOK, status)
	entry = lastOfFirstSection(payload)
	assert.Equal(t, "3", entry["next"])
}

func TestMultipleChoiceGrading(t *testing.T) {
	state := &upstreamState{enrolled: true}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()
	token := viewerToken(t)

	// Wrong answer: no mutation, viewer may retry.
	status, payload := doJSON(t, app, "POST", "/view/courses/c1/sections/main/content/3/answer", token,
		`{"answer": "1"}`)
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, false, data["correct"])
	assert.Equal(t, false, data["completed"])

	// Correct answer completes the item.
	status, payload = doJSON(t, app, "POST", "/view/courses/c1/sections/main/content/3/answer", token,
		`{"answer": "2"}`)
	require.Equal(t, fiber.StatusOK, status)
	data = payload["data"].(map[string]interface{})
	assert.Equal(t, true, data["correct"])
	assert.Equal(t, true, data["completed"])

	// The correct option never leaks through the content view.
	status, payload = doJSON(t, app, "GET", "/view/courses/c1/content/3", token, "")
	require.Equal(t, fiber.StatusOK, status)
	item := payload["data"].(map[string]interface{})["content"].(map[string]interface{})
	_, leaked := item["correctOption"]
	assert.False(t, leaked)
}

func TestUnauthenticatedRequestPreservesPath(t *testing.T) {
	state := &upstreamState{enrolled: true}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()

	status, payload := doJSON(t, app, "GET", "/view/courses/c1/content/2", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "/login", payload["redirect"])
	assert.Equal(t, "/view/courses/c1/content/2", payload["from"])
}

func TestGetProgressEndpoint(t *testing.T) {
	state := &upstreamState{
		enrolled: true,
		records:  []map[string]interface{}{{"contentId": "1", "completed": true}},
	}
	app, cleanup := newViewerApp(t, state)
	defer cleanup()

	status, payload := doJSON(t, app, "GET", "/view/courses/c1/progress", viewerToken(t), "")
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	records := data["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, float64(33), data["percentage"])
}
