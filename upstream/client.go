// Package upstream is the resty-based consumer of the EducBlue JSON API.
// This service defines none of these endpoints; it only depends on their
// payload shapes.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/InkAurora/educblue-sub001/models"
)

// CompletionPayload is the body of the progress mutation endpoint.
type CompletionPayload struct {
	Completed bool   `json:"completed"`
	Answer    string `json:"answer,omitempty"`
}

// Client wraps the upstream API with typed errors. All calls are
// bearer-authenticated with the viewer's own token.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// New builds a client with a transport-level timeout; a hung upstream keeps
// the view loading rather than hanging the process.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		log: log,
	}
}

// Me fetches the viewer's identity.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get("/api/users/me")
	if err := c.readError(err, resp, "user", "me"); err != nil {
		return nil, err
	}
	return &user, nil
}

// Course fetches a course with its ordered content or sections.
func (c *Client) Course(ctx context.Context, token, courseID string) (*models.Course, error) {
	var course models.Course
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&course).
		Get("/api/courses/" + courseID)
	if err := c.readError(err, resp, "course", courseID); err != nil {
		return nil, err
	}
	return &course, nil
}

// Progress fetches the viewer's progress snapshot for a course. Both the
// current object shape and the legacy bare-array shape are accepted; decoding
// lives on models.ProgressSnapshot.
func (c *Client) Progress(ctx context.Context, token, courseID string) (*models.ProgressSnapshot, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/api/progress/" + courseID)
	if err := c.readError(err, resp, "progress", courseID); err != nil {
		return nil, err
	}
	var snapshot models.ProgressSnapshot
	if err := json.Unmarshal(resp.Body(), &snapshot); err != nil {
		return nil, &TransientFetchError{Resource: "progress", Err: err}
	}
	return &snapshot, nil
}

// MarkCompleted posts a completion (or an answer resubmission) for one
// content item. The upstream treats it as an upsert, so repeating the call for
// the same content id updates the existing record instead of duplicating it.
func (c *Client) MarkCompleted(ctx context.Context, token, courseID, sectionID, contentID string, payload CompletionPayload) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		Post(fmt.Sprintf("/api/progress/%s/%s/%s", courseID, sectionID, contentID))
	if err != nil {
		return &MutationError{Message: err.Error()}
	}
	if resp.IsError() {
		merr := &MutationError{
			Message:    serverMessage(resp.Body()),
			StatusCode: resp.StatusCode(),
		}
		c.log.Warn("progress mutation rejected",
			zap.String("courseId", courseID),
			zap.String("contentId", contentID),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", merr.Message))
		return merr
	}
	return nil
}

// readError translates transport failures and error statuses on read calls
// into the typed taxonomy. Reads are terminal for the current view and are
// never retried automatically.
func (c *Client) readError(err error, resp *resty.Response, resource, id string) error {
	if err != nil {
		return &TransientFetchError{Resource: resource, Err: err}
	}
	if !resp.IsError() {
		return nil
	}
	switch resp.StatusCode() {
	case 401:
		return &UnauthorizedError{Message: serverMessage(resp.Body())}
	case 403:
		return &ForbiddenAccessError{CourseID: id}
	case 404:
		return &NotFoundError{Resource: resource, ID: id}
	default:
		c.log.Warn("upstream read failed",
			zap.String("resource", resource),
			zap.String("id", id),
			zap.Int("status", resp.StatusCode()))
		return &TransientFetchError{Resource: resource, StatusCode: resp.StatusCode()}
	}
}

// serverMessage extracts the upstream's {"message": ...} field when present.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return ""
}
