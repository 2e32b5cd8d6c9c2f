package upstream

import "fmt"

// NotFoundError reports an unresolvable resource. Terminal for the current
// view; never retried.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// UnauthorizedError reports a rejected or missing credential (401 upstream).
// The caller clears stored credentials and redirects to login.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// ForbiddenAccessError reports that authorization evaluated to no access.
// The caller redirects to the course overview.
type ForbiddenAccessError struct {
	CourseID string
}

func (e *ForbiddenAccessError) Error() string {
	return fmt.Sprintf("access to course %q denied", e.CourseID)
}

// TransientFetchError wraps any other network/server failure on a read.
// Surfaced as a generic load failure; manual retry only.
type TransientFetchError struct {
	Resource   string
	StatusCode int
	Err        error
}

func (e *TransientFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("fetching %s: upstream returned %d", e.Resource, e.StatusCode)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// MutationError reports a failed markCompleted/answer submit. Prior state is
// preserved by the store; the UI stays interactive and may retry.
type MutationError struct {
	Message    string
	StatusCode int
}

func (e *MutationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mutation failed with status %d", e.StatusCode)
	}
	return e.Message
}

// friendlyMessages maps known server messages to user-facing text.
var friendlyMessages = map[string]string{
	"Invalid content ID format":     "This content link looks broken. Please open the item from the course menu.",
	"Content not found":             "That content item no longer exists in this course.",
	"User not enrolled in course":   "You need to enroll in this course before tracking progress.",
	"Progress record update failed": "Your progress could not be saved. Please try again.",
}

// Friendly returns user-facing text for a mutation failure, falling back to a
// generic message for unrecognized server output.
func (e *MutationError) Friendly() string {
	if msg, ok := friendlyMessages[e.Message]; ok {
		return msg
	}
	return "Something went wrong while saving your progress. Please try again."
}
