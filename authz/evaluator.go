// Package authz decides whether a viewer may see course content. Evaluation
// is pure: it operates on already-fetched user and course snapshots and is
// recomputed for every (user, course) pair, never cached across sessions.
package authz

import (
	"github.com/InkAurora/educblue-sub001/models"
)

// Context is the authorization outcome for one (user, course) pair.
type Context struct {
	IsEnrolled   bool `json:"isEnrolled"`
	IsInstructor bool `json:"isInstructor"`
	IsAdmin      bool `json:"isAdmin"`

	// NameMatchOnly flags that IsInstructor holds solely because the display
	// name matched while the id did not. Callers should log it: two
	// instructors can legitimately share a name.
	NameMatchOnly bool `json:"-"`
}

// CanView reports whether content access is permitted. Access fails closed:
// anything not affirmatively enrolled, instructing, or admin is denied and
// should be redirected to the course overview.
func (c Context) CanView() bool {
	return c.IsEnrolled || c.IsInstructor || c.IsAdmin
}

// Evaluate derives the authorization context for user and course.
func Evaluate(user *models.User, course *models.Course) Context {
	ctx := Context{}
	if user == nil || course == nil {
		return ctx
	}

	ctx.IsAdmin = user.Role == "admin"

	idMatch := user.ID != "" && user.ID == course.Instructor.ID
	nameMatch := user.DisplayName != "" &&
		(user.DisplayName == course.Instructor.DisplayName ||
			user.DisplayName == course.Instructor.Raw)
	ctx.IsInstructor = idMatch || nameMatch
	ctx.NameMatchOnly = nameMatch && !idMatch

	courseID := course.Key()
	for _, ref := range user.EnrolledCourses {
		if ref.CourseID != "" && ref.CourseID == courseID {
			ctx.IsEnrolled = true
			break
		}
	}
	return ctx
}
