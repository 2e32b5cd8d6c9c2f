package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/InkAurora/educblue-sub001/content"
	"github.com/InkAurora/educblue-sub001/middleware"
)

// GetOverview returns the course shell and the viewer's authorization
// context. This is the landing target for viewers without content access,
// so it never requires enrollment; progress is attached only when the viewer
// may actually see content.
func GetOverview(c *fiber.Ctx) error {
	sess, courseID, ok := acquireSession(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	actx, course, err := sess.Authorize(c.UserContext())
	if err != nil {
		return respondReadError(c, courseID, err)
	}

	entries := content.Flatten(course)
	outline := make([]fiber.Map, len(entries))
	for i, e := range entries {
		outline[i] = fiber.Map{
			"id":        e.CanonicalID,
			"title":     e.Item.Title,
			"type":      e.Item.Type,
			"sectionId": e.SectionID,
		}
	}

	payload := fiber.Map{
		"course": fiber.Map{
			"id":         course.Key(),
			"title":      course.Title,
			"instructor": course.Instructor,
		},
		"outline":       outline,
		"authorization": actx,
	}

	if actx.CanView() {
		if store, err := sess.Progress(c.UserContext()); err == nil {
			payload["percentage"] = store.Percentage()
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course overview fetched successfully!", payload)
}
