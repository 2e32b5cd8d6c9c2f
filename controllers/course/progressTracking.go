package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/InkAurora/educblue-sub001/content"
	"github.com/InkAurora/educblue-sub001/middleware"
	"github.com/InkAurora/educblue-sub001/upstream"
	courseValidator "github.com/InkAurora/educblue-sub001/validators/course"
)

// GetProgress returns the viewer's progress snapshot for the course.
func GetProgress(c *fiber.Ctx) error {
	sess, courseID, ok := acquireSession(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	store, err := sess.Progress(c.UserContext())
	if err != nil {
		return respondReadError(c, courseID, err)
	}

	snapshot := store.Snapshot()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"records":    snapshot.Records,
		"percentage": store.Percentage(),
	})
}

// MarkContentComplete records a completion for one content item. The call is
// logically idempotent: completing an already-complete item updates the
// stored record (e.g. a resubmitted answer) instead of duplicating it. The
// requested content id is resolved to its canonical form before the upstream
// write so that positional or slug addressing still lands on one record.
func MarkContentComplete(c *fiber.Ctx) error {
	sess, courseID, ok := acquireSession(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	actx, course, err := sess.Authorize(c.UserContext())
	if err != nil {
		return respondReadError(c, courseID, err)
	}
	if !actx.CanView() {
		return overviewRedirect(c, courseID)
	}

	seq := content.NewSequencer(course, true)
	requestedID, _ := c.Locals("contentID").(string)
	entry, found := seq.Locate(requestedID)
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	reqData, ok := c.Locals("validatedCompletion").(*courseValidator.CompletionBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	sectionID, _ := c.Locals("sectionID").(string)
	store, err := sess.MarkCompleted(c.UserContext(), sectionID, entry.CanonicalID, upstream.CompletionPayload{
		Completed: *reqData.Completed,
		Answer:    reqData.Answer,
	})
	if err != nil {
		return respondMutationError(c, courseID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content marked as completed successfully!", fiber.Map{
		"completed":  store.IsCompleted(entry.CanonicalID),
		"percentage": store.Percentage(),
	})
}
