package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/InkAurora/educblue-sub001/content"
	"github.com/InkAurora/educblue-sub001/middleware"
	"github.com/InkAurora/educblue-sub001/models"
	"github.com/InkAurora/educblue-sub001/upstream"
	courseValidator "github.com/InkAurora/educblue-sub001/validators/course"
)

// SubmitAnswer handles quiz and multiple-choice submissions. Quiz answers
// are free text and always complete the item through the idempotent
// mark-complete path. Multiple-choice answers are graded against the
// item's correct option; only a correct selection completes the item and an
// incorrect one mutates nothing.
func SubmitAnswer(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedAnswer").(*courseValidator.AnswerBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	sectionID, _ := c.Locals("sectionID").(string)

	switch entry.Item.Type {
	case models.ContentTypeQuiz:
		store, err := sess.MarkCompleted(c.UserContext(), sectionID, entry.CanonicalID, upstream.CompletionPayload{
			Completed: true,
			Answer:    reqData.Answer,
		})
		if err != nil {
			return respondMutationError(c, courseID, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer submitted successfully!", fiber.Map{
			"completed":  store.IsCompleted(entry.CanonicalID),
			"percentage": store.Percentage(),
		})

	case models.ContentTypeMultipleChoice:
		if entry.Item.CorrectOption == nil || len(entry.Item.Options) != 4 {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "This question is not answerable!", nil)
		}
		selected, err := strconv.Atoi(reqData.Answer)
		if err != nil || selected < 0 || selected > 3 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Selected option must be between 0 and 3!", nil)
		}

		if selected != *entry.Item.CorrectOption {
			// Wrong answers never touch progress; the viewer may retry.
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer submitted!", fiber.Map{
				"correct":   false,
				"completed": false,
			})
		}

		store, err := sess.MarkCompleted(c.UserContext(), sectionID, entry.CanonicalID, upstream.CompletionPayload{
			Completed: true,
			Answer:    reqData.Answer,
		})
		if err != nil {
			return respondMutationError(c, courseID, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer submitted!", fiber.Map{
			"correct":    true,
			"completed":  store.IsCompleted(entry.CanonicalID),
			"percentage": store.Percentage(),
		})

	default:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This content does not accept answers!", nil)
	}
}
