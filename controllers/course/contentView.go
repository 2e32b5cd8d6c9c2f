package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/InkAurora/educblue-sub001/content"
	"github.com/InkAurora/educblue-sub001/middleware"
	"github.com/InkAurora/educblue-sub001/models"
)

// contentPayload is the sanitized content item sent to viewers. The correct
// option of a multiple-choice item never leaves the gateway.
type contentPayload struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	VideoURL string   `json:"videoUrl,omitempty"`
	Content  string   `json:"content,omitempty"`
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
}

func sanitizeContent(entry content.Entry) contentPayload {
	item := entry.Item
	return contentPayload{
		ID:       entry.CanonicalID,
		Title:    item.Title,
		Type:     item.Type,
		VideoURL: item.VideoURL,
		Content:  item.Content,
		Question: item.Question,
		Options:  item.Options,
	}
}

// GetContent resolves one content item and returns it together with the
// viewer's completion state, the aggregate percentage, and previous/next
// navigation targets. The requested id may be a stable id, a Mongo-style
// _id, a slug-index fallback, a placeholder, or a bare positional integer.
func GetContent(c *fiber.Ctx) error {
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

	store, err := sess.Progress(c.UserContext())
	if err != nil {
		return respondReadError(c, courseID, err)
	}

	// across selects whether previous/next run through section boundaries
	// (the mobile sidebar does, the single-list view does not).
	seq := content.NewSequencer(course, c.QueryBool("across"))
	requestedID, _ := c.Locals("contentID").(string)
	entry, found := seq.Locate(requestedID)
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	var previous, next *string
	if id, ok := seq.Previous(entry.Index); ok {
		previous = &id
	}
	if id, ok := seq.Next(entry.Index); ok {
		next = &id
	}

	payload := fiber.Map{
		"content":       sanitizeContent(entry),
		"index":         entry.Index,
		"sectionId":     entry.SectionID,
		"previous":      previous,
		"next":          next,
		"completed":     store.IsCompleted(entry.CanonicalID),
		"percentage":    store.Percentage(),
		"authorization": actx,
	}
	if entry.Item.Type == models.ContentTypeQuiz || entry.Item.Type == models.ContentTypeMultipleChoice {
		if answer, ok := store.Answer(entry.CanonicalID); ok {
			payload["answer"] = answer
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content fetched successfully!", payload)
}

// GetSidebar returns the ordered content list with canonical ids, per-item
// completion, and previous/next targets under the crossing mode selected by
// the across query flag.
func GetSidebar(c *fiber.Ctx) error {
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

	store, err := sess.Progress(c.UserContext())
	if err != nil {
		return respondReadError(c, courseID, err)
	}

	seq := content.NewSequencer(course, c.QueryBool("across"))
	entries := seq.Entries()
	items := make([]fiber.Map, len(entries))
	for i, e := range entries {
		var previous, next *string
		if id, ok := seq.Previous(e.Index); ok {
			previous = &id
		}
		if id, ok := seq.Next(e.Index); ok {
			next = &id
		}
		items[i] = fiber.Map{
			"id":        e.CanonicalID,
			"title":     e.Item.Title,
			"type":      e.Item.Type,
			"index":     e.Index,
			"sectionId": e.SectionID,
			"previous":  previous,
			"next":      next,
			"completed": store.IsCompleted(e.CanonicalID),
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sidebar fetched successfully!", fiber.Map{
		"entries":    items,
		"percentage": store.Percentage(),
	})
}
