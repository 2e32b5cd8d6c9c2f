package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/InkAurora/educblue-sub001/middleware"
	"github.com/InkAurora/educblue-sub001/upstream"
	"github.com/InkAurora/educblue-sub001/viewer"
)

// Shared controller dependencies, wired once from main.
var (
	Sessions *viewer.Registry
	Log      *zap.Logger
)

// Init wires the controller package with its session registry and logger.
func Init(registry *viewer.Registry, log *zap.Logger) {
	Sessions = registry
	Log = log
}

// acquireSession resolves the viewing session for the authenticated request.
func acquireSession(c *fiber.Ctx) (*viewer.Session, string, bool) {
	userKey, ok := c.Locals("userKey").(string)
	if !ok {
		return nil, "", false
	}
	token, ok := c.Locals("token").(string)
	if !ok {
		return nil, "", false
	}
	courseID, ok := c.Locals("courseID").(string)
	if !ok {
		return nil, "", false
	}
	return Sessions.Acquire(userKey, token, courseID), courseID, true
}

// respondReadError maps the typed read-error taxonomy onto HTTP responses.
// Read failures are terminal for the current view; nothing is retried here.
func respondReadError(c *fiber.Ctx, courseID string, err error) error {
	var unauthorized *upstream.UnauthorizedError
	if errors.As(err, &unauthorized) {
		return middleware.LoginRedirect(c, "Your session has expired. Please log in again.")
	}

	var forbidden *upstream.ForbiddenAccessError
	if errors.As(err, &forbidden) {
		return overviewRedirect(c, courseID)
	}

	var notFound *upstream.NotFoundError
	if errors.As(err, &notFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	var transient *upstream.TransientFetchError
	if errors.As(err, &transient) {
		Log.Warn("upstream fetch failed", zap.String("courseId", courseID), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to load course data. Please try again.", nil)
	}

	Log.Error("unexpected view error", zap.String("courseId", courseID), zap.Error(err))
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}

// respondMutationError keeps the view interactive: the client may retry the
// same action with the friendly message shown.
func respondMutationError(c *fiber.Ctx, courseID string, err error) error {
	var merr *upstream.MutationError
	if errors.As(err, &merr) {
		status := fiber.StatusBadGateway
		if merr.StatusCode >= 400 && merr.StatusCode < 500 {
			status = merr.StatusCode
		}
		return middleware.JsonResponse(c, status, false, merr.Friendly(), nil)
	}
	return respondReadError(c, courseID, err)
}

// overviewRedirect is the fail-closed answer for viewers without content
// access: back to the course overview, never the content itself.
func overviewRedirect(c *fiber.Ctx, courseID string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"status":   false,
		"message":  "You do not have access to this course's content.",
		"redirect": "/courses/" + courseID,
	})
}
