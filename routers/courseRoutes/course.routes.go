package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "github.com/InkAurora/educblue-sub001/controllers/course"
	"github.com/InkAurora/educblue-sub001/middleware"
	validators "github.com/InkAurora/educblue-sub001/validators/course"
)

// SetupCourseRoutes sets up all viewer-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	viewGroup := app.Group("/view/courses/:courseId", middleware.JWTMiddleware, validators.CourseParam())

	// Course shell and authorization context (the fail-closed landing target)
	viewGroup.Get("/overview", controllers.GetOverview)

	// Content viewing and navigation
	viewGroup.Get("/content/:contentId", validators.ContentParam(), controllers.GetContent)
	viewGroup.Get("/sidebar", controllers.GetSidebar)

	// Progress tracking
	viewGroup.Get("/progress", controllers.GetProgress)
	viewGroup.Post("/sections/:sectionId/content/:contentId/complete",
		validators.SectionParam(), validators.ContentParam(), validators.MarkComplete(), controllers.MarkContentComplete)

	// Quiz and multiple-choice submission
	viewGroup.Post("/sections/:sectionId/content/:contentId/answer",
		validators.SectionParam(), validators.ContentParam(), validators.SubmitAnswer(), controllers.SubmitAnswer)
}
