package courseValidator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/InkAurora/educblue-sub001/middleware"
)

var validate = validator.New()

// CourseParam validates the :courseId path segment.
func CourseParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := strings.TrimSpace(c.Params("courseId"))
		if courseID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}
		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// ContentParam validates the :contentId path segment. Any identifier form is
// accepted here; resolution happens against the course's content list.
func ContentParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentID := strings.TrimSpace(c.Params("contentId"))
		if contentID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content ID is required!", nil)
		}
		c.Locals("contentID", contentID)
		return c.Next()
	}
}

// SectionParam validates the :sectionId path segment.
func SectionParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sectionID := strings.TrimSpace(c.Params("sectionId"))
		if sectionID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Section ID is required!", nil)
		}
		c.Locals("sectionID", sectionID)
		return c.Next()
	}
}

// CompletionBody is the validated body of the mark-complete endpoint.
type CompletionBody struct {
	Completed *bool  `json:"completed" validate:"required"`
	Answer    string `json:"answer" validate:"omitempty,max=10000"`
}

// MarkComplete validates the completion request body.
func MarkComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CompletionBody)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fe := range err.(validator.ValidationErrors) {
				switch fe.Field() {
				case "Completed":
					errors["completed"] = "Completed flag is required!"
				case "Answer":
					errors["answer"] = "Answer is too long!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		// Completion is one-way: there is no user-facing uncomplete
		// transition, so a false flag is rejected outright.
		if !*reqData.Completed {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content cannot be marked incomplete!", nil)
		}

		c.Locals("validatedCompletion", reqData)
		return c.Next()
	}
}

// AnswerBody is the validated body of the answer-submit endpoint. For
// multiple-choice content the answer is the selected option index in string
// form; for quiz content it is free text.
type AnswerBody struct {
	Answer string `json:"answer" validate:"required,max=10000"`
}

// SubmitAnswer validates the answer request body.
func SubmitAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AnswerBody)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"answer": "Answer is required!",
			})
		}

		c.Locals("validatedAnswer", reqData)
		return c.Next()
	}
}
