package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/middleware/auth"
	"github.com/bousai-navi/backend/internal/quiz"
	"github.com/bousai-navi/backend/pkg/logger"
)

type QuizHandler struct {
	generator *quiz.Generator
	sessions  *quiz.SessionStore
	grader    *quiz.Grader
}

func NewQuizHandler(generator *quiz.Generator, sessions *quiz.SessionStore, grader *quiz.Grader) *QuizHandler {
	return &QuizHandler{
		generator: generator,
		sessions:  sessions,
		grader:    grader,
	}
}

// GetQuiz issues a fresh quiz to the caller. The answer keys stay
// server-side; re-requesting replaces any pending quiz.
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	questions, err := h.generator.Generate(c.Context())
	if err != nil {
		logger.Error("Quiz generation aborted", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate quiz",
		})
	}

	h.sessions.Put(userID, questions)

	return c.JSON(fiber.Map{
		"questions": quiz.Issued(questions),
	})
}

// SubmitQuiz grades the caller's pending quiz against the submitted
// answers and credits points.
func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	var req struct {
		Answers []string `json:"answers"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.grader.Grade(c.Context(), userID, req.Answers)
	if err != nil {
		if errors.Is(err, quiz.ErrNoActiveQuiz) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No quiz in progress. Request a quiz first.",
			})
		}
		logger.Error("Quiz grading failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to grade quiz",
		})
	}

	return c.JSON(result)
}
