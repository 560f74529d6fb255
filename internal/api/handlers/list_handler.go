package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/catalog"
	"github.com/bousai-navi/backend/internal/llm"
	"github.com/bousai-navi/backend/internal/middleware/auth"
	"github.com/bousai-navi/backend/internal/recommend"
	"github.com/bousai-navi/backend/pkg/logger"
)

type ListHandler struct {
	generator *recommend.Generator
}

func NewListHandler(generator *recommend.Generator) *ListHandler {
	return &ListHandler{generator: generator}
}

// GenerateList returns the grouped product list for the caller's current
// household composition, from cache when one exists.
func (h *ListHandler) GenerateList(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	results, cached, err := h.generator.Generate(c.Context(), userID)
	if err != nil {
		return h.mapError(c, userID, err)
	}

	return c.JSON(fiber.Map{
		"message":        "Product list generated",
		"cached":         cached,
		"groupedResults": results,
	})
}

func (h *ListHandler) mapError(c *fiber.Ctx, userID int64, err error) error {
	switch {
	case errors.Is(err, recommend.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	case errors.Is(err, recommend.ErrInvalidAIOutput):
		logger.Warn("AI keyword output unusable", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not derive search keywords. Please try again.",
		})
	case llm.IsUnavailable(err), errors.Is(err, catalog.ErrUpstreamStatus):
		logger.Error("Upstream dependency failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "An upstream service is unavailable. Please try again later.",
		})
	default:
		logger.Error("Product list generation failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate product list",
		})
	}
}
