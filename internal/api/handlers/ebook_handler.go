package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/catalog"
	"github.com/bousai-navi/backend/pkg/logger"
)

const defaultEbookKeyword = "防災"

type EbookHandler struct {
	catalog *catalog.Client
}

func NewEbookHandler(client *catalog.Client) *EbookHandler {
	return &EbookHandler{catalog: client}
}

// SearchEbooks returns disaster-preparedness ebooks, best sellers first.
// Fiction titles matching the blacklist are filtered out upstream.
func (h *EbookHandler) SearchEbooks(c *fiber.Ctx) error {
	keyword := c.Query("keyword", defaultEbookKeyword)

	ebooks, err := h.catalog.SearchEbooks(c.Context(), keyword)
	if err != nil {
		logger.Error("Ebook search failed", zap.String("keyword", keyword), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Ebook search is unavailable. Please try again later.",
		})
	}

	return c.JSON(fiber.Map{
		"ebooks": ebooks,
	})
}
