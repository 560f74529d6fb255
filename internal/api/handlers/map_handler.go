package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/geo"
	"github.com/bousai-navi/backend/pkg/logger"
)

type MapHandler struct {
	geo *geo.Client
}

func NewMapHandler(client *geo.Client) *MapHandler {
	return &MapHandler{geo: client}
}

// GetMapData geocodes the submitted address and returns nearby hotels and
// evacuation POIs.
func (h *MapHandler) GetMapData(c *fiber.Ctx) error {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Address is required",
		})
	}

	data, err := h.geo.MapData(c.Context(), req.Address)
	if err != nil {
		if errors.Is(err, geo.ErrAddressNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Address could not be resolved",
			})
		}
		logger.Error("Map data lookup failed", zap.String("address", req.Address), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch map data",
		})
	}

	return c.JSON(data)
}
