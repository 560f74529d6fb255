package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/middleware/auth"
	"github.com/bousai-navi/backend/internal/storage/models"
	"github.com/bousai-navi/backend/internal/storage/sqlite"
	"github.com/bousai-navi/backend/pkg/logger"
)

type ProfileHandler struct {
	db *sqlite.Client
}

func NewProfileHandler(db *sqlite.Client) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's account, password hash
// excluded.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	user, err := h.db.GetUserByID(c.Context(), userID)
	if err != nil {
		logger.Error("Failed to load profile", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"adults":   user.Adults,
		"children": user.Children,
		"infants":  user.Infants,
		"elderly":  user.Elderly,
		"hasPet":   user.HasPet,
		"address":  user.Address,
		"points":   user.Points,
	})
}

// UpdateFamilyInfo replaces the household composition. The next list
// request computes a new fingerprint, so a changed composition naturally
// misses the cache.
func (h *ProfileHandler) UpdateFamilyInfo(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	var req struct {
		Adults   int  `json:"adults"`
		Children int  `json:"children"`
		Infants  int  `json:"infants"`
		Elderly  int  `json:"elderly"`
		HasPet   bool `json:"hasPet"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := h.db.UpdateHousehold(c.Context(), userID, models.HouseholdProfile{
		Adults:   req.Adults,
		Children: req.Children,
		Infants:  req.Infants,
		Elderly:  req.Elderly,
		HasPet:   req.HasPet,
	})
	if err != nil {
		logger.Error("Failed to update household", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}

	logger.Info("Household updated", zap.Int64("user_id", userID))

	return c.JSON(fiber.Map{
		"message": "Family information updated",
	})
}
