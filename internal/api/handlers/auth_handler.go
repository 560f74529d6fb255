package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bousai-navi/backend/internal/middleware/auth"
	"github.com/bousai-navi/backend/internal/storage/models"
	"github.com/bousai-navi/backend/internal/storage/sqlite"
	"github.com/bousai-navi/backend/pkg/logger"
)

type AuthHandler struct {
	db        *sqlite.Client
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(db *sqlite.Client, jwtSecret string, tokenTTLHrs int) *AuthHandler {
	if tokenTTLHrs <= 0 {
		tokenTTLHrs = 24
	}
	return &AuthHandler{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  time.Duration(tokenTTLHrs) * time.Hour,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Adults   int    `json:"adults"`
		Children int    `json:"children"`
		Infants  int    `json:"infants"`
		Elderly  int    `json:"elderly"`
		HasPet   bool   `json:"hasPet"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and password cannot be empty",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}

	userID, err := h.db.CreateUser(c.Context(), req.Username, string(hash), models.HouseholdProfile{
		Adults:   req.Adults,
		Children: req.Children,
		Infants:  req.Infants,
		Elderly:  req.Elderly,
		HasPet:   req.HasPet,
	})
	if err != nil {
		if errors.Is(err, sqlite.ErrDuplicateUsername) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "This username has already been registered",
			})
		}
		logger.Error("Failed to create user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registration successful",
		"userId":  userID,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.db.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		logger.Error("Failed to look up user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Incorrect username or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Incorrect username or password",
		})
	}

	token, err := auth.GenerateToken(h.jwtSecret, h.tokenTTL, user.ID, user.Username)
	if err != nil {
		logger.Error("Failed to issue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
