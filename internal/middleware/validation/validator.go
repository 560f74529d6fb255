package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]{1,64}$`)

type Config struct {
	MaxHouseholdCount int
	MaxAddressLength  int
	Logger            *zap.Logger
}

// Middleware bounds-checks the mutable user inputs: registration payloads
// and household updates. Composition counts must be small non-negative
// integers, since they are interpolated into the LLM prompt.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxHouseholdCount == 0 {
		cfg.MaxHouseholdCount = 20
	}
	if cfg.MaxAddressLength == 0 {
		cfg.MaxAddressLength = 200
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()

		if c.Method() == fiber.MethodPost && strings.HasSuffix(path, "/register") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "Invalid JSON format")
			}

			username, ok := req["username"].(string)
			if !ok || !usernamePattern.MatchString(username) {
				return badRequest(c, "Invalid username")
			}

			password, ok := req["password"].(string)
			if !ok || len(password) < 8 || len(password) > 128 {
				return badRequest(c, "Password must be 8-128 characters")
			}

			if msg := validateCounts(req, cfg.MaxHouseholdCount); msg != "" {
				cfg.Logger.Warn("Invalid household payload",
					zap.String("ip", c.IP()),
					zap.String("reason", msg),
				)
				return badRequest(c, msg)
			}
		}

		if c.Method() == fiber.MethodPut && strings.HasSuffix(path, "/family-info") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "Invalid JSON format")
			}

			if msg := validateCounts(req, cfg.MaxHouseholdCount); msg != "" {
				return badRequest(c, msg)
			}
		}

		if c.Method() == fiber.MethodPost && strings.HasSuffix(path, "/map-data") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "Invalid JSON format")
			}

			address, ok := req["address"].(string)
			if !ok || address == "" || len(address) > cfg.MaxAddressLength {
				return badRequest(c, "Invalid address")
			}
		}

		return c.Next()
	}
}

func validateCounts(req map[string]interface{}, max int) string {
	for _, field := range []string{"adults", "children", "infants", "elderly"} {
		v, ok := req[field]
		if !ok {
			continue
		}
		n, ok := v.(float64)
		if !ok || n != float64(int(n)) || n < 0 || n > float64(max) {
			return "Household counts must be non-negative integers"
		}
	}
	if v, ok := req["hasPet"]; ok {
		if _, ok := v.(bool); !ok {
			return "hasPet must be a boolean"
		}
	}
	return ""
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
