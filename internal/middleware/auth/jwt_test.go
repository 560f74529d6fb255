package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/protected", Middleware(secret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": UserID(c)})
	})
	return app
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := GenerateToken(testSecret, time.Hour, 42, "taro")
	require.NoError(t, err)

	app := testApp(testSecret)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareMissingToken(t *testing.T) {
	app := testApp(testSecret)
	req := httptest.NewRequest("GET", "/protected", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("other-secret", time.Hour, 42, "taro")
	require.NoError(t, err)

	app := testApp(testSecret)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken(testSecret, -time.Minute, 42, "taro")
	require.NoError(t, err)

	app := testApp(testSecret)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestParseUserID(t *testing.T) {
	token, err := GenerateToken(testSecret, time.Hour, 7, "hanako")
	require.NoError(t, err)

	userID, err := ParseUserID(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	_, err = ParseUserID("wrong-secret", token)
	assert.Error(t, err)
}
