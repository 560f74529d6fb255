package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/middleware/auth"
	"github.com/bousai-navi/backend/internal/recommend"
	"github.com/bousai-navi/backend/pkg/logger"
)

// WebSocketHandler streams product list generation over a socket so the
// client can show batch-by-batch progress instead of waiting on one long
// request. Authentication happens per message: the upgrade request comes
// from a browser WebSocket API that cannot set an Authorization header, so
// the token rides in the generate message.
type WebSocketHandler struct {
	generator *recommend.Generator
	jwtSecret string
}

func NewWebSocketHandler(generator *recommend.Generator, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		generator: generator,
		jwtSecret: jwtSecret,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type  string `json:"type"`
			Token string `json:"token"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Debug("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "generate" {
			continue
		}

		userID, err := auth.ParseUserID(h.jwtSecret, msg.Token)
		if err != nil {
			logger.Warn("WebSocket auth failed", zap.Error(err))
			h.sendError(c, "Invalid or expired token")
			continue
		}

		if err := h.streamGeneration(c, userID); err != nil {
			logger.Error("Failed to stream generation", zap.Int64("user_id", userID), zap.Error(err))
			h.sendError(c, "Failed to generate product list")
		}
	}
}

func (h *WebSocketHandler) streamGeneration(c *websocket.Conn, userID int64) error {
	ctx := context.Background()

	h.sendStatus(c, "Checking cached lists...")

	progress := func(done, total int) {
		c.WriteJSON(map[string]interface{}{
			"type":  "progress",
			"done":  done,
			"total": total,
		})
	}

	results, cached, err := h.generator.GenerateWithProgress(ctx, userID, progress)
	if err != nil {
		return err
	}

	return c.WriteJSON(map[string]interface{}{
		"type":           "complete",
		"cached":         cached,
		"groupedResults": results,
	})
}

func (h *WebSocketHandler) sendStatus(c *websocket.Conn, content string) {
	c.WriteJSON(map[string]interface{}{
		"type":    "status",
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
