package handler

import (
	"context"
	"os"

	"ai-studygen-be/internal/pkg/logger"
	internalWS "ai-studygen-be/internal/websocket"
	"ai-studygen-be/pkg/events"
	pktNats "ai-studygen-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JobEventHandler bridges job lifecycle events to the websocket hub and
// owns the websocket upgrade endpoint.
type JobEventHandler struct {
	subscriber *pktNats.Subscriber
	hub        *internalWS.Hub
	logger     logger.ILogger
}

func NewJobEventHandler(sub *pktNats.Subscriber, hub *internalWS.Hub, log logger.ILogger) *JobEventHandler {
	return &JobEventHandler{
		subscriber: sub,
		hub:        hub,
		logger:     log,
	}
}

// StartEventBridge subscribes to job events on the bus and forwards them to
// the owning user's sockets. Safe to call when NATS is unavailable; the
// bridge simply stays off and jobs are observed by polling alone.
func (h *JobEventHandler) StartEventBridge() {
	if h.subscriber == nil {
		h.logger.Warn("JobEventHandler", "No event subscriber, websocket push disabled", nil)
		return
	}

	forward := func(ctx context.Context, evt events.Event) error {
		payload := evt.Payload()
		userId, _ := payload["user_id"].(string)
		if userId == "" {
			return nil
		}

		update := internalWS.JobUpdate{
			Status: "completed",
		}
		if evt.EventType() == events.TypeJobFailed {
			update.Status = "failed"
		}
		if jobId, ok := payload["job_id"].(string); ok {
			update.JobId = jobId
		}
		if kind, ok := payload["kind"].(string); ok {
			update.Kind = kind
		}
		if fp, ok := payload["fingerprint"].(string); ok {
			update.Fingerprint = fp
		}
		if reason, ok := payload["reason"].(string); ok {
			update.Error = reason
		}

		h.hub.Send(userId, update)
		return nil
	}

	if err := h.subscriber.Subscribe("events."+events.TypeJobCompleted, "ws-job-completed", forward); err != nil {
		h.logger.Error("JobEventHandler", "Failed to subscribe to completion events", map[string]interface{}{"error": err})
	}
	if err := h.subscriber.Subscribe("events."+events.TypeJobFailed, "ws-job-failed", forward); err != nil {
		h.logger.Error("JobEventHandler", "Failed to subscribe to failure events", map[string]interface{}{"error": err})
	}
}

// ServeWs handles websocket requests from the peer.
func (h *JobEventHandler) ServeWs(c *fiber.Ctx) error {
	// 1. Get Token source
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	// 2. Parse JWT with the same secret the REST middleware uses
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		h.logger.Warn("JobEventHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	// 3. Extract UserID from Claim
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("JobEventHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, conn, userID)
			h.logger.Info("JobEventHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
