package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
)

// InboxWebSocketHandler handles inbox subscription connections.
type InboxWebSocketHandler struct {
	hub       *Hub
	jwtSecret string
}

// NewInboxWebSocketHandler constructs an InboxWebSocketHandler.
func NewInboxWebSocketHandler(hub *Hub, jwtSecret string) *InboxWebSocketHandler {
	return &InboxWebSocketHandler{hub: hub, jwtSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and subscribes the viewer to their
// own inbox. The subscription is keyed by the authenticated user, so a
// sender can never observe their own sends through this channel.
func (h *InboxWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		if q := c.Query("token"); q != "" {
			token = "Bearer " + q
		}
	}

	claims, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	userID := int(claims.UserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(userID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, inboxRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   lifecyclePayload("ws_connect", info, 0, ""),
	}, observability.BuildHeaders(requestID, traceID))

	// Teardown must run exactly once even if the read loop and a
	// broadcast failure race on the same connection.
	var teardown sync.Once
	unsubscribe := func(reason string) {
		teardown.Do(func() {
			h.hub.RemoveClient(userID, conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(ctx, inboxRoutingKey, observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   lifecyclePayload("ws_disconnect", info, time.Since(info.ConnectedAt).Milliseconds(), reason),
			}, observability.BuildHeaders(requestID, traceID))
			conn.Close()
		})
	}

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					_ = observability.PublishEvent(ctx, inboxRoutingKey, observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   lifecyclePayload("ws_error", info, time.Since(info.ConnectedAt).Milliseconds(), err.Error()),
					}, observability.BuildHeaders(requestID, traceID))
				}
				unsubscribe(err.Error())
				return
			}
		}
	}()
}

func (h *InboxWebSocketHandler) validateToken(header string) (*middleware.Claims, error) {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return middleware.ParseToken(h.jwtSecret, header[len(prefix):])
	}
	return middleware.ParseToken(h.jwtSecret, header)
}

func lifecyclePayload(event string, info ConnInfo, durationMs int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "inbox",
			"resource_id": info.UserID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMs,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
