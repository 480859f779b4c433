package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
)

const inboxRoutingKey = "ws_events.inbox"

// deliveredHistory bounds how many recent message ids are remembered
// per connection for duplicate suppression.
const deliveredHistory = 128

// connState holds per-connection delivery bookkeeping. writeMu
// serializes writes; gorilla/websocket allows one concurrent writer
// per connection.
type connState struct {
	writeMu   sync.Mutex
	delivered map[int]bool
	order     []int
}

// Hub maintains active inbox subscriptions, keyed by recipient user id.
type Hub struct {
	rooms    map[int]map[*websocket.Conn]bool
	connInfo map[int]map[*websocket.Conn]ConnInfo
	states   map[*websocket.Conn]*connState
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[int]map[*websocket.Conn]bool),
		connInfo: make(map[int]map[*websocket.Conn]ConnInfo),
		states:   make(map[*websocket.Conn]*connState),
	}
}

// AddClient registers a websocket connection for a recipient.
func (h *Hub) AddClient(userID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[userID]; !ok {
		h.rooms[userID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[userID][conn] = true
	if _, ok := h.connInfo[userID]; !ok {
		h.connInfo[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[userID][conn] = info
}

// RemoveClient removes a connection. Safe to call more than once for
// the same connection.
func (h *Hub) RemoveClient(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, userID)
		}
	}
	if infos, ok := h.connInfo[userID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, userID)
		}
	}
	delete(h.states, conn)
}

// NotifyNewMessage delivers an inbox event to every open session of the
// recipient. Each connection sees a given message at most once.
func (h *Hub) NotifyNewMessage(recipientID int, event models.InboxEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[recipientID]))
	for conn := range h.rooms[recipientID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if !h.shouldDeliver(conn, event.MessageID) {
			continue
		}
		st := h.stateFor(conn)
		st.writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, payload)
		st.writeMu.Unlock()
		if err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishWSError(recipientID, conn, err)
			h.RemoveClient(recipientID, conn)
		}
	}
}

func (h *Hub) stateFor(conn *websocket.Conn) *connState {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := h.states[conn]
	if st == nil {
		st = &connState{delivered: make(map[int]bool)}
		h.states[conn] = st
	}
	return st
}

// shouldDeliver records the delivery and returns false if this exact
// message already reached this connection. Distinct ids always pass,
// in whatever order concurrent sends broadcast them.
func (h *Hub) shouldDeliver(conn *websocket.Conn, messageID int) bool {
	st := h.stateFor(conn)

	h.mu.Lock()
	defer h.mu.Unlock()
	if st.delivered[messageID] {
		return false
	}
	st.delivered[messageID] = true
	st.order = append(st.order, messageID)
	if len(st.order) > deliveredHistory {
		delete(st.delivered, st.order[0])
		st.order = st.order[1:]
	}
	return true
}

func (h *Hub) publishWSError(userID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(userID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "inbox",
			"resource_id": userID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), inboxRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(userID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[userID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
