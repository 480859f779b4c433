package ws

import "time"

// ConnInfo captures identity and request metadata for one inbox
// subscription, attached to its lifecycle events.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
