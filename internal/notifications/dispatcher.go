package notifications

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
)

// Input bounds enforced by the dispatcher itself, independent of the
// send path's own validation.
const (
	maxBodyLen        = 500
	maxTitleLen       = 200
	maxSenderLabelLen = 100
)

const publishTimeout = 10 * time.Second

// RoutingKey is the topic the mailer consumes.
const RoutingKey = "notification.message"

// Notification describes one recipient notification to fan out.
type Notification struct {
	MessageID    int    `json:"message_id"`
	ListingID    int    `json:"listing_id"`
	ListingTitle string `json:"listing_title"`
	SenderLabel  string `json:"sender_label"`
	Body         string `json:"body"`
	RecipientID  int    `json:"recipient_id"`
}

// Sink accepts notifications without exposing delivery outcomes. Send
// paths depend on this so dispatch failures can never surface there.
type Sink interface {
	Enqueue(n Notification)
}

// Validate rejects malformed notifications the same way the remote
// dispatcher would, so bad input never reaches the exchange.
func Validate(n Notification) error {
	if n.MessageID <= 0 || n.RecipientID <= 0 {
		return errors.New("missing message or recipient id")
	}
	if utf8.RuneCountInString(n.Body) > maxBodyLen {
		return fmt.Errorf("body exceeds %d characters", maxBodyLen)
	}
	if utf8.RuneCountInString(n.ListingTitle) > maxTitleLen {
		return fmt.Errorf("listing title exceeds %d characters", maxTitleLen)
	}
	if utf8.RuneCountInString(n.SenderLabel) > maxSenderLabelLen {
		return fmt.Errorf("sender label exceeds %d characters", maxSenderLabelLen)
	}
	return nil
}

// escape sanitizes the free-form fields before they are embedded into
// any rendered output downstream.
func escape(n Notification) Notification {
	n.ListingTitle = html.EscapeString(n.ListingTitle)
	n.SenderLabel = html.EscapeString(n.SenderLabel)
	n.Body = html.EscapeString(n.Body)
	return n
}

// Dispatcher fans notifications out to the mailer exchange from a
// background worker. Enqueue never blocks and never reports errors:
// full queues, validation rejects, and publish failures are logged and
// counted only.
type Dispatcher struct {
	queue     chan Notification
	publisher rabbitmq.Publisher
	wg        sync.WaitGroup
	closeOnce sync.Once
	enqueueMu sync.RWMutex
	closed    bool
}

// NewDispatcher starts the worker goroutine.
func NewDispatcher(publisher rabbitmq.Publisher, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		queue:     make(chan Notification, queueSize),
		publisher: publisher,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue submits a notification. Drops it when the queue is full or
// the dispatcher is closed.
func (d *Dispatcher) Enqueue(n Notification) {
	d.enqueueMu.RLock()
	defer d.enqueueMu.RUnlock()
	if d.closed {
		log.Printf("notification dropped, dispatcher closed: message_id=%d", n.MessageID)
		observability.IncNotification("dropped")
		return
	}
	select {
	case d.queue <- n:
	default:
		log.Printf("notification dropped, queue full: message_id=%d", n.MessageID)
		observability.IncNotification("dropped")
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.enqueueMu.Lock()
		d.closed = true
		d.enqueueMu.Unlock()
		close(d.queue)
		d.wg.Wait()
	})
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	if err := Validate(n); err != nil {
		log.Printf("notification rejected: message_id=%d: %v", n.MessageID, err)
		observability.IncNotification("rejected")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, RoutingKey, escape(n)); err != nil {
		log.Printf("notification publish failed: message_id=%d: %v", n.MessageID, err)
		observability.IncNotification("failed")
		return
	}
	observability.IncNotification("sent")
}
