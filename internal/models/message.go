package models

import (
	"database/sql"
	"time"
)

// Message is an enquiry sent about a listing to its owner.
type Message struct {
	ID          int          `db:"id" json:"id"`
	ListingID   int          `db:"listing_id" json:"listing_id"`
	SenderID    int          `db:"sender_id" json:"sender_id"`
	RecipientID int          `db:"recipient_id" json:"recipient_id"`
	Body        string       `db:"body" json:"body"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	ReadAt      sql.NullTime `db:"read_at" json:"-"`
}

// InboxEntry is a message joined with its listing title for display.
type InboxEntry struct {
	ID           int        `db:"id" json:"id"`
	ListingID    int        `db:"listing_id" json:"listing_id"`
	ListingTitle string     `db:"listing_title" json:"listing_title"`
	SenderID     int        `db:"sender_id" json:"sender_id"`
	Body         string     `db:"body" json:"body"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ReadAt       *time.Time `db:"read_at" json:"read_at,omitempty"`
}

// InboxEvent is broadcasted through websockets when a message arrives.
type InboxEvent struct {
	Type         string `json:"type"`
	MessageID    int    `json:"message_id"`
	ListingID    int    `json:"listing_id"`
	ListingTitle string `json:"listing_title,omitempty"`
	Preview      string `json:"preview,omitempty"`
}
