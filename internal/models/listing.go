package models

import "time"

// Listing carries the subset of listing data this service needs:
// resolving the message recipient and the title shown in the inbox.
type Listing struct {
	ID        int       `db:"id" json:"id"`
	OwnerID   int       `db:"owner_id" json:"owner_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
