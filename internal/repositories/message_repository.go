package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for listing messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, listingID, senderID, recipientID int, body string) (models.Message, error)
	ListInbox(ctx context.Context, recipientID int) ([]models.InboxEntry, error)
	MarkRead(ctx context.Context, messageID int, recipientID int) error
	UnreadCount(ctx context.Context, recipientID int) (int, error)
	CountSentToday(ctx context.Context, senderID, recipientID int) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message about a listing.
func (r *MessageRepo) CreateMessage(ctx context.Context, listingID, senderID, recipientID int, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (listing_id, sender_id, recipient_id, body) VALUES ($1, $2, $3, $4) RETURNING id, listing_id, sender_id, recipient_id, body, created_at, read_at`, listingID, senderID, recipientID, body).
		Scan(&msg.ID, &msg.ListingID, &msg.SenderID, &msg.RecipientID, &msg.Body, &msg.CreatedAt, &msg.ReadAt)
	return msg, err
}

// ListInbox returns the recipient's messages newest-first with the
// listing title attached. Removed listings fall back to a placeholder.
func (r *MessageRepo) ListInbox(ctx context.Context, recipientID int) ([]models.InboxEntry, error) {
	query := `SELECT m.id, m.listing_id, COALESCE(l.title, 'Unknown Listing') AS listing_title,
            m.sender_id, m.body, m.created_at, m.read_at
        FROM messages m
        LEFT JOIN listings l ON l.id = m.listing_id
        WHERE m.recipient_id=$1
        ORDER BY m.created_at DESC`
	var entries []models.InboxEntry
	err := r.db.SelectContext(ctx, &entries, query, recipientID)
	return entries, err
}

// MarkRead sets read_at once. Re-marking an already-read message is a
// no-op, so read_at keeps its first value. Only the recipient's own
// rows qualify.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID int, recipientID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read_at = NOW() WHERE id=$1 AND recipient_id=$2 AND read_at IS NULL`, messageID, recipientID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		// Either already read (fine) or not the recipient's message.
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM messages WHERE id=$1 AND recipient_id=$2)`, messageID, recipientID); err != nil {
			return err
		}
		if !exists {
			return ErrMessageNotFound
		}
	}
	return nil
}

// UnreadCount counts the recipient's unread messages.
func (r *MessageRepo) UnreadCount(ctx context.Context, recipientID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE recipient_id=$1 AND read_at IS NULL`, recipientID)
	return count, err
}

// CountSentToday counts messages from sender to recipient within the
// current UTC calendar day.
func (r *MessageRepo) CountSentToday(ctx context.Context, senderID, recipientID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages
        WHERE sender_id=$1 AND recipient_id=$2
        AND created_at >= date_trunc('day', now() AT TIME ZONE 'utc') AT TIME ZONE 'utc'`, senderID, recipientID)
	return count, err
}
