package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/apperrors"
	"messaging-service/internal/guard"
	"messaging-service/internal/models"
	"messaging-service/internal/notifications"
	"messaging-service/internal/observability"
	"messaging-service/internal/quota"
	"messaging-service/internal/repositories"
	"messaging-service/internal/ws"
)

const previewMaxChars = 60

// MessageHandler manages listing enquiry endpoints: the authoritative
// send path, the composer guard state, and the inbox.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	listingRepo repositories.ListingRepository
	blockRepo   repositories.BlockRepository
	quota       quota.Oracle
	notifier    notifications.Sink
	hub         *ws.Hub
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	messageRepo repositories.MessageRepository,
	listingRepo repositories.ListingRepository,
	blockRepo repositories.BlockRepository,
	oracle quota.Oracle,
	notifier notifications.Sink,
	hub *ws.Hub,
) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		listingRepo: listingRepo,
		blockRepo:   blockRepo,
		quota:       oracle,
		notifier:    notifier,
		hub:         hub,
	}
}

// SendMessage validates and stores a message to a listing's owner.
// Enforcement order: body bounds, self-send, block relation, quota.
// Local-validation failures never consume quota.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	listingID, err := strconv.Atoi(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": apperrors.KindValidation, "error": "invalid listing id"})
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": apperrors.KindValidation, "error": err.Error()})
		return
	}

	if problems := guard.ValidateBody(req.Body); len(problems) > 0 {
		observability.IncMessageSent("validation")
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":     apperrors.KindValidation,
			"error":    strings.Join(problems, "; "),
			"problems": problems,
		})
		return
	}

	userID := c.GetInt("userID")
	listing, err := h.listingRepo.GetListing(c.Request.Context(), listingID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrListingNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"kind": apperrors.KindUnknown, "error": "listing not found"})
		return
	}

	recipientID := listing.OwnerID
	if recipientID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"kind": apperrors.KindValidation, "error": "cannot message yourself"})
		return
	}

	blocked, err := h.blockRepo.IsBlocked(c.Request.Context(), userID, recipientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"kind": apperrors.KindUnknown, "error": "failed to check block status"})
		return
	}
	if blocked {
		observability.IncMessageSent("blocked")
		c.JSON(http.StatusForbidden, gin.H{"kind": apperrors.KindBlocked, "error": apperrors.ErrBlocked.Error()})
		return
	}

	remaining, claim, err := h.quota.Consume(c.Request.Context(), userID, recipientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateLimited) {
			observability.IncMessageSent("rate_limited")
			c.JSON(http.StatusTooManyRequests, gin.H{"kind": apperrors.KindRateLimited, "error": apperrors.ErrRateLimited.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"kind": apperrors.KindUnknown, "error": "failed to check quota"})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), listingID, userID, recipientID, req.Body)
	if err != nil {
		h.quota.Refund(c.Request.Context(), claim)
		observability.IncMessageSent("error")
		c.JSON(http.StatusInternalServerError, gin.H{"kind": apperrors.KindUnknown, "error": "failed to store message"})
		return
	}

	// Side effects past this point never change the send outcome.
	h.notifier.Enqueue(notifications.Notification{
		MessageID:    msg.ID,
		ListingID:    listing.ID,
		ListingTitle: listing.Title,
		SenderLabel:  senderLabel(c),
		Body:         msg.Body,
		RecipientID:  recipientID,
	})
	if h.hub != nil {
		h.hub.NotifyNewMessage(recipientID, models.InboxEvent{
			Type:         "message",
			MessageID:    msg.ID,
			ListingID:    listing.ID,
			ListingTitle: listing.Title,
			Preview:      previewOf(msg.Body),
		})
	}

	observability.IncMessageSent("success")
	c.JSON(http.StatusCreated, gin.H{"message": msg, "remaining": remaining})
}

// GuardState returns what the composer needs before enabling a send:
// block status and remaining quota for the viewer against the listing
// owner. remaining is null when neither quota source could answer.
func (h *MessageHandler) GuardState(c *gin.Context) {
	listingID, err := strconv.Atoi(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	userID := c.GetInt("userID")
	listing, err := h.listingRepo.GetListing(c.Request.Context(), listingID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrListingNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "listing not found"})
		return
	}

	if listing.OwnerID == userID {
		c.JSON(http.StatusOK, gin.H{
			"self":        true,
			"blocked":     false,
			"remaining":   nil,
			"limit":       h.quota.Limit(),
			"can_message": false,
		})
		return
	}

	blocked, err := h.blockRepo.IsBlocked(c.Request.Context(), userID, listing.OwnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check block status"})
		return
	}

	var remaining *int
	if r, err := h.quota.Remaining(c.Request.Context(), userID, listing.OwnerID); err == nil {
		remaining = &r
	}

	canMessage := !blocked && (remaining == nil || *remaining > 0)
	c.JSON(http.StatusOK, gin.H{
		"self":        false,
		"blocked":     blocked,
		"remaining":   remaining,
		"limit":       h.quota.Limit(),
		"can_message": canMessage,
	})
}

// ListInbox returns the viewer's received messages, newest first.
func (h *MessageHandler) ListInbox(c *gin.Context) {
	userID := c.GetInt("userID")

	entries, err := h.messageRepo.ListInbox(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inbox"})
		return
	}
	if entries == nil {
		entries = []models.InboxEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": entries})
}

// UnreadCount returns the viewer's unread badge count.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := c.GetInt("userID")

	count, err := h.messageRepo.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead sets the read timestamp on the viewer's message. Calling it
// again after success changes nothing.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.messageRepo.MarkRead(c.Request.Context(), messageID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not mark message read"})
		return
	}

	c.Status(http.StatusNoContent)
}

func senderLabel(c *gin.Context) string {
	if label := c.GetString("userLabel"); label != "" {
		return label
	}
	return "A marketplace user"
}

func previewOf(body string) string {
	runes := []rune(body)
	if len(runes) <= previewMaxChars {
		return body
	}
	return string(runes[:previewMaxChars])
}
