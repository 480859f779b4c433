package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/repositories"
)

// BlockHandler manages the symmetric block relation endpoints.
type BlockHandler struct {
	blockRepo repositories.BlockRepository
}

// NewBlockHandler builds a BlockHandler.
func NewBlockHandler(blockRepo repositories.BlockRepository) *BlockHandler {
	return &BlockHandler{blockRepo: blockRepo}
}

// Status reports whether a block exists between the viewer and the
// target, in either direction. Asking about yourself answers false.
func (h *BlockHandler) Status(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	if targetID == userID {
		c.JSON(http.StatusOK, gin.H{"blocked": false})
		return
	}

	blocked, err := h.blockRepo.IsBlocked(c.Request.Context(), userID, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check block status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked": blocked})
}

// Create blocks the target for both directions. Blocking an already
// blocked pair changes nothing.
func (h *BlockHandler) Create(c *gin.Context) {
	var req struct {
		TargetUserID int    `json:"target_user_id" binding:"required"`
		Reason       string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	err := h.blockRepo.CreateBlock(c.Request.Context(), userID, req.TargetUserID, userID, req.Reason)
	if err != nil {
		if errors.Is(err, repositories.ErrSelfBlock) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot block yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create block"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Remove deletes the block between viewer and target. Removing a block
// that does not exist is a no-op, not an error.
func (h *BlockHandler) Remove(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.blockRepo.RemoveBlock(c.Request.Context(), userID, targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove block"})
		return
	}

	c.Status(http.StatusNoContent)
}
