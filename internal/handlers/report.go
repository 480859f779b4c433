package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// ReportHandler accepts moderation reports.
type ReportHandler struct {
	reportRepo repositories.ReportRepository
}

// NewReportHandler builds a ReportHandler.
func NewReportHandler(reportRepo repositories.ReportRepository) *ReportHandler {
	return &ReportHandler{reportRepo: reportRepo}
}

// Create stores a report against a user, a listing, or both.
func (h *ReportHandler) Create(c *gin.Context) {
	var req struct {
		ReportedUserID *int    `json:"reported_user_id"`
		ListingID      *int    `json:"listing_id"`
		Category       string  `json:"category" binding:"required"`
		Reason         string  `json:"reason" binding:"required"`
		Details        *string `json:"details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidReportCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report category"})
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if req.ReportedUserID == nil && req.ListingID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report needs a user or a listing"})
		return
	}

	userID := c.GetInt("userID")
	report, err := h.reportRepo.CreateReport(c.Request.Context(), models.Report{
		ReporterID:     userID,
		ReportedUserID: req.ReportedUserID,
		ListingID:      req.ListingID,
		Category:       req.Category,
		Reason:         req.Reason,
		Details:        req.Details,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})
}
