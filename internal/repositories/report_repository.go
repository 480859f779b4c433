package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// ReportRepository persists moderation reports. Write-only surface.
type ReportRepository interface {
	CreateReport(ctx context.Context, report models.Report) (models.Report, error)
}

// ReportRepo is a sqlx implementation of ReportRepository.
type ReportRepo struct {
	db *sqlx.DB
}

// NewReportRepo constructs a ReportRepo.
func NewReportRepo(db *sqlx.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// CreateReport stores a report.
func (r *ReportRepo) CreateReport(ctx context.Context, report models.Report) (models.Report, error) {
	err := r.db.QueryRowxContext(ctx, `INSERT INTO reports (reporter_id, reported_user_id, listing_id, category, reason, details)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		report.ReporterID, report.ReportedUserID, report.ListingID, report.Category, report.Reason, report.Details).
		Scan(&report.ID, &report.CreatedAt)
	return report, err
}
