package models

import "time"

// Report categories. A report targets a user, a listing, or both.
const (
	ReportCategoryFake          = "fake"
	ReportCategorySpam          = "spam"
	ReportCategoryInappropriate = "inappropriate"
	ReportCategoryPricing       = "pricing"
	ReportCategoryHarassment    = "harassment"
	ReportCategoryOther         = "other"
)

// ValidReportCategory reports whether category is a known value.
func ValidReportCategory(category string) bool {
	switch category {
	case ReportCategoryFake, ReportCategorySpam, ReportCategoryInappropriate,
		ReportCategoryPricing, ReportCategoryHarassment, ReportCategoryOther:
		return true
	}
	return false
}

// Report is a moderation report. Write-only from the API; moderators
// review them out-of-band.
type Report struct {
	ID             int       `db:"id" json:"id"`
	ReporterID     int       `db:"reporter_id" json:"reporter_id"`
	ReportedUserID *int      `db:"reported_user_id" json:"reported_user_id,omitempty"`
	ListingID      *int      `db:"listing_id" json:"listing_id,omitempty"`
	Category       string    `db:"category" json:"category"`
	Reason         string    `db:"reason" json:"reason"`
	Details        *string   `db:"details" json:"details,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
