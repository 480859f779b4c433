package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingRepository resolves listing metadata for messaging.
type ListingRepository interface {
	GetListing(ctx context.Context, listingID int) (models.Listing, error)
}

// ListingRepo is a sqlx implementation of ListingRepository.
type ListingRepo struct {
	db *sqlx.DB
}

// NewListingRepo constructs a ListingRepo.
func NewListingRepo(db *sqlx.DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// GetListing fetches a listing by id.
func (r *ListingRepo) GetListing(ctx context.Context, listingID int) (models.Listing, error) {
	var listing models.Listing
	err := r.db.GetContext(ctx, &listing, `SELECT id, owner_id, title, created_at FROM listings WHERE id=$1`, listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, ErrListingNotFound
	}
	return listing, err
}
