package analytics

import (
	"context"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SoldRow is a listing sold inside the window.
type SoldRow struct {
	ID        uuid.UUID
	Category  string
	Price     decimal.Decimal
	UpdatedAt time.Time
}

// ViewRow carries the views of one listing and the day it was created.
type ViewRow struct {
	CreatedAt time.Time
	Views     int64
}

// TopRow is a top listing with its save count.
type TopRow struct {
	ID     uuid.UUID
	Title  string
	Price  decimal.Decimal
	Views  int64
	Status enums.ListingStatus
	Saves  int64
}

// Repository runs the per-shop aggregate queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) listings(ctx context.Context, shopID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Listing{}).Where("shop_id = ?", shopID)
}

// CountListings counts the shop's listings, optionally restricted to one status.
func (r *Repository) CountListings(ctx context.Context, shopID uuid.UUID, status *enums.ListingStatus) (int64, error) {
	q := r.listings(ctx, shopID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// SoldSince returns listings marked sold at or after start, using updated_at
// as the sale time.
func (r *Repository) SoldSince(ctx context.Context, shopID uuid.UUID, start time.Time) ([]SoldRow, error) {
	var rows []SoldRow
	err := r.listings(ctx, shopID).
		Select("id, category, price, updated_at").
		Where("status = ? AND updated_at >= ?", enums.ListingStatusSold, start).
		Order("updated_at ASC, id ASC").
		Scan(&rows).Error
	return rows, err
}

// TotalViews sums views over listings created at or after start.
func (r *Repository) TotalViews(ctx context.Context, shopID uuid.UUID, start time.Time) (int64, error) {
	var total int64
	err := r.listings(ctx, shopID).
		Select("COALESCE(SUM(views), 0)").
		Where("created_at >= ?", start).
		Scan(&total).Error
	return total, err
}

// SavesSince counts saves of the shop's listings made at or after start.
func (r *Repository) SavesSince(ctx context.Context, shopID uuid.UUID, start time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.SavedListing{}).
		Joins("JOIN listings ON listings.id = saved_listings.listing_id").
		Where("listings.shop_id = ? AND saved_listings.created_at >= ?", shopID, start).
		Count(&n).Error
	return n, err
}

// ViewRows returns creation time and views for listings created at or after start.
func (r *Repository) ViewRows(ctx context.Context, shopID uuid.UUID, start time.Time) ([]ViewRow, error) {
	var rows []ViewRow
	err := r.listings(ctx, shopID).
		Select("created_at, views").
		Where("created_at >= ?", start).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}

// SaveTimes returns when the shop's listings were saved, at or after start.
func (r *Repository) SaveTimes(ctx context.Context, shopID uuid.UUID, start time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.SavedListing{}).
		Joins("JOIN listings ON listings.id = saved_listings.listing_id").
		Where("listings.shop_id = ? AND saved_listings.created_at >= ?", shopID, start).
		Order("saved_listings.created_at ASC").
		Pluck("saved_listings.created_at", &times).Error
	return times, err
}

// TopListings returns the most viewed listings created at or after start.
func (r *Repository) TopListings(ctx context.Context, shopID uuid.UUID, start time.Time, limit int) ([]TopRow, error) {
	var rows []TopRow
	err := r.listings(ctx, shopID).
		Select("id, title, price, views, status").
		Where("created_at >= ?", start).
		Order("views DESC, id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return rows, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	var counts []struct {
		ListingID uuid.UUID
		N         int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.SavedListing{}).
		Select("listing_id, COUNT(*) AS n").
		Where("listing_id IN ?", ids).
		Group("listing_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byID[c.ListingID] = c.N
	}
	for i := range rows {
		rows[i].Saves = byID[rows[i].ID]
	}
	return rows, nil
}
