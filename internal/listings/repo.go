package listings

import (
	"context"

	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filter narrows marketplace browse queries. Zero values disable a clause.
type Filter struct {
	Search     string
	Category   string
	Conditions []enums.ListingCondition
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Status     enums.ListingStatus
}

// Repository exposes listing persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Listing{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		pattern := db.ContainsPattern(f.Search)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if len(f.Conditions) > 0 {
		q = q.Where("condition IN ?", f.Conditions)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	return q
}

// List returns one page of filtered listings in sort order with an id tie-break.
func (r *Repository) List(ctx context.Context, f Filter, sort enums.ListingSort, limit, offset int) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.filtered(ctx, f).
		Order(sort.OrderClause()).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// Count totals the filtered listings.
func (r *Repository) Count(ctx context.Context, f Filter) (int64, error) {
	var total int64
	err := r.filtered(ctx, f).Count(&total).Error
	return total, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindWithShop loads the listing and its shop in one round trip.
func (r *Repository) FindWithShop(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Preload("Shop").First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// IncrementViews bumps the counter atomically in SQL and reports whether the row exists.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	return res.RowsAffected > 0, res.Error
}

// Similar returns active listings in the same category, excluding the listing itself.
func (r *Repository) Similar(ctx context.Context, listing *models.Listing, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("category = ? AND id <> ? AND status = ?", listing.Category, listing.ID, enums.ListingStatusActive).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes the listing's saves and then the listing. Run inside a transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("listing_id = ?", id).Delete(&models.SavedListing{}).Error; err != nil {
		return err
	}
	return conn.Where("id = ?", id).Delete(&models.Listing{}).Error
}

// SavedCounts returns the number of users that saved each listing.
func (r *Repository) SavedCounts(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ListingID uuid.UUID
		N         int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.SavedListing{}).
		Select("listing_id, COUNT(DISTINCT user_id) AS n").
		Where("listing_id IN ?", listingIDs).
		Group("listing_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ListingID] = row.N
	}
	return out, nil
}

// SavedBy reports which of listingIDs userID has saved.
func (r *Repository) SavedBy(ctx context.Context, userID uuid.UUID, listingIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(listingIDs))
	if userID == uuid.Nil || len(listingIDs) == 0 {
		return out, nil
	}
	var saved []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.SavedListing{}).
		Where("user_id = ? AND listing_id IN ?", userID, listingIDs).
		Pluck("listing_id", &saved).Error
	if err != nil {
		return nil, err
	}
	for _, id := range saved {
		out[id] = true
	}
	return out, nil
}

// Save inserts the (user, listing) pair; duplicates surface as unique violations.
func (r *Repository) Save(ctx context.Context, saved *models.SavedListing) error {
	return r.db.WithContext(ctx).Create(saved).Error
}

// Unsave deletes the pair and returns how many rows went away.
func (r *Repository) Unsave(ctx context.Context, userID, listingID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.SavedListing{})
	return res.RowsAffected, res.Error
}
