package shops

import (
	"context"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists tack shops and the shop-wide listing updates.
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

// ForOwner loads the shop owned by ownerID with its owner preloaded.
func (r *Repository) ForOwner(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error) {
	var shop models.TackShop
	if err := r.db.WithContext(ctx).Preload("Owner").Where("owner_id = ?", ownerID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TackShop, error) {
	var shop models.TackShop
	if err := r.db.WithContext(ctx).Preload("Owner").First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByIDs loads shops with owners keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.TackShop, error) {
	out := make(map[uuid.UUID]*models.TackShop, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.TackShop
	if err := r.db.WithContext(ctx).Preload("Owner").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, shop *models.TackShop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.TackShop{}).Where("id = ?", id).Updates(updates).Error
}

// ListingCount counts every listing of the shop regardless of status.
func (r *Repository) ListingCount(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("shop_id = ?", shopID).Count(&n).Error
	return n, err
}

// StatusCounts groups the shop's listings by status.
func (r *Repository) StatusCounts(ctx context.Context, shopID uuid.UUID) (map[enums.ListingStatus]int64, error) {
	var rows []struct {
		Status enums.ListingStatus
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Select("status, COUNT(*) AS n").
		Where("shop_id = ?", shopID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.ListingStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// ListListings pages the shop's listings newest first, optionally by status.
func (r *Repository) ListListings(ctx context.Context, shopID uuid.UUID, status *enums.ListingStatus, limit, offset int) ([]models.Listing, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Listing{}).Where("shop_id = ?", shopID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Listing
	err := q.Session(&gorm.Session{}).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

// OwnedStatuses returns the current status of every id that belongs to the shop.
func (r *Repository) OwnedStatuses(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]enums.ListingStatus, error) {
	var rows []struct {
		ID     uuid.UUID
		Status enums.ListingStatus
	}
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Select("id, status").
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]enums.ListingStatus, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Status
	}
	return out, nil
}

// SetListingStatus applies one status to the given listings of the shop.
// Listings already in that status keep their updated_at, which dates sales.
func (r *Repository) SetListingStatus(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID, status enums.ListingStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("shop_id = ? AND id IN ? AND status <> ?", shopID, ids, status).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// SetPremium flips the shop's premium flag; verified is only ever raised.
func (r *Repository) SetPremium(ctx context.Context, shopID uuid.UUID, premium bool) (bool, error) {
	updates := map[string]any{"is_premium": premium}
	if premium {
		updates["is_verified"] = true
	}
	res := r.db.WithContext(ctx).Model(&models.TackShop{}).Where("id = ?", shopID).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// SetListingsBoosted marks every listing of the shop boosted or not. updated_at
// is left alone so sale dates stay stable.
func (r *Repository) SetListingsBoosted(ctx context.Context, shopID uuid.UUID, boosted bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("shop_id = ?", shopID).
		UpdateColumn("is_boosted", boosted)
	return res.RowsAffected, res.Error
}

// DeleteWithListings removes saves, listings and then the shop. Run inside a transaction.
func (r *Repository) DeleteWithListings(ctx context.Context, shopID uuid.UUID) error {
	conn := r.db.WithContext(ctx)
	listingIDs := conn.Model(&models.Listing{}).Select("id").Where("shop_id = ?", shopID)
	if err := conn.Where("listing_id IN (?)", listingIDs).Delete(&models.SavedListing{}).Error; err != nil {
		return err
	}
	if err := conn.Where("shop_id = ?", shopID).Delete(&models.Listing{}).Error; err != nil {
		return err
	}
	return conn.Where("id = ?", shopID).Delete(&models.TackShop{}).Error
}
