package shops

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shashankphatkure/equico-app/internal/media"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	shopListingsDefaultLimit = 20
	shopNotFoundMessage      = "Shop not found"
)

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type savedCounter interface {
	SavedCounts(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type uploader interface {
	Upload(ctx context.Context, folder media.Folder, file media.File) (string, error)
	RemoveQuietly(ctx context.Context, urls []string)
}

// ShopView is a shop with its owner summary and listing total.
type ShopView struct {
	models.TackShop
	Owner        *models.UserSummary `json:"owner"`
	ListingCount int64               `json:"listingCount"`
}

// UpdateInput is the multipart shop edit; nil fields are untouched.
type UpdateInput struct {
	Name         *string
	Description  *string
	ProfileImage *media.File
}

// ListingsParams filters the owner's listing table.
type ListingsParams struct {
	Status *enums.ListingStatus
	Page   int
	Limit  int
}

// ShopListing is a listing row in the owner's table.
type ShopListing struct {
	models.Listing
	SavedCount int64 `json:"savedCount"`
}

// StatusCounts always carries every status key.
type StatusCounts struct {
	Active   int64 `json:"active"`
	Sold     int64 `json:"sold"`
	Archived int64 `json:"archived"`
}

type ListingsResult struct {
	Listings []ShopListing `json:"listings"`
	Total    int64         `json:"total"`
	Pages    int           `json:"pages"`
	Counts   StatusCounts  `json:"counts"`
}

// BulkResult reports how many listings a bulk action touched.
type BulkResult struct {
	Updated int64 `json:"updated"`
}

type Service interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*ShopView, error)
	Ensure(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error)
	ForOwner(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error)
	Update(ctx context.Context, ownerID uuid.UUID, input UpdateInput) (*ShopView, error)
	Delete(ctx context.Context, ownerID uuid.UUID) error
	Listings(ctx context.Context, ownerID uuid.UUID, params ListingsParams) (*ListingsResult, error)
	BulkAction(ctx context.Context, ownerID uuid.UUID, action enums.BulkAction, ids []uuid.UUID) (*BulkResult, error)
}

type ServiceParams struct {
	DB       db.TxRunner
	Repo     *Repository
	Users    userLookup
	Saves    savedCounter
	Uploader uploader
}

type service struct {
	tx       db.TxRunner
	repo     *Repository
	users    userLookup
	saves    savedCounter
	uploader uploader
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Saves == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "saved listings counter required")
	}
	if params.Uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media uploader required")
	}
	return &service{
		tx:       params.DB,
		repo:     params.Repo,
		users:    params.Users,
		saves:    params.Saves,
		uploader: params.Uploader,
	}, nil
}

func (s *service) ForOwner(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error) {
	shop, err := s.repo.ForOwner(ctx, ownerID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, shopNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop, nil
}

// Ensure returns the owner's shop, creating "<name>'s Tack Shop" on first use.
func (s *service) Ensure(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error) {
	shop, err := s.repo.ForOwner(ctx, ownerID)
	if err == nil {
		return shop, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop owner")
	}

	created := &models.TackShop{OwnerID: ownerID, Name: fmt.Sprintf("%s's Tack Shop", owner.Name)}
	if err := s.repo.Create(ctx, created); err != nil {
		if db.IsUniqueViolation(err, "tack_shops_owner_id_key") {
			// a concurrent request won the race
			return s.ForOwner(ctx, ownerID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	created.Owner = owner
	return created, nil
}

func (s *service) Get(ctx context.Context, ownerID uuid.UUID) (*ShopView, error) {
	shop, err := s.Ensure(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, shop)
}

func (s *service) Update(ctx context.Context, ownerID uuid.UUID, input UpdateInput) (*ShopView, error) {
	shop, err := s.ForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}

	var uploaded string
	if input.ProfileImage != nil {
		url, err := s.uploader.Upload(ctx, media.FolderShops, *input.ProfileImage)
		if err != nil {
			return nil, err
		}
		uploaded = url
		updates["profile_image"] = url
	}

	if err := s.repo.Update(ctx, shop.ID, updates); err != nil {
		if uploaded != "" {
			s.uploader.RemoveQuietly(ctx, []string{uploaded})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop")
	}

	fresh, err := s.repo.FindByID(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload shop")
	}
	return s.view(ctx, fresh)
}

func (s *service) Delete(ctx context.Context, ownerID uuid.UUID) error {
	shop, err := s.ForOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteWithListings(ctx, shop.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shop")
	}
	return nil
}

func (s *service) Listings(ctx context.Context, ownerID uuid.UUID, params ListingsParams) (*ListingsResult, error) {
	shop, err := s.ForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	page := pagination.New(params.Page, params.Limit, shopListingsDefaultLimit)
	rows, total, err := s.repo.ListListings(ctx, shop.ID, params.Status, page.Limit, page.Offset())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop listings")
	}
	counts, err := s.repo.StatusCounts(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count shop listings")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.ID)
	}
	saved, err := s.saves.SavedCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count saves")
	}

	listings := make([]ShopListing, 0, len(rows))
	for _, l := range rows {
		listings = append(listings, ShopListing{Listing: l, SavedCount: saved[l.ID]})
	}
	return &ListingsResult{
		Listings: listings,
		Total:    total,
		Pages:    page.Pages(total),
		Counts: StatusCounts{
			Active:   counts[enums.ListingStatusActive],
			Sold:     counts[enums.ListingStatusSold],
			Archived: counts[enums.ListingStatusArchived],
		},
	}, nil
}

// BulkAction moves every id to the action's target status in one transaction.
// Nothing changes unless all ids belong to the caller's shop and every
// transition is allowed.
func (s *service) BulkAction(ctx context.Context, ownerID uuid.UUID, action enums.BulkAction, ids []uuid.UUID) (*BulkResult, error) {
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid action")
	}
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing ids required")
	}

	shop, err := s.ForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	target := action.TargetStatus()

	var updated int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.OwnedStatuses(ctx, shop.ID, unique)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing statuses")
		}
		if len(current) != len(unique) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "Unauthorized or listings not found")
		}

		var illegal []string
		for _, id := range unique {
			if !current[id].CanTransitionTo(target) {
				illegal = append(illegal, id.String())
			}
		}
		if len(illegal) > 0 {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot %s listings in their current status", action).
				WithDetails(map[string]any{"listingIds": illegal, "target": target})
		}

		n, err := repo.SetListingStatus(ctx, shop.ID, unique, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing statuses")
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeDependency, "bulk listing action")
	}
	return &BulkResult{Updated: updated}, nil
}

func (s *service) view(ctx context.Context, shop *models.TackShop) (*ShopView, error) {
	count, err := s.repo.ListingCount(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count shop listings")
	}
	return &ShopView{TackShop: *shop, Owner: shop.Owner.Summary(), ListingCount: count}, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
