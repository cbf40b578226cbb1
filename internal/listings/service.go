package listings

import (
	"context"
	"strings"

	"github.com/Shashankphatkure/equico-app/internal/media"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	dbtypes "github.com/Shashankphatkure/equico-app/pkg/db/types"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	browseDefaultLimit     = 12
	similarListingsLimit   = 4
	maxImagesPerListing    = 6
	listingNotFoundMessage = "Listing not found"
)

type shopResolver interface {
	Ensure(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error)
	ForOwner(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error)
}

type shopDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.TackShop, error)
	ListingCount(ctx context.Context, shopID uuid.UUID) (int64, error)
}

type uploader interface {
	UploadAll(ctx context.Context, folder media.Folder, files []media.File) ([]string, error)
	RemoveQuietly(ctx context.Context, urls []string)
}

// QueryParams is a parsed marketplace browse request.
type QueryParams struct {
	Search     string
	Category   string
	Conditions []enums.ListingCondition
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       enums.ListingSort
	Page       int
	Limit      int
}

// ShopCard is the shop summary attached to each listing.
type ShopCard struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	IsVerified   bool                `json:"isVerified"`
	Owner        *models.UserSummary `json:"owner"`
	ListingCount *int64              `json:"listingCount,omitempty"`
}

// ListingView is a listing annotated for the caller.
type ListingView struct {
	models.Listing
	Shop       *ShopCard `json:"shop"`
	SavedCount int64     `json:"savedCount"`
	IsSaved    bool      `json:"isSaved"`
}

type ListResult struct {
	Listings []ListingView `json:"listings"`
	Total    int64         `json:"total"`
	Pages    int           `json:"pages"`
}

// DetailView is a single listing with its neighbours in the category.
type DetailView struct {
	ListingView
	SimilarListings []models.Listing `json:"similarListings"`
}

// CreateInput carries the multipart fields of a new listing.
type CreateInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Condition   enums.ListingCondition
	Category    string
	Images      []media.File
}

// UpdateInput is a partial edit; nil fields are untouched.
type UpdateInput struct {
	Title         *string
	Description   *string
	Price         *decimal.Decimal
	Condition     *enums.ListingCondition
	Category      *string
	Status        *enums.ListingStatus
	Images        []media.File
	DeletedImages []string
}

type Service interface {
	List(ctx context.Context, callerID uuid.UUID, params QueryParams) (*ListResult, error)
	Get(ctx context.Context, callerID, listingID uuid.UUID) (*DetailView, error)
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Listing, error)
	CreateInShop(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Listing, error)
	Update(ctx context.Context, ownerID, listingID uuid.UUID, input UpdateInput) (*models.Listing, error)
	Delete(ctx context.Context, ownerID, listingID uuid.UUID) error
	Save(ctx context.Context, userID, listingID uuid.UUID) (*models.SavedListing, error)
	Unsave(ctx context.Context, userID, listingID uuid.UUID) error
}

type ServiceParams struct {
	DB       db.TxRunner
	Repo     *Repository
	Shops    shopResolver
	ShopRepo shopDirectory
	Uploader uploader
}

type service struct {
	tx       db.TxRunner
	repo     *Repository
	shops    shopResolver
	shopRepo shopDirectory
	uploader uploader
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if params.Shops == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shop service required")
	}
	if params.ShopRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	if params.Uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media uploader required")
	}
	return &service{
		tx:       params.DB,
		repo:     params.Repo,
		shops:    params.Shops,
		shopRepo: params.ShopRepo,
		uploader: params.Uploader,
	}, nil
}

// List browses active listings. The page and the total are fetched concurrently.
func (s *service) List(ctx context.Context, callerID uuid.UUID, params QueryParams) (*ListResult, error) {
	if params.MinPrice != nil && params.MaxPrice != nil && params.MinPrice.GreaterThan(*params.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice")
	}
	filter := Filter{
		Search:     strings.TrimSpace(params.Search),
		Category:   strings.TrimSpace(params.Category),
		Conditions: params.Conditions,
		MinPrice:   params.MinPrice,
		MaxPrice:   params.MaxPrice,
		Status:     enums.ListingStatusActive,
	}
	page := pagination.New(params.Page, params.Limit, browseDefaultLimit)

	var (
		rows  []models.Listing
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, filter, params.Sort, page.Limit, page.Offset())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query listings")
	}

	views, err := s.annotate(ctx, callerID, rows)
	if err != nil {
		return nil, err
	}
	return &ListResult{Listings: views, Total: total, Pages: page.Pages(total)}, nil
}

// Get records a view and returns the listing with shop details and similar items.
func (s *service) Get(ctx context.Context, callerID, listingID uuid.UUID) (*DetailView, error) {
	found, err := s.repo.IncrementViews(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record listing view")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, listingNotFoundMessage)
	}

	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, listingNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	views, err := s.annotate(ctx, callerID, []models.Listing{*listing})
	if err != nil {
		return nil, err
	}
	view := views[0]
	if view.Shop != nil {
		count, err := s.shopRepo.ListingCount(ctx, listing.ShopID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count shop listings")
		}
		view.Shop.ListingCount = &count
	}

	similar, err := s.repo.Similar(ctx, listing, similarListingsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load similar listings")
	}
	return &DetailView{ListingView: view, SimilarListings: similar}, nil
}

// Create requires the caller to already own a shop.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Listing, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	shop, err := s.shops.ForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, shop, input)
}

// CreateInShop opens the caller's shop on demand before creating the listing.
func (s *service) CreateInShop(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Listing, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	shop, err := s.shops.Ensure(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, shop, input)
}

func (s *service) create(ctx context.Context, shop *models.TackShop, input CreateInput) (*models.Listing, error) {
	urls, err := s.uploader.UploadAll(ctx, media.FolderListings, input.Images)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		ShopID:      shop.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Condition:   input.Condition,
		Category:    strings.TrimSpace(input.Category),
		Images:      dbtypes.StringList(urls),
		Status:      enums.ListingStatusActive,
		IsBoosted:   shop.IsPremium,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		s.uploader.RemoveQuietly(ctx, urls)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return listing, nil
}

func (s *service) Update(ctx context.Context, ownerID, listingID uuid.UUID, input UpdateInput) (*models.Listing, error) {
	listing, err := s.owned(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
		}
		updates["condition"] = *input.Condition
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		updates["category"] = category
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		if !listing.Status.CanTransitionTo(*input.Status) {
			return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move listing from %s to %s", listing.Status, *input.Status)
		}
		updates["status"] = *input.Status
	}

	kept := listing.Images.Without(input.DeletedImages)
	if len(kept)+len(input.Images) > maxImagesPerListing {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "a listing can have at most %d images", maxImagesPerListing)
	}
	removed := dropped(listing.Images, kept)

	var uploaded []string
	if len(input.Images) > 0 || len(removed) > 0 {
		uploaded, err = s.uploader.UploadAll(ctx, media.FolderListings, input.Images)
		if err != nil {
			return nil, err
		}
		images := append(dbtypes.StringList{}, listing.Images...)
		images = append(images, uploaded...)
		updates["images"] = images.Without(input.DeletedImages)
	}

	if err := s.repo.Update(ctx, listing.ID, updates); err != nil {
		s.uploader.RemoveQuietly(ctx, uploaded)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}
	s.uploader.RemoveQuietly(ctx, removed)

	fresh, err := s.repo.FindByID(ctx, listing.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload listing")
	}
	return fresh, nil
}

func (s *service) Delete(ctx context.Context, ownerID, listingID uuid.UUID) error {
	listing, err := s.owned(ctx, ownerID, listingID)
	if err != nil {
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, listing.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	s.uploader.RemoveQuietly(ctx, listing.Images)
	return nil
}

func (s *service) Save(ctx context.Context, userID, listingID uuid.UUID) (*models.SavedListing, error) {
	if _, err := s.repo.FindByID(ctx, listingID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, listingNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	saved := &models.SavedListing{UserID: userID, ListingID: listingID}
	if err := s.repo.Save(ctx, saved); err != nil {
		if db.IsUniqueViolation(err, "saved_listings_user_listing_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "listing already saved")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save listing")
	}
	return saved, nil
}

func (s *service) Unsave(ctx context.Context, userID, listingID uuid.UUID) error {
	n, err := s.repo.Unsave(ctx, userID, listingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unsave listing")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not saved")
	}
	return nil
}

// owned loads the listing and checks that ownerID runs its shop.
func (s *service) owned(ctx context.Context, ownerID, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.FindWithShop(ctx, listingID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, listingNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.Shop == nil || listing.Shop.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Unauthorized")
	}
	return listing, nil
}

func (s *service) annotate(ctx context.Context, callerID uuid.UUID, rows []models.Listing) ([]ListingView, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	shopIDs := make([]uuid.UUID, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.ID)
		shopIDs = append(shopIDs, l.ShopID)
	}

	counts, err := s.repo.SavedCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count saves")
	}
	saved, err := s.repo.SavedBy(ctx, callerID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load saved listings")
	}
	shops, err := s.shopRepo.FindByIDs(ctx, shopIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shops")
	}

	out := make([]ListingView, 0, len(rows))
	for _, l := range rows {
		view := ListingView{Listing: l, SavedCount: counts[l.ID], IsSaved: saved[l.ID]}
		if shop, ok := shops[l.ShopID]; ok {
			view.Shop = &ShopCard{ID: shop.ID, Name: shop.Name, IsVerified: shop.IsVerified, Owner: shop.Owner.Summary()}
		}
		out = append(out, view)
	}
	return out, nil
}

func validateCreate(input CreateInput) error {
	switch {
	case strings.TrimSpace(input.Title) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	case strings.TrimSpace(input.Description) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	case strings.TrimSpace(input.Category) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	case input.Price.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	case !input.Condition.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
	case len(input.Images) > maxImagesPerListing:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "a listing can have at most %d images", maxImagesPerListing)
	}
	return nil
}

func dropped(before, after dbtypes.StringList) []string {
	keep := make(map[string]struct{}, len(after))
	for _, url := range after {
		keep[url] = struct{}{}
	}
	var out []string
	for _, url := range before {
		if _, ok := keep[url]; !ok {
			out = append(out, url)
		}
	}
	return out
}
