package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shashankphatkure/equico-app/internal/notifications"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/google/uuid"
)

const (
	minRating = 1
	maxRating = 5
)

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type listingLookup interface {
	FindWithShop(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) (*models.Notification, error)
}

// CreateInput is the body of POST /reviews.
type CreateInput struct {
	ListingID uuid.UUID `json:"listingId" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" validate:"required"`
}

// View is a stored review with its author.
type View struct {
	models.Review
	User *models.UserSummary `json:"user"`
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*View, error)
}

type ServiceParams struct {
	Repo     *Repository
	Users    userLookup
	Listings listingLookup
	Notifier notifier
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	users    userLookup
	listings listingLookup
	notifier notifier
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reviews repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		listings: params.Listings,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// Create records the review and tells the shop owner about it.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*View, error) {
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "rating must be between %d and %d", minRating, maxRating)
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}

	listing, err := s.listings.FindWithShop(ctx, input.ListingID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.Shop == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "listing has no shop")
	}
	if listing.Shop.OwnerID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "You cannot review your own listing")
	}

	reviewer, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviewer")
	}

	review := &models.Review{
		ListingID: listing.ID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	_, err = s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:     listing.Shop.OwnerID,
		Type:       enums.NotificationTypeReview,
		Content:    fmt.Sprintf("%s left a review on your listing", reviewer.Name),
		FromUserID: &userID,
		ListingID:  &listing.ID,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "review_id", review.ID.String()), "review notification failed", err)
	}

	return &View{Review: *review, User: reviewer.Summary()}, nil
}
