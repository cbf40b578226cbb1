package disputes

import (
	"context"
	"strings"

	"github.com/Shashankphatkure/equico-app/internal/notifications"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/google/uuid"
)

const openedContent = "A dispute has been opened for your listing"

type listingLookup interface {
	FindWithShop(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) (*models.Notification, error)
}

// OpenInput is the body of POST /disputes.
type OpenInput struct {
	ListingID   uuid.UUID `json:"listingId" validate:"required"`
	Reason      string    `json:"reason" validate:"required"`
	Description string    `json:"description" validate:"required"`
}

type Service interface {
	Open(ctx context.Context, userID uuid.UUID, input OpenInput) (*models.Dispute, error)
}

type ServiceParams struct {
	Repo     *Repository
	Listings listingLookup
	Notifier notifier
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	listings listingLookup
	notifier notifier
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "disputes repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	return &service{
		repo:     params.Repo,
		listings: params.Listings,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// Open files an open dispute against a listing and notifies its shop owner.
func (s *service) Open(ctx context.Context, userID uuid.UUID, input OpenInput) (*models.Dispute, error) {
	reason := strings.TrimSpace(input.Reason)
	description := strings.TrimSpace(input.Description)
	if reason == "" || description == "" {
		details := map[string]string{}
		if reason == "" {
			details["reason"] = "required"
		}
		if description == "" {
			details["description"] = "required"
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason and description are required").WithDetails(details)
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

	dispute := &models.Dispute{
		ListingID:   listing.ID,
		UserID:      userID,
		Reason:      reason,
		Description: description,
		Status:      enums.DisputeStatusOpen,
	}
	if err := s.repo.Create(ctx, dispute); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dispute")
	}

	_, err = s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:     listing.Shop.OwnerID,
		Type:       enums.NotificationTypeDispute,
		Content:    openedContent,
		FromUserID: &userID,
		ListingID:  &listing.ID,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "dispute_id", dispute.ID.String()), "dispute notification failed", err)
	}
	return dispute, nil
}
