package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/Shashankphatkure/equico-app/internal/shops"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

const shopIDMetadataKey = "shopId"

type ServiceParams struct {
	DB        db.TxRunner
	ShopsRepo *shops.Repository
	Logger    *logger.Logger
}

// Service reconciles premium shop state from Stripe events.
type Service struct {
	tx    db.TxRunner
	shops *shops.Repository
	logg  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.ShopsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	return &Service{tx: params.DB, shops: params.ShopsRepo, logg: params.Logger}, nil
}

// HandleEvent applies checkout completion and subscription cancellation.
// Other event types are acknowledged without side effects.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
		}
		shopID, err := shopIDFrom(sess.Metadata)
		if err != nil {
			return err
		}
		return s.setPremium(ctx, shopID, true)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subscription")
		}
		shopID, err := shopIDFrom(sub.Metadata)
		if err != nil {
			return err
		}
		return s.setPremium(ctx, shopID, false)
	default:
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "event_type", string(event.Type)), "stripe event ignored")
		}
		return nil
	}
}

// setPremium flips the shop flag and the boost on all of its listings together.
func (s *Service) setPremium(ctx context.Context, shopID uuid.UUID, premium bool) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.shops.WithTx(tx)
		found, err := repo.SetPremium(ctx, shopID, premium)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop premium")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		if _, err := repo.SetListingsBoosted(ctx, shopID, premium); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing boost")
		}
		return nil
	})
	return pkgerrors.Ensure(err, pkgerrors.CodeDependency, "reconcile premium shop")
}

func shopIDFrom(metadata map[string]string) (uuid.UUID, error) {
	raw := metadata[shopIDMetadataKey]
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "shopId metadata missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shopId metadata")
	}
	return id, nil
}
