package subscriptions

import (
	"context"
	"strings"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

const (
	successPath = "/dashboard/marketplace/shop?upgraded=true"
	cancelPath  = "/dashboard/marketplace/shop/upgrade"
)

type shopResolver interface {
	Ensure(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error)
}

type priceCatalog interface {
	PriceID(plan enums.SubscriptionPlan) (string, error)
}

// UpgradeResult carries the hosted checkout URL.
type UpgradeResult struct {
	URL string `json:"url"`
}

// Service starts premium shop upgrades.
type Service interface {
	Upgrade(ctx context.Context, ownerID uuid.UUID, plan enums.SubscriptionPlan) (*UpgradeResult, error)
}

type ServiceParams struct {
	Shops   shopResolver
	Prices  priceCatalog
	Stripe  CheckoutClient
	BaseURL string
}

type service struct {
	shops   shopResolver
	prices  priceCatalog
	stripe  CheckoutClient
	baseURL string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Shops == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shop service required")
	}
	if params.Prices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "price catalog required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe client required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(params.BaseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "base url required")
	}
	return &service{
		shops:   params.Shops,
		prices:  params.Prices,
		stripe:  params.Stripe,
		baseURL: baseURL,
	}, nil
}

// Upgrade opens a subscription checkout for the caller's shop. The shop id is
// stamped on the session and the subscription so webhook events can find it.
func (s *service) Upgrade(ctx context.Context, ownerID uuid.UUID, plan enums.SubscriptionPlan) (*UpgradeResult, error) {
	if !plan.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid plan")
	}
	shop, err := s.shops.Ensure(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	priceID, err := s.prices.PriceID(plan)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve plan price")
	}

	metadata := map[string]string{
		"shopId": shop.ID.String(),
		"userId": ownerID.String(),
		"plan":   plan.String(),
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.baseURL + successPath),
		CancelURL:  stripe.String(s.baseURL + cancelPath),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sess, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	if sess == nil || sess.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout session missing url")
	}
	return &UpgradeResult{URL: sess.URL}, nil
}
