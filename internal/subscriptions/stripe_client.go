package subscriptions

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
)

// CheckoutClient exposes the Stripe checkout operation the upgrade flow needs.
type CheckoutClient interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeCheckoutClient struct{}

// NewStripeCheckoutClient calls the Stripe API with the globally configured key.
func NewStripeCheckoutClient() CheckoutClient {
	return &stripeCheckoutClient{}
}

func (c *stripeCheckoutClient) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	return session.New(params)
}
