package client

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
)

// StripeClient covers the superseded checkout iteration: a hosted Checkout
// Session per purchase. There is no Stripe webhook path anymore; that
// iteration predated earnings tracking.
type StripeClient interface {
	CreateCheckoutSession(ctx context.Context, title string, amount decimal.Decimal, currency, successURL, cancelURL string) (string, error)
}

type stripeClientImpl struct {
	api *stripeclient.API
}

func NewStripeClient(secretKey string) StripeClient {
	api := &stripeclient.API{}
	api.Init(secretKey, nil)
	return &stripeClientImpl{api: api}
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, title string, amount decimal.Decimal, currency, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					// Stripe wants minor units
					UnitAmount: stripe.Int64(amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}

	return sess.URL, nil
}
