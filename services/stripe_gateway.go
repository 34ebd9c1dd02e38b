package services

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway implements PaymentGateway on the Stripe PaymentIntents API
type StripeGateway struct {
	sc *client.API
}

// NewStripeGateway creates a Stripe client. backends is nil outside tests.
func NewStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &StripeGateway{sc: sc}
}

// CreatePaymentIntent opens a card-capable intent for the given amount
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, p CreateIntentParams) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountCents),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(pi), nil
}

// GetPaymentIntent retrieves an intent by id
func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.sc.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(pi), nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	method := "card"
	switch {
	case pi.PaymentMethod != nil && pi.PaymentMethod.Type != "":
		method = string(pi.PaymentMethod.Type)
	case len(pi.PaymentMethodTypes) > 0:
		method = pi.PaymentMethodTypes[0]
	}

	return &PaymentIntent{
		ID:            pi.ID,
		ClientSecret:  pi.ClientSecret,
		Amount:        pi.Amount,
		Currency:      string(pi.Currency),
		Status:        string(pi.Status),
		PaymentMethod: method,
		Metadata:      pi.Metadata,
	}
}
