package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// ServiceInterface defines the contract for a payment processing service.
type ServiceInterface interface {
	ProcessPayment(ctx context.Context, amountCents int64, currency, paymentMethodID string) (string, error)
}

// StripeService charges monetary contributions through Stripe.
type StripeService struct{}

// NewStripeService sets the global Stripe key and returns the service.
func NewStripeService(apiKey string) *StripeService {
	stripe.Key = apiKey
	return &StripeService{}
}

// ProcessPayment creates and confirms a payment intent and returns its ID.
func (s *StripeService) ProcessPayment(ctx context.Context, amountCents int64, currency, paymentMethodID string) (string, error) {
	if amountCents <= 0 {
		return "", fmt.Errorf("invalid payment amount")
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
	}
	params.Context = ctx
	// One key per intent; the client reuses it across its internal retries.
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment failed: %w", err)
	}
	return pi.ID, nil
}
