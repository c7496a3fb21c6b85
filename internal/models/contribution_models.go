package models

import "time"

// Contribution statuses.
const (
	ContributionSucceeded = "Succeeded"
	ContributionFailed    = "Failed"
)

// Contribution is a monetary donation to the platform, charged via Stripe.
type Contribution struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	PaymentRef  string    `json:"payment_reference,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateContributionRequest is the payload for a monetary contribution.
type CreateContributionRequest struct {
	AmountCents     int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency        string `json:"currency,omitempty" validate:"omitempty,len=3"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}
