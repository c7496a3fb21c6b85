package contribution

import (
	"context"
	"fmt"

	"foodbridge/internal/models"
)

// PaymentServiceInterface defines the contract for a payment processor.
type PaymentServiceInterface interface {
	ProcessPayment(ctx context.Context, amountCents int64, currency, paymentMethodID string) (string, error)
}

// ServiceInterface defines the contract for the contribution service.
type ServiceInterface interface {
	Contribute(ctx context.Context, userID string, req models.CreateContributionRequest) (*models.Contribution, error)
}

// Service charges a contribution and records the result.
type Service struct {
	repo           RepositoryInterface
	paymentService PaymentServiceInterface
}

// NewService creates a new contribution service.
func NewService(repo RepositoryInterface, paymentService PaymentServiceInterface) *Service {
	return &Service{repo: repo, paymentService: paymentService}
}

// Contribute processes the payment first; only a successful charge is
// recorded.
func (s *Service) Contribute(ctx context.Context, userID string, req models.CreateContributionRequest) (*models.Contribution, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	ref, err := s.paymentService.ProcessPayment(ctx, req.AmountCents, currency, req.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("service.Contribute: %w", err)
	}

	c := &models.Contribution{
		UserID:      userID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		PaymentRef:  ref,
		Status:      models.ContributionSucceeded,
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("service.Contribute: %w", err)
	}
	return created, nil
}
