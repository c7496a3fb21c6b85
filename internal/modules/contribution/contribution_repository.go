package contribution

import (
	"context"
	"fmt"

	"foodbridge/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the contribution repository.
type RepositoryInterface interface {
	Create(ctx context.Context, c *models.Contribution) (*models.Contribution, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new contribution repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Create records a charged contribution.
func (r *Repository) Create(ctx context.Context, c *models.Contribution) (*models.Contribution, error) {
	query := `
		INSERT INTO contributions (user_id, amount_cents, currency, payment_ref, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, amount_cents, currency, payment_ref, status, created_at`

	var out models.Contribution
	err := r.db.QueryRow(ctx, query, c.UserID, c.AmountCents, c.Currency, c.PaymentRef, c.Status).Scan(
		&out.ID, &out.UserID, &out.AmountCents, &out.Currency, &out.PaymentRef, &out.Status, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateContribution: %w", err)
	}
	return &out, nil
}
