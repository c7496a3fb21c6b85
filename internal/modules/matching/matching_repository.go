package matching

import (
	"context"
	"errors"
	"fmt"

	"foodbridge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Candidate is a volunteer with known coordinates, eligible for matching.
type Candidate struct {
	VolunteerID string
	Name        string
	Email       string
	Latitude    float64
	Longitude   float64
}

// RepositoryInterface defines the contract for the matching repository.
type RepositoryInterface interface {
	GetDonationPoint(ctx context.Context, donationID string) (lat, lon float64, err error)
	ListCandidates(ctx context.Context) ([]Candidate, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new matching repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// GetDonationPoint returns the donation's pickup coordinates. A donation
// without coordinates cannot be matched and reports ErrNotFound.
func (r *Repository) GetDonationPoint(ctx context.Context, donationID string) (float64, float64, error) {
	var lat, lon *float64
	err := r.db.QueryRow(ctx,
		`SELECT latitude, longitude FROM donations WHERE id = $1`, donationID,
	).Scan(&lat, &lon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, models.ErrNotFound
		}
		return 0, 0, fmt.Errorf("repository.GetDonationPoint: %w", err)
	}
	if lat == nil || lon == nil {
		return 0, 0, models.ErrNotFound
	}
	return *lat, *lon, nil
}

// ListCandidates returns every volunteer with known coordinates, ordered by
// user id so the in-memory ranking is deterministic on ties.
func (r *Repository) ListCandidates(ctx context.Context) ([]Candidate, error) {
	query := `
		SELECT u.id, u.name, u.email, vp.latitude, vp.longitude
		FROM users u
		JOIN volunteer_profiles vp ON vp.user_id = u.id
		WHERE u.role = 'volunteer'
		  AND vp.latitude IS NOT NULL AND vp.longitude IS NOT NULL
		ORDER BY u.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListCandidates.Query: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.VolunteerID, &c.Name, &c.Email, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("repository.ListCandidates.Scan: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListCandidates.Rows: %w", err)
	}
	return candidates, nil
}
