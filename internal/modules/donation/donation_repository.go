package donation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodbridge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the donation repository.
type RepositoryInterface interface {
	Create(ctx context.Context, d *models.Donation) (*models.Donation, error)
	FindByID(ctx context.Context, donationID string) (*models.Donation, error)
	ListAvailable(ctx context.Context, filter models.DonationFilter) ([]*models.Donation, error)
	ListByDonor(ctx context.Context, donorID string) ([]*models.Donation, error)
	SetNeedsVolunteer(ctx context.Context, donationID string, needs bool) error
	HasActiveRequest(ctx context.Context, donationID, requesterID string) (bool, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new donation repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const donationColumns = `id, donor_id, food_name, quantity, food_type, expiry, preparation_date,
	location, latitude, longitude, packaging_details, food_temperature, storage_condition,
	ingredients_allergens, instructions, photo_ref, needs_volunteer, status, created_at, updated_at`

// scanDonation is a helper to scan a row into a Donation model.
func scanDonation(row pgx.Row) (*models.Donation, error) {
	var d models.Donation
	err := row.Scan(
		&d.ID, &d.DonorID, &d.FoodName, &d.Quantity, &d.FoodType, &d.Expiry, &d.PreparationDate,
		&d.Location, &d.Latitude, &d.Longitude, &d.PackagingDetails, &d.FoodTemperature,
		&d.StorageCondition, &d.IngredientsAllergens, &d.Instructions, &d.PhotoRef,
		&d.NeedsVolunteer, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan donation: %w", err)
	}
	return &d, nil
}

// Create inserts a new donation with status 'available'.
func (r *Repository) Create(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	query := `
		INSERT INTO donations (
			donor_id, food_name, quantity, food_type, expiry, preparation_date, location,
			latitude, longitude, packaging_details, food_temperature, storage_condition,
			ingredients_allergens, instructions, photo_ref, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 'available')
		RETURNING ` + donationColumns

	row := r.db.QueryRow(ctx, query,
		d.DonorID, d.FoodName, d.Quantity, d.FoodType, d.Expiry, d.PreparationDate, d.Location,
		d.Latitude, d.Longitude, d.PackagingDetails, d.FoodTemperature, d.StorageCondition,
		d.IngredientsAllergens, d.Instructions, d.PhotoRef,
	)
	created, err := scanDonation(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateDonation: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single donation by its ID.
func (r *Repository) FindByID(ctx context.Context, donationID string) (*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`
	d, err := scanDonation(r.db.QueryRow(ctx, query, donationID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return d, nil
}

// ListAvailable returns the browse feed of available donations. When the
// filter carries a reference point and radius, distance is computed in SQL
// with the haversine acos form (R = 6371 km) and rows are sorted nearest
// first; otherwise newest first.
func (r *Repository) ListAvailable(ctx context.Context, filter models.DonationFilter) ([]*models.Donation, error) {
	var sb strings.Builder
	args := []interface{}{}

	sb.WriteString(`SELECT d.id, d.donor_id, d.food_name, d.quantity, d.food_type, d.expiry,
		d.preparation_date, d.location, d.latitude, d.longitude, d.packaging_details,
		d.food_temperature, d.storage_condition, d.ingredients_allergens, d.instructions,
		d.photo_ref, d.needs_volunteer, d.status, d.created_at, d.updated_at,
		u.name AS donor_name, u.city AS donor_city`)

	geo := filter.Latitude != nil && filter.Longitude != nil
	if geo {
		args = append(args, *filter.Latitude, *filter.Longitude)
		sb.WriteString(fmt.Sprintf(`,
		(6371 * acos(
			cos(radians($%d)) * cos(radians(d.latitude)) * cos(radians(d.longitude) - radians($%d))
			+ sin(radians($%d)) * sin(radians(d.latitude))
		)) AS distance_km`, 1, 2, 1))
	}

	sb.WriteString(`
		FROM donations d
		JOIN users u ON d.donor_id = u.id
		WHERE d.status = 'available'`)
	if geo {
		sb.WriteString(` AND d.latitude IS NOT NULL AND d.longitude IS NOT NULL`)
	}

	addCond := func(cond string, v interface{}) {
		args = append(args, v)
		sb.WriteString(fmt.Sprintf(" AND "+cond, len(args)))
	}
	if filter.FoodType != "" {
		addCond("d.food_type = $%d", filter.FoodType)
	}
	if filter.StorageCondition != "" {
		addCond("d.storage_condition = $%d", filter.StorageCondition)
	}
	if filter.FoodName != "" {
		addCond("d.food_name ILIKE $%d", "%"+filter.FoodName+"%")
	}
	if filter.City != "" {
		addCond("u.city = $%d", filter.City)
	}

	if geo && filter.RadiusKm != nil {
		args = append(args, *filter.RadiusKm)
		sb.WriteString(fmt.Sprintf(`
		AND (6371 * acos(
			cos(radians($1)) * cos(radians(d.latitude)) * cos(radians(d.longitude) - radians($2))
			+ sin(radians($1)) * sin(radians(d.latitude))
		)) <= $%d
		ORDER BY distance_km ASC`, len(args)))
	} else {
		sb.WriteString(` ORDER BY d.created_at DESC`)
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAvailable.Query: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		var d models.Donation
		dest := []interface{}{
			&d.ID, &d.DonorID, &d.FoodName, &d.Quantity, &d.FoodType, &d.Expiry, &d.PreparationDate,
			&d.Location, &d.Latitude, &d.Longitude, &d.PackagingDetails, &d.FoodTemperature,
			&d.StorageCondition, &d.IngredientsAllergens, &d.Instructions, &d.PhotoRef,
			&d.NeedsVolunteer, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&d.DonorName, &d.DonorCity,
		}
		if geo {
			dest = append(dest, &d.DistanceKm)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("repository.ListAvailable.Scan: %w", err)
		}
		donations = append(donations, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListAvailable.Rows: %w", err)
	}
	return donations, nil
}

// ListByDonor retrieves every donation a donor has posted, newest first.
func (r *Repository) ListByDonor(ctx context.Context, donorID string) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE donor_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, donorID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByDonor.Query: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListByDonor.Scan: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListByDonor.Rows: %w", err)
	}
	return donations, nil
}

// SetNeedsVolunteer flips the needs_volunteer flag on a donation.
func (r *Repository) SetNeedsVolunteer(ctx context.Context, donationID string, needs bool) error {
	query := `UPDATE donations SET needs_volunteer = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, donationID, needs)
	if err != nil {
		return fmt.Errorf("repository.SetNeedsVolunteer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// HasActiveRequest reports whether the requester holds a Pending or
// Approved request against the donation.
func (r *Repository) HasActiveRequest(ctx context.Context, donationID, requesterID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM requests
			WHERE donation_id = $1 AND requester_id = $2 AND status IN ('Pending', 'Approved')
		)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, donationID, requesterID).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository.HasActiveRequest: %w", err)
	}
	return exists, nil
}
