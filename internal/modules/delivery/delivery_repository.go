package delivery

import (
	"context"
	"errors"
	"fmt"

	"foodbridge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the delivery repository.
// The deliveries table carries a unique constraint on request_id; that
// constraint, not an application-level existence check, is what prevents
// two volunteers from claiming the same pickup.
type RepositoryInterface interface {
	Accept(ctx context.Context, requestID, volunteerID string) (*models.Delivery, error)
	FindByID(ctx context.Context, deliveryID string) (*models.Delivery, error)
	ListByVolunteer(ctx context.Context, volunteerID string) ([]*models.Delivery, error)
	ListOpenPickups(ctx context.Context) ([]*models.FoodRequest, error)
	MarkPickedUp(ctx context.Context, deliveryID, volunteerID string) error
	MarkDelivered(ctx context.Context, deliveryID, volunteerID string) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new delivery repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Accept lets a volunteer claim a request. If a PendingPickup delivery
// already exists (the requester booked without a volunteer) the claim is a
// conditional update on volunteer_id IS NULL; otherwise a fresh Assigned
// row is inserted under the unique(request_id) constraint and the donation
// is flipped to 'ordered'. Either way, exactly one volunteer wins.
func (r *Repository) Accept(ctx context.Context, requestID, volunteerID string) (*models.Delivery, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.Accept.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var donationID, reqStatus string
	err = tx.QueryRow(ctx, `SELECT donation_id, status FROM requests WHERE id = $1`, requestID).
		Scan(&donationID, &reqStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Accept.Request: %w", err)
	}
	if reqStatus == models.RequestRejected || reqStatus == models.RequestCompleted {
		return nil, models.ErrRequestNotActionable
	}

	var delivery models.Delivery
	err = tx.QueryRow(ctx, `
		UPDATE deliveries SET volunteer_id = $2, status = 'Assigned', updated_at = NOW()
		WHERE request_id = $1 AND volunteer_id IS NULL AND status = 'PendingPickup'
		RETURNING id, request_id, volunteer_id, status, created_at, updated_at`,
		requestID, volunteerID,
	).Scan(&delivery.ID, &delivery.RequestID, &delivery.VolunteerID, &delivery.Status,
		&delivery.CreatedAt, &delivery.UpdatedAt)

	switch {
	case err == nil:
		// Claimed the unassigned delivery; donation is already ordered.

	case errors.Is(err, pgx.ErrNoRows):
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM deliveries WHERE request_id = $1)`, requestID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("repository.Accept.Exists: %w", err)
		}
		if exists {
			return nil, models.ErrDeliveryClaimed
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO deliveries (request_id, volunteer_id, status)
			VALUES ($1, $2, 'Assigned')
			RETURNING id, request_id, volunteer_id, status, created_at, updated_at`,
			requestID, volunteerID,
		).Scan(&delivery.ID, &delivery.RequestID, &delivery.VolunteerID, &delivery.Status,
			&delivery.CreatedAt, &delivery.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, models.ErrDeliveryClaimed
			}
			return nil, fmt.Errorf("repository.Accept.Insert: %w", err)
		}

		cmd, err := tx.Exec(ctx, `
			UPDATE donations SET status = 'ordered', updated_at = NOW()
			WHERE id = $1 AND status = 'available'`, donationID)
		if err != nil {
			return nil, fmt.Errorf("repository.Accept.Donation: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return nil, models.ErrDonationUnavailable
		}

	default:
		return nil, fmt.Errorf("repository.Accept.Claim: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.Accept.Commit: %w", err)
	}
	return &delivery, nil
}

// FindByID retrieves a delivery by its ID.
func (r *Repository) FindByID(ctx context.Context, deliveryID string) (*models.Delivery, error) {
	query := `SELECT id, request_id, volunteer_id, status, created_at, updated_at
		FROM deliveries WHERE id = $1`
	var d models.Delivery
	err := r.db.QueryRow(ctx, query, deliveryID).Scan(
		&d.ID, &d.RequestID, &d.VolunteerID, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return &d, nil
}

// ListByVolunteer retrieves the volunteer's deliveries with pickup and
// drop-off context, active ones first.
func (r *Repository) ListByVolunteer(ctx context.Context, volunteerID string) ([]*models.Delivery, error) {
	query := `
		SELECT dl.id, dl.request_id, dl.volunteer_id, dl.status, dl.created_at, dl.updated_at,
		       don.food_name, don.quantity,
		       donor.name, donor.address,
		       ngo.name, ngo.address
		FROM deliveries dl
		JOIN requests r ON dl.request_id = r.id
		JOIN donations don ON r.donation_id = don.id
		JOIN users donor ON don.donor_id = donor.id
		JOIN users ngo ON r.requester_id = ngo.id
		WHERE dl.volunteer_id = $1
		ORDER BY CASE dl.status
			WHEN 'Assigned' THEN 1
			WHEN 'PickedUp' THEN 2
			ELSE 3
		END, dl.updated_at DESC`

	rows, err := r.db.Query(ctx, query, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByVolunteer.Query: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		var d models.Delivery
		if err := rows.Scan(
			&d.ID, &d.RequestID, &d.VolunteerID, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&d.FoodName, &d.Quantity, &d.DonorName, &d.DonorAddress, &d.NGOName, &d.NGOAddress,
		); err != nil {
			return nil, fmt.Errorf("repository.ListByVolunteer.Scan: %w", err)
		}
		deliveries = append(deliveries, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListByVolunteer.Rows: %w", err)
	}
	return deliveries, nil
}

// ListOpenPickups returns requests that still need a volunteer: active
// requests on donations flagged needs_volunteer with no assigned delivery.
func (r *Repository) ListOpenPickups(ctx context.Context) ([]*models.FoodRequest, error) {
	query := `
		SELECT r.id, r.donation_id, r.requester_id, r.status, r.created_at, r.updated_at,
		       d.donor_id, d.status, d.food_name, d.quantity, d.location
		FROM requests r
		JOIN donations d ON r.donation_id = d.id
		LEFT JOIN deliveries dl ON dl.request_id = r.id
		WHERE d.needs_volunteer = TRUE
		  AND r.status IN ('Pending', 'Approved')
		  AND (dl.id IS NULL OR dl.volunteer_id IS NULL)
		ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListOpenPickups.Query: %w", err)
	}
	defer rows.Close()

	var requests []*models.FoodRequest
	for rows.Next() {
		var req models.FoodRequest
		if err := rows.Scan(
			&req.ID, &req.DonationID, &req.RequesterID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&req.DonorID, &req.DonationStatus, &req.FoodName, &req.Quantity, &req.Location,
		); err != nil {
			return nil, fmt.Errorf("repository.ListOpenPickups.Scan: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListOpenPickups.Rows: %w", err)
	}
	return requests, nil
}

// MarkPickedUp is a compare-and-set moving an Assigned delivery owned by
// the volunteer to PickedUp.
func (r *Repository) MarkPickedUp(ctx context.Context, deliveryID, volunteerID string) error {
	query := `
		UPDATE deliveries SET status = 'PickedUp', updated_at = NOW()
		WHERE id = $1 AND volunteer_id = $2 AND status = 'Assigned'`
	cmd, err := r.db.Exec(ctx, query, deliveryID, volunteerID)
	if err != nil {
		return fmt.Errorf("repository.MarkPickedUp: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrConflict
	}
	return nil
}

// MarkDelivered finalizes the triad in one transaction: delivery
// Delivered, request Completed, donation delivered. Rollback on any step.
func (r *Repository) MarkDelivered(ctx context.Context, deliveryID, volunteerID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.MarkDelivered.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var requestID string
	err = tx.QueryRow(ctx, `
		UPDATE deliveries SET status = 'Delivered', updated_at = NOW()
		WHERE id = $1 AND volunteer_id = $2 AND status = 'PickedUp'
		RETURNING request_id`, deliveryID, volunteerID).Scan(&requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrConflict
		}
		return fmt.Errorf("repository.MarkDelivered.Delivery: %w", err)
	}

	var donationID string
	err = tx.QueryRow(ctx, `
		UPDATE requests SET status = 'Completed', updated_at = NOW()
		WHERE id = $1 AND status IN ('Pending', 'Approved')
		RETURNING donation_id`, requestID).Scan(&donationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrRequestNotActionable
		}
		return fmt.Errorf("repository.MarkDelivered.Request: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE donations SET status = 'delivered', updated_at = NOW()
		WHERE id = $1`, donationID); err != nil {
		return fmt.Errorf("repository.MarkDelivered.Donation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.MarkDelivered.Commit: %w", err)
	}
	return nil
}
