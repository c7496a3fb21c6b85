package request

import (
	"context"
	"errors"
	"fmt"

	"foodbridge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the request repository. The
// multi-row operations (create, book, confirm) each run in a single
// transaction; a partial update is never visible to concurrent readers.
type RepositoryInterface interface {
	Create(ctx context.Context, donationID, requesterID string) (*models.FoodRequest, error)
	FindByID(ctx context.Context, requestID string) (*models.FoodRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*models.FoodRequest, error)
	ListIncoming(ctx context.Context, donorID string) ([]*models.FoodRequest, error)
	UpdateStatus(ctx context.Context, requestID, expected, status string) error
	BookDelivery(ctx context.Context, requestID, donationID string, volunteerID *string) (*models.Delivery, error)
	ConfirmReceived(ctx context.Context, requestID, donationID string) error
	GetUserContact(ctx context.Context, userID string) (name, email string, err error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new request repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a Pending request. The insert is conditioned on the
// donation still being 'available'; zero rows means the donation is gone or
// already ordered, which the caller maps to 404/409.
func (r *Repository) Create(ctx context.Context, donationID, requesterID string) (*models.FoodRequest, error) {
	query := `
		INSERT INTO requests (donation_id, requester_id, status)
		SELECT d.id, $2, 'Pending'
		FROM donations d
		WHERE d.id = $1 AND d.status = 'available'
		RETURNING id, donation_id, requester_id, status, created_at, updated_at`

	var req models.FoodRequest
	err := r.db.QueryRow(ctx, query, donationID, requesterID).Scan(
		&req.ID, &req.DonationID, &req.RequesterID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDonationUnavailable
		}
		if isUniqueViolation(err) {
			// One active request per requester per donation.
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateRequest: %w", err)
	}
	return &req, nil
}

// FindByID retrieves a request together with its donation context, which
// the service uses for ownership checks.
func (r *Repository) FindByID(ctx context.Context, requestID string) (*models.FoodRequest, error) {
	query := `
		SELECT r.id, r.donation_id, r.requester_id, r.status, r.created_at, r.updated_at,
		       d.donor_id, d.status, d.food_name, d.quantity, d.location
		FROM requests r
		JOIN donations d ON r.donation_id = d.id
		WHERE r.id = $1`

	var req models.FoodRequest
	err := r.db.QueryRow(ctx, query, requestID).Scan(
		&req.ID, &req.DonationID, &req.RequesterID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
		&req.DonorID, &req.DonationStatus, &req.FoodName, &req.Quantity, &req.Location,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return &req, nil
}

// ListByRequester retrieves the caller's requests with donation details.
func (r *Repository) ListByRequester(ctx context.Context, requesterID string) ([]*models.FoodRequest, error) {
	query := `
		SELECT r.id, r.donation_id, r.requester_id, r.status, r.created_at, r.updated_at,
		       d.donor_id, d.status, d.food_name, d.quantity, d.expiry, d.location, d.photo_ref
		FROM requests r
		JOIN donations d ON r.donation_id = d.id
		WHERE r.requester_id = $1
		ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query, requesterID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByRequester.Query: %w", err)
	}
	defer rows.Close()

	var requests []*models.FoodRequest
	for rows.Next() {
		var req models.FoodRequest
		if err := rows.Scan(
			&req.ID, &req.DonationID, &req.RequesterID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&req.DonorID, &req.DonationStatus, &req.FoodName, &req.Quantity, &req.Expiry,
			&req.Location, &req.PhotoRef,
		); err != nil {
			return nil, fmt.Errorf("repository.ListByRequester.Scan: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListByRequester.Rows: %w", err)
	}
	return requests, nil
}

// ListIncoming retrieves Pending requests against the donor's donations.
func (r *Repository) ListIncoming(ctx context.Context, donorID string) ([]*models.FoodRequest, error) {
	query := `
		SELECT r.id, r.donation_id, r.requester_id, r.status, r.created_at, r.updated_at,
		       d.donor_id, d.status, d.food_name, d.quantity, u.name
		FROM requests r
		JOIN donations d ON r.donation_id = d.id
		JOIN users u ON r.requester_id = u.id
		WHERE d.donor_id = $1 AND r.status = 'Pending'
		ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query, donorID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListIncoming.Query: %w", err)
	}
	defer rows.Close()

	var requests []*models.FoodRequest
	for rows.Next() {
		var req models.FoodRequest
		if err := rows.Scan(
			&req.ID, &req.DonationID, &req.RequesterID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&req.DonorID, &req.DonationStatus, &req.FoodName, &req.Quantity, &req.RequesterName,
		); err != nil {
			return nil, fmt.Errorf("repository.ListIncoming.Scan: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListIncoming.Rows: %w", err)
	}
	return requests, nil
}

// UpdateStatus is a compare-and-set on the request status. Zero affected
// rows means the request already left the expected state.
func (r *Repository) UpdateStatus(ctx context.Context, requestID, expected, status string) error {
	query := `UPDATE requests SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	cmd, err := r.db.Exec(ctx, query, requestID, expected, status)
	if err != nil {
		return fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrRequestNotActionable
	}
	return nil
}

// BookDelivery creates (or re-targets) the delivery for a request and flips
// the donation to 'ordered', all in one transaction.
//
// First booking: insert the delivery row, then a conditional update moves
// the donation from 'available' to 'ordered'. Losing that compare-and-set
// rolls everything back, so two bookings against the same donation resolve
// to exactly one winner. Re-booking (delivery row already present) only
// updates the volunteer binding and requires the donation to already be
// 'ordered'.
func (r *Repository) BookDelivery(ctx context.Context, requestID, donationID string, volunteerID *string) (*models.Delivery, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.BookDelivery.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	status := models.DeliveryPendingPickup
	if volunteerID != nil {
		status = models.DeliveryAssigned
	}

	var delivery models.Delivery
	var existingID string
	err = tx.QueryRow(ctx, `SELECT id FROM deliveries WHERE request_id = $1 FOR UPDATE`, requestID).Scan(&existingID)
	switch {
	case err == nil:
		// Idempotent re-booking: never insert a second delivery row.
		err = tx.QueryRow(ctx, `
			UPDATE deliveries SET volunteer_id = $2, status = $3, updated_at = NOW()
			WHERE id = $1 AND status IN ('PendingPickup', 'Assigned')
			RETURNING id, request_id, volunteer_id, status, created_at, updated_at`,
			existingID, volunteerID, status,
		).Scan(&delivery.ID, &delivery.RequestID, &delivery.VolunteerID, &delivery.Status,
			&delivery.CreatedAt, &delivery.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, models.ErrRequestNotActionable
			}
			return nil, fmt.Errorf("repository.BookDelivery.Update: %w", err)
		}
		cmd, err := tx.Exec(ctx, `
			UPDATE donations SET status = 'ordered', updated_at = NOW()
			WHERE id = $1 AND status = 'ordered'`, donationID)
		if err != nil {
			return nil, fmt.Errorf("repository.BookDelivery.Donation: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return nil, models.ErrDonationUnavailable
		}

	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, `
			INSERT INTO deliveries (request_id, volunteer_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, request_id, volunteer_id, status, created_at, updated_at`,
			requestID, volunteerID, status,
		).Scan(&delivery.ID, &delivery.RequestID, &delivery.VolunteerID, &delivery.Status,
			&delivery.CreatedAt, &delivery.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, models.ErrDeliveryClaimed
			}
			return nil, fmt.Errorf("repository.BookDelivery.Insert: %w", err)
		}
		cmd, err := tx.Exec(ctx, `
			UPDATE donations SET status = 'ordered', updated_at = NOW()
			WHERE id = $1 AND status = 'available'`, donationID)
		if err != nil {
			return nil, fmt.Errorf("repository.BookDelivery.Donation: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			// Lost the race for the donation; the rollback also drops the
			// delivery row inserted above.
			return nil, models.ErrDonationUnavailable
		}

	default:
		return nil, fmt.Errorf("repository.BookDelivery.Lookup: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.BookDelivery.Commit: %w", err)
	}
	return &delivery, nil
}

// ConfirmReceived finalizes the triad: request Completed, donation
// delivered, and the delivery row (if any) Delivered, in one transaction.
func (r *Repository) ConfirmReceived(ctx context.Context, requestID, donationID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.ConfirmReceived.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE requests SET status = 'Completed', updated_at = NOW()
		WHERE id = $1 AND status = 'Approved'`, requestID)
	if err != nil {
		return fmt.Errorf("repository.ConfirmReceived.Request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrRequestNotActionable
	}

	if _, err := tx.Exec(ctx, `
		UPDATE donations SET status = 'delivered', updated_at = NOW()
		WHERE id = $1`, donationID); err != nil {
		return fmt.Errorf("repository.ConfirmReceived.Donation: %w", err)
	}

	// Self-pickup requests have no delivery row; that is fine.
	if _, err := tx.Exec(ctx, `
		UPDATE deliveries SET status = 'Delivered', updated_at = NOW()
		WHERE request_id = $1 AND status <> 'Delivered'`, requestID); err != nil {
		return fmt.Errorf("repository.ConfirmReceived.Delivery: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.ConfirmReceived.Commit: %w", err)
	}
	return nil
}

// GetUserContact looks up a user's name and email for notifications.
func (r *Repository) GetUserContact(ctx context.Context, userID string) (string, string, error) {
	var name, email string
	err := r.db.QueryRow(ctx, `SELECT name, email FROM users WHERE id = $1`, userID).Scan(&name, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", models.ErrNotFound
		}
		return "", "", fmt.Errorf("repository.GetUserContact: %w", err)
	}
	return name, email, nil
}
