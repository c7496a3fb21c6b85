package delivery

import (
	"context"
	"errors"
	"fmt"

	"foodbridge/internal/models"
)

// ServiceInterface defines the contract for the delivery service.
type ServiceInterface interface {
	AcceptRequest(ctx context.Context, requestID, volunteerID string) (*models.Delivery, error)
	ListMyDeliveries(ctx context.Context, volunteerID string) ([]*models.Delivery, error)
	ListOpenPickups(ctx context.Context) ([]*models.FoodRequest, error)
	UpdateStatus(ctx context.Context, deliveryID, volunteerID, status string) error
}

// Service implements the volunteer-facing delivery logic.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new delivery service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// AcceptRequest claims a request for the volunteer. The repository's
// unique constraint decides the winner when two volunteers race.
func (s *Service) AcceptRequest(ctx context.Context, requestID, volunteerID string) (*models.Delivery, error) {
	d, err := s.repo.Accept(ctx, requestID, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("service.AcceptRequest: %w", err)
	}
	return d, nil
}

// ListMyDeliveries returns the volunteer's deliveries, active first.
func (s *Service) ListMyDeliveries(ctx context.Context, volunteerID string) ([]*models.Delivery, error) {
	deliveries, err := s.repo.ListByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("service.ListMyDeliveries: %w", err)
	}
	return deliveries, nil
}

// ListOpenPickups returns requests still waiting for a volunteer.
func (s *Service) ListOpenPickups(ctx context.Context) ([]*models.FoodRequest, error) {
	requests, err := s.repo.ListOpenPickups(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ListOpenPickups: %w", err)
	}
	return requests, nil
}

// UpdateStatus applies a volunteer's PickedUp or Delivered transition. The
// ownership check rides on the conditional update (id + volunteer_id);
// invalid target states are rejected before touching the store. A delivery
// mismatch is reported as ErrForbidden when the row exists but belongs to
// someone else, ErrNotFound when it does not exist, and ErrConflict when it
// is in the wrong state.
func (s *Service) UpdateStatus(ctx context.Context, deliveryID, volunteerID, status string) error {
	var err error
	switch status {
	case models.DeliveryPickedUp:
		err = s.repo.MarkPickedUp(ctx, deliveryID, volunteerID)
	case models.DeliveryDelivered:
		err = s.repo.MarkDelivered(ctx, deliveryID, volunteerID)
	default:
		return models.ErrConflict
	}
	if err == nil {
		return nil
	}
	if !isLostUpdate(err) {
		return fmt.Errorf("service.UpdateStatus: %w", err)
	}

	// The conditional update affected zero rows; re-read once to report the
	// right failure instead of a blanket 404.
	d, ferr := s.repo.FindByID(ctx, deliveryID)
	if ferr != nil {
		return models.ErrNotFound
	}
	if d.VolunteerID == nil || *d.VolunteerID != volunteerID {
		return models.ErrForbidden
	}
	return models.ErrConflict
}

func isLostUpdate(err error) bool {
	return errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrRequestNotActionable)
}
