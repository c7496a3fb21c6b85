package donation

import (
	"context"
	"fmt"
	"time"

	"foodbridge/internal/models"
)

// ServiceInterface defines the contract for the donation service.
type ServiceInterface interface {
	CreateDonation(ctx context.Context, donorID string, req models.CreateDonationRequest) (*models.Donation, error)
	GetDonation(ctx context.Context, donationID string) (*models.Donation, error)
	ListAvailable(ctx context.Context, filter models.DonationFilter) ([]*models.Donation, error)
	ListMyDonations(ctx context.Context, donorID string) ([]*models.Donation, error)
	SetNeedsVolunteer(ctx context.Context, donationID, callerID string, needs bool) error
}

// ValidationError carries a field-level message for a 400 response. It is a
// caller fault, never logged as a server error.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Service implements the donation business logic.
type Service struct {
	repo RepositoryInterface
	now  func() time.Time
}

// NewService creates a new donation service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateDonation validates and stores a new food donation. Expiry must be a
// valid RFC 3339 timestamp that is not in the past.
func (s *Service) CreateDonation(ctx context.Context, donorID string, req models.CreateDonationRequest) (*models.Donation, error) {
	expiry, err := time.Parse(time.RFC3339, req.Expiry)
	if err != nil {
		return nil, &ValidationError{Message: "expiry must be a valid RFC 3339 timestamp"}
	}
	if expiry.Before(s.now()) {
		return nil, &ValidationError{Message: "expiry must not be in the past"}
	}
	// Coordinates come in pairs or not at all.
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, &ValidationError{Message: "latitude and longitude must be provided together"}
	}

	var prep *time.Time
	if req.PreparationDate != "" {
		t, err := time.Parse(time.RFC3339, req.PreparationDate)
		if err != nil {
			return nil, &ValidationError{Message: "preparation_date must be a valid RFC 3339 timestamp"}
		}
		prep = &t
	}

	d := &models.Donation{
		DonorID:              donorID,
		FoodName:             req.FoodName,
		Quantity:             req.Quantity,
		FoodType:             req.FoodType,
		Expiry:               expiry,
		PreparationDate:      prep,
		Location:             req.Location,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		PackagingDetails:     req.PackagingDetails,
		FoodTemperature:      req.FoodTemperature,
		StorageCondition:     req.StorageCondition,
		IngredientsAllergens: req.IngredientsAllergens,
		Instructions:         req.Instructions,
		PhotoRef:             req.PhotoRef,
	}

	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("service.CreateDonation: %w", err)
	}
	return created, nil
}

// GetDonation retrieves one donation.
func (s *Service) GetDonation(ctx context.Context, donationID string) (*models.Donation, error) {
	d, err := s.repo.FindByID(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("service.GetDonation: %w", err)
	}
	return d, nil
}

// ListAvailable returns the browse feed. A radius filter without a
// reference point is ignored rather than rejected.
func (s *Service) ListAvailable(ctx context.Context, filter models.DonationFilter) ([]*models.Donation, error) {
	if filter.Latitude == nil || filter.Longitude == nil {
		filter.RadiusKm = nil
	}
	donations, err := s.repo.ListAvailable(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ListAvailable: %w", err)
	}
	return donations, nil
}

// ListMyDonations returns the caller's own donations.
func (s *Service) ListMyDonations(ctx context.Context, donorID string) ([]*models.Donation, error) {
	donations, err := s.repo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, fmt.Errorf("service.ListMyDonations: %w", err)
	}
	return donations, nil
}

// SetNeedsVolunteer toggles the needs_volunteer flag. Only a party with an
// active request against the donation may flip it.
func (s *Service) SetNeedsVolunteer(ctx context.Context, donationID, callerID string, needs bool) error {
	ok, err := s.repo.HasActiveRequest(ctx, donationID, callerID)
	if err != nil {
		return fmt.Errorf("service.SetNeedsVolunteer: %w", err)
	}
	if !ok {
		return models.ErrForbidden
	}
	if err := s.repo.SetNeedsVolunteer(ctx, donationID, needs); err != nil {
		return fmt.Errorf("service.SetNeedsVolunteer: %w", err)
	}
	return nil
}
