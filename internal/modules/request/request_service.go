package request

import (
	"context"
	"fmt"
	"log"

	"foodbridge/internal/models"
)

// NotifierInterface sends best-effort emails on lifecycle transitions.
// Failures are logged, never surfaced to the caller.
type NotifierInterface interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ServiceInterface defines the contract for the request coordinator. Every
// operation validates the caller's role and ownership before touching the
// lifecycle.
type ServiceInterface interface {
	CreateRequest(ctx context.Context, donationID, requesterID string, role models.Role) (*models.FoodRequest, error)
	ListMyRequests(ctx context.Context, requesterID string) ([]*models.FoodRequest, error)
	ListIncoming(ctx context.Context, donorID string) ([]*models.FoodRequest, error)
	Review(ctx context.Context, requestID, donorID, status string) (*models.FoodRequest, error)
	BookDelivery(ctx context.Context, requestID, callerID string, role models.Role, volunteerID *string) (*models.Delivery, error)
	ConfirmReceived(ctx context.Context, requestID, callerID string) error
}

// Service implements the coordinator.
type Service struct {
	repo     RepositoryInterface
	notifier NotifierInterface
}

// NewService creates a new request service. The notifier may be nil, in
// which case transition emails are skipped.
func NewService(repo RepositoryInterface, notifier NotifierInterface) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// CreateRequest places a Pending claim against an available donation. The
// donation itself stays 'available' until booking, so other parties may
// still request it.
func (s *Service) CreateRequest(ctx context.Context, donationID, requesterID string, role models.Role) (*models.FoodRequest, error) {
	if !role.CanRequest() {
		return nil, models.ErrForbidden
	}
	req, err := s.repo.Create(ctx, donationID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateRequest: %w", err)
	}
	return req, nil
}

// ListMyRequests returns the requester's claims with donation context.
func (s *Service) ListMyRequests(ctx context.Context, requesterID string) ([]*models.FoodRequest, error) {
	requests, err := s.repo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("service.ListMyRequests: %w", err)
	}
	return requests, nil
}

// ListIncoming returns Pending requests against the donor's donations.
func (s *Service) ListIncoming(ctx context.Context, donorID string) ([]*models.FoodRequest, error) {
	requests, err := s.repo.ListIncoming(ctx, donorID)
	if err != nil {
		return nil, fmt.Errorf("service.ListIncoming: %w", err)
	}
	return requests, nil
}

// Review applies the donor's approve/reject decision. Only the donation
// owner may decide, and only while the request is Pending. A rejection
// leaves the donation available for other requesters.
func (s *Service) Review(ctx context.Context, requestID, donorID, status string) (*models.FoodRequest, error) {
	if status != models.RequestApproved && status != models.RequestRejected {
		return nil, models.ErrRequestNotActionable
	}

	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("service.Review: %w", err)
	}
	if req.DonorID != donorID {
		return nil, models.ErrForbidden
	}
	if req.Status != models.RequestPending {
		return nil, models.ErrRequestNotActionable
	}

	if err := s.repo.UpdateStatus(ctx, requestID, models.RequestPending, status); err != nil {
		return nil, fmt.Errorf("service.Review: %w", err)
	}
	req.Status = status

	if status == models.RequestApproved {
		s.notify(ctx, req.RequesterID, "Your food request was approved",
			fmt.Sprintf("Your request for %q has been approved by the donor. You can now book the pickup.", req.FoodName))
	}
	return req, nil
}

// BookDelivery turns an approved request into an active delivery and
// marks the donation ordered. The donor or the requester may book; a
// requester may also book their own still-Pending request in the
// simplified self-service flow. Passing a volunteer binds the delivery to
// them immediately.
func (s *Service) BookDelivery(ctx context.Context, requestID, callerID string, role models.Role, volunteerID *string) (*models.Delivery, error) {
	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("service.BookDelivery: %w", err)
	}

	isDonor := callerID == req.DonorID && role == models.RoleDonor
	isRequester := callerID == req.RequesterID
	if !isDonor && !isRequester {
		return nil, models.ErrForbidden
	}

	switch req.Status {
	case models.RequestApproved:
	case models.RequestPending:
		if !isRequester {
			return nil, models.ErrRequestNotActionable
		}
	default:
		return nil, models.ErrRequestNotActionable
	}

	delivery, err := s.repo.BookDelivery(ctx, requestID, req.DonationID, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("service.BookDelivery: %w", err)
	}

	if volunteerID != nil {
		s.notify(ctx, *volunteerID, "New delivery assignment",
			fmt.Sprintf("You have been booked to deliver %q from %s.", req.FoodName, req.Location))
	}
	return delivery, nil
}

// ConfirmReceived is the requester's final confirmation: request
// Completed, donation delivered, delivery (if any) Delivered.
func (s *Service) ConfirmReceived(ctx context.Context, requestID, callerID string) error {
	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("service.ConfirmReceived: %w", err)
	}
	if req.RequesterID != callerID {
		return models.ErrForbidden
	}
	if req.Status != models.RequestApproved {
		return models.ErrRequestNotActionable
	}

	if err := s.repo.ConfirmReceived(ctx, requestID, req.DonationID); err != nil {
		return fmt.Errorf("service.ConfirmReceived: %w", err)
	}
	return nil
}

// notify delivers a lifecycle email without blocking the transition.
func (s *Service) notify(ctx context.Context, userID, subject, body string) {
	if s.notifier == nil {
		return
	}
	_, email, err := s.repo.GetUserContact(ctx, userID)
	if err != nil {
		log.Printf("notify: contact lookup for %s failed: %v", userID, err)
		return
	}
	if err := s.notifier.Send(ctx, email, subject, body); err != nil {
		log.Printf("notify: send to %s failed: %v", email, err)
	}
}
