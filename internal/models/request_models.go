package models

import "time"

// FoodRequest status values. Completed and Rejected are terminal; no
// transition out of them ever succeeds.
const (
	RequestPending   = "Pending"
	RequestApproved  = "Approved"
	RequestRejected  = "Rejected"
	RequestCompleted = "Completed"
)

// FoodRequest is an NGO/needy party's claim against a donation, subject to
// donor approval. Many requests may reference one donation but only one can
// reach booking.
type FoodRequest struct {
	ID          string    `json:"id"`
	DonationID  string    `json:"donation_id"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined donation context for listings and ownership checks.
	DonorID        string     `json:"donor_id,omitempty"`
	FoodName       string     `json:"food_name,omitempty"`
	Quantity       string     `json:"quantity,omitempty"`
	Expiry         *time.Time `json:"expiry,omitempty"`
	Location       string     `json:"location,omitempty"`
	PhotoRef       string     `json:"photo_ref,omitempty"`
	DonationStatus string     `json:"donation_status,omitempty"`
	RequesterName  string     `json:"requester_name,omitempty"`
}

// ReviewRequest carries the donor's approve/reject decision.
type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=Approved Rejected"`
}

// BookDeliveryRequest books an approved request into an active delivery.
// VolunteerID is nil when the requester handles pickup themselves.
type BookDeliveryRequest struct {
	VolunteerID *string `json:"volunteer_id,omitempty"`
}
