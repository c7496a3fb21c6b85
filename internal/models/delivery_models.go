package models

import "time"

// Delivery status values. PendingPickup means the delivery exists but no
// volunteer is bound yet; Assigned means a volunteer holds it. Delivered is
// terminal.
const (
	DeliveryPendingPickup = "PendingPickup"
	DeliveryAssigned      = "Assigned"
	DeliveryPickedUp      = "PickedUp"
	DeliveryDelivered     = "Delivered"
)

// Delivery is the transport record linking an approved request to pickup
// and drop-off. At most one delivery exists per request, enforced by a
// unique constraint on request_id.
type Delivery struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	VolunteerID *string   `json:"volunteer_id,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined context for a volunteer's delivery list.
	FoodName     string `json:"food_name,omitempty"`
	Quantity     string `json:"quantity,omitempty"`
	DonorName    string `json:"donor_name,omitempty"`
	DonorAddress string `json:"donor_address,omitempty"`
	NGOName      string `json:"ngo_name,omitempty"`
	NGOAddress   string `json:"ngo_address,omitempty"`
}

// UpdateDeliveryStatusRequest is the volunteer's status transition payload.
type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PickedUp Delivered"`
}

// VolunteerMatch is a distance-ranked candidate returned by the matcher.
type VolunteerMatch struct {
	VolunteerID string  `json:"volunteer_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DistanceKm  float64 `json:"distance_km"`
}
