package models

import "time"

// Donation status values. A donation only ever moves forward:
// available -> ordered -> delivered. Rows are never deleted.
const (
	DonationAvailable = "available"
	DonationOrdered   = "ordered"
	DonationDelivered = "delivered"
)

// Donation represents a posted offer of surplus food.
type Donation struct {
	ID                   string     `json:"id"`
	DonorID              string     `json:"donor_id"`
	FoodName             string     `json:"food_name"`
	Quantity             string     `json:"quantity"`
	FoodType             string     `json:"food_type,omitempty"`
	Expiry               time.Time  `json:"expiry"`
	PreparationDate      *time.Time `json:"preparation_date,omitempty"`
	Location             string     `json:"location,omitempty"`
	Latitude             *float64   `json:"latitude,omitempty"`
	Longitude            *float64   `json:"longitude,omitempty"`
	PackagingDetails     string     `json:"packaging_details,omitempty"`
	FoodTemperature      string     `json:"food_temperature,omitempty"`
	StorageCondition     string     `json:"storage_condition,omitempty"`
	IngredientsAllergens string     `json:"ingredients_allergens,omitempty"`
	Instructions         string     `json:"instructions,omitempty"`
	PhotoRef             string     `json:"photo_ref,omitempty"`
	NeedsVolunteer       bool       `json:"needs_volunteer"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Denormalised donor fields for feed listings.
	DonorName string `json:"donor_name,omitempty"`
	DonorCity string `json:"donor_city,omitempty"`
	// Distance from the caller's reference point, only set on geo-filtered
	// feed queries.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// CreateDonationRequest is the payload for posting a new donation.
type CreateDonationRequest struct {
	FoodName             string   `json:"food_name" validate:"required"`
	Quantity             string   `json:"quantity" validate:"required"`
	Expiry               string   `json:"expiry" validate:"required"`
	FoodType             string   `json:"food_type,omitempty"`
	PreparationDate      string   `json:"preparation_date,omitempty"`
	Location             string   `json:"location,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude            *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	PackagingDetails     string   `json:"packaging_details,omitempty"`
	FoodTemperature      string   `json:"food_temperature,omitempty"`
	StorageCondition     string   `json:"storage_condition,omitempty"`
	IngredientsAllergens string   `json:"ingredients_allergens,omitempty"`
	Instructions         string   `json:"instructions,omitempty"`
	PhotoRef             string   `json:"photo_ref,omitempty"`
}

// DonationFilter narrows the available-food feed. When Latitude, Longitude
// and RadiusKm are all set the feed is distance-filtered and sorted.
type DonationFilter struct {
	FoodType         string
	StorageCondition string
	FoodName         string
	City             string
	Latitude         *float64
	Longitude        *float64
	RadiusKm         *float64
}

// NeedVolunteerRequest toggles whether the claimer wants a volunteer to
// carry out the delivery.
type NeedVolunteerRequest struct {
	NeedsVolunteer bool `json:"needs_volunteer"`
}
