package models

import "time"

// Role identifies what a user can do on the platform. Every user carries
// exactly one role; role-specific data lives on a satellite profile row.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleNeedy     Role = "needy"
	RoleNGO       Role = "ngo"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// CanRequest reports whether the role may claim donations.
func (r Role) CanRequest() bool {
	return r == RoleNGO || r == RoleNeedy
}

// User is the identity record referenced by donations, requests and
// deliveries. Registration and profile editing are handled elsewhere; the
// core only reads these rows.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	City      string    `json:"city,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VolunteerProfile carries the volunteer's last known coordinates used by
// the nearest-volunteer matcher. Volunteers without coordinates are never
// matched.
type VolunteerProfile struct {
	UserID    string   `json:"user_id"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Vehicle   string   `json:"vehicle,omitempty"`
}

// NGOProfile holds the organisation details of an NGO account.
type NGOProfile struct {
	UserID           string `json:"user_id"`
	OrganisationName string `json:"organisation_name"`
	RegistrationNo   string `json:"registration_no,omitempty"`
}

// DonorProfile holds donor-side details.
type DonorProfile struct {
	UserID       string `json:"user_id"`
	Organisation string `json:"organisation,omitempty"`
}
