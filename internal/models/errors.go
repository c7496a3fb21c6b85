package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrInvalidToken = errors.New("token not found or expired")

// ErrDonationUnavailable indicates the donation is no longer open for
// requests or booking (already ordered or delivered).
var ErrDonationUnavailable = errors.New("donation not available or already ordered")

// ErrRequestNotActionable indicates the request has already left the state
// the attempted transition requires (e.g. approving a rejected request).
var ErrRequestNotActionable = errors.New("request is not in an actionable state")

// ErrDeliveryClaimed indicates another volunteer already holds the delivery
// for this request.
var ErrDeliveryClaimed = errors.New("request already accepted by another volunteer")

// ErrorResponse is the JSON error body returned on every failure path.
type ErrorResponse struct {
	Message string `json:"message"`
}
