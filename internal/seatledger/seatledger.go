// Package seatledger is the admission control for departure capacity. It is
// consulted advisorily at cart time and authoritatively when a booking
// transitions to paid; only the authoritative commit actually guards against
// oversell, and it must be a single conditional decrement at the storage
// layer.
package seatledger

import (
	"context"

	"github.com/vqminh/tour-booking/internal/core/datamodel/tour"
)

// Availability is the snapshot returned by the advisory check.
type Availability struct {
	TourID        int64  `json:"tour_id"`
	DepartureDate string `json:"departure_date"`
	SeatsLeft     int    `json:"seats_left"`
	SeatsTotal    int    `json:"seats_total"`
}

// Repository is the storage contract. CommitSeats and ReleaseSeats must be
// implemented as conditional updates, never read-modify-write.
type Repository interface {
	GetDeparture(ctx context.Context, tourID int64, date string) (*tour.Departure, error)
	// CommitSeats decrements seats_left by seats only if the counter can
	// satisfy the request; returns internal.ErrCodeInsufficientSeats
	// otherwise.
	CommitSeats(ctx context.Context, tourID int64, date string, seats int) error
	// ReleaseSeats is the inverse of CommitSeats, guarded so seats_left
	// never exceeds seats_total.
	ReleaseSeats(ctx context.Context, tourID int64, date string, seats int) error
}
