// Package tour is the read-only catalog surface the storefront browses.
// Pricing lives here; availability numbers are advisory snapshots of the
// departures table and may be cached briefly.
package tour

import (
	"context"

	tourdm "github.com/vqminh/tour-booking/internal/core/datamodel/tour"
)

type Repository interface {
	ListTours(ctx context.Context, activeOnly bool) ([]*tourdm.Tour, error)
	GetTour(ctx context.Context, id int64) (*tourdm.Tour, error)
	GetTourBySlug(ctx context.Context, slug string) (*tourdm.Tour, error)
	ListDepartures(ctx context.Context, tourID int64) ([]*tourdm.Departure, error)
	GetDeparture(ctx context.Context, tourID int64, date string) (*tourdm.Departure, error)
}
