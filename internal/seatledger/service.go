package seatledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vqminh/tour-booking/internal"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CheckCapacity is the advisory check used at cart/add time. It takes no
// reservation: it only rejects requests that obviously cannot fit, counting
// seats the same actor already holds toward the request. The authoritative
// guard is Commit.
func (s *Service) CheckCapacity(ctx context.Context, tourID int64, date string, adults, children, alreadyHeld int) (*Availability, error) {
	dep, err := s.repo.GetDeparture(ctx, tourID, date)
	if err != nil {
		return nil, err
	}

	requested := adults + children
	if requested+alreadyHeld > dep.SeatsLeft {
		s.logger.Info("capacity check rejected",
			"tour_id", tourID,
			"date", date,
			"requested", requested,
			"already_held", alreadyHeld,
			"seats_left", dep.SeatsLeft)
		return nil, internal.NewExceedsCapacityError(dep.SeatsLeft, dep.SeatsTotal)
	}

	return &Availability{
		TourID:        tourID,
		DepartureDate: date,
		SeatsLeft:     dep.SeatsLeft,
		SeatsTotal:    dep.SeatsTotal,
	}, nil
}

// Commit is the authoritative decrement performed when a booking goes paid.
// The repository executes it as decrement-if-sufficient, so two concurrent
// confirmations for the last seat cannot both succeed.
func (s *Service) Commit(ctx context.Context, tourID int64, date string, adults, children int) error {
	seats := adults + children
	if seats <= 0 {
		return internal.NewValidationError("seat count must be positive", internal.ErrCodeValidationFailed)
	}

	if err := s.repo.CommitSeats(ctx, tourID, date, seats); err != nil {
		return err
	}

	s.logger.Info("seats committed",
		"tour_id", tourID,
		"date", date,
		"seats", seats)
	return nil
}

// Release restores seats when a previously committed booking is cancelled or
// refunded, and when rolling back a partially committed multi-item booking.
func (s *Service) Release(ctx context.Context, tourID int64, date string, adults, children int) error {
	seats := adults + children
	if seats <= 0 {
		return internal.NewValidationError("seat count must be positive", internal.ErrCodeValidationFailed)
	}

	if err := s.repo.ReleaseSeats(ctx, tourID, date, seats); err != nil {
		return fmt.Errorf("release %d seats on tour %d %s: %w", seats, tourID, date, err)
	}

	s.logger.Info("seats released",
		"tour_id", tourID,
		"date", date,
		"seats", seats)
	return nil
}
