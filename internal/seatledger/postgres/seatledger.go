package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/core/datamodel/tour"
	"github.com/vqminh/tour-booking/internal/seatledger"
)

type SeatLedgerRepository struct {
	db *gorm.DB
}

func NewSeatLedgerRepository(db *gorm.DB) seatledger.Repository {
	return &SeatLedgerRepository{db: db}
}

func (r *SeatLedgerRepository) GetDeparture(ctx context.Context, tourID int64, date string) (*tour.Departure, error) {
	var dep tour.Departure
	err := r.db.WithContext(ctx).
		Where("tour_id = ? AND departure_date = ?", tourID, date).
		First(&dep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDepartureNotFound
		}
		return nil, err
	}
	return &dep, nil
}

// CommitSeats is the oversell guard: a single decrement-if-sufficient so the
// database serializes concurrent confirmations for the same departure. Zero
// rows affected means either the departure does not exist or the counter
// cannot satisfy the request; the follow-up read disambiguates.
func (r *SeatLedgerRepository) CommitSeats(ctx context.Context, tourID int64, date string, seats int) error {
	res := r.db.WithContext(ctx).
		Model(&tour.Departure{}).
		Where("tour_id = ? AND departure_date = ? AND seats_left >= ?", tourID, date, seats).
		UpdateColumn("seats_left", gorm.Expr("seats_left - ?", seats))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetDeparture(ctx, tourID, date); err != nil {
			return err
		}
		return internal.NewInsufficientSeatsError(tourID, date)
	}
	return nil
}

// ReleaseSeats restores seats without ever pushing seats_left past
// seats_total. A failed guard means the ledger and the booking history
// disagree; surface it rather than clamping silently.
func (r *SeatLedgerRepository) ReleaseSeats(ctx context.Context, tourID int64, date string, seats int) error {
	res := r.db.WithContext(ctx).
		Model(&tour.Departure{}).
		Where("tour_id = ? AND departure_date = ? AND seats_left + ? <= seats_total", tourID, date, seats).
		UpdateColumn("seats_left", gorm.Expr("seats_left + ?", seats))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetDeparture(ctx, tourID, date); err != nil {
			return err
		}
		return internal.NewConflictError("releasing seats would exceed the departure total", internal.ErrCodeValidationFailed)
	}
	return nil
}
