package booking

import (
	"context"
	"log/slog"

	"github.com/vqminh/tour-booking/internal"
	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
)

// Service covers the read side of bookings plus customer-initiated
// cancellation of a paid booking (which releases its seats).
type Service struct {
	repo   Repository
	seats  SeatLedger
	logger *slog.Logger
}

func NewService(repo Repository, seats SeatLedger, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		seats:  seats,
		logger: logger,
	}
}

func (s *Service) GetBooking(ctx context.Context, userID, bookingID int64) (*bookingdm.Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, internal.ErrBookingNotFound
	}
	return b, nil
}

func (s *Service) ListBookings(ctx context.Context, userID int64) ([]*bookingdm.Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) FindByPaymentOrderID(ctx context.Context, orderID string) (*bookingdm.Booking, error) {
	return s.repo.GetByPaymentOrderID(ctx, orderID)
}

// Cancel cancels a paid booking and restores its committed seats. Refund
// handling with the provider is an operations process, not part of this
// path.
func (s *Service) Cancel(ctx context.Context, userID, bookingID int64) (*bookingdm.Booking, error) {
	b, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status != bookingdm.StatusPaid {
		return nil, internal.NewValidationError("only paid bookings can be cancelled", internal.ErrCodeBookingNotPending)
	}

	if err := s.repo.UpdateStatus(ctx, b.ID, bookingdm.StatusCancelled, b.PaymentStatus); err != nil {
		return nil, err
	}

	for _, item := range b.Items {
		if err := s.seats.Release(ctx, item.TourID, item.DepartureDate, item.Adults, item.Children); err != nil {
			s.logger.Error("failed to release seats for cancelled booking",
				"booking_id", b.ID,
				"tour_id", item.TourID,
				"date", item.DepartureDate,
				"error", err)
		}
	}

	b.Status = bookingdm.StatusCancelled
	s.logger.Info("booking cancelled", "booking_id", b.ID, "user_id", userID)
	return b, nil
}
