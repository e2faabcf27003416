package booking_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/booking"
	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
)

var _ = Describe("BookingService", func() {
	var (
		repo    *fakeBookingRepo
		seats   *fakeSeatLedger
		service *booking.Service
		ctx     context.Context
	)

	newPaidBooking := func(userID int64) *bookingdm.Booking {
		orderID := "order-1"
		return &bookingdm.Booking{
			UserID:        userID,
			Status:        bookingdm.StatusPaid,
			PaymentStatus: bookingdm.PaymentStatusCompleted,
			PaymentOrderID: &orderID,
			TotalAmount:   1250000,
			Currency:      "VND",
			Items: sessiondm.LineItems{{
				TourID:         10,
				DepartureDate:  "2026-09-15",
				Adults:         2,
				Children:       1,
				UnitPriceAdult: 500000,
				UnitPriceChild: 250000,
			}},
		}
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newFakeBookingRepo()
		seats = newFakeSeatLedger()
		seats.set(10, "2026-09-15", 2)
		service = booking.NewService(repo, seats, logger)
		ctx = context.Background()
	})

	Describe("GetBooking", func() {
		It("should return the caller's booking", func() {
			b := newPaidBooking(1)
			Expect(repo.Create(ctx, b)).NotTo(HaveOccurred())

			got, err := service.GetBooking(ctx, 1, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(b.ID))
		})

		It("should hide another user's booking behind not found", func() {
			b := newPaidBooking(2)
			Expect(repo.Create(ctx, b)).NotTo(HaveOccurred())

			_, err := service.GetBooking(ctx, 1, b.ID)
			Expect(internal.IsErrorCode(err, internal.ErrCodeBookingNotFound)).To(BeTrue())
		})
	})

	Describe("Cancel", func() {
		It("should cancel a paid booking and release its seats", func() {
			b := newPaidBooking(1)
			Expect(repo.Create(ctx, b)).NotTo(HaveOccurred())

			cancelled, err := service.Cancel(ctx, 1, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cancelled.Status).To(Equal(bookingdm.StatusCancelled))
			Expect(seats.left(10, "2026-09-15")).To(Equal(5))
		})

		It("should refuse to cancel a booking that is not paid", func() {
			b := newPaidBooking(1)
			b.Status = bookingdm.StatusPending
			Expect(repo.Create(ctx, b)).NotTo(HaveOccurred())

			_, err := service.Cancel(ctx, 1, b.ID)
			Expect(err).To(HaveOccurred())
			Expect(seats.releases).To(Equal(0))
		})

		It("should refuse to cancel another user's booking", func() {
			b := newPaidBooking(2)
			Expect(repo.Create(ctx, b)).NotTo(HaveOccurred())

			_, err := service.Cancel(ctx, 1, b.ID)
			Expect(internal.IsErrorCode(err, internal.ErrCodeBookingNotFound)).To(BeTrue())
			Expect(seats.releases).To(Equal(0))
		})
	})
})
