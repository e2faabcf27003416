package seatledger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/core/datamodel/tour"
	"github.com/vqminh/tour-booking/internal/seatledger"
)

func TestSeatLedger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SeatLedger Suite")
}

type mockRepository struct {
	departure *tour.Departure

	getErr     error
	commitErr  error
	releaseErr error

	committed []int
	released  []int
}

func (m *mockRepository) GetDeparture(ctx context.Context, tourID int64, date string) (*tour.Departure, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.departure, nil
}

func (m *mockRepository) CommitSeats(ctx context.Context, tourID int64, date string, seats int) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = append(m.committed, seats)
	return nil
}

func (m *mockRepository) ReleaseSeats(ctx context.Context, tourID int64, date string, seats int) error {
	if m.releaseErr != nil {
		return m.releaseErr
	}
	m.released = append(m.released, seats)
	return nil
}

var _ = Describe("SeatLedgerService", func() {
	var (
		repo    *mockRepository
		service *seatledger.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = &mockRepository{
			departure: &tour.Departure{
				ID:            1,
				TourID:        10,
				DepartureDate: "2026-09-15",
				SeatsTotal:    20,
				SeatsLeft:     5,
			},
		}
		service = seatledger.NewService(repo, logger)
		ctx = context.Background()
	})

	Describe("CheckCapacity", func() {
		It("should allow a request that fits", func() {
			avail, err := service.CheckCapacity(ctx, 10, "2026-09-15", 2, 1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(avail.SeatsLeft).To(Equal(5))
			Expect(avail.SeatsTotal).To(Equal(20))
		})

		It("should allow a request that exactly fills the departure", func() {
			_, err := service.CheckCapacity(ctx, 10, "2026-09-15", 3, 2, 0)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject a request that exceeds remaining seats", func() {
			_, err := service.CheckCapacity(ctx, 10, "2026-09-15", 4, 2, 0)
			Expect(err).To(HaveOccurred())
			Expect(internal.IsErrorCode(err, internal.ErrCodeExceedsCapacity)).To(BeTrue())
		})

		It("should count seats already held toward the request", func() {
			// 3 held + 3 requested > 5 left
			_, err := service.CheckCapacity(ctx, 10, "2026-09-15", 2, 1, 3)
			Expect(err).To(HaveOccurred())
			Expect(internal.IsErrorCode(err, internal.ErrCodeExceedsCapacity)).To(BeTrue())
		})

		It("should propagate an unknown departure", func() {
			repo.getErr = internal.ErrDepartureNotFound
			_, err := service.CheckCapacity(ctx, 10, "2026-09-16", 1, 0, 0)
			Expect(internal.IsErrorCode(err, internal.ErrCodeDepartureNotFound)).To(BeTrue())
		})
	})

	Describe("Commit", func() {
		It("should commit the combined head count", func() {
			err := service.Commit(ctx, 10, "2026-09-15", 2, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.committed).To(Equal([]int{3}))
		})

		It("should reject a non-positive seat count", func() {
			err := service.Commit(ctx, 10, "2026-09-15", 0, 0)
			Expect(err).To(HaveOccurred())
			Expect(repo.committed).To(BeEmpty())
		})

		It("should surface an insufficient-seats failure", func() {
			repo.commitErr = internal.NewInsufficientSeatsError(10, "2026-09-15")
			err := service.Commit(ctx, 10, "2026-09-15", 2, 0)
			Expect(internal.IsErrorCode(err, internal.ErrCodeInsufficientSeats)).To(BeTrue())
		})
	})

	Describe("Release", func() {
		It("should release the combined head count", func() {
			err := service.Release(ctx, 10, "2026-09-15", 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.released).To(Equal([]int{3}))
		})

		It("should reject a non-positive seat count", func() {
			err := service.Release(ctx, 10, "2026-09-15", 0, 0)
			Expect(err).To(HaveOccurred())
			Expect(repo.released).To(BeEmpty())
		})
	})
})
