package postgres

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/core/datamodel/tour"
	"github.com/vqminh/tour-booking/internal/seatledger"
)

func TestSeatLedgerRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SeatLedgerRepository Suite")
}

var _ = Describe("SeatLedgerRepository", func() {
	var (
		db   *gorm.DB
		repo seatledger.Repository
		ctx  context.Context
	)

	seed := func(seatsLeft, seatsTotal int) {
		dep := &tour.Departure{
			TourID:        10,
			DepartureDate: "2026-09-15",
			SeatsTotal:    seatsTotal,
			SeatsLeft:     seatsLeft,
		}
		Expect(db.Create(dep).Error).NotTo(HaveOccurred())
	}

	seatsLeft := func() int {
		var dep tour.Departure
		err := db.Where("tour_id = ? AND departure_date = ?", 10, "2026-09-15").First(&dep).Error
		Expect(err).NotTo(HaveOccurred())
		return dep.SeatsLeft
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&tour.Departure{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewSeatLedgerRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("GetDeparture", func() {
		It("should return the departure", func() {
			seed(5, 20)
			dep, err := repo.GetDeparture(ctx, 10, "2026-09-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(dep.SeatsLeft).To(Equal(5))
			Expect(dep.SeatsTotal).To(Equal(20))
		})

		It("should map a missing row to departure not found", func() {
			_, err := repo.GetDeparture(ctx, 10, "2026-09-15")
			Expect(internal.IsErrorCode(err, internal.ErrCodeDepartureNotFound)).To(BeTrue())
		})
	})

	Describe("CommitSeats", func() {
		It("should decrement when enough seats remain", func() {
			seed(5, 20)
			err := repo.CommitSeats(ctx, 10, "2026-09-15", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(seatsLeft()).To(Equal(2))
		})

		It("should allow taking the last seat", func() {
			seed(1, 20)
			err := repo.CommitSeats(ctx, 10, "2026-09-15", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(seatsLeft()).To(Equal(0))
		})

		It("should refuse a second commit once the counter is drained", func() {
			seed(1, 20)
			Expect(repo.CommitSeats(ctx, 10, "2026-09-15", 1)).NotTo(HaveOccurred())

			err := repo.CommitSeats(ctx, 10, "2026-09-15", 1)
			Expect(internal.IsErrorCode(err, internal.ErrCodeInsufficientSeats)).To(BeTrue())
			Expect(seatsLeft()).To(Equal(0))
		})

		It("should refuse a commit larger than the remainder without touching the counter", func() {
			seed(2, 20)
			err := repo.CommitSeats(ctx, 10, "2026-09-15", 3)
			Expect(internal.IsErrorCode(err, internal.ErrCodeInsufficientSeats)).To(BeTrue())
			Expect(seatsLeft()).To(Equal(2))
		})

		It("should report a missing departure instead of insufficient seats", func() {
			err := repo.CommitSeats(ctx, 10, "2026-09-15", 1)
			Expect(internal.IsErrorCode(err, internal.ErrCodeDepartureNotFound)).To(BeTrue())
		})
	})

	Describe("ReleaseSeats", func() {
		It("should restore seats", func() {
			seed(2, 20)
			err := repo.ReleaseSeats(ctx, 10, "2026-09-15", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(seatsLeft()).To(Equal(5))
		})

		It("should refuse to push seats_left past seats_total", func() {
			seed(19, 20)
			err := repo.ReleaseSeats(ctx, 10, "2026-09-15", 2)
			Expect(err).To(HaveOccurred())
			Expect(seatsLeft()).To(Equal(19))
		})

		It("should allow restoring up to exactly the total", func() {
			seed(18, 20)
			err := repo.ReleaseSeats(ctx, 10, "2026-09-15", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(seatsLeft()).To(Equal(20))
		})
	})
})
