package tour_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vqminh/tour-booking/internal"
	tourdm "github.com/vqminh/tour-booking/internal/core/datamodel/tour"
	"github.com/vqminh/tour-booking/internal/tour"
)

func TestTour(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tour Suite")
}

type mockTourRepository struct {
	tours      map[int64]*tourdm.Tour
	departures map[string]*tourdm.Departure

	departureReads int
}

func (m *mockTourRepository) ListTours(ctx context.Context, activeOnly bool) ([]*tourdm.Tour, error) {
	var out []*tourdm.Tour
	for _, t := range m.tours {
		if !activeOnly || t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTourRepository) GetTour(ctx context.Context, id int64) (*tourdm.Tour, error) {
	t, ok := m.tours[id]
	if !ok {
		return nil, internal.ErrTourNotFound
	}
	return t, nil
}

func (m *mockTourRepository) GetTourBySlug(ctx context.Context, slug string) (*tourdm.Tour, error) {
	for _, t := range m.tours {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, internal.ErrTourNotFound
}

func (m *mockTourRepository) ListDepartures(ctx context.Context, tourID int64) ([]*tourdm.Departure, error) {
	var out []*tourdm.Departure
	for _, d := range m.departures {
		if d.TourID == tourID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockTourRepository) GetDeparture(ctx context.Context, tourID int64, date string) (*tourdm.Departure, error) {
	m.departureReads++
	for _, d := range m.departures {
		if d.TourID == tourID && d.DepartureDate == date {
			return d, nil
		}
	}
	return nil, internal.ErrDepartureNotFound
}

var _ = Describe("TourService", func() {
	var (
		repo    *mockTourRepository
		service *tour.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = &mockTourRepository{
			tours: map[int64]*tourdm.Tour{
				10: {ID: 10, Name: "Ha Long Bay Cruise", Slug: "ha-long-bay-cruise", UnitPriceAdult: 2500000, UnitPriceChild: 1500000, IsActive: true},
				12: {ID: 12, Name: "Retired Tour", Slug: "retired-tour", IsActive: false},
			},
			departures: map[string]*tourdm.Departure{
				"10|2026-09-15": {ID: 1, TourID: 10, DepartureDate: "2026-09-15", SeatsTotal: 20, SeatsLeft: 7},
			},
		}
		service = tour.NewService(repo, nil, logger)
		ctx = context.Background()
	})

	Describe("ListTours", func() {
		It("should return only active tours", func() {
			tours, err := service.ListTours(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(tours).To(HaveLen(1))
			Expect(tours[0].Slug).To(Equal("ha-long-bay-cruise"))
		})
	})

	Describe("GetTourBySlug", func() {
		It("should resolve a slug", func() {
			t, err := service.GetTourBySlug(ctx, "ha-long-bay-cruise")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.ID).To(Equal(int64(10)))
		})

		It("should map an unknown slug to not found", func() {
			_, err := service.GetTourBySlug(ctx, "no-such-tour")
			Expect(internal.IsErrorCode(err, internal.ErrCodeTourNotFound)).To(BeTrue())
		})
	})

	Describe("ListDepartures", func() {
		It("should reject an unknown tour before listing", func() {
			_, err := service.ListDepartures(ctx, 999)
			Expect(internal.IsErrorCode(err, internal.ErrCodeTourNotFound)).To(BeTrue())
		})

		It("should list the tour's departures", func() {
			deps, err := service.ListDepartures(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(deps).To(HaveLen(1))
		})
	})

	Describe("Availability", func() {
		It("should read through to the departures table when no cache is wired", func() {
			avail, err := service.Availability(ctx, 10, "2026-09-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(avail.SeatsLeft).To(Equal(7))
			Expect(avail.SeatsTotal).To(Equal(20))
			Expect(repo.departureReads).To(Equal(1))
		})

		It("should map an unknown departure to not found", func() {
			_, err := service.Availability(ctx, 10, "2026-12-24")
			Expect(internal.IsErrorCode(err, internal.ErrCodeDepartureNotFound)).To(BeTrue())
		})
	})
})
