package tour

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vqminh/tour-booking/internal/cache"
	tourdm "github.com/vqminh/tour-booking/internal/core/datamodel/tour"
)

const availabilityCacheTTL = 30 * time.Second

// AvailabilityResponse is the advisory seat snapshot for one departure. The
// numbers may be stale by up to the cache TTL; checkout revalidates and the
// paid-time commit is the real guard.
type AvailabilityResponse struct {
	TourID        int64  `json:"tour_id"`
	DepartureDate string `json:"departure_date"`
	SeatsLeft     int    `json:"seats_left"`
	SeatsTotal    int    `json:"seats_total"`
}

type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds the catalog service. cache may be nil; availability then
// always reads through to the database.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  c,
		logger: logger,
	}
}

func (s *Service) ListTours(ctx context.Context) ([]*tourdm.Tour, error) {
	return s.repo.ListTours(ctx, true)
}

func (s *Service) GetTour(ctx context.Context, id int64) (*tourdm.Tour, error) {
	return s.repo.GetTour(ctx, id)
}

func (s *Service) GetTourBySlug(ctx context.Context, slug string) (*tourdm.Tour, error) {
	return s.repo.GetTourBySlug(ctx, slug)
}

func (s *Service) ListDepartures(ctx context.Context, tourID int64) ([]*tourdm.Departure, error) {
	if _, err := s.repo.GetTour(ctx, tourID); err != nil {
		return nil, err
	}
	return s.repo.ListDepartures(ctx, tourID)
}

// Availability returns the seat snapshot for one departure, served from the
// cache when fresh. Cache failures degrade to a database read.
func (s *Service) Availability(ctx context.Context, tourID int64, date string) (*AvailabilityResponse, error) {
	key := fmt.Sprintf("availability:%d:%s", tourID, date)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var resp AvailabilityResponse
			if err := json.Unmarshal(raw, &resp); err == nil {
				return &resp, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", "key", key, "error", err)
		}
	}

	dep, err := s.repo.GetDeparture(ctx, tourID, date)
	if err != nil {
		return nil, err
	}

	resp := &AvailabilityResponse{
		TourID:        tourID,
		DepartureDate: date,
		SeatsLeft:     dep.SeatsLeft,
		SeatsTotal:    dep.SeatsTotal,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, key, raw, availabilityCacheTTL); err != nil {
				s.logger.Warn("availability cache write failed", "key", key, "error", err)
			}
		}
	}

	return resp, nil
}
