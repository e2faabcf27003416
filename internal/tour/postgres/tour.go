package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vqminh/tour-booking/internal"
	tourdm "github.com/vqminh/tour-booking/internal/core/datamodel/tour"
	tourpkg "github.com/vqminh/tour-booking/internal/tour"
)

type TourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) tourpkg.Repository {
	return &TourRepository{db: db}
}

func (r *TourRepository) ListTours(ctx context.Context, activeOnly bool) ([]*tourdm.Tour, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var tours []*tourdm.Tour
	err := q.Find(&tours).Error
	return tours, err
}

func (r *TourRepository) GetTour(ctx context.Context, id int64) (*tourdm.Tour, error) {
	var t tourdm.Tour
	err := r.db.WithContext(ctx).First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTourNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TourRepository) GetTourBySlug(ctx context.Context, slug string) (*tourdm.Tour, error) {
	var t tourdm.Tour
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTourNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TourRepository) ListDepartures(ctx context.Context, tourID int64) ([]*tourdm.Departure, error) {
	var deps []*tourdm.Departure
	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("departure_date ASC").
		Find(&deps).Error
	return deps, err
}

func (r *TourRepository) GetDeparture(ctx context.Context, tourID int64, date string) (*tourdm.Departure, error) {
	var dep tourdm.Departure
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
