package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vqminh/tour-booking/internal"
	cartpkg "github.com/vqminh/tour-booking/internal/cart"
	cartdm "github.com/vqminh/tour-booking/internal/core/datamodel/cart"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) cartpkg.Repository {
	return &CartRepository{db: db}
}

func (r *CartRepository) ListByUser(ctx context.Context, userID int64) ([]*cartdm.Item, error) {
	var items []*cartdm.Item
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *CartRepository) ListSelected(ctx context.Context, userID int64) ([]*cartdm.Item, error) {
	var items []*cartdm.Item
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND selected = ?", userID, true).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *CartRepository) GetByID(ctx context.Context, id int64) (*cartdm.Item, error) {
	var item cartdm.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) GetByDeparture(ctx context.Context, userID, tourID int64, date string) (*cartdm.Item, error) {
	var item cartdm.Item
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tour_id = ? AND departure_date = ?", userID, tourID, date).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Upsert merges on the (user, tour, date) unique key so two concurrent adds
// for the same departure collapse into one line.
func (r *CartRepository) Upsert(ctx context.Context, item *cartdm.Item) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "tour_id"}, {Name: "departure_date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"adults", "children", "selected", "updated_at"}),
		}).
		Create(item).Error
}

func (r *CartRepository) Update(ctx context.Context, item *cartdm.Item) error {
	res := r.db.WithContext(ctx).
		Model(&cartdm.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"adults":   item.Adults,
			"children": item.Children,
			"selected": item.Selected,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&cartdm.Item{}, id).Error
}

func (r *CartRepository) DeleteByDeparture(ctx context.Context, userID, tourID int64, date string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND tour_id = ? AND departure_date = ?", userID, tourID, date).
		Delete(&cartdm.Item{}).Error
}
