package cart

import "time"

// Item is one departure held in a user's cart. Adding to cart takes no
// reservation; the advisory capacity check only rejects obviously-oversold
// requests early.
type Item struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	UserID        int64     `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_cart_user_tour_date"`
	TourID        int64     `json:"tour_id" gorm:"column:tour_id;not null;uniqueIndex:idx_cart_user_tour_date"`
	DepartureDate string    `json:"departure_date" gorm:"column:departure_date;not null;uniqueIndex:idx_cart_user_tour_date"`
	Adults        int       `json:"adults" gorm:"column:adults;not null;default:1"`
	Children      int       `json:"children" gorm:"column:children;not null;default:0"`
	Selected      bool      `json:"selected" gorm:"column:selected;default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Item) TableName() string {
	return "cart_items"
}
