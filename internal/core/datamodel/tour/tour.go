package tour

import "time"

// Tour is the catalog entry. Descriptive storefront fields (itinerary,
// gallery, tags) live with the content service; only what checkout and the
// seat ledger need is modeled here.
type Tour struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"column:name;not null"`
	Slug           string    `json:"slug" gorm:"column:slug;not null;uniqueIndex"`
	Summary        string    `json:"summary" gorm:"column:summary"`
	Image          string    `json:"image" gorm:"column:image"`
	DurationDays   int       `json:"duration_days" gorm:"column:duration_days"`
	UnitPriceAdult int64     `json:"unit_price_adult" gorm:"column:unit_price_adult;not null"`
	UnitPriceChild int64     `json:"unit_price_child" gorm:"column:unit_price_child;not null"`
	IsActive       bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Tour) TableName() string {
	return "tours"
}

// Departure is the finite shared resource: one (tour, date) pair with its
// seat counter. Invariant: 0 <= seats_left <= seats_total at every committed
// state; all mutations of seats_left are single conditional updates.
type Departure struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	TourID        int64     `json:"tour_id" gorm:"column:tour_id;not null;uniqueIndex:idx_departures_tour_date"`
	DepartureDate string    `json:"departure_date" gorm:"column:departure_date;not null;uniqueIndex:idx_departures_tour_date"`
	SeatsTotal    int       `json:"seats_total" gorm:"column:seats_total;not null"`
	SeatsLeft     int       `json:"seats_left" gorm:"column:seats_left;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Departure) TableName() string {
	return "departures"
}
