package booking

import (
	"time"

	"github.com/vqminh/tour-booking/internal/core/datamodel/session"
)

// Booking status values.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Payment status values on a booking.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Booking is the durable commercial record a customer sees. Its items and
// amounts are snapshots from the payment session; total_amount is derived
// once from those snapshots and never recomputed from live tour pricing.
// payment_order_id is sparse-unique: at most one booking per order id.
type Booking struct {
	ID     int64 `json:"id" gorm:"primaryKey"`
	UserID int64 `json:"user_id" gorm:"column:user_id;not null;index"`

	Items          session.LineItems `json:"items" gorm:"column:items;type:jsonb"`
	OriginalAmount int64             `json:"original_amount" gorm:"column:original_amount;not null"`
	DiscountAmount int64             `json:"discount_amount" gorm:"column:discount_amount;default:0"`
	TotalAmount    int64             `json:"total_amount" gorm:"column:total_amount;not null"`
	Currency       string            `json:"currency" gorm:"column:currency;not null;default:VND"`
	VoucherCode    *string           `json:"voucher_code,omitempty" gorm:"column:voucher_code"`

	Status string `json:"status" gorm:"column:status;not null;default:pending"`

	PaymentOrderID        *string    `json:"payment_order_id,omitempty" gorm:"column:payment_order_id;uniqueIndex"`
	PaymentProvider       string     `json:"payment_provider,omitempty" gorm:"column:payment_provider"`
	PaymentStatus         string     `json:"payment_status" gorm:"column:payment_status;not null;default:pending"`
	PaymentTransactionRef *string    `json:"payment_transaction_ref,omitempty" gorm:"column:payment_transaction_ref"`
	PaidAt                *time.Time `json:"paid_at,omitempty" gorm:"column:paid_at"`

	// RequiresManualProcessing flags a paid booking whose seat commit could
	// not be satisfied. Money has moved, so the booking stays paid and
	// operations resolves the departure by hand.
	RequiresManualProcessing bool `json:"requires_manual_processing" gorm:"column:requires_manual_processing;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}
