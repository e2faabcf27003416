package session

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Session status values. A session is mutated out of pending exactly once;
// paid/failed/cancelled/expired are all terminal.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Checkout modes.
const (
	ModeCart         = "cart"
	ModeBuyNow       = "buy-now"
	ModeRetryPayment = "retry-payment"
)

// Payment providers.
const (
	ProviderMoMo   = "momo"
	ProviderPayPal = "paypal"
)

func IsTerminal(status string) bool {
	return status == StatusPaid || status == StatusFailed ||
		status == StatusCancelled || status == StatusExpired
}

// LineItem is the commercial snapshot of one departure in a checkout.
// Bookings copy these verbatim; later price changes on the tour never
// retroactively alter a session or a booking.
type LineItem struct {
	TourID         int64  `json:"tour_id"`
	Name           string `json:"name"`
	DepartureDate  string `json:"departure_date"`
	Adults         int    `json:"adults"`
	Children       int    `json:"children"`
	UnitPriceAdult int64  `json:"unit_price_adult"`
	UnitPriceChild int64  `json:"unit_price_child"`
	Image          string `json:"image,omitempty"`
}

// Seats is the head count this line occupies on its departure.
func (i LineItem) Seats() int {
	return i.Adults + i.Children
}

// Subtotal is the settlement-currency amount for this line.
func (i LineItem) Subtotal() int64 {
	return int64(i.Adults)*i.UnitPriceAdult + int64(i.Children)*i.UnitPriceChild
}

// LineItems is stored as a JSONB column.
type LineItems []LineItem

func (li LineItems) Value() (driver.Value, error) {
	if li == nil {
		return "[]", nil
	}
	b, err := json.Marshal(li)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (li *LineItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*li = nil
		return nil
	case []byte:
		return json.Unmarshal(v, li)
	case string:
		return json.Unmarshal([]byte(v), li)
	default:
		return errors.New("unsupported type for LineItems")
	}
}

// Total sums the subtotals of all lines.
func (li LineItems) Total() int64 {
	var total int64
	for _, item := range li {
		total += item.Subtotal()
	}
	return total
}

// PaymentSession is the durable pending monetary intent, keyed by the
// provider-scoped order id. It is never deleted; the reconciler transitions
// it out of pending exactly once and the raw provider payloads are kept for
// audit.
type PaymentSession struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	OrderID   string `json:"order_id" gorm:"column:order_id;not null;uniqueIndex"`
	RequestID string `json:"request_id" gorm:"column:request_id;not null"`
	UserID    int64  `json:"user_id" gorm:"column:user_id;not null;index"`

	Provider string `json:"provider" gorm:"column:provider;not null"`
	Mode     string `json:"mode" gorm:"column:mode;not null"`

	Amount         int64     `json:"amount" gorm:"column:amount;not null"`
	Currency       string    `json:"currency" gorm:"column:currency;not null;default:VND"`
	Items          LineItems `json:"items" gorm:"column:items;type:jsonb"`
	VoucherCode    *string   `json:"voucher_code,omitempty" gorm:"column:voucher_code"`
	DiscountAmount int64     `json:"discount_amount" gorm:"column:discount_amount;default:0"`

	Status         string `json:"status" gorm:"column:status;not null;default:pending"`
	RetryBookingID *int64 `json:"retry_booking_id,omitempty" gorm:"column:retry_booking_id"`

	PayURL           string          `json:"pay_url,omitempty" gorm:"column:pay_url"`
	ProviderResponse json.RawMessage `json:"provider_response,omitempty" gorm:"column:provider_response;type:jsonb"`
	CallbackPayload  json.RawMessage `json:"callback_payload,omitempty" gorm:"column:callback_payload;type:jsonb"`
	TransactionRef   *string         `json:"transaction_ref,omitempty" gorm:"column:transaction_ref"`
	ResultCode       *string         `json:"result_code,omitempty" gorm:"column:result_code"`
	ResultMessage    *string         `json:"result_message,omitempty" gorm:"column:result_message"`

	PaidAt    *time.Time `json:"paid_at,omitempty" gorm:"column:paid_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (PaymentSession) TableName() string {
	return "payment_sessions"
}
