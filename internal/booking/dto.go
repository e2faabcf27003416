package booking

import (
	"time"

	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
)

type BookingResponse struct {
	ID                       int64              `json:"id"`
	Items                    sessiondm.LineItems `json:"items"`
	OriginalAmount           int64              `json:"original_amount"`
	DiscountAmount           int64              `json:"discount_amount"`
	TotalAmount              int64              `json:"total_amount"`
	Currency                 string             `json:"currency"`
	Status                   string             `json:"status"`
	PaymentProvider          string             `json:"payment_provider,omitempty"`
	PaymentStatus            string             `json:"payment_status"`
	PaymentOrderID           *string            `json:"payment_order_id,omitempty"`
	PaidAt                   *time.Time         `json:"paid_at,omitempty"`
	RequiresManualProcessing bool               `json:"requires_manual_processing"`
	CreatedAt                time.Time          `json:"created_at"`
}

func ToBookingResponse(b *bookingdm.Booking) BookingResponse {
	return BookingResponse{
		ID:                       b.ID,
		Items:                    b.Items,
		OriginalAmount:           b.OriginalAmount,
		DiscountAmount:           b.DiscountAmount,
		TotalAmount:              b.TotalAmount,
		Currency:                 b.Currency,
		Status:                   b.Status,
		PaymentProvider:          b.PaymentProvider,
		PaymentStatus:            b.PaymentStatus,
		PaymentOrderID:           b.PaymentOrderID,
		PaidAt:                   b.PaidAt,
		RequiresManualProcessing: b.RequiresManualProcessing,
		CreatedAt:                b.CreatedAt,
	}
}

// PendingPaymentResponse is returned with a 202 when a payment's booking has
// not materialized yet. Callers poll until a booking appears.
type PendingPaymentResponse struct {
	Pending       bool   `json:"pending"`
	SessionStatus string `json:"session_status"`
}
