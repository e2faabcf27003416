package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/vqminh/tour-booking/internal/core/datamodel/session"
)

const (
	EventTypeBookingPaid   = "booking.paid"
	EventTypeBookingFailed = "booking.failed"
)

// BookingPaidEvent fires after a reconciliation lands a booking in paid.
// The cart package subscribes to it to clear the purchased lines.
type BookingPaidEvent struct {
	BaseEvent
	BookingID int64             `json:"booking_id"`
	UserID    int64             `json:"user_id"`
	OrderID   string            `json:"order_id"`
	Provider  string            `json:"provider"`
	Amount    int64             `json:"amount"`
	Items     session.LineItems `json:"items"`
}

func NewBookingPaidEvent(bookingID, userID int64, orderID, provider string, amount int64, items session.LineItems) *BookingPaidEvent {
	return &BookingPaidEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBookingPaid,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"booking_id": bookingID,
				"user_id":    userID,
				"order_id":   orderID,
				"provider":   provider,
				"amount":     amount,
			},
		},
		BookingID: bookingID,
		UserID:    userID,
		OrderID:   orderID,
		Provider:  provider,
		Amount:    amount,
		Items:     items,
	}
}

type BookingFailedEvent struct {
	BaseEvent
	BookingID  int64  `json:"booking_id"`
	UserID     int64  `json:"user_id"`
	OrderID    string `json:"order_id"`
	Provider   string `json:"provider"`
	ResultCode string `json:"result_code"`
	Reason     string `json:"reason"`
}

func NewBookingFailedEvent(bookingID, userID int64, orderID, provider, resultCode, reason string) *BookingFailedEvent {
	return &BookingFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBookingFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"booking_id":  bookingID,
				"user_id":     userID,
				"order_id":    orderID,
				"provider":    provider,
				"result_code": resultCode,
				"reason":      reason,
			},
		},
		BookingID:  bookingID,
		UserID:     userID,
		OrderID:    orderID,
		Provider:   provider,
		ResultCode: resultCode,
		Reason:     reason,
	}
}
