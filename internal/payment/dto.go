package payment

import (
	"time"

	errors "github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/core/common/validation"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
)

type CheckoutItemRequest struct {
	TourID        int64  `json:"tour_id"`
	DepartureDate string `json:"departure_date"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
}

type CheckoutRequest struct {
	Provider    string               `json:"provider"`
	Mode        string               `json:"mode"`
	Item        *CheckoutItemRequest `json:"item,omitempty"`
	BookingID   int64                `json:"booking_id,omitempty"`
	VoucherCode string               `json:"voucher_code,omitempty"`
}

func (r *CheckoutRequest) Validate() error {
	v := validation.NewValidator()

	v.Field("provider", r.Provider).
		Required().
		OneOf(errors.ErrCodeInvalidProvider, sessiondm.ProviderMoMo, sessiondm.ProviderPayPal)

	v.Field("mode", r.Mode).
		Required().
		OneOf(errors.ErrCodeInvalidMode, sessiondm.ModeCart, sessiondm.ModeBuyNow, sessiondm.ModeRetryPayment)

	switch r.Mode {
	case sessiondm.ModeBuyNow:
		if r.Item == nil {
			return errors.NewValidationFieldError("item", "item is required for buy-now checkout", errors.ErrCodeValidationFailed)
		}
		v.Field("item.tour_id", r.Item.TourID).Required()
		v.Field("item.departure_date", r.Item.DepartureDate).Required().ISODate()
		v.Field("item.adults", r.Item.Adults).MinInt(1, errors.ErrCodeValidationFailed)
		v.Field("item.children", r.Item.Children).MinInt(0, errors.ErrCodeValidationFailed)
	case sessiondm.ModeRetryPayment:
		v.Field("booking_id", r.BookingID).Required()
	}

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type CheckoutResponse struct {
	OrderID        string `json:"order_id"`
	PayURL         string `json:"pay_url"`
	Provider       string `json:"provider"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	DiscountAmount int64  `json:"discount_amount,omitempty"`
}

// SessionStatusResponse is the poll projection for a checkout the storefront
// is waiting on.
type SessionStatusResponse struct {
	OrderID       string     `json:"order_id"`
	Status        string     `json:"status"`
	Provider      string     `json:"provider"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	ResultCode    *string    `json:"result_code,omitempty"`
	ResultMessage *string    `json:"result_message,omitempty"`
}

func ToSessionStatusResponse(sess *sessiondm.PaymentSession) SessionStatusResponse {
	return SessionStatusResponse{
		OrderID:       sess.OrderID,
		Status:        sess.Status,
		Provider:      sess.Provider,
		Amount:        sess.Amount,
		Currency:      sess.Currency,
		PaidAt:        sess.PaidAt,
		ResultCode:    sess.ResultCode,
		ResultMessage: sess.ResultMessage,
	}
}

type CaptureResponse struct {
	Success                  bool   `json:"success"`
	BookingID                int64  `json:"booking_id,omitempty"`
	BookingStatus            string `json:"booking_status,omitempty"`
	RequiresManualProcessing bool   `json:"requires_manual_processing,omitempty"`
	Message                  string `json:"message,omitempty"`
}
