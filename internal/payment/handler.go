package payment

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/vqminh/tour-booking/internal"
	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	"github.com/vqminh/tour-booking/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		service:     service,
	}
}

// Checkout handles POST /api/v1/payments/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("checkout: failed to parse request body", "error", err)
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	resp, err := h.service.Checkout(r.Context(), userID, &req)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// CapturePayPal handles POST /api/v1/payments/paypal/{orderID}/capture
func (h *Handler) CapturePayPal(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		h.HandleError(w, internal.NewValidationError("order id is required", internal.ErrCodeValidationFailed))
		return
	}

	b, err := h.service.CapturePayPal(r.Context(), userID, orderID)
	if err != nil {
		// Oversold after capture: the money moved and the booking stands,
		// so this is still a success response with the flag surfaced.
		if internal.IsErrorCode(err, internal.ErrCodeSeatCommitConflict) && b != nil {
			h.Logger.Warn("capture settled with seat conflict",
				"order_id", orderID,
				"booking_id", b.ID)
			h.WriteJSON(w, http.StatusOK, CaptureResponse{
				Success:                  true,
				BookingID:                b.ID,
				BookingStatus:            b.Status,
				RequiresManualProcessing: true,
				Message:                  "payment captured; booking requires manual processing",
			})
			return
		}
		h.HandleError(w, err)
		return
	}

	resp := CaptureResponse{
		Success:       b.Status == bookingdm.StatusPaid,
		BookingID:     b.ID,
		BookingStatus: b.Status,
	}
	if !resp.Success {
		resp.Message = "payment was not completed"
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /api/v1/payments/sessions/{orderID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		h.HandleError(w, internal.NewValidationError("order id is required", internal.ErrCodeValidationFailed))
		return
	}

	sess, err := h.service.GetSession(r.Context(), userID, orderID)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToSessionStatusResponse(sess))
}
