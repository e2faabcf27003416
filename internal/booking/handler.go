package booking

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/vqminh/tour-booking/internal"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
	"github.com/vqminh/tour-booking/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service  *Service
	sessions SessionStore
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service, sessions SessionStore) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		service:     service,
		sessions:    sessions,
	}
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	bookings, err := h.service.ListBookings(r.Context(), userID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, ToBookingResponse(b))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid booking id", internal.ErrCodeValidationFailed))
		return
	}

	b, err := h.service.GetBooking(r.Context(), userID, bookingID)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToBookingResponse(b))
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid booking id", internal.ErrCodeValidationFailed))
		return
	}

	b, err := h.service.Cancel(r.Context(), userID, bookingID)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToBookingResponse(b))
}

// GetByPayment resolves a provider order id to its booking. Before the
// reconciler has materialized one, callers get a 202 with the session status
// and are expected to poll, not to treat it as an error.
func (h *Handler) GetByPayment(w http.ResponseWriter, r *http.Request) {
	userID := internal.UserIDFromContext(r.Context())
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		h.HandleError(w, internal.NewValidationError("order_id is required", internal.ErrCodeValidationFailed))
		return
	}

	b, err := h.service.FindByPaymentOrderID(r.Context(), orderID)
	if err == nil {
		if b.UserID != userID {
			h.HandleError(w, internal.ErrBookingNotFound)
			return
		}
		h.WriteJSON(w, http.StatusOK, ToBookingResponse(b))
		return
	}
	if !internal.IsErrorCode(err, internal.ErrCodeBookingNotFound) {
		h.HandleError(w, err)
		return
	}

	sess, serr := h.sessions.FindByOrderID(r.Context(), orderID)
	if serr != nil {
		h.HandleError(w, serr)
		return
	}
	if sess.UserID != userID {
		h.HandleError(w, internal.ErrSessionNotFound)
		return
	}

	status := http.StatusAccepted
	if sessiondm.IsTerminal(sess.Status) {
		// Terminal session, no booking: reconciliation is mid-flight or
		// wedged. Still a poll-until-ready signal for the client.
		h.Logger.Warn("terminal session queried without booking",
			"order_id", orderID,
			"status", sess.Status)
	}
	h.WriteJSON(w, status, PendingPaymentResponse{
		Pending:       true,
		SessionStatus: sess.Status,
	})
}
