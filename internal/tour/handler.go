package tour

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/vqminh/tour-booking/internal"
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

// ListTours handles GET /api/v1/tours
func (h *Handler) ListTours(w http.ResponseWriter, r *http.Request) {
	tours, err := h.service.ListTours(r.Context())
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tours)
}

// GetTour handles GET /api/v1/tours/{id}
func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid tour id", internal.ErrCodeValidationFailed))
		return
	}

	t, err := h.service.GetTour(r.Context(), id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// ListDepartures handles GET /api/v1/tours/{id}/departures
func (h *Handler) ListDepartures(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid tour id", internal.ErrCodeValidationFailed))
		return
	}

	deps, err := h.service.ListDepartures(r.Context(), id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, deps)
}

// Availability handles GET /api/v1/tours/{id}/availability?date=YYYY-MM-DD
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid tour id", internal.ErrCodeValidationFailed))
		return
	}

	date := r.URL.Query().Get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		h.HandleError(w, internal.NewValidationError("date must be in YYYY-MM-DD format", internal.ErrCodeInvalidDate))
		return
	}

	resp, err := h.service.Availability(r.Context(), id, date)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
