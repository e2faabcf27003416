package cart

import (
	"context"
	"log/slog"

	"github.com/vqminh/tour-booking/internal/core/events"
)

// EventHandler clears purchased cart lines when a booking goes paid.
type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterHandlers subscribes to the booking lifecycle events.
func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeBookingPaid, h.handleBookingPaid)
}

func (h *EventHandler) handleBookingPaid(ctx context.Context, event events.Event) error {
	paid, ok := event.(*events.BookingPaidEvent)
	if !ok {
		h.logger.Error("unexpected event payload for booking.paid", "event_id", event.EventID())
		return nil
	}

	lines := make([]PurchasedLine, 0, len(paid.Items))
	for _, item := range paid.Items {
		lines = append(lines, PurchasedLine{
			TourID:        item.TourID,
			DepartureDate: item.DepartureDate,
		})
	}

	return h.service.ClearPurchased(ctx, paid.UserID, lines)
}
