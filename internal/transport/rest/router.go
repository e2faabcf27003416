package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/vqminh/tour-booking/internal/auth"
	"github.com/vqminh/tour-booking/internal/booking"
	"github.com/vqminh/tour-booking/internal/cart"
	"github.com/vqminh/tour-booking/internal/payment"
	"github.com/vqminh/tour-booking/internal/tour"
	"github.com/vqminh/tour-booking/internal/transport/middleware"
	"github.com/vqminh/tour-booking/internal/transport/swagger"
)

type Handlers struct {
	Auth    *auth.Handler
	Tour    *tour.Handler
	Cart    *cart.Handler
	Booking *booking.Handler
	Payment *payment.Handler
	Webhook *payment.WebhookHandler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, redis Pinger, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, redis)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Provider-to-server webhook; authenticated by its signature, never
		// by a bearer token.
		if h.Webhook != nil {
			r.Post("/payments/momo/ipn", h.Webhook.HandleMoMoIPN)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.Refresh)
			})
		}

		// Public catalog browsing
		if h.Tour != nil {
			r.Route("/tours", func(tr chi.Router) {
				tr.Get("/", h.Tour.ListTours)
				tr.Get("/{id}", h.Tour.GetTour)
				tr.Get("/{id}/departures", h.Tour.ListDepartures)
				tr.Get("/{id}/availability", h.Tour.Availability)
			})
		}

		if h.Auth != nil {
			r.Group(func(pr chi.Router) {
				pr.Use(h.Auth.Middleware)

				if h.Cart != nil {
					pr.Route("/cart", func(cr chi.Router) {
						cr.Get("/", h.Cart.ListItems)
						cr.Post("/items", h.Cart.AddItem)
						cr.Patch("/items/{id}", h.Cart.UpdateItem)
						cr.Delete("/items/{id}", h.Cart.RemoveItem)
					})
				}

				if h.Payment != nil {
					pr.Route("/payments", func(pmr chi.Router) {
						pmr.Post("/checkout", h.Payment.Checkout)
						pmr.Post("/paypal/{orderID}/capture", h.Payment.CapturePayPal)
						pmr.Get("/sessions/{orderID}", h.Payment.GetSession)
					})
				}

				if h.Booking != nil {
					pr.Route("/bookings", func(br chi.Router) {
						br.Get("/", h.Booking.ListBookings)
						br.Get("/by-payment", h.Booking.GetByPayment)
						br.Get("/{id}", h.Booking.GetBooking)
						br.Post("/{id}/cancel", h.Booking.CancelBooking)
					})
				}
			})
		}
	})
}
