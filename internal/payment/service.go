package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vqminh/tour-booking/internal"
	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
	"github.com/vqminh/tour-booking/internal/provider"
	"github.com/vqminh/tour-booking/internal/provider/paypal"
)

// Service orchestrates checkout: it turns a mode (cart, buy-now,
// retry-payment) into a priced line-item snapshot, opens the provider
// intent, and persists the pending session keyed by the provider-scoped
// order id.
type Service struct {
	sessions   SessionStore
	cart       CartReader
	tours      TourCatalog
	vouchers   VoucherRepository
	bookings   BookingReader
	capacity   CapacityChecker
	reconciler Reconciler
	adapters   map[string]provider.IntentCreator
	capturer   Capturer
	logger     *slog.Logger
}

func NewService(
	sessions SessionStore,
	cart CartReader,
	tours TourCatalog,
	vouchers VoucherRepository,
	bookings BookingReader,
	capacity CapacityChecker,
	reconciler Reconciler,
	adapters map[string]provider.IntentCreator,
	capturer Capturer,
	logger *slog.Logger,
) *Service {
	return &Service{
		sessions:   sessions,
		cart:       cart,
		tours:      tours,
		vouchers:   vouchers,
		bookings:   bookings,
		capacity:   capacity,
		reconciler: reconciler,
		adapters:   adapters,
		capturer:   capturer,
		logger:     logger,
	}
}

// Checkout opens a payment session for the user. Prices are always taken
// from the live catalog at this moment and frozen into the session; the
// advisory capacity check rejects obviously-oversold requests before any
// money flow starts.
func (s *Service) Checkout(ctx context.Context, userID int64, req *CheckoutRequest) (*CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	adapter, ok := s.adapters[req.Provider]
	if !ok {
		return nil, internal.NewValidationError(
			fmt.Sprintf("unsupported payment provider: %s", req.Provider), internal.ErrCodeInvalidProvider)
	}

	items, retryBookingID, err := s.buildLineItems(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, internal.NewValidationError("nothing to check out", internal.ErrCodeValidationFailed)
	}

	for _, item := range items {
		if _, err := s.capacity.CheckCapacity(ctx, item.TourID, item.DepartureDate, item.Adults, item.Children, 0); err != nil {
			return nil, err
		}
	}

	originalAmount := items.Total()
	discount, voucherCode, err := s.resolveDiscount(ctx, req.VoucherCode, originalAmount)
	if err != nil {
		return nil, err
	}
	amount := originalAmount - discount
	if amount < 0 {
		amount = 0
	}

	orderID := uuid.NewString()
	requestID := uuid.NewString()

	intent := provider.Intent{
		OrderID:   orderID,
		RequestID: requestID,
		AmountVND: amount,
		OrderInfo: fmt.Sprintf("tour booking order %s", orderID),
	}

	result, err := adapter.CreateIntent(ctx, intent)
	if err != nil {
		s.logger.Error("provider rejected checkout intent",
			"provider", req.Provider,
			"order_id", orderID,
			"error", err)
		return nil, err
	}

	// PayPal's capture callback carries PayPal's own order id, so the
	// session is keyed by it instead of our generated one.
	if req.Provider == sessiondm.ProviderPayPal {
		providerOrderID, err := paypal.ProviderOrderID(result.Raw)
		if err != nil {
			return nil, internal.NewExternalError("paypal order id missing from response", err)
		}
		orderID = providerOrderID
	}

	sess := &sessiondm.PaymentSession{
		OrderID:          orderID,
		RequestID:        requestID,
		UserID:           userID,
		Provider:         req.Provider,
		Mode:             req.Mode,
		Amount:           amount,
		Currency:         "VND",
		Items:            items,
		VoucherCode:      voucherCode,
		DiscountAmount:   discount,
		Status:           sessiondm.StatusPending,
		RetryBookingID:   retryBookingID,
		PayURL:           result.PayURL,
		ProviderResponse: result.Raw,
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("checkout session opened",
		"order_id", orderID,
		"user_id", userID,
		"provider", req.Provider,
		"mode", req.Mode,
		"amount", amount,
		"items", len(items))

	return &CheckoutResponse{
		OrderID:        orderID,
		PayURL:         result.PayURL,
		Provider:       req.Provider,
		Amount:         amount,
		Currency:       "VND",
		DiscountAmount: discount,
	}, nil
}

// buildLineItems resolves quantities per mode and freezes live catalog
// prices onto them.
func (s *Service) buildLineItems(ctx context.Context, userID int64, req *CheckoutRequest) (sessiondm.LineItems, *int64, error) {
	switch req.Mode {
	case sessiondm.ModeCart:
		cartItems, err := s.cart.SelectedItems(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		if len(cartItems) == 0 {
			return nil, nil, internal.NewValidationError("no selected items in cart", internal.ErrCodeValidationFailed)
		}
		items := make(sessiondm.LineItems, 0, len(cartItems))
		for _, ci := range cartItems {
			line, err := s.priceLine(ctx, ci.TourID, ci.DepartureDate, ci.Adults, ci.Children)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, *line)
		}
		return items, nil, nil

	case sessiondm.ModeBuyNow:
		line, err := s.priceLine(ctx, req.Item.TourID, req.Item.DepartureDate, req.Item.Adults, req.Item.Children)
		if err != nil {
			return nil, nil, err
		}
		return sessiondm.LineItems{*line}, nil, nil

	case sessiondm.ModeRetryPayment:
		b, err := s.bookings.GetByID(ctx, req.BookingID)
		if err != nil {
			return nil, nil, err
		}
		if b.UserID != userID {
			return nil, nil, internal.ErrBookingNotFound
		}
		if b.PaymentStatus == bookingdm.PaymentStatusCompleted {
			return nil, nil, internal.NewValidationError(
				"booking is already paid", internal.ErrCodeBookingNotPending)
		}
		items := make(sessiondm.LineItems, 0, len(b.Items))
		for _, prev := range b.Items {
			line, err := s.priceLine(ctx, prev.TourID, prev.DepartureDate, prev.Adults, prev.Children)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, *line)
		}
		bookingID := b.ID
		return items, &bookingID, nil
	}

	return nil, nil, internal.NewValidationError("unknown checkout mode", internal.ErrCodeInvalidMode)
}

func (s *Service) priceLine(ctx context.Context, tourID int64, date string, adults, children int) (*sessiondm.LineItem, error) {
	t, err := s.tours.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, internal.ErrTourNotFound
	}
	if adults+children <= 0 {
		return nil, internal.NewValidationError("at least one traveller is required", internal.ErrCodeValidationFailed)
	}

	return &sessiondm.LineItem{
		TourID:         t.ID,
		Name:           t.Name,
		DepartureDate:  date,
		Adults:         adults,
		Children:       children,
		UnitPriceAdult: t.UnitPriceAdult,
		UnitPriceChild: t.UnitPriceChild,
		Image:          t.Image,
	}, nil
}

// resolveDiscount validates the voucher and caps the discount at the order
// total. Sessions record the capped value, never the face value.
func (s *Service) resolveDiscount(ctx context.Context, code string, orderAmount int64) (int64, *string, error) {
	if code == "" {
		return 0, nil, nil
	}

	v, err := s.vouchers.GetByCode(ctx, code)
	if err != nil {
		return 0, nil, err
	}
	if !v.IsActive {
		return 0, nil, internal.NewValidationError("voucher is no longer active", internal.ErrCodeVoucherExpired)
	}
	if v.ExpiresAt != nil && v.ExpiresAt.Before(time.Now()) {
		return 0, nil, internal.NewValidationError("voucher has expired", internal.ErrCodeVoucherExpired)
	}
	if orderAmount < v.MinOrderAmount {
		return 0, nil, internal.NewValidationError(
			fmt.Sprintf("order total below voucher minimum of %d", v.MinOrderAmount),
			internal.ErrCodeValidationFailed)
	}

	discount := v.DiscountAmount
	if discount > orderAmount {
		discount = orderAmount
	}
	return discount, &v.Code, nil
}

// GetSession returns the status projection for a session the user owns.
func (s *Service) GetSession(ctx context.Context, userID int64, orderID string) (*sessiondm.PaymentSession, error) {
	sess, err := s.sessions.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, internal.ErrSessionNotFound
	}
	return sess, nil
}

// CapturePayPal runs the synchronous capture for a client-approved order and
// settles the result. The capture response, not the client, decides the
// outcome.
func (s *Service) CapturePayPal(ctx context.Context, userID int64, orderID string) (*bookingdm.Booking, error) {
	sess, err := s.sessions.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, internal.ErrSessionNotFound
	}
	if sess.Provider != sessiondm.ProviderPayPal {
		return nil, internal.NewValidationError("session is not a paypal session", internal.ErrCodeInvalidProvider)
	}

	if sessiondm.IsTerminal(sess.Status) {
		// Replayed capture: a second capture call to the provider would
		// come back non-completed and contradict the stored outcome, so
		// replay the recorded one through the idempotent path instead.
		s.logger.Info("capture replay on terminal session",
			"order_id", orderID,
			"status", sess.Status)
		return s.reconciler.Reconcile(ctx, orderID, outcomeFromSession(sess))
	}

	outcome, err := s.capturer.Capture(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return s.reconciler.Reconcile(ctx, orderID, outcome)
}

// outcomeFromSession rebuilds the outcome a terminal session recorded.
func outcomeFromSession(sess *sessiondm.PaymentSession) provider.Outcome {
	out := provider.Outcome{
		Status: provider.OutcomeFailed,
		Raw:    sess.CallbackPayload,
	}
	if sess.Status == sessiondm.StatusPaid {
		out.Status = provider.OutcomePaid
	}
	if sess.TransactionRef != nil {
		out.TransactionRef = *sess.TransactionRef
	}
	if sess.ResultCode != nil {
		out.ResultCode = *sess.ResultCode
	}
	if sess.ResultMessage != nil {
		out.Message = *sess.ResultMessage
	}
	return out
}
