package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/core/events"

	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
	"github.com/vqminh/tour-booking/internal/provider"
	sessionpkg "github.com/vqminh/tour-booking/internal/session"
)

// Reconciler turns a provider outcome for a payment session into exactly one
// booking and the matching seat-ledger commit. It is the only code path that
// mutates bookings from payment signals; both provider adapters funnel into
// it. Safe under concurrent re-entry for the same order id: MarkTerminal on
// the session is the serialization point, and the sparse-unique
// payment_order_id on bookings is the backstop.
type Reconciler struct {
	sessions SessionStore
	bookings Repository
	seats    SeatLedger
	bus      *events.EventBus
	logger   *slog.Logger
}

func NewReconciler(sessions SessionStore, bookings Repository, seats SeatLedger, bus *events.EventBus, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		sessions: sessions,
		bookings: bookings,
		seats:    seats,
		bus:      bus,
		logger:   logger,
	}
}

// Reconcile processes one terminal outcome for orderID.
//
// Once a Paid outcome is accepted there is no cancellation path: the method
// runs to completion or fails into the requires-manual-processing state. A
// paid session must never be left without a trace.
func (r *Reconciler) Reconcile(ctx context.Context, orderID string, outcome provider.Outcome) (*bookingdm.Booking, error) {
	sess, err := r.sessions.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	sessionStatus := sessiondm.StatusFailed
	if outcome.Paid() {
		sessionStatus = sessiondm.StatusPaid
	}

	meta := sessionpkg.TerminalMeta{
		TransactionRef:  outcome.TransactionRef,
		ResultCode:      outcome.ResultCode,
		ResultMessage:   outcome.Message,
		CallbackPayload: outcome.Raw,
	}
	now := time.Now().UTC()
	if outcome.Paid() {
		meta.PaidAt = &now
	}

	res, err := r.sessions.MarkTerminal(ctx, orderID, sessionStatus, meta)
	if err != nil {
		// Conflicting outcome included: no booking mutation, manual review.
		return nil, err
	}

	if res == sessionpkg.AlreadyTerminal {
		existing, err := r.bookings.GetByPaymentOrderID(ctx, orderID)
		if err == nil {
			r.logger.Info("duplicate outcome, booking already materialized",
				"order_id", orderID,
				"booking_id", existing.ID)
			return existing, nil
		}
		if !internal.IsErrorCode(err, internal.ErrCodeBookingNotFound) {
			return nil, err
		}
		// Session went terminal but no booking exists: a previous attempt
		// crashed between the status swap and materialization. Recover by
		// continuing below.
		r.logger.Warn("terminal session without booking, rematerializing",
			"order_id", orderID,
			"status", sessionStatus)
	}

	target, settled, err := r.materialize(ctx, sess, outcome, now)
	if err != nil {
		return nil, err
	}
	if !settled {
		// Lost the materialization race; the winner commits the seats.
		return target, nil
	}

	if !outcome.Paid() {
		r.bus.Publish(context.Background(), events.NewBookingFailedEvent(
			target.ID, target.UserID, orderID, sess.Provider, outcome.ResultCode, outcome.Message))
		return target, nil
	}

	if err := r.commitSeats(ctx, sess.Items); err != nil {
		// Money has already moved: the booking stays paid, the departure is
		// flagged for operations, and the caller gets the conflict for
		// alerting.
		if flagErr := r.bookings.FlagManualProcessing(ctx, target.ID); flagErr != nil {
			r.logger.Error("failed to flag booking for manual processing",
				"booking_id", target.ID,
				"error", flagErr)
		}
		target.RequiresManualProcessing = true

		r.logger.Error("seat commit conflict on paid booking",
			"order_id", orderID,
			"booking_id", target.ID,
			"error", err)

		return target, internal.NewConflictError(
			"payment captured but the departure is oversold; booking flagged for manual processing",
			internal.ErrCodeSeatCommitConflict).WithCause(err)
	}

	// Cart-clear is best-effort by construction: the bus runs handlers
	// asynchronously and only logs their failures. Detached context so the
	// end of the webhook request cannot cancel the cleanup mid-flight.
	r.bus.Publish(context.Background(), events.NewBookingPaidEvent(
		target.ID, target.UserID, orderID, sess.Provider, target.TotalAmount, target.Items))

	return target, nil
}

// materialize resolves the target booking (retry target or fresh record) and
// persists the session snapshot plus outcome onto it. The second return is
// false when this caller lost a creation race and adopted a sibling's record
// instead of settling its own.
func (r *Reconciler) materialize(ctx context.Context, sess *sessiondm.PaymentSession, outcome provider.Outcome, now time.Time) (*bookingdm.Booking, bool, error) {
	originalAmount := sess.Items.Total()
	totalAmount := originalAmount - sess.DiscountAmount
	if totalAmount < 0 {
		totalAmount = 0
	}

	status := bookingdm.StatusCancelled
	paymentStatus := bookingdm.PaymentStatusFailed
	var paidAt *time.Time
	if outcome.Paid() {
		status = bookingdm.StatusPaid
		paymentStatus = bookingdm.PaymentStatusCompleted
		paidAt = &now
	}

	var transactionRef *string
	if outcome.TransactionRef != "" {
		transactionRef = &outcome.TransactionRef
	}

	orderID := sess.OrderID

	if sess.RetryBookingID != nil {
		existing, err := r.bookings.GetByID(ctx, *sess.RetryBookingID)
		if err == nil {
			existing.Items = sess.Items
			existing.OriginalAmount = originalAmount
			existing.DiscountAmount = sess.DiscountAmount
			existing.TotalAmount = totalAmount
			existing.Currency = sess.Currency
			existing.VoucherCode = sess.VoucherCode
			existing.Status = status
			existing.PaymentOrderID = &orderID
			existing.PaymentProvider = sess.Provider
			existing.PaymentStatus = paymentStatus
			existing.PaymentTransactionRef = transactionRef
			existing.PaidAt = paidAt

			if err := r.bookings.ReplaceCommercial(ctx, existing); err != nil {
				return nil, false, err
			}

			r.logger.Info("retry payment settled onto existing booking",
				"booking_id", existing.ID,
				"order_id", orderID,
				"status", status)
			return existing, true, nil
		}
		if !internal.IsErrorCode(err, internal.ErrCodeBookingNotFound) {
			return nil, false, err
		}
		// The retry target vanished. The money outcome still has to land
		// somewhere, so fall through to a fresh booking.
		r.logger.Warn("retry booking not resolvable, materializing new booking",
			"order_id", orderID,
			"retry_booking_id", *sess.RetryBookingID)
	}

	b := &bookingdm.Booking{
		UserID:                sess.UserID,
		Items:                 sess.Items,
		OriginalAmount:        originalAmount,
		DiscountAmount:        sess.DiscountAmount,
		TotalAmount:           totalAmount,
		Currency:              sess.Currency,
		VoucherCode:           sess.VoucherCode,
		Status:                status,
		PaymentOrderID:        &orderID,
		PaymentProvider:       sess.Provider,
		PaymentStatus:         paymentStatus,
		PaymentTransactionRef: transactionRef,
		PaidAt:                paidAt,
	}

	if err := r.bookings.Create(ctx, b); err != nil {
		if internal.IsErrorCode(err, internal.ErrCodeDuplicateBooking) {
			// Lost a materialization race; the winner's record stands.
			winner, getErr := r.bookings.GetByPaymentOrderID(ctx, orderID)
			return winner, false, getErr
		}
		return nil, false, err
	}

	r.logger.Info("booking materialized",
		"booking_id", b.ID,
		"order_id", orderID,
		"status", status,
		"total_amount", totalAmount)
	return b, true, nil
}

// commitSeats runs the authoritative decrement for every line. All or
// nothing: on the first failure, already-committed lines are released.
func (r *Reconciler) commitSeats(ctx context.Context, items sessiondm.LineItems) error {
	committed := make([]sessiondm.LineItem, 0, len(items))
	for _, item := range items {
		if err := r.seats.Commit(ctx, item.TourID, item.DepartureDate, item.Adults, item.Children); err != nil {
			for _, done := range committed {
				if relErr := r.seats.Release(ctx, done.TourID, done.DepartureDate, done.Adults, done.Children); relErr != nil {
					r.logger.Error("failed to roll back committed seats",
						"tour_id", done.TourID,
						"date", done.DepartureDate,
						"error", relErr)
				}
			}
			return err
		}
		committed = append(committed, item)
	}
	return nil
}
