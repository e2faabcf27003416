package booking

import (
	"context"

	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
	sessionpkg "github.com/vqminh/tour-booking/internal/session"
)

// Repository is the booking storage contract. Create must map a duplicate
// payment_order_id to internal.ErrDuplicateBooking so a second
// materialization attempt for the same order can never produce a sibling.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*bookingdm.Booking, error)
	GetByPaymentOrderID(ctx context.Context, orderID string) (*bookingdm.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]*bookingdm.Booking, error)
	Create(ctx context.Context, b *bookingdm.Booking) error
	// ReplaceCommercial overwrites every commercial and payment field of an
	// existing booking. Retry-payment sessions use it: a retry may carry
	// updated pricing or voucher state, so this is a full replace, never a
	// merge.
	ReplaceCommercial(ctx context.Context, b *bookingdm.Booking) error
	FlagManualProcessing(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status, paymentStatus string) error
}

// SessionStore is the slice of the session package the reconciler needs.
type SessionStore interface {
	FindByOrderID(ctx context.Context, orderID string) (*sessiondm.PaymentSession, error)
	MarkTerminal(ctx context.Context, orderID, status string, meta sessionpkg.TerminalMeta) (sessionpkg.TerminalResult, error)
}

// SeatLedger is the authoritative capacity guard consulted on paid.
type SeatLedger interface {
	Commit(ctx context.Context, tourID int64, date string, adults, children int) error
	Release(ctx context.Context, tourID int64, date string, adults, children int) error
}
