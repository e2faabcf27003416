// Package payment is the checkout and settlement surface: it opens payment
// sessions against a provider and feeds terminal outcomes into the booking
// reconciler. Money amounts are VND without minor units end to end; only the
// PayPal adapter quotes USD on the wire.
package payment

import (
	"context"

	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	cartdm "github.com/vqminh/tour-booking/internal/core/datamodel/cart"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
	tourdm "github.com/vqminh/tour-booking/internal/core/datamodel/tour"
	voucherdm "github.com/vqminh/tour-booking/internal/core/datamodel/voucher"
	"github.com/vqminh/tour-booking/internal/provider"
	"github.com/vqminh/tour-booking/internal/seatledger"
)

type SessionStore interface {
	Create(ctx context.Context, sess *sessiondm.PaymentSession) error
	FindByOrderID(ctx context.Context, orderID string) (*sessiondm.PaymentSession, error)
}

// Reconciler settles a terminal outcome into a booking. Implemented by the
// booking package; both the IPN handler and the capture path call it.
type Reconciler interface {
	Reconcile(ctx context.Context, orderID string, outcome provider.Outcome) (*bookingdm.Booking, error)
}

// CartReader supplies the selected cart lines for cart-mode checkout.
type CartReader interface {
	SelectedItems(ctx context.Context, userID int64) ([]*cartdm.Item, error)
}

// TourCatalog resolves live tour pricing. Checkout always reprices from the
// catalog; quantities come from the cart, the request, or the retried
// booking, but unit prices never do.
type TourCatalog interface {
	GetTour(ctx context.Context, tourID int64) (*tourdm.Tour, error)
}

type CapacityChecker interface {
	CheckCapacity(ctx context.Context, tourID int64, date string, adults, children, alreadyHeld int) (*seatledger.Availability, error)
}

type VoucherRepository interface {
	GetByCode(ctx context.Context, code string) (*voucherdm.Voucher, error)
}

// BookingReader resolves the target of a retry-payment checkout.
type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*bookingdm.Booking, error)
}

// Capturer is the synchronous capture call for client-approved orders.
type Capturer interface {
	Capture(ctx context.Context, orderID string) (provider.Outcome, error)
}
