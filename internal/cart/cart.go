// Package cart manages the per-user cart lines that cart-mode checkout
// snapshots into a payment session. Adding to the cart never reserves seats;
// the advisory capacity check just rejects requests that cannot fit today.
package cart

import (
	"context"

	cartdm "github.com/vqminh/tour-booking/internal/core/datamodel/cart"
	"github.com/vqminh/tour-booking/internal/seatledger"
)

type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*cartdm.Item, error)
	ListSelected(ctx context.Context, userID int64) ([]*cartdm.Item, error)
	GetByID(ctx context.Context, id int64) (*cartdm.Item, error)
	GetByDeparture(ctx context.Context, userID, tourID int64, date string) (*cartdm.Item, error)
	Upsert(ctx context.Context, item *cartdm.Item) error
	Update(ctx context.Context, item *cartdm.Item) error
	Delete(ctx context.Context, id int64) error
	DeleteByDeparture(ctx context.Context, userID, tourID int64, date string) error
}

type CapacityChecker interface {
	CheckCapacity(ctx context.Context, tourID int64, date string, adults, children, alreadyHeld int) (*seatledger.Availability, error)
}
