package cart

import (
	"context"
	"log/slog"

	"github.com/vqminh/tour-booking/internal"
	cartdm "github.com/vqminh/tour-booking/internal/core/datamodel/cart"
)

type Service struct {
	repo     Repository
	capacity CapacityChecker
	logger   *slog.Logger
}

func NewService(repo Repository, capacity CapacityChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		capacity: capacity,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, userID int64) ([]*cartdm.Item, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SelectedItems is the checkout-facing view: only lines the user ticked.
func (s *Service) SelectedItems(ctx context.Context, userID int64) ([]*cartdm.Item, error) {
	return s.repo.ListSelected(ctx, userID)
}

// AddItem adds or merges a cart line for one departure. The capacity check
// counts what the user already holds for that departure so repeated adds
// cannot creep past the remaining seats.
func (s *Service) AddItem(ctx context.Context, userID, tourID int64, date string, adults, children int) (*cartdm.Item, error) {
	if adults+children <= 0 {
		return nil, internal.NewValidationError("at least one traveller is required", internal.ErrCodeValidationFailed)
	}

	alreadyHeld := 0
	existing, err := s.repo.GetByDeparture(ctx, userID, tourID, date)
	if err != nil && !internal.IsErrorCode(err, internal.ErrCodeCartItemNotFound) {
		return nil, err
	}
	if existing != nil {
		alreadyHeld = existing.Adults + existing.Children
	}

	if _, err := s.capacity.CheckCapacity(ctx, tourID, date, adults, children, alreadyHeld); err != nil {
		return nil, err
	}

	item := &cartdm.Item{
		UserID:        userID,
		TourID:        tourID,
		DepartureDate: date,
		Adults:        adults,
		Children:      children,
		Selected:      true,
	}
	if existing != nil {
		item.ID = existing.ID
		item.Adults = existing.Adults + adults
		item.Children = existing.Children + children
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("cart item added",
		"user_id", userID,
		"tour_id", tourID,
		"date", date,
		"adults", item.Adults,
		"children", item.Children)
	return item, nil
}

// UpdateItem replaces quantities and selection on an existing line. The
// capacity check covers only the new quantities because they replace, not
// extend, the held amount.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, adults, children int, selected bool) (*cartdm.Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, internal.ErrCartItemNotFound
	}

	if adults+children <= 0 {
		return nil, internal.NewValidationError("at least one traveller is required", internal.ErrCodeValidationFailed)
	}

	if _, err := s.capacity.CheckCapacity(ctx, item.TourID, item.DepartureDate, adults, children, 0); err != nil {
		return nil, err
	}

	item.Adults = adults
	item.Children = children
	item.Selected = selected

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return internal.ErrCartItemNotFound
	}
	return s.repo.Delete(ctx, item.ID)
}

// ClearPurchased removes the lines a paid booking covered. Runs off the
// booking.paid event; failures are logged by the bus and the cart lines
// simply survive until the user clears them.
func (s *Service) ClearPurchased(ctx context.Context, userID int64, lines []PurchasedLine) error {
	for _, line := range lines {
		if err := s.repo.DeleteByDeparture(ctx, userID, line.TourID, line.DepartureDate); err != nil {
			s.logger.Error("failed to clear purchased cart line",
				"user_id", userID,
				"tour_id", line.TourID,
				"date", line.DepartureDate,
				"error", err)
			return err
		}
	}
	s.logger.Info("cleared purchased cart lines", "user_id", userID, "count", len(lines))
	return nil
}

// PurchasedLine identifies one departure a paid booking covered.
type PurchasedLine struct {
	TourID        int64
	DepartureDate string
}
