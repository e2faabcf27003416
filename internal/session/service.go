package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/vqminh/tour-booking/internal/core/datamodel/session"
)

// Store wraps the repository with logging; it is the surface the checkout
// service and the reconciler depend on.
type Store struct {
	repo   Repository
	logger *slog.Logger
}

func NewStore(repo Repository, logger *slog.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
	}
}

func (s *Store) Create(ctx context.Context, sess *session.PaymentSession) error {
	if err := s.repo.Create(ctx, sess); err != nil {
		s.logger.Error("failed to create payment session",
			"order_id", sess.OrderID,
			"provider", sess.Provider,
			"error", err)
		return err
	}

	s.logger.Info("payment session created",
		"order_id", sess.OrderID,
		"provider", sess.Provider,
		"mode", sess.Mode,
		"amount", sess.Amount)
	return nil
}

func (s *Store) FindByOrderID(ctx context.Context, orderID string) (*session.PaymentSession, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

func (s *Store) MarkTerminal(ctx context.Context, orderID, status string, meta TerminalMeta) (TerminalResult, error) {
	res, err := s.repo.MarkTerminal(ctx, orderID, status, meta)
	if err != nil {
		s.logger.Error("failed to mark session terminal",
			"order_id", orderID,
			"status", status,
			"error", err)
		return res, err
	}

	if res == AlreadyTerminal {
		s.logger.Info("duplicate terminal notification for session",
			"order_id", orderID,
			"status", status)
	} else {
		s.logger.Info("session transitioned",
			"order_id", orderID,
			"status", status,
			"transaction_ref", meta.TransactionRef)
	}
	return res, nil
}

// ExpirePending transitions sessions stuck in pending past the TTL to
// expired. Run by the worker command, never by the reconciler.
func (s *Store) ExpirePending(ctx context.Context, olderThan time.Time) (int64, error) {
	n, err := s.repo.ExpirePending(ctx, olderThan)
	if err != nil {
		s.logger.Error("expiry sweep failed", "error", err)
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired pending sessions", "count", n, "older_than", olderThan)
	}
	return n, nil
}
