package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/core/datamodel/session"
	sessionpkg "github.com/vqminh/tour-booking/internal/session"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) sessionpkg.Repository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *session.PaymentSession) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil {
		if isUniqueViolation(err) {
			return internal.ErrDuplicateOrderID
		}
		return err
	}
	return nil
}

func (r *SessionRepository) GetByOrderID(ctx context.Context, orderID string) (*session.PaymentSession, error) {
	var s session.PaymentSession
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// MarkTerminal is a compare-and-swap on status='pending'. Whichever caller
// wins the race proceeds to materialize the booking; a loser sees zero rows
// affected and re-reads the stored status to decide between the idempotent
// duplicate path and a conflicting-outcome anomaly.
func (r *SessionRepository) MarkTerminal(ctx context.Context, orderID, status string, meta sessionpkg.TerminalMeta) (sessionpkg.TerminalResult, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if meta.TransactionRef != "" {
		updates["transaction_ref"] = meta.TransactionRef
	}
	if meta.ResultCode != "" {
		updates["result_code"] = meta.ResultCode
	}
	if meta.ResultMessage != "" {
		updates["result_message"] = meta.ResultMessage
	}
	if meta.CallbackPayload != nil {
		updates["callback_payload"] = meta.CallbackPayload
	}
	if meta.PaidAt != nil {
		updates["paid_at"] = *meta.PaidAt
	}

	res := r.db.WithContext(ctx).
		Model(&session.PaymentSession{}).
		Where("order_id = ? AND status = ?", orderID, session.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return sessionpkg.Transitioned, res.Error
	}
	if res.RowsAffected > 0 {
		return sessionpkg.Transitioned, nil
	}

	stored, err := r.GetByOrderID(ctx, orderID)
	if err != nil {
		return sessionpkg.Transitioned, err
	}
	if stored.Status == status {
		return sessionpkg.AlreadyTerminal, nil
	}
	return sessionpkg.Transitioned, internal.NewConflictingOutcomeError(orderID, stored.Status, status)
}

func (r *SessionRepository) ExpirePending(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&session.PaymentSession{}).
		Where("status = ? AND created_at < ?", session.StatusPending, olderThan).
		Updates(map[string]interface{}{
			"status":     session.StatusExpired,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

// isUniqueViolation matches both Postgres (23505) and the SQLite wording
// used by the in-memory test database.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
