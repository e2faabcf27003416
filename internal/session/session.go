// Package session owns the payment-session store: the durable pending
// monetary intent keyed by the provider-issued order id. MarkTerminal is the
// single serialization point for concurrent webhook/capture deliveries of
// the same order.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vqminh/tour-booking/internal/core/datamodel/session"
)

// TerminalResult reports how a MarkTerminal call resolved.
type TerminalResult int

const (
	// Transitioned: this caller won the compare-and-swap out of pending.
	Transitioned TerminalResult = iota
	// AlreadyTerminal: the session was already in the requested terminal
	// status. Duplicate provider deliveries take this path.
	AlreadyTerminal
)

// TerminalMeta is the provider audit trail recorded alongside a terminal
// transition.
type TerminalMeta struct {
	TransactionRef  string
	ResultCode      string
	ResultMessage   string
	CallbackPayload json.RawMessage
	PaidAt          *time.Time
}

// Repository is the storage contract for payment sessions.
type Repository interface {
	Create(ctx context.Context, s *session.PaymentSession) error
	GetByOrderID(ctx context.Context, orderID string) (*session.PaymentSession, error)
	// MarkTerminal transitions status out of pending with a conditional
	// update. It must return internal.ErrCodeConflictingOutcome when the
	// stored status is terminal but different from the requested one.
	MarkTerminal(ctx context.Context, orderID, status string, meta TerminalMeta) (TerminalResult, error)
	// ExpirePending sweeps sessions that never received an outcome.
	ExpirePending(ctx context.Context, olderThan time.Time) (int64, error)
}
