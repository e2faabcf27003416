// Package provider defines the provider-agnostic outcome signal the
// reconciler consumes, plus the intent shape adapters translate into each
// provider's wire format. Adapters verify authenticity and map result codes;
// they never touch bookings or the seat ledger.
package provider

import (
	"context"
	"encoding/json"
)

type OutcomeStatus string

const (
	OutcomePaid   OutcomeStatus = "paid"
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is the tagged variant fed into the reconciler. Raw keeps the
// provider payload for the session audit trail.
type Outcome struct {
	Status         OutcomeStatus
	TransactionRef string
	ResultCode     string
	Message        string
	Raw            json.RawMessage
}

func (o Outcome) Paid() bool {
	return o.Status == OutcomePaid
}

// Intent is what checkout asks a provider to open: a settlement-currency
// amount bound to an order id.
type Intent struct {
	OrderID   string
	RequestID string
	AmountVND int64
	OrderInfo string
}

// IntentResult is the provider's answer: where to send the customer, plus
// the raw response snapshot for audit.
type IntentResult struct {
	PayURL string
	Raw    json.RawMessage
}

// IntentCreator opens a payment intent with the provider. Both adapters
// implement it; checkout picks one by the session's provider field.
type IntentCreator interface {
	Name() string
	CreateIntent(ctx context.Context, intent Intent) (*IntentResult, error)
}
