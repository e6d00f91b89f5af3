// Package gateway wraps the external card processor behind a narrow
// interface the settlement engine can call inside its transaction.
package gateway

import "context"

// ChargeRequest describes a single card charge attempt. The idempotency key
// is client-supplied; repeating a request with the same key must not charge
// twice.
type ChargeRequest struct {
	AmountCents     int64
	Currency        string
	IdempotencyKey  string
	PaymentMethodID string
	Description     string
}

// ChargeResult is the normalised outcome of a charge attempt. A decline is
// reported here, not as an error; errors are reserved for transport and
// processor failures.
type ChargeResult struct {
	Succeeded      bool
	RequiresAction bool
	IntentID       string
	TransactionID  string
	ErrorMessage   string
}

// CardGateway is the external-system boundary for card payments.
type CardGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}
