package service

import (
	"fmt"

	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
)

// PaymentRequest is one payment attempt submitted to the settlement engine.
type PaymentRequest struct {
	Method          enum.PaymentMethod
	AmountCents     int64
	Currency        string
	Provider        string
	IdempotencyKey  string
	PaymentMethodID string
	GiftcardCode    string
}

var supportedCurrencies = map[string]struct{}{
	"EUR": {},
	"USD": {},
	"GBP": {},
}

// PaymentValidator checks payment requests before settlement touches any
// state. It validates shape only; balance and gateway outcomes are the
// settlement engine's concern.
type PaymentValidator struct {
	provider string
}

// NewPaymentValidator creates a validator bound to the configured card
// gateway provider.
func NewPaymentValidator(provider string) *PaymentValidator {
	return &PaymentValidator{provider: provider}
}

// Validate rejects malformed payment requests. remainingCents is the amount
// still owed on the order before this payment is applied; cash payments must
// cover it in full.
func (v *PaymentValidator) Validate(req *PaymentRequest, remainingCents int64) error {
	if req.AmountCents <= 0 {
		return apperror.NewValidationError("Payment amount must be positive")
	}
	if !req.Method.IsValid() {
		return apperror.NewValidationError("Unknown payment method")
	}
	if _, ok := supportedCurrencies[req.Currency]; !ok {
		return apperror.NewValidationError(fmt.Sprintf("Unsupported currency %q", req.Currency))
	}

	switch req.Method {
	case enum.PaymentMethodCash:
		if req.AmountCents < remainingCents {
			return apperror.NewValidationError("Cash payment must cover the remaining amount in full")
		}
	case enum.PaymentMethodCard:
		if req.Provider == "" {
			return apperror.NewValidationError("Card payment requires a provider")
		}
		if req.Provider != v.provider {
			return apperror.NewValidationError(fmt.Sprintf("Unsupported card provider %q", req.Provider))
		}
		if req.IdempotencyKey == "" {
			return apperror.NewValidationError("Card payment requires an idempotency key")
		}
	case enum.PaymentMethodGiftCard:
		if req.GiftcardCode == "" {
			return apperror.NewValidationError("Gift card payment requires a card code")
		}
	}
	return nil
}
