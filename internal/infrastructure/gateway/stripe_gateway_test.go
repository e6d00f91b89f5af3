package gateway

import (
	"context"
	"testing"

	"github.com/stripe/stripe-go/v78"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIntents struct {
	lastParams *stripe.PaymentIntentParams
	intent     *stripe.PaymentIntent
	err        error
}

func (s *stubIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.lastParams = params
	return s.intent, s.err
}

func newTestGateway(t *testing.T, intents *stubIntents) *StripeGateway {
	t.Helper()
	gw, err := NewStripeGateway(StripeConfig{Intents: intents}, nil)
	require.NoError(t, err)
	return gw
}

func TestChargeSucceeded(t *testing.T) {
	intents := &stubIntents{intent: &stripe.PaymentIntent{
		ID:           "pi_1",
		Status:       stripe.PaymentIntentStatusSucceeded,
		LatestCharge: &stripe.Charge{ID: "ch_1"},
	}}
	gw := newTestGateway(t, intents)

	result, err := gw.Charge(context.Background(), ChargeRequest{
		AmountCents:     1250,
		Currency:        "EUR",
		IdempotencyKey:  "idem-1",
		PaymentMethodID: "pm_card_visa",
		Description:     "order abc",
	})
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.False(t, result.RequiresAction)
	assert.Equal(t, "pi_1", result.IntentID)
	assert.Equal(t, "ch_1", result.TransactionID)

	params := intents.lastParams
	require.NotNil(t, params)
	assert.Equal(t, int64(1250), *params.Amount)
	assert.Equal(t, "eur", *params.Currency)
	assert.True(t, *params.Confirm)
	assert.Equal(t, "pm_card_visa", *params.PaymentMethod)
	require.NotNil(t, params.IdempotencyKey)
	assert.Equal(t, "idem-1", *params.IdempotencyKey)
}

func TestChargeRequiresCaptureCountsAsSucceeded(t *testing.T) {
	gw := newTestGateway(t, &stubIntents{intent: &stripe.PaymentIntent{
		ID:     "pi_2",
		Status: stripe.PaymentIntentStatusRequiresCapture,
	}})

	result, err := gw.Charge(context.Background(), ChargeRequest{AmountCents: 100, Currency: "EUR"})
	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	assert.Empty(t, result.TransactionID)
}

func TestChargeRequiresAction(t *testing.T) {
	gw := newTestGateway(t, &stubIntents{intent: &stripe.PaymentIntent{
		ID:     "pi_3ds",
		Status: stripe.PaymentIntentStatusRequiresAction,
	}})

	result, err := gw.Charge(context.Background(), ChargeRequest{AmountCents: 100, Currency: "EUR"})
	require.NoError(t, err)
	assert.False(t, result.Succeeded)
	assert.True(t, result.RequiresAction)
	assert.Equal(t, "pi_3ds", result.IntentID)
}

func TestChargeCardDeclined(t *testing.T) {
	gw := newTestGateway(t, &stubIntents{err: &stripe.Error{
		Type:          stripe.ErrorTypeCard,
		Msg:           "Your card was declined.",
		DeclineCode:   "generic_decline",
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_declined"},
	}})

	result, err := gw.Charge(context.Background(), ChargeRequest{AmountCents: 100, Currency: "EUR"})
	require.NoError(t, err)
	assert.False(t, result.Succeeded)
	assert.False(t, result.RequiresAction)
	assert.Equal(t, "pi_declined", result.IntentID)
	assert.Equal(t, "Your card was declined.", result.ErrorMessage)
}

func TestChargeTransportErrorPropagates(t *testing.T) {
	gw := newTestGateway(t, &stubIntents{err: &stripe.Error{
		Type: stripe.ErrorTypeAPI,
		Msg:  "api unavailable",
	}})

	_, err := gw.Charge(context.Background(), ChargeRequest{AmountCents: 100, Currency: "EUR"})
	assert.Error(t, err)
}

func TestChargeUnexpectedStatus(t *testing.T) {
	gw := newTestGateway(t, &stubIntents{intent: &stripe.PaymentIntent{
		ID:     "pi_4",
		Status: stripe.PaymentIntentStatusCanceled,
		LastPaymentError: &stripe.Error{
			Msg: "intent was canceled",
		},
	}})

	result, err := gw.Charge(context.Background(), ChargeRequest{AmountCents: 100, Currency: "EUR"})
	require.NoError(t, err)
	assert.False(t, result.Succeeded)
	assert.Equal(t, "intent was canceled", result.ErrorMessage)
}

func TestNewStripeGatewayRequiresKey(t *testing.T) {
	_, err := NewStripeGateway(StripeConfig{}, nil)
	assert.Error(t, err)
}
