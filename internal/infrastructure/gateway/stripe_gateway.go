package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"
)

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeConfig configures the StripeGateway.
type StripeConfig struct {
	APIKey string
	// Intents overrides the real client, used by tests.
	Intents stripeIntentAPI
}

// StripeGateway implements CardGateway on Stripe PaymentIntents. Idempotency
// is delegated to the processor: the client-supplied key is set on every
// request, so a replay returns the original intent without re-charging.
type StripeGateway struct {
	intents stripeIntentAPI
	log     *zap.Logger
}

// NewStripeGateway constructs a gateway using the given configuration.
func NewStripeGateway(cfg StripeConfig, log *zap.Logger) (*StripeGateway, error) {
	intents := cfg.Intents
	if intents == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		sc := client.New(apiKey, nil)
		intents = sc.PaymentIntents
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StripeGateway{intents: intents, log: log}, nil
}

// Charge creates and confirms a payment intent for the requested amount.
func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		Confirm:  stripe.Bool(true),
	}
	params.Context = ctx
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	if req.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(req.PaymentMethodID)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}

	intent, err := g.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			g.log.Info("card declined",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("decline_code", string(stripeErr.DeclineCode)),
			)
			result := ChargeResult{ErrorMessage: stripeErr.Msg}
			if stripeErr.PaymentIntent != nil {
				result.IntentID = stripeErr.PaymentIntent.ID
			}
			return result, nil
		}
		return ChargeResult{}, err
	}

	result := ChargeResult{IntentID: intent.ID}
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
		result.Succeeded = true
		if intent.LatestCharge != nil {
			result.TransactionID = intent.LatestCharge.ID
		}
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		result.RequiresAction = true
	default:
		result.ErrorMessage = "payment intent in unexpected status " + string(intent.Status)
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			result.ErrorMessage = intent.LastPaymentError.Msg
		}
	}
	return result, nil
}
