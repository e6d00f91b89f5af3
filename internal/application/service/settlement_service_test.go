package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/internal/infrastructure/gateway"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
)

// 2 x 100.00 at 21% -> total 242.00.
func settlementOrder(f *fixture) *entity.Order {
	opened := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	categoryID := f.addCategory("21", opened.Add(-24*time.Hour))
	productID := f.addProduct(10000, &categoryID)
	return f.openOrder(opened, orderLine{productID: productID, quantity: 2})
}

func TestCloseOrderWithCashReturnsChange(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)

	result, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cashPayment(25000)},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(800), result.ChangeCents)
	assert.Equal(t, int64(24200), result.Totals.TotalCents)
	assert.Equal(t, int64(0), result.Totals.RemainingCents)
	assert.NotNil(t, result.Order.ClosedAt)

	require.Len(t, f.store.payments, 1)
	assert.Equal(t, int64(24200), f.store.payments[0].AmountCents)
	assert.Equal(t, enum.PaymentStatusSucceeded, f.store.payments[0].Status)
}

func TestCloseOrderRecordsTip(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)

	result, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cashPayment(25000)},
		Tip:      &TipInput{AmountCents: 500, Source: "cash"},
	})
	require.NoError(t, err)

	// 250.00 against 242.00 + 5.00 tip leaves 3.00 change.
	assert.Equal(t, int64(300), result.ChangeCents)
	require.Len(t, f.store.tips, 1)
	assert.Equal(t, int64(500), f.store.tips[0].AmountCents)
	// The tip never enters the total.
	assert.Equal(t, int64(24200), result.Totals.TotalCents)
}

func TestCloseOrderInsufficientPayment(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cardPayment(10000, "idem-1")},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientPayment))

	// Nothing was recorded and the order stays open.
	assert.Empty(t, f.store.payments)
	assert.Nil(t, f.store.orders[order.ID].ClosedAt)
}

func TestCloseOrderAlreadyClosed(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cashPayment(25000)},
	})
	require.NoError(t, err)

	_, err = f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cashPayment(25000)},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyClosed))
	// The second attempt must not add payments.
	assert.Len(t, f.store.payments, 1)
}

func TestCloseOrderCancelled(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	now := time.Now().UTC()
	f.store.orders[order.ID].CancelledAt = &now

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cashPayment(25000)},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeCancelled))
}

func TestCloseOrderNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  uuid.New(),
		Payments: []PaymentRequest{cashPayment(100)},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestCloseOrderCardCharge(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)

	result, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cardPayment(24200, "idem-1")},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.ChangeCents)
	require.Len(t, f.gateway.charges, 1)
	assert.Equal(t, int64(24200), f.gateway.charges[0].AmountCents)
	assert.Equal(t, "idem-1", f.gateway.charges[0].IdempotencyKey)

	require.Len(t, f.store.payments, 1)
	require.NotNil(t, f.store.payments[0].GatewayIntentID)
	assert.Equal(t, "pi_test", *f.store.payments[0].GatewayIntentID)
}

func TestCloseOrderCardStepUpRollsBack(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	f.gateway.results["idem-3ds"] = gateway.ChargeResult{RequiresAction: true, IntentID: "pi_3ds"}

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID: order.ID,
		Payments: []PaymentRequest{
			cardPayment(10000, "idem-ok"),
			cardPayment(14200, "idem-3ds"),
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeRequiresStepUp))

	appErr := apperror.GetAppError(err)
	assert.Equal(t, "pi_3ds", appErr.Details["payment_intent_id"])

	// The payment applied before the step-up must be rolled back too.
	assert.Empty(t, f.store.payments)
	assert.Nil(t, f.store.orders[order.ID].ClosedAt)
}

func TestCloseOrderCardDeclined(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	f.gateway.results["idem-declined"] = gateway.ChargeResult{ErrorMessage: "Your card was declined."}

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cardPayment(24200, "idem-declined")},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeGatewayDeclined))
	assert.Empty(t, f.store.payments)
	assert.Nil(t, f.store.orders[order.ID].ClosedAt)
}

func TestCloseOrderGiftCard(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	cardID := f.addGiftcard("GC-100", 30000)

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{giftcardPayment(24200, "GC-100")},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5800), f.store.giftcards[cardID].BalanceCents)
	require.Len(t, f.store.payments, 1)
	require.Len(t, f.store.payments[0].GiftcardPayments, 1)
	assert.Equal(t, int64(24200), f.store.payments[0].GiftcardPayments[0].AmountUsedCents)
}

func TestCloseOrderGiftCardInsufficientBalance(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	cardID := f.addGiftcard("GC-LOW", 5000) // 50.00 against 242.00

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{giftcardPayment(24200, "GC-LOW")},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientGiftCard))

	// Balance untouched, no payment recorded, order still open.
	assert.Equal(t, int64(5000), f.store.giftcards[cardID].BalanceCents)
	assert.Empty(t, f.store.payments)
	assert.Nil(t, f.store.orders[order.ID].ClosedAt)
}

func TestCloseOrderGiftCardExpired(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	cardID := f.addGiftcard("GC-OLD", 30000)
	expired := time.Now().UTC().Add(-time.Hour)
	f.store.giftcards[cardID].ExpiresAt = &expired

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{giftcardPayment(24200, "GC-OLD")},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeGiftCardNotFound))
	assert.Equal(t, int64(30000), f.store.giftcards[cardID].BalanceCents)
}

func TestCloseOrderMixedPayments(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	cardID := f.addGiftcard("GC-MIX", 10000)

	result, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID: order.ID,
		Payments: []PaymentRequest{
			giftcardPayment(10000, "GC-MIX"),
			cardPayment(4200, "idem-mix"),
			cashPayment(10000),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.ChangeCents)
	assert.Len(t, f.store.payments, 3)
	assert.Equal(t, int64(0), f.store.giftcards[cardID].BalanceCents)
	assert.Equal(t, int64(0), result.Totals.RemainingCents)
}

func TestCloseOrderRequiresPayments(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{OrderID: order.ID})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidationFailed))
}

func TestCloseOrderZeroTotalRejected(t *testing.T) {
	f := newFixture()
	opened := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	free := f.addProduct(0, nil)
	order := f.openOrder(opened, orderLine{productID: free, quantity: 1})

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{cashPayment(100)},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyPaid))

	// Nothing to collect, so nothing may be recorded.
	assert.Empty(t, f.store.payments)
	assert.Nil(t, f.store.orders[order.ID].ClosedAt)
}

func TestCloseOrderFullDiscountRejected(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	discount := int64(24200)

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:   order.ID,
		Payments:  []PaymentRequest{cashPayment(100)},
		Overrides: &ChargeOverrides{DiscountCents: &discount},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyPaid))
	assert.Empty(t, f.store.payments)
	assert.Nil(t, f.store.orders[order.ID].ClosedAt)
}

func TestCloseOrderRejectsPaymentBeyondCoverage(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)

	// The first cash payment clears the balance; the trailing payment would
	// apply nothing and must abort the whole attempt.
	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID: order.ID,
		Payments: []PaymentRequest{
			cashPayment(25000),
			cashPayment(100),
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidationFailed))

	assert.Empty(t, f.store.payments)
	assert.Nil(t, f.store.orders[order.ID].ClosedAt)
}

func TestCloseOrderGiftCardBalanceBelowRequested(t *testing.T) {
	f := newFixture()
	order := settlementOrder(f)
	// Balance covers the remaining 242.00 but not the requested 300.00.
	cardID := f.addGiftcard("GC-NEAR", 24500)

	_, err := f.settlement.CloseOrder(context.Background(), &CloseOrderInput{
		OrderID:  order.ID,
		Payments: []PaymentRequest{giftcardPayment(30000, "GC-NEAR")},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientGiftCard))

	assert.Equal(t, int64(24500), f.store.giftcards[cardID].BalanceCents)
	assert.Empty(t, f.store.payments)
	assert.Nil(t, f.store.orders[order.ID].ClosedAt)
}
