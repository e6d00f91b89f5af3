package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraRepo "github.com/ramuneri/tillpoint-api/internal/infrastructure/repository"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
)

func newOrderService(f *fixture) *OrderService {
	return NewOrderService(
		&stubTxManager{store: f.store},
		f.orders,
		&stubOrderItemRepo{store: f.store},
		&stubProductRepo{store: f.store},
		&stubServiceRepo{store: f.store},
		&stubCustomerRepo{store: f.store},
		f.calculator,
	)
}

func merchantContext(f *fixture) context.Context {
	return infraRepo.WithMerchant(context.Background(), f.merchantID)
}

func TestCreateOrder(t *testing.T) {
	f := newFixture()
	svc := newOrderService(f)
	productID := f.addProduct(1500, nil)

	order, err := svc.CreateOrder(merchantContext(f), &CreateOrderInput{
		EmployeeID: uuid.New(),
		Items: []OrderItemInput{
			{ProductID: &productID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, f.merchantID, order.MerchantID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Nil(t, order.ClosedAt)
}

func TestCreateOrderRequiresMerchantContext(t *testing.T) {
	f := newFixture()
	svc := newOrderService(f)
	productID := f.addProduct(1500, nil)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderInput{
		EmployeeID: uuid.New(),
		Items:      []OrderItemInput{{ProductID: &productID, Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture()
	svc := newOrderService(f)
	productID := f.addProduct(1500, nil)
	serviceID := uuid.New()

	cases := []struct {
		name  string
		items []OrderItemInput
	}{
		{"no items", nil},
		{"both product and service", []OrderItemInput{{ProductID: &productID, ServiceID: &serviceID, Quantity: 1}}},
		{"neither product nor service", []OrderItemInput{{Quantity: 1}}},
		{"zero quantity", []OrderItemInput{{ProductID: &productID, Quantity: 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(merchantContext(f), &CreateOrderInput{
				EmployeeID: uuid.New(),
				Items:      tc.items,
			})
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidationFailed))
		})
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	f := newFixture()
	svc := newOrderService(f)
	missing := uuid.New()

	_, err := svc.CreateOrder(merchantContext(f), &CreateOrderInput{
		EmployeeID: uuid.New(),
		Items:      []OrderItemInput{{ProductID: &missing, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestUpdateOrderRejectsClosedOrder(t *testing.T) {
	f := newFixture()
	svc := newOrderService(f)
	order := settlementOrder(f)
	now := time.Now().UTC()
	f.store.orders[order.ID].ClosedAt = &now

	note := "late edit"
	_, err := svc.UpdateOrder(merchantContext(f), order.ID, &UpdateOrderInput{Note: &note})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyClosed))
}

func TestCancelOrder(t *testing.T) {
	f := newFixture()
	svc := newOrderService(f)
	order := settlementOrder(f)

	cancelled, err := svc.CancelOrder(merchantContext(f), order.ID)
	require.NoError(t, err)
	assert.NotNil(t, cancelled.CancelledAt)

	// A second cancel loses the compare-and-set and conflicts.
	_, err = svc.CancelOrder(merchantContext(f), order.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyClosed))
}

func TestGetOrderReturnsTotals(t *testing.T) {
	f := newFixture()
	svc := newOrderService(f)
	order := settlementOrder(f)

	got, totals, err := svc.GetOrder(merchantContext(f), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, int64(24200), totals.TotalCents)
	assert.Equal(t, int64(24200), totals.RemainingCents)
}
