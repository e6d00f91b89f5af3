package request

import (
	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/application/service"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
	"github.com/ramuneri/tillpoint-api/pkg/money"
)

// OrderItemRequest is one line on an order creation or update request.
type OrderItemRequest struct {
	ProductID   *uuid.UUID `json:"product_id"`
	ServiceID   *uuid.UUID `json:"service_id"`
	VariationID *uuid.UUID `json:"variation_id"`
	Quantity    int        `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest opens a new order
type CreateOrderRequest struct {
	EmployeeID uuid.UUID          `json:"employee_id" binding:"required"`
	CustomerID *uuid.UUID         `json:"customer_id"`
	Note       *string            `json:"note"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest edits an open order
type UpdateOrderRequest struct {
	Note  *string            `json:"note"`
	Items []OrderItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

// PaymentRequest is one payment in a close request. Amounts are decimal
// currency units on the wire.
type PaymentRequest struct {
	Method          string  `json:"method" binding:"required"`
	Amount          float64 `json:"amount" binding:"min=0"`
	Currency        string  `json:"currency" binding:"required,len=3"`
	Provider        string  `json:"provider"`
	IdempotencyKey  string  `json:"idempotency_key"`
	PaymentMethodID string  `json:"payment_method_id"`
	GiftcardCode    string  `json:"giftcard_code"`
}

// TipRequest is a tip submitted alongside settlement
type TipRequest struct {
	Amount float64 `json:"amount" binding:"min=0"`
	Source string  `json:"source" binding:"omitempty,max=50"`
}

// CloseOrderRequest settles an order
type CloseOrderRequest struct {
	Payments      []PaymentRequest `json:"payments" binding:"required,min=1,dive"`
	Tip           *TipRequest      `json:"tip"`
	Discount      *float64         `json:"discount" binding:"omitempty,min=0"`
	ServiceCharge *float64         `json:"service_charge" binding:"omitempty,min=0"`
}

// SplitGroupRequest assigns items to one payer in a split close
type SplitGroupRequest struct {
	PayerName string         `json:"payer_name" binding:"omitempty,max=100"`
	ItemIDs   []uuid.UUID    `json:"item_ids" binding:"required,min=1"`
	Payment   PaymentRequest `json:"payment" binding:"required"`
}

// SplitCloseRequest settles an order split across payers by items
type SplitCloseRequest struct {
	Groups        []SplitGroupRequest `json:"groups" binding:"required,min=1,dive"`
	Tip           *TipRequest         `json:"tip"`
	Discount      *float64            `json:"discount" binding:"omitempty,min=0"`
	ServiceCharge *float64            `json:"service_charge" binding:"omitempty,min=0"`
}

// CreateRefundRequest refunds part or all of a closed order
type CreateRefundRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason" binding:"omitempty,max=255"`
}

// ToItemInputs converts request items to service inputs.
func ToItemInputs(items []OrderItemRequest) []service.OrderItemInput {
	inputs := make([]service.OrderItemInput, 0, len(items))
	for i := range items {
		inputs = append(inputs, service.OrderItemInput{
			ProductID:   items[i].ProductID,
			ServiceID:   items[i].ServiceID,
			VariationID: items[i].VariationID,
			Quantity:    items[i].Quantity,
		})
	}
	return inputs
}

// ToPaymentRequest converts a wire payment to a service payment request.
func (r *PaymentRequest) ToPaymentRequest() (service.PaymentRequest, error) {
	method, err := enum.ParsePaymentMethod(r.Method)
	if err != nil {
		return service.PaymentRequest{}, apperror.NewValidationError(err.Error())
	}
	return service.PaymentRequest{
		Method:          method,
		AmountCents:     money.CentsFromFloat(r.Amount),
		Currency:        r.Currency,
		Provider:        r.Provider,
		IdempotencyKey:  r.IdempotencyKey,
		PaymentMethodID: r.PaymentMethodID,
		GiftcardCode:    r.GiftcardCode,
	}, nil
}

// ToTipInput converts a wire tip to a service tip input.
func (r *TipRequest) ToTipInput() *service.TipInput {
	if r == nil {
		return nil
	}
	return &service.TipInput{
		AmountCents: money.CentsFromFloat(r.Amount),
		Source:      r.Source,
	}
}

// ToOverrides builds charge overrides from optional wire amounts.
func ToOverrides(discount, serviceCharge *float64) *service.ChargeOverrides {
	if discount == nil && serviceCharge == nil {
		return nil
	}
	overrides := &service.ChargeOverrides{}
	if discount != nil {
		cents := money.CentsFromFloat(*discount)
		overrides.DiscountCents = &cents
	}
	if serviceCharge != nil {
		cents := money.CentsFromFloat(*serviceCharge)
		overrides.ServiceChargeCents = &cents
	}
	return overrides
}
