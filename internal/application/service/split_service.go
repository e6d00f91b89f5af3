package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
	"github.com/ramuneri/tillpoint-api/pkg/money"
)

// splitToleranceCents bounds the rounding drift allowed between the summed
// payer totals and the order's remaining amount.
const splitToleranceCents = 2

// SplitGroup assigns a set of order items to one payer together with the
// payment that payer will make. The payment amount is computed by the
// allocator; any client-supplied amount is ignored.
type SplitGroup struct {
	PayerName string
	ItemIDs   []uuid.UUID
	Payment   PaymentRequest
}

// SplitCloseInput describes an item-based split settlement.
type SplitCloseInput struct {
	OrderID   uuid.UUID
	Groups    []SplitGroup
	Tip       *TipInput
	Overrides *ChargeOverrides
}

// PayerShare is the allocated amount for one payer, for reporting back to
// the client alongside the settlement result.
type PayerShare struct {
	PayerName   string  `json:"payer_name"`
	AmountCents int64   `json:"-"`
	Amount      float64 `json:"amount"`
}

// SplitResult is a settlement result annotated with each payer's share.
type SplitResult struct {
	*SettlementResult
	Shares []PayerShare
}

// SplitService allocates an order across payers by assigned items and then
// settles it through the settlement engine. Each payer's share carries a
// proportional slice of the order-level discount, service charge and tip;
// per-item tax follows the item.
type SplitService struct {
	orderRepo  repository.OrderRepository
	calculator *TotalsCalculator
	settlement *SettlementService
	log        *zap.Logger
}

// NewSplitService creates a new split service
func NewSplitService(orderRepo repository.OrderRepository, calculator *TotalsCalculator, settlement *SettlementService, log *zap.Logger) *SplitService {
	return &SplitService{
		orderRepo:  orderRepo,
		calculator: calculator,
		settlement: settlement,
		log:        log,
	}
}

// SplitClose allocates the order across the given groups and closes it. The
// assignment must cover every order item exactly once. Allocation conserves
// money to within a 2-cent tolerance; a larger drift aborts with
// SPLIT_MISMATCH before anything is charged.
func (s *SplitService) SplitClose(ctx context.Context, input *SplitCloseInput) (*SplitResult, error) {
	if len(input.Groups) == 0 {
		return nil, apperror.NewValidationError("At least one split group is required")
	}

	order, err := s.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.CancelledAt != nil {
		return nil, apperror.NewAppError(409, apperror.CodeCancelled, "Order is cancelled")
	}
	if order.ClosedAt != nil {
		return nil, apperror.NewAppError(409, apperror.CodeAlreadyClosed, "Order is already closed")
	}

	// Every item must be assigned to exactly one payer.
	itemsOnOrder := make(map[uuid.UUID]bool, len(order.Items))
	for i := range order.Items {
		itemsOnOrder[order.Items[i].ID] = false
	}
	for gi := range input.Groups {
		group := &input.Groups[gi]
		if len(group.ItemIDs) == 0 {
			return nil, apperror.NewValidationError("Every split group must be assigned at least one item")
		}
		for _, itemID := range group.ItemIDs {
			assigned, ok := itemsOnOrder[itemID]
			if !ok {
				return nil, apperror.NewValidationError("Split references an item that is not on the order")
			}
			if assigned {
				return nil, apperror.NewValidationError("Split assigns the same item to more than one payer")
			}
			itemsOnOrder[itemID] = true
		}
	}
	for _, assigned := range itemsOnOrder {
		if !assigned {
			return nil, apperror.NewValidationError("Split must assign every item on the order")
		}
	}

	charges, subtotal, err := s.calculator.ItemCharges(ctx, order)
	if err != nil {
		return nil, err
	}
	if subtotal == 0 {
		return nil, apperror.NewValidationError("Order subtotal is zero and cannot be split by items")
	}

	totals, err := s.calculator.Compute(ctx, order, input.Overrides)
	if err != nil {
		return nil, err
	}

	var tip int64
	if input.Tip != nil {
		if input.Tip.AmountCents < 0 {
			return nil, apperror.NewValidationError("Tip must not be negative")
		}
		tip = input.Tip.AmountCents
	}

	// Allocate order-level amounts by each payer's share of the item
	// subtotal, rounding each share independently.
	shares := make([]PayerShare, 0, len(input.Groups))
	payments := make([]PaymentRequest, 0, len(input.Groups))
	var allocated int64
	for gi := range input.Groups {
		group := &input.Groups[gi]

		var paySubtotal, payTax int64
		for _, itemID := range group.ItemIDs {
			charge := charges[itemID]
			paySubtotal += charge.TotalCents
			payTax += charge.TaxCents
		}

		discountShare := money.Share(totals.DiscountCents, paySubtotal, subtotal)
		chargeShare := money.Share(totals.ServiceChargeCents, paySubtotal, subtotal)
		tipShare := money.Share(tip, paySubtotal, subtotal)

		payerTotal := paySubtotal - discountShare + payTax + chargeShare + tipShare
		allocated += payerTotal

		req := group.Payment
		req.AmountCents = payerTotal
		payments = append(payments, req)
		shares = append(shares, PayerShare{
			PayerName:   group.PayerName,
			AmountCents: payerTotal,
			Amount:      money.Float(payerTotal),
		})
	}

	expected := totals.RemainingCents + tip
	drift := allocated - expected
	if drift < -splitToleranceCents || drift > splitToleranceCents {
		return nil, apperror.NewAppError(422, apperror.CodeSplitMismatch, "Split allocation does not add up to the order total").
			WithDetails(map[string]any{
				"allocated": money.Float(allocated),
				"expected":  money.Float(expected),
			})
	}

	// Cash settles last so the running balance a cash payment must cover is
	// its own share, and the rounding remainder lands on the final payment.
	ordered := make([]PaymentRequest, 0, len(payments))
	var cashPayments []PaymentRequest
	for i := range payments {
		if payments[i].Method == enum.PaymentMethodCash {
			cashPayments = append(cashPayments, payments[i])
			continue
		}
		ordered = append(ordered, payments[i])
	}
	ordered = append(ordered, cashPayments...)
	ordered[len(ordered)-1].AmountCents -= drift

	result, err := s.settlement.CloseOrder(ctx, &CloseOrderInput{
		OrderID:   input.OrderID,
		Payments:  ordered,
		Tip:       input.Tip,
		Overrides: input.Overrides,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order split-settled",
		zap.String("order_id", input.OrderID.String()),
		zap.Int("payers", len(input.Groups)),
	)

	return &SplitResult{SettlementResult: result, Shares: shares}, nil
}
