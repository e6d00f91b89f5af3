package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/internal/infrastructure/gateway"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
	"github.com/ramuneri/tillpoint-api/pkg/money"
)

// TipInput is a tip submitted alongside settlement. Tips are recorded on the
// order but never counted toward its total.
type TipInput struct {
	AmountCents int64
	Source      string
}

// CloseOrderInput carries everything needed to settle an order in one shot.
type CloseOrderInput struct {
	OrderID   uuid.UUID
	Payments  []PaymentRequest
	Tip       *TipInput
	Overrides *ChargeOverrides
}

// SettlementResult reports a successful close: the reloaded order, the
// change due when cash overpaid, and the applied payments.
type SettlementResult struct {
	Order       *entity.Order
	Totals      *Totals
	ChangeCents int64
}

// stepUpAbort forces the surrounding transaction to roll back when the card
// gateway demands 3-D Secure. It carries the intent id so the caller can
// resume the charge after authentication.
type stepUpAbort struct {
	intentID string
}

func (e *stepUpAbort) Error() string {
	return "card requires step-up authentication"
}

// SettlementService closes orders atomically: it validates and applies every
// payment, records the tip, and marks the order closed inside one database
// transaction. Any failure rolls the whole attempt back, leaving the order
// open with no partial payments recorded.
type SettlementService struct {
	txManager    repository.TxManager
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	tipRepo      repository.OrderTipRepository
	giftcardRepo repository.GiftcardRepository
	calculator   *TotalsCalculator
	validator    *PaymentValidator
	cardGateway  gateway.CardGateway
	log          *zap.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	txManager repository.TxManager,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	tipRepo repository.OrderTipRepository,
	giftcardRepo repository.GiftcardRepository,
	calculator *TotalsCalculator,
	validator *PaymentValidator,
	cardGateway gateway.CardGateway,
	log *zap.Logger,
) *SettlementService {
	return &SettlementService{
		txManager:    txManager,
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		tipRepo:      tipRepo,
		giftcardRepo: giftcardRepo,
		calculator:   calculator,
		validator:    validator,
		cardGateway:  cardGateway,
		log:          log,
	}
}

// CloseOrder settles an order with the supplied payments. Payments are
// applied in request order against a running balance; cash may overpay (the
// excess is returned as change), card and gift card payments apply at most
// the amount still owed. The order row is locked for the duration, so
// concurrent closes of the same order serialise and the loser gets
// ALREADY_CLOSED.
func (s *SettlementService) CloseOrder(ctx context.Context, input *CloseOrderInput) (*SettlementResult, error) {
	if len(input.Payments) == 0 {
		return nil, apperror.NewValidationError("At least one payment is required to close an order")
	}
	if input.Tip != nil && input.Tip.AmountCents < 0 {
		return nil, apperror.NewValidationError("Tip must not be negative")
	}

	var result *SettlementResult
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error
		result, txErr = s.settle(ctx, input)
		return txErr
	})
	if err != nil {
		var stepUp *stepUpAbort
		if errors.As(err, &stepUp) {
			// The transaction rolled back: no payments, no tip, order still
			// open. Surface the intent so the client can authenticate and
			// retry with the same idempotency key.
			return nil, apperror.NewStepUpRequiredError(stepUp.intentID)
		}
		return nil, err
	}
	return result, nil
}

func (s *SettlementService) settle(ctx context.Context, input *CloseOrderInput) (*SettlementResult, error) {
	order, err := s.orderRepo.GetForSettlement(ctx, input.OrderID)
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

	if input.Overrides != nil {
		if input.Overrides.DiscountCents != nil {
			if *input.Overrides.DiscountCents < 0 {
				return nil, apperror.NewValidationError("Discount must not be negative")
			}
			order.DiscountCents = *input.Overrides.DiscountCents
		}
		if input.Overrides.ServiceChargeCents != nil {
			if *input.Overrides.ServiceChargeCents < 0 {
				return nil, apperror.NewValidationError("Service charge must not be negative")
			}
			order.ServiceChargeCents = *input.Overrides.ServiceChargeCents
		}
	}

	totals, err := s.calculator.Compute(ctx, order, nil)
	if err != nil {
		return nil, err
	}
	if totals.RemainingCents == 0 {
		return nil, apperror.NewAppError(409, apperror.CodeAlreadyPaid, "Order has no outstanding balance")
	}

	// The tip rides on the payments, so the amount to collect is the open
	// balance plus the requested tip.
	var tipAmount int64
	if input.Tip != nil {
		tipAmount = input.Tip.AmountCents
	}
	collectible := totals.RemainingCents + tipAmount

	var offered int64
	for i := range input.Payments {
		offered += input.Payments[i].AmountCents
	}
	if offered < collectible {
		return nil, apperror.NewAppError(422, apperror.CodeInsufficientPayment, "Payments do not cover the remaining amount").
			WithDetails(map[string]any{
				"remaining": money.Float(collectible),
				"offered":   money.Float(offered),
			})
	}

	remaining := collectible
	var change int64
	now := time.Now().UTC()

	for i := range input.Payments {
		req := &input.Payments[i]
		if err := s.validator.Validate(req, remaining); err != nil {
			return nil, err
		}

		applied := req.AmountCents
		if applied > remaining {
			applied = remaining
		}
		// Every payment row must carry money. A payment that would apply
		// nothing means the earlier payments already covered the order.
		if applied == 0 {
			return nil, apperror.NewValidationError("Earlier payments already cover the order; remove the extra payment")
		}

		payment := &entity.Payment{
			OrderID:     order.ID,
			Method:      req.Method,
			AmountCents: applied,
			Currency:    req.Currency,
			Status:      enum.PaymentStatusSucceeded,
		}

		switch req.Method {
		case enum.PaymentMethodCash:
			change += req.AmountCents - applied

		case enum.PaymentMethodCard:
			res, err := s.cardGateway.Charge(ctx, gateway.ChargeRequest{
				AmountCents:     applied,
				Currency:        req.Currency,
				IdempotencyKey:  req.IdempotencyKey,
				PaymentMethodID: req.PaymentMethodID,
				Description:     fmt.Sprintf("order %s", order.ID),
			})
			if err != nil {
				return nil, err
			}
			if res.RequiresAction {
				return nil, &stepUpAbort{intentID: res.IntentID}
			}
			if !res.Succeeded {
				return nil, apperror.NewGatewayDeclinedError(res.ErrorMessage)
			}
			payment.Provider = req.Provider
			if res.IntentID != "" {
				intentID := res.IntentID
				payment.GatewayIntentID = &intentID
			}

		case enum.PaymentMethodGiftCard:
			card, err := s.giftcardRepo.GetByCodeForUpdate(ctx, req.GiftcardCode)
			if err != nil {
				return nil, err
			}
			if card == nil || !card.IsUsable(now) {
				return nil, apperror.NewAppError(422, apperror.CodeGiftCardNotFound, "Gift card not found or expired")
			}
			if card.BalanceCents < req.AmountCents {
				return nil, apperror.NewAppError(422, apperror.CodeInsufficientGiftCard, "Insufficient gift card balance").
					WithDetails(map[string]any{
						"balance":   money.Float(card.BalanceCents),
						"requested": money.Float(req.AmountCents),
					})
			}
			ok, err := s.giftcardRepo.Debit(ctx, card.ID, applied)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperror.NewAppError(422, apperror.CodeInsufficientGiftCard, "Insufficient gift card balance")
			}
			payment.GiftcardPayments = []entity.GiftcardPayment{
				{GiftcardID: card.ID, AmountUsedCents: applied},
			}
		}

		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return nil, err
		}
		remaining -= applied
	}

	if remaining > 0 {
		return nil, apperror.NewAppError(422, apperror.CodeInsufficientPayment, "Payments do not cover the remaining amount").
			WithDetails(map[string]any{"remaining": money.Float(remaining)})
	}

	if input.Tip != nil && input.Tip.AmountCents > 0 {
		tip := &entity.OrderTip{
			OrderID:     order.ID,
			Source:      input.Tip.Source,
			AmountCents: input.Tip.AmountCents,
		}
		if err := s.tipRepo.Create(ctx, tip); err != nil {
			return nil, err
		}
	}

	if input.Overrides != nil {
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
	}

	closedAt := time.Now().UTC()
	closed, err := s.orderRepo.Close(ctx, order.ID, closedAt)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, apperror.NewAppError(409, apperror.CodeAlreadyClosed, "Order is already closed")
	}

	settled, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	finalTotals, err := s.calculator.Compute(ctx, settled, nil)
	if err != nil {
		return nil, err
	}

	s.log.Info("order settled",
		zap.String("order_id", order.ID.String()),
		zap.Int("payments", len(input.Payments)),
		zap.Float64("total", money.Float(finalTotals.TotalCents)),
		zap.Float64("change", money.Float(change)),
	)

	return &SettlementResult{Order: settled, Totals: finalTotals, ChangeCents: change}, nil
}
