package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
	"github.com/ramuneri/tillpoint-api/pkg/money"
)

// CreateRefundInput describes a refund against a closed order.
type CreateRefundInput struct {
	OrderID     uuid.UUID
	AmountCents int64
	Reason      string
}

// RefundService issues refunds against settled orders. A refund writes a
// ledger entry and restores gift card balances in proportion to what each
// card contributed to the original payment; cash and card money is assumed
// returned out of band.
type RefundService struct {
	txManager    repository.TxManager
	orderRepo    repository.OrderRepository
	refundRepo   repository.RefundRepository
	giftcardRepo repository.GiftcardRepository
	calculator   *TotalsCalculator
	log          *zap.Logger
}

// NewRefundService creates a new refund service
func NewRefundService(
	txManager repository.TxManager,
	orderRepo repository.OrderRepository,
	refundRepo repository.RefundRepository,
	giftcardRepo repository.GiftcardRepository,
	calculator *TotalsCalculator,
	log *zap.Logger,
) *RefundService {
	return &RefundService{
		txManager:    txManager,
		orderRepo:    orderRepo,
		refundRepo:   refundRepo,
		giftcardRepo: giftcardRepo,
		calculator:   calculator,
		log:          log,
	}
}

// CreateRefund refunds part or all of a closed order. The refundable amount
// is the order total minus refunds already issued; requests outside that
// bound are rejected before anything is written. Ledger entry and gift card
// credits commit atomically.
func (s *RefundService) CreateRefund(ctx context.Context, input *CreateRefundInput) (*entity.Refund, error) {
	if input.AmountCents <= 0 {
		return nil, apperror.NewValidationError("Refund amount must be positive")
	}

	var refund *entity.Refund
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetForSettlement(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if order.CancelledAt != nil {
			return apperror.NewAppError(409, apperror.CodeCancelled, "Order is cancelled")
		}
		if order.ClosedAt == nil {
			return apperror.NewValidationError("Only closed orders can be refunded")
		}

		totals, err := s.calculator.Compute(ctx, order, nil)
		if err != nil {
			return err
		}

		var alreadyRefunded int64
		for i := range order.Refunds {
			alreadyRefunded += order.Refunds[i].AmountCents
		}
		refundable := totals.TotalCents - alreadyRefunded
		if input.AmountCents > refundable {
			return apperror.NewValidationError("Refund exceeds the refundable amount").
				WithDetails(map[string]any{
					"refundable": money.Float(refundable),
					"requested":  money.Float(input.AmountCents),
				})
		}

		refund = &entity.Refund{
			OrderID:     order.ID,
			AmountCents: input.AmountCents,
			Reason:      input.Reason,
			IsPartial:   input.AmountCents < totals.TotalCents,
		}
		if err := s.refundRepo.Create(ctx, refund); err != nil {
			return err
		}

		return s.restoreGiftcards(ctx, order, input.AmountCents)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("refund issued",
		zap.String("order_id", input.OrderID.String()),
		zap.Float64("amount", money.Float(input.AmountCents)),
		zap.Bool("partial", refund.IsPartial),
	)
	return refund, nil
}

// restoreGiftcards credits gift cards with their proportional slice of the
// refund. Each payment's share of the refund follows its share of the money
// collected; within a payment, each card's credit follows its share of that
// payment.
func (s *RefundService) restoreGiftcards(ctx context.Context, order *entity.Order, refundCents int64) error {
	var totalPaid int64
	for i := range order.Payments {
		if order.Payments[i].Status == enum.PaymentStatusSucceeded {
			totalPaid += order.Payments[i].AmountCents
		}
	}
	if totalPaid == 0 {
		return nil
	}

	for i := range order.Payments {
		payment := &order.Payments[i]
		if payment.Status != enum.PaymentStatusSucceeded || len(payment.GiftcardPayments) == 0 {
			continue
		}
		paymentShare := money.Share(refundCents, payment.AmountCents, totalPaid)
		for j := range payment.GiftcardPayments {
			link := &payment.GiftcardPayments[j]
			credit := money.Share(paymentShare, link.AmountUsedCents, payment.AmountCents)
			if credit <= 0 {
				continue
			}
			if err := s.giftcardRepo.Credit(ctx, link.GiftcardID, credit); err != nil {
				return err
			}
		}
	}
	return nil
}
