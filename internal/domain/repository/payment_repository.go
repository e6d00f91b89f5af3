package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
)

// PaymentRepository persists payments created during settlement. Creating a
// payment with GiftcardPayments attached persists the link rows with it.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
}

// OrderTipRepository persists tips recorded during settlement.
type OrderTipRepository interface {
	Create(ctx context.Context, tip *entity.OrderTip) error
}

// RefundRepository persists refund ledger entries.
type RefundRepository interface {
	Create(ctx context.Context, refund *entity.Refund) error
	SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}
