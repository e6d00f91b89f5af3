package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	domainRepo "github.com/ramuneri/tillpoint-api/internal/domain/repository"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

// Create persists the payment and any attached giftcard link rows in one go.
func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(payment).Error
}

type orderTipRepository struct {
	db *gorm.DB
}

// NewOrderTipRepository creates a new order tip repository
func NewOrderTipRepository(db *gorm.DB) domainRepo.OrderTipRepository {
	return &orderTipRepository{db: db}
}

func (r *orderTipRepository) Create(ctx context.Context, tip *entity.OrderTip) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(tip).Error
}

type refundRepository struct {
	db *gorm.DB
}

// NewRefundRepository creates a new refund repository
func NewRefundRepository(db *gorm.DB) domainRepo.RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(ctx context.Context, refund *entity.Refund) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(refund).Error
}

func (r *refundRepository) SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var total int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Refund{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	return total, err
}
