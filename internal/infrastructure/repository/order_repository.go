package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/ramuneri/tillpoint-api/internal/domain/repository"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		Preload("Customer").
		Preload("Items").
		Preload("Payments").
		Preload("Tips").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

// GetForSettlement locks the order row so two concurrent closes (or a close
// racing a refund) serialize on it.
func (r *orderRepository) GetForSettlement(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Preload("Payments").
		Preload("Payments.GiftcardPayments").
		Preload("Tips").
		Preload("Refunds").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(order).Error
}

func (r *orderRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error) {
	res := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND closed_at IS NULL AND cancelled_at IS NULL", id).
		Update("closed_at", closedAt)
	return res.RowsAffected == 1, res.Error
}

func (r *orderRepository) Cancel(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error) {
	res := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND closed_at IS NULL AND cancelled_at IS NULL", id).
		Update("cancelled_at", cancelledAt)
	return res.RowsAffected == 1, res.Error
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Order{}).Scopes(MerchantScope(ctx))

	if params.Status != nil {
		switch *params.Status {
		case enum.OrderStatusOpen:
			query = query.Where("closed_at IS NULL AND cancelled_at IS NULL")
		case enum.OrderStatusClosed:
			query = query.Where("closed_at IS NOT NULL")
		case enum.OrderStatusCancelled:
			query = query.Where("cancelled_at IS NOT NULL")
		}
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.StartDate != nil {
		query = query.Where("opened_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("opened_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Preload("Items").
		Order("opened_at DESC").
		Find(&orders).Error

	return orders, total, err
}

type orderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository creates a new order item repository
func NewOrderItemRepository(db *gorm.DB) domainRepo.OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) CreateBatch(ctx context.Context, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).WithContext(ctx).Create(&items).Error
}

func (r *orderItemRepository) ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []entity.OrderItem) error {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	if err := db.Delete(&entity.OrderItem{}, "order_id = ?", orderID).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return db.Create(&items).Error
}

func (r *orderItemRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&entity.OrderItem{}, "order_id = ?", orderID).Error
}
