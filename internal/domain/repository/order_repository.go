package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetForSettlement loads the order with items, payments (and their
	// giftcard links), tips and refunds, locking the order row for the
	// duration of the surrounding transaction.
	GetForSettlement(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	// Close sets the closed-at timestamp if and only if the order is still
	// open. Returns false when a concurrent close or cancel won.
	Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error)
	// Cancel sets the cancelled-at timestamp under the same guard.
	Cancel(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.OrderStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// OrderItemRepository defines the interface for order item data operations
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []entity.OrderItem) error
	ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []entity.OrderItem) error
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
}
