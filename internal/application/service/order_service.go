package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	infraRepo "github.com/ramuneri/tillpoint-api/internal/infrastructure/repository"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

// OrderItemInput is one requested line on an order. Exactly one of
// ProductID and ServiceID must be set.
type OrderItemInput struct {
	ProductID   *uuid.UUID
	ServiceID   *uuid.UUID
	VariationID *uuid.UUID
	Quantity    int
}

// CreateOrderInput opens a new order.
type CreateOrderInput struct {
	EmployeeID uuid.UUID
	CustomerID *uuid.UUID
	Note       *string
	Items      []OrderItemInput
}

// UpdateOrderInput edits an open order. Items, when present, replace the
// existing lines wholesale.
type UpdateOrderInput struct {
	Note  *string
	Items []OrderItemInput
}

// OrderService manages the order lifecycle outside settlement: opening,
// editing while open, cancelling and reading.
type OrderService struct {
	txManager    repository.TxManager
	orderRepo    repository.OrderRepository
	itemRepo     repository.OrderItemRepository
	productRepo  repository.ProductRepository
	serviceRepo  repository.ServiceRepository
	customerRepo repository.CustomerRepository
	calculator   *TotalsCalculator
}

// NewOrderService creates a new order service
func NewOrderService(
	txManager repository.TxManager,
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	serviceRepo repository.ServiceRepository,
	customerRepo repository.CustomerRepository,
	calculator *TotalsCalculator,
) *OrderService {
	return &OrderService{
		txManager:    txManager,
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		productRepo:  productRepo,
		serviceRepo:  serviceRepo,
		customerRepo: customerRepo,
		calculator:   calculator,
	}
}

// CreateOrder opens an order with the given items.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	merchantID, ok := infraRepo.GetMerchantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Merchant context required")
	}
	if len(input.Items) == 0 {
		return nil, apperror.NewValidationError("An order needs at least one item")
	}

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}

	items, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		MerchantID: merchantID,
		EmployeeID: input.EmployeeID,
		CustomerID: input.CustomerID,
		Note:       input.Note,
		OpenedAt:   time.Now().UTC(),
		Items:      items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return s.getExisting(ctx, order.ID)
}

// UpdateOrder edits an open order's note and items.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, input *UpdateOrderInput) (*entity.Order, error) {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetForSettlement(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if !order.IsOpen() {
			return apperror.NewAppError(409, apperror.CodeAlreadyClosed, "Only open orders can be edited")
		}

		if input.Items != nil {
			if len(input.Items) == 0 {
				return apperror.NewValidationError("An order needs at least one item")
			}
			items, err := s.buildItems(ctx, input.Items)
			if err != nil {
				return err
			}
			if err := s.itemRepo.ReplaceForOrder(ctx, id, items); err != nil {
				return err
			}
		}
		if input.Note != nil {
			order.Note = input.Note
		}
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.getExisting(ctx, id)
}

// CancelOrder voids an open order. Cancelled orders cannot be settled,
// edited or refunded.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	ok, err := s.orderRepo.Cancel(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewAppError(409, apperror.CodeAlreadyClosed, "Order is already closed or cancelled")
	}
	return s.getExisting(ctx, id)
}

// GetOrder returns an order with its derived totals.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, *Totals, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, apperror.NewNotFoundError("Order")
	}
	totals, err := s.calculator.Compute(ctx, order, nil)
	if err != nil {
		return nil, nil, err
	}
	return order, totals, nil
}

// GetTotals returns just the derived totals for an order.
func (s *OrderService) GetTotals(ctx context.Context, id uuid.UUID) (*Totals, error) {
	_, totals, err := s.GetOrder(ctx, id)
	return totals, err
}

// ListOrders returns a filtered, paginated order listing.
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = &pagination.PaginationParams{}
	}
	params.Pagination.Validate()
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	meta := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, meta), nil
}

func (s *OrderService) getExisting(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// buildItems validates item inputs and resolves them against the catalog.
func (s *OrderService) buildItems(ctx context.Context, inputs []OrderItemInput) ([]entity.OrderItem, error) {
	var productIDs, serviceIDs []uuid.UUID
	for i := range inputs {
		in := &inputs[i]
		if (in.ProductID == nil) == (in.ServiceID == nil) {
			return nil, apperror.NewValidationError("Each item must reference exactly one of product or service")
		}
		if in.Quantity <= 0 {
			return nil, apperror.NewValidationError("Item quantity must be positive")
		}
		if in.ProductID != nil {
			productIDs = append(productIDs, *in.ProductID)
		} else {
			serviceIDs = append(serviceIDs, *in.ServiceID)
		}
	}

	if len(productIDs) > 0 {
		rows, err := s.productRepo.GetByIDs(ctx, productIDs)
		if err != nil {
			return nil, err
		}
		known := make(map[uuid.UUID]struct{}, len(rows))
		for i := range rows {
			known[rows[i].ID] = struct{}{}
		}
		for _, id := range productIDs {
			if _, ok := known[id]; !ok {
				return nil, apperror.NewNotFoundError("Product")
			}
		}
	}
	if len(serviceIDs) > 0 {
		rows, err := s.serviceRepo.GetByIDs(ctx, serviceIDs)
		if err != nil {
			return nil, err
		}
		known := make(map[uuid.UUID]struct{}, len(rows))
		for i := range rows {
			known[rows[i].ID] = struct{}{}
		}
		for _, id := range serviceIDs {
			if _, ok := known[id]; !ok {
				return nil, apperror.NewNotFoundError("Service")
			}
		}
	}

	items := make([]entity.OrderItem, 0, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		items = append(items, entity.OrderItem{
			ProductID:   in.ProductID,
			ServiceID:   in.ServiceID,
			VariationID: in.VariationID,
			Quantity:    in.Quantity,
		})
	}
	return items, nil
}
