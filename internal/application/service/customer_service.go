package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	infraRepo "github.com/ramuneri/tillpoint-api/internal/infrastructure/repository"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

// CustomerService manages the customers orders can be attached to.
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// Create registers a customer for the current merchant.
func (s *CustomerService) Create(ctx context.Context, name string) (*entity.Customer, error) {
	merchantID, ok := infraRepo.GetMerchantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Merchant context required")
	}
	if name == "" {
		return nil, apperror.NewValidationError("Customer name is required")
	}

	customer := &entity.Customer{MerchantID: merchantID, Name: name}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Get retrieves a customer by ID.
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// List returns a paginated customer listing.
func (s *CustomerService) List(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()
	customers, total, err := s.customerRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(customers, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
