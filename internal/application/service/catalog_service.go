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

// ProductInput creates or updates a product.
type ProductInput struct {
	Name          string
	PriceCents    int64
	TaxCategoryID *uuid.UUID
}

// ServiceInput creates or updates a bookable service.
type ServiceInput struct {
	Name              string
	DefaultPriceCents int64
	TaxCategoryID     *uuid.UUID
}

// CatalogService manages the products and services orders are priced from.
type CatalogService struct {
	productRepo repository.ProductRepository
	serviceRepo repository.ServiceRepository
	taxRepo     repository.TaxRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(productRepo repository.ProductRepository, serviceRepo repository.ServiceRepository, taxRepo repository.TaxRepository) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		serviceRepo: serviceRepo,
		taxRepo:     taxRepo,
	}
}

func (s *CatalogService) validateInput(ctx context.Context, name string, priceCents int64, taxCategoryID *uuid.UUID) error {
	if name == "" {
		return apperror.NewValidationError("Name is required")
	}
	if priceCents < 0 {
		return apperror.NewValidationError("Price must not be negative")
	}
	if taxCategoryID != nil {
		category, err := s.taxRepo.GetCategory(ctx, *taxCategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return apperror.NewNotFoundError("Tax category")
		}
	}
	return nil
}

// CreateProduct adds a product to the merchant's catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	merchantID, ok := infraRepo.GetMerchantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Merchant context required")
	}
	if err := s.validateInput(ctx, input.Name, input.PriceCents, input.TaxCategoryID); err != nil {
		return nil, err
	}

	product := &entity.Product{
		MerchantID:    merchantID,
		Name:          input.Name,
		PriceCents:    input.PriceCents,
		TaxCategoryID: input.TaxCategoryID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// UpdateProduct updates a product's name, price and tax category.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, input.Name, input.PriceCents, input.TaxCategoryID); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.PriceCents = input.PriceCents
	product.TaxCategoryID = input.TaxCategoryID
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes a product. Existing order items keep pricing
// against it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ListProducts returns a paginated product listing.
func (s *CatalogService) ListProducts(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Product], error) {
	params.Validate()
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(products, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// CreateService adds a bookable service to the merchant's catalog.
func (s *CatalogService) CreateService(ctx context.Context, input *ServiceInput) (*entity.Service, error) {
	merchantID, ok := infraRepo.GetMerchantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Merchant context required")
	}
	if err := s.validateInput(ctx, input.Name, input.DefaultPriceCents, input.TaxCategoryID); err != nil {
		return nil, err
	}

	svc := &entity.Service{
		MerchantID:        merchantID,
		Name:              input.Name,
		DefaultPriceCents: input.DefaultPriceCents,
		TaxCategoryID:     input.TaxCategoryID,
	}
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// GetService retrieves a service by ID.
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, apperror.NewNotFoundError("Service")
	}
	return svc, nil
}

// UpdateService updates a service's name, default price and tax category.
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, input *ServiceInput) (*entity.Service, error) {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, input.Name, input.DefaultPriceCents, input.TaxCategoryID); err != nil {
		return nil, err
	}

	svc.Name = input.Name
	svc.DefaultPriceCents = input.DefaultPriceCents
	svc.TaxCategoryID = input.TaxCategoryID
	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteService soft-deletes a service.
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	return s.serviceRepo.Delete(ctx, id)
}

// ListServices returns a paginated service listing.
func (s *CatalogService) ListServices(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Service], error) {
	params.Validate()
	services, total, err := s.serviceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(services, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
