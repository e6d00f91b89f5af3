package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	domainRepo "github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []entity.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Product{}).Scopes(MerchantScope(ctx))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&products).Error
	return products, total, err
}

type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *gorm.DB) domainRepo.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(service).Error
}

func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		First(&service, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &service, err
}

func (r *serviceRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var services []entity.Service
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		Where("id IN ?", ids).
		Find(&services).Error
	return services, err
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(service).Error
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&entity.Service{}, "id = ?", id).Error
}

func (r *serviceRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Service, int64, error) {
	var services []entity.Service
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Service{}).Scopes(MerchantScope(ctx))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&services).Error
	return services, total, err
}
