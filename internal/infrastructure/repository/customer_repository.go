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

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Customer{}).Scopes(MerchantScope(ctx))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&customers).Error
	return customers, total, err
}
