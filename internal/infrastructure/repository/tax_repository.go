package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	domainRepo "github.com/ramuneri/tillpoint-api/internal/domain/repository"
)

type taxRepository struct {
	db *gorm.DB
}

// NewTaxRepository creates a new tax repository
func NewTaxRepository(db *gorm.DB) domainRepo.TaxRepository {
	return &taxRepository{db: db}
}

func (r *taxRepository) CreateCategory(ctx context.Context, category *entity.TaxCategory) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(category).Error
}

func (r *taxRepository) GetCategory(ctx context.Context, id uuid.UUID) (*entity.TaxCategory, error) {
	var category entity.TaxCategory
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		Preload("Rates").
		First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *taxRepository) ListCategories(ctx context.Context) ([]entity.TaxCategory, error) {
	var categories []entity.TaxCategory
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *taxRepository) CreateRate(ctx context.Context, rate *entity.TaxRate) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(rate).Error
}

func (r *taxRepository) ListRates(ctx context.Context, categoryID uuid.UUID) ([]entity.TaxRate, error) {
	var rates []entity.TaxRate
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("effective_from ASC").
		Find(&rates).Error
	return rates, err
}
