package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
)

// TaxRepository defines the interface for tax category and rate operations.
// The settlement core consumes it read-only; rates are appended through the
// tax administration surface.
type TaxRepository interface {
	CreateCategory(ctx context.Context, category *entity.TaxCategory) error
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.TaxCategory, error)
	ListCategories(ctx context.Context) ([]entity.TaxCategory, error)
	CreateRate(ctx context.Context, rate *entity.TaxRate) error
	ListRates(ctx context.Context, categoryID uuid.UUID) ([]entity.TaxRate, error)
}
