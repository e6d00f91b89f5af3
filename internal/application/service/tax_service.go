package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	infraRepo "github.com/ramuneri/tillpoint-api/internal/infrastructure/repository"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
)

// RateResolver answers what tax percentage applies to a category at a point
// in time. Pure read, no side effects.
type RateResolver interface {
	RatePercentAt(ctx context.Context, categoryID uuid.UUID, at time.Time) (decimal.Decimal, error)
}

// TaxService administers tax categories and effective-dated rates and
// resolves the rate in force at a given instant.
type TaxService struct {
	taxRepo repository.TaxRepository
}

// NewTaxService creates a new tax service
func NewTaxService(taxRepo repository.TaxRepository) *TaxService {
	return &TaxService{taxRepo: taxRepo}
}

// RatePercentAt returns the percentage of the rate whose window contains the
// given instant. When several windows match (a store that did not enforce
// non-overlap), the one with the latest effective-from wins. Zero when none
// apply.
func (s *TaxService) RatePercentAt(ctx context.Context, categoryID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	rates, err := s.taxRepo.ListRates(ctx, categoryID)
	if err != nil {
		return decimal.Zero, err
	}

	var best *entity.TaxRate
	for i := range rates {
		rate := &rates[i]
		if !rate.Contains(at) {
			continue
		}
		if best == nil || rate.EffectiveFrom.After(best.EffectiveFrom) {
			best = rate
		}
	}
	if best == nil {
		return decimal.Zero, nil
	}
	return best.Percent, nil
}

// CreateCategory creates a tax category for the current merchant.
func (s *TaxService) CreateCategory(ctx context.Context, name string) (*entity.TaxCategory, error) {
	merchantID, ok := infraRepo.GetMerchantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Merchant context required")
	}
	if name == "" {
		return nil, apperror.NewValidationError("Tax category name is required")
	}

	category := &entity.TaxCategory{MerchantID: merchantID, Name: name}
	if err := s.taxRepo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory retrieves a tax category with its rates.
func (s *TaxService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.TaxCategory, error) {
	category, err := s.taxRepo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Tax category")
	}
	return category, nil
}

// ListCategories lists the merchant's tax categories.
func (s *TaxService) ListCategories(ctx context.Context) ([]entity.TaxCategory, error) {
	return s.taxRepo.ListCategories(ctx)
}

// AddRateInput describes a new effective-dated rate.
type AddRateInput struct {
	CategoryID    uuid.UUID
	Percent       decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

// AddRate appends a rate to a category, rejecting windows that overlap any
// existing rate for the same category.
func (s *TaxService) AddRate(ctx context.Context, input *AddRateInput) (*entity.TaxRate, error) {
	if input.Percent.IsNegative() {
		return nil, apperror.NewValidationError("Tax percent must not be negative")
	}
	if input.EffectiveTo != nil && !input.EffectiveFrom.Before(*input.EffectiveTo) {
		return nil, apperror.NewValidationError("Rate window must end after it starts")
	}

	category, err := s.taxRepo.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Tax category")
	}

	existing, err := s.taxRepo.ListRates(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Overlaps(input.EffectiveFrom, input.EffectiveTo) {
			return nil, apperror.NewConflictError("Rate window overlaps an existing rate for this category")
		}
	}

	rate := &entity.TaxRate{
		CategoryID:    input.CategoryID,
		Percent:       input.Percent,
		EffectiveFrom: input.EffectiveFrom,
		EffectiveTo:   input.EffectiveTo,
	}
	if err := s.taxRepo.CreateRate(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// ListRates returns all rates of a category ordered by effective-from.
func (s *TaxService) ListRates(ctx context.Context, categoryID uuid.UUID) ([]entity.TaxRate, error) {
	return s.taxRepo.ListRates(ctx, categoryID)
}
