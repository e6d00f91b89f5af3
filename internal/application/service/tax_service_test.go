package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
)

func addRate(store *stubStore, categoryID uuid.UUID, percent string, from time.Time, to *time.Time) {
	store.taxRates = append(store.taxRates, entity.TaxRate{
		ID:            uuid.New(),
		CategoryID:    categoryID,
		Percent:       decimal.RequireFromString(percent),
		EffectiveFrom: from,
		EffectiveTo:   to,
	})
}

func TestRatePercentAtPicksWindowContainingInstant(t *testing.T) {
	f := newFixture()
	categoryID := uuid.New()
	f.store.taxCats[categoryID] = &entity.TaxCategory{ID: categoryID, MerchantID: f.merchantID, Name: "standard"}

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jul := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	addRate(f.store, categoryID, "10", jan, &jul) // [Jan, Jul)
	addRate(f.store, categoryID, "20", jul, nil)  // [Jul, inf)

	ctx := context.Background()

	rate, err := f.taxService.RatePercentAt(ctx, categoryID, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("10")))

	// Boundary instant belongs to the window that starts there.
	rate, err = f.taxService.RatePercentAt(ctx, categoryID, jul)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("20")))

	// Before any window applies, the rate is zero.
	rate, err = f.taxService.RatePercentAt(ctx, categoryID, jan.Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, rate.IsZero())
}

func TestRatePercentAtLatestEffectiveFromWins(t *testing.T) {
	f := newFixture()
	categoryID := uuid.New()
	f.store.taxCats[categoryID] = &entity.TaxCategory{ID: categoryID, MerchantID: f.merchantID, Name: "standard"}

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	addRate(f.store, categoryID, "10", jan, nil)
	addRate(f.store, categoryID, "12", mar, nil)

	rate, err := f.taxService.RatePercentAt(context.Background(), categoryID, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("12")))
}

func TestAddRateRejectsOverlap(t *testing.T) {
	f := newFixture()
	categoryID := uuid.New()
	f.store.taxCats[categoryID] = &entity.TaxCategory{ID: categoryID, MerchantID: f.merchantID, Name: "standard"}

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jul := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	addRate(f.store, categoryID, "10", jan, &jul)

	ctx := context.Background()

	// Overlapping window is rejected.
	_, err := f.taxService.AddRate(ctx, &AddRateInput{
		CategoryID:    categoryID,
		Percent:       decimal.RequireFromString("15"),
		EffectiveFrom: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	// A window starting exactly where the old one ends is fine.
	rate, err := f.taxService.AddRate(ctx, &AddRateInput{
		CategoryID:    categoryID,
		Percent:       decimal.RequireFromString("15"),
		EffectiveFrom: jul,
	})
	require.NoError(t, err)
	assert.True(t, rate.Percent.Equal(decimal.RequireFromString("15")))
}

func TestAddRateValidation(t *testing.T) {
	f := newFixture()
	categoryID := uuid.New()
	f.store.taxCats[categoryID] = &entity.TaxCategory{ID: categoryID, MerchantID: f.merchantID, Name: "standard"}

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.taxService.AddRate(context.Background(), &AddRateInput{
		CategoryID:    categoryID,
		Percent:       decimal.RequireFromString("-1"),
		EffectiveFrom: jan,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidationFailed))

	// Window that ends before it starts.
	to := jan.Add(-time.Hour)
	_, err = f.taxService.AddRate(context.Background(), &AddRateInput{
		CategoryID:    categoryID,
		Percent:       decimal.RequireFromString("5"),
		EffectiveFrom: jan,
		EffectiveTo:   &to,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidationFailed))

	// Unknown category.
	_, err = f.taxService.AddRate(context.Background(), &AddRateInput{
		CategoryID:    uuid.New(),
		Percent:       decimal.RequireFromString("5"),
		EffectiveFrom: jan,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}
