package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

// MerchantIDKey is the context key for the merchant a request is scoped to
const MerchantIDKey ctxKey = "merchant_id"

// MerchantScope returns a GORM scope that filters by merchant.
// Applied to every query over merchant-owned entities. A missing merchant in
// context yields no rows rather than cross-merchant data.
func MerchantScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		merchantID, ok := ctx.Value(MerchantIDKey).(uuid.UUID)
		if !ok {
			return db.Where("1 = 0")
		}
		return db.Where("merchant_id = ?", merchantID)
	}
}

// WithMerchant adds the merchant ID to the context
func WithMerchant(ctx context.Context, merchantID uuid.UUID) context.Context {
	return context.WithValue(ctx, MerchantIDKey, merchantID)
}

// GetMerchantID extracts the merchant ID from the context
func GetMerchantID(ctx context.Context) (uuid.UUID, bool) {
	merchantID, ok := ctx.Value(MerchantIDKey).(uuid.UUID)
	return merchantID, ok
}
