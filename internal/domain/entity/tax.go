package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxCategory groups catalog entries under one effective-dated rate schedule.
type TaxCategory struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Rates []TaxRate `gorm:"foreignKey:CategoryID" json:"rates,omitempty"`
}

// BeforeCreate generates a UUID before creating a new tax category
func (c *TaxCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TaxCategory model
func (TaxCategory) TableName() string {
	return "tax_categories"
}

// TaxRate is a percentage valid within [EffectiveFrom, EffectiveTo); a nil
// EffectiveTo means the rate is open-ended. Rates for one category must not
// overlap in time, enforced when rates are added.
type TaxRate struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Percent       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"percent"`
	EffectiveFrom time.Time       `gorm:"not null" json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Contains reports whether the rate's window covers the given instant.
func (r *TaxRate) Contains(at time.Time) bool {
	if at.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || at.Before(*r.EffectiveTo)
}

// Overlaps reports whether two half-open windows intersect.
func (r *TaxRate) Overlaps(from time.Time, to *time.Time) bool {
	if r.EffectiveTo != nil && !from.Before(*r.EffectiveTo) {
		return false
	}
	if to != nil && !r.EffectiveFrom.Before(*to) {
		return false
	}
	return true
}

// BeforeCreate generates a UUID before creating a new tax rate
func (r *TaxRate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TaxRate model
func (TaxRate) TableName() string {
	return "tax_rates"
}
