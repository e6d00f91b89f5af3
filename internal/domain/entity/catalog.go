package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a priced catalog entry order items can reference.
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	PriceCents    int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TaxCategoryID *uuid.UUID     `gorm:"type:uuid;index" json:"tax_category_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Price float64 `json:"price"`
	}{
		Alias: Alias(p),
		Price: float64(p.PriceCents) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Service is a non-stocked catalog entry with a default price.
type Service struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name              string         `gorm:"size:255;not null" json:"name"`
	DefaultPriceCents int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TaxCategoryID     *uuid.UUID     `gorm:"type:uuid;index" json:"tax_category_id,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Service) MarshalJSON() ([]byte, error) {
	type Alias Service
	return json.Marshal(&struct {
		Alias
		DefaultPrice float64 `json:"default_price"`
	}{
		Alias:        Alias(s),
		DefaultPrice: float64(s.DefaultPriceCents) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new service
func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Service model
func (Service) TableName() string {
	return "services"
}
