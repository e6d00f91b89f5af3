package request

import (
	"time"

	"github.com/google/uuid"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name          string     `json:"name" binding:"required,min=1,max=255"`
	Price         float64    `json:"price" binding:"min=0"`
	TaxCategoryID *uuid.UUID `json:"tax_category_id"`
}

// CreateServiceRequest represents a bookable service creation request
type CreateServiceRequest struct {
	Name          string     `json:"name" binding:"required,min=1,max=255"`
	DefaultPrice  float64    `json:"default_price" binding:"min=0"`
	TaxCategoryID *uuid.UUID `json:"tax_category_id"`
}

// IssueGiftcardRequest creates a gift card
type IssueGiftcardRequest struct {
	Code           string     `json:"code" binding:"required,min=1,max=100"`
	InitialBalance float64    `json:"initial_balance" binding:"required,gt=0"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// CreateTaxCategoryRequest creates a tax category
type CreateTaxCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// AddTaxRateRequest appends an effective-dated rate to a category
type AddTaxRateRequest struct {
	Percent       float64    `json:"percent" binding:"min=0,max=100"`
	EffectiveFrom time.Time  `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time `json:"effective_to"`
}

// CreateCustomerRequest registers a customer
type CreateCustomerRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}
