package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a directory entry orders can reference.
type Customer struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	Phone      string         `gorm:"size:50" json:"phone,omitempty"`
	Email      string         `gorm:"size:255" json:"email,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
