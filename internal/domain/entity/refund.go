package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Refund is the ledger entry for a reversal of settled money. Rows are
// created by the refund engine and never updated; the sum of all refunds for
// an order never exceeds the order total.
type Refund struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	AmountCents int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Reason      string    `gorm:"size:255" json:"reason"`
	IsPartial   bool      `gorm:"not null" json:"is_partial"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (r Refund) MarshalJSON() ([]byte, error) {
	type Alias Refund
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(r),
		Amount: float64(r.AmountCents) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new refund
func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Refund model
func (Refund) TableName() string {
	return "refunds"
}
