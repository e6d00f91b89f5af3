package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Giftcard is shared state between two workflows: settlement debits it,
// refunds credit it back. Both mutate it only inside their own transaction.
type Giftcard struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Code                string         `gorm:"size:100;uniqueIndex;not null" json:"code"`
	BalanceCents        int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	InitialBalanceCents int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Active              bool           `gorm:"default:true" json:"active"`
	IssuedAt            time.Time      `gorm:"not null" json:"issued_at"`
	ExpiresAt           *time.Time     `json:"expires_at,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (g Giftcard) MarshalJSON() ([]byte, error) {
	type Alias Giftcard
	return json.Marshal(&struct {
		Alias
		Balance        float64 `json:"balance"`
		InitialBalance float64 `json:"initial_balance"`
	}{
		Alias:          Alias(g),
		Balance:        float64(g.BalanceCents) / 100,
		InitialBalance: float64(g.InitialBalanceCents) / 100,
	})
}

// IsExpired reports whether the card had expired at the given instant.
func (g *Giftcard) IsExpired(at time.Time) bool {
	return g.ExpiresAt != nil && !at.Before(*g.ExpiresAt)
}

// IsUsable reports whether the card can be debited at the given instant.
func (g *Giftcard) IsUsable(at time.Time) bool {
	return g.Active && !g.IsExpired(at)
}

// BeforeCreate generates a UUID before creating a new giftcard
func (g *Giftcard) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Giftcard model
func (Giftcard) TableName() string {
	return "giftcards"
}
