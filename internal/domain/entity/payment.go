package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
)

// Payment records money applied to an order during settlement. Rows are
// immutable once written; settlement only ever appends.
type Payment struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"order_id"`
	Method          enum.PaymentMethod `gorm:"not null" json:"method"`
	AmountCents     int64              `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Currency        string             `gorm:"size:3;not null" json:"currency"`
	Provider        string             `gorm:"size:50" json:"provider,omitempty"`
	Status          enum.PaymentStatus `gorm:"default:0" json:"status"`
	GatewayIntentID *string            `gorm:"size:255" json:"gateway_intent_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`

	// Relationships
	GiftcardPayments []GiftcardPayment `gorm:"foreignKey:PaymentID" json:"giftcard_payments,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.AmountCents) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// GiftcardPayment links a GIFT_CARD payment to the card it debited. Refunds
// read these rows to restore balances proportionally.
type GiftcardPayment struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID       uuid.UUID `gorm:"type:uuid;not null;index" json:"payment_id"`
	GiftcardID      uuid.UUID `gorm:"type:uuid;not null;index" json:"giftcard_id"`
	AmountUsedCents int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt       time.Time `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (gp GiftcardPayment) MarshalJSON() ([]byte, error) {
	type Alias GiftcardPayment
	return json.Marshal(&struct {
		Alias
		AmountUsed float64 `json:"amount_used"`
	}{
		Alias:      Alias(gp),
		AmountUsed: float64(gp.AmountUsedCents) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new giftcard payment
func (gp *GiftcardPayment) BeforeCreate(tx *gorm.DB) error {
	if gp.ID == uuid.Nil {
		gp.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the GiftcardPayment model
func (GiftcardPayment) TableName() string {
	return "giftcard_payments"
}

// OrderTip records a tip collected while settling an order.
type OrderTip struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Source      string    `gorm:"size:50" json:"source"`
	AmountCents int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt   time.Time `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (t OrderTip) MarshalJSON() ([]byte, error) {
	type Alias OrderTip
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(t),
		Amount: float64(t.AmountCents) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order tip
func (t *OrderTip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderTip model
func (OrderTip) TableName() string {
	return "order_tips"
}
