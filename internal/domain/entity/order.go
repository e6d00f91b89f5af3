package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
)

// Order is the settlement aggregate root. It is open until either closed by
// the settlement engine or cancelled; the two terminal states are mutually
// exclusive and final.
type Order struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	EmployeeID         uuid.UUID      `gorm:"type:uuid;not null" json:"employee_id"`
	CustomerID         *uuid.UUID     `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Note               *string        `gorm:"type:text" json:"note,omitempty"`
	OpenedAt           time.Time      `gorm:"not null" json:"opened_at"`
	ClosedAt           *time.Time     `json:"closed_at,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	DiscountCents      int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	ServiceChargeCents int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payments []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	Tips     []OrderTip  `gorm:"foreignKey:OrderID" json:"tips,omitempty"`
	Refunds  []Refund    `gorm:"foreignKey:OrderID" json:"refunds,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		Status        enum.OrderStatus `json:"status"`
		Discount      float64          `json:"discount"`
		ServiceCharge float64          `json:"service_charge"`
	}{
		Alias:         Alias(o),
		Status:        o.Status(),
		Discount:      float64(o.DiscountCents) / 100,
		ServiceCharge: float64(o.ServiceChargeCents) / 100,
	})
}

// Status derives the current order state from its timestamps.
func (o *Order) Status() enum.OrderStatus {
	switch {
	case o.CancelledAt != nil:
		return enum.OrderStatusCancelled
	case o.ClosedAt != nil:
		return enum.OrderStatusClosed
	}
	return enum.OrderStatusOpen
}

// IsOpen reports whether the order can still be settled or edited.
func (o *Order) IsOpen() bool {
	return o.ClosedAt == nil && o.CancelledAt == nil
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a line on an order. It references a product or a service,
// never both.
type OrderItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   *uuid.UUID     `gorm:"type:uuid;index" json:"product_id,omitempty"`
	ServiceID   *uuid.UUID     `gorm:"type:uuid;index" json:"service_id,omitempty"`
	VariationID *uuid.UUID     `gorm:"type:uuid" json:"variation_id,omitempty"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
