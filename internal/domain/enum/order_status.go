package enum

import (
	"encoding/json"
	"fmt"
)

// OrderStatus is derived from an order's closed/cancelled timestamps; it is
// never stored. Exactly one status applies at any time.
type OrderStatus int

const (
	OrderStatusOpen      OrderStatus = 0
	OrderStatusClosed    OrderStatus = 1
	OrderStatusCancelled OrderStatus = 2
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "OPEN"
	case OrderStatusClosed:
		return "CLOSED"
	case OrderStatusCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseOrderStatus maps a wire string to an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "OPEN":
		return OrderStatusOpen, nil
	case "CLOSED":
		return OrderStatusClosed, nil
	case "CANCELLED":
		return OrderStatusCancelled, nil
	}
	return 0, fmt.Errorf("invalid order status %q", s)
}
