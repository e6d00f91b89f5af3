package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentMethod is the closed set of ways an order can be settled. New
// methods require updating every switch over this type; there is no string
// dispatch anywhere.
type PaymentMethod int

const (
	PaymentMethodCash     PaymentMethod = 0
	PaymentMethodCard     PaymentMethod = 1
	PaymentMethodGiftCard PaymentMethod = 2
)

// IsValid reports whether m is one of the known methods.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodGiftCard:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	switch m {
	case PaymentMethodCash:
		return "CASH"
	case PaymentMethodCard:
		return "CARD"
	case PaymentMethodGiftCard:
		return "GIFT_CARD"
	}
	return "UNKNOWN"
}

// ParsePaymentMethod maps a wire string to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch s {
	case "CASH":
		return PaymentMethodCash, nil
	case "CARD":
		return PaymentMethodCard, nil
	case "GIFT_CARD":
		return PaymentMethodGiftCard, nil
	}
	return 0, fmt.Errorf("unknown payment method %q", s)
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMethod(i)
		return nil
	}
	parsed, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
