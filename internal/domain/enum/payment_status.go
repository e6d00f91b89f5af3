package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentStatus represents the processing state of a payment
type PaymentStatus int

const (
	PaymentStatusPending   PaymentStatus = 0
	PaymentStatusSucceeded PaymentStatus = 1
	PaymentStatusFailed    PaymentStatus = 2
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusPending:
		return "PENDING"
	case PaymentStatusSucceeded:
		return "SUCCEEDED"
	case PaymentStatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	switch str {
	case "PENDING":
		*s = PaymentStatusPending
	case "SUCCEEDED":
		*s = PaymentStatusSucceeded
	case "FAILED":
		*s = PaymentStatusFailed
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	}
	return nil
}
