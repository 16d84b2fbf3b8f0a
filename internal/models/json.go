package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// LineItem is one priced step of a stored breakdown.
type LineItem struct {
	Code             string `json:"code"`
	Label            string `json:"label"`
	AmountMinorUnits int64  `json:"amountMinorUnits"`
}

// LineItems is stored as a jsonb array, in breakdown order.
type LineItems []LineItem

// Value implements the driver.Valuer interface
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (l *LineItems) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for line items")
	}
	return json.Unmarshal(data, l)
}

// Sum returns the total of the stored line items.
func (l LineItems) Sum() int64 {
	var total int64
	for _, item := range l {
		total += item.AmountMinorUnits
	}
	return total
}
