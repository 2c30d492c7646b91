package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amount renders a monetary value as a JSON number with exactly two decimals.
func Amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
