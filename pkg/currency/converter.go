// Package currency normalises product prices into the reference currency used by carts and orders.
package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cartline/cartline-backend/pkg/config"
	"github.com/cartline/cartline-backend/pkg/enums"
)

// Converter turns an amount in some currency into the reference currency.
type Converter interface {
	Reference() enums.Currency
	ToReference(amount decimal.Decimal, from enums.Currency) (decimal.Decimal, error)
}

// ErrUnsupportedCurrency is returned when no rate is configured for a currency.
type ErrUnsupportedCurrency struct {
	Currency enums.Currency
}

func (e ErrUnsupportedCurrency) Error() string {
	return fmt.Sprintf("no conversion rate configured for %s", e.Currency)
}

// StaticConverter applies a fixed rate table loaded from configuration.
type StaticConverter struct {
	reference enums.Currency
	rates     map[enums.Currency]decimal.Decimal
}

// NewStaticConverter parses the configured rates. Each rate is the number of
// reference units bought by one unit of the keyed currency.
func NewStaticConverter(cfg config.CurrencyConfig) (*StaticConverter, error) {
	reference, err := enums.ParseCurrency(cfg.Reference)
	if err != nil {
		return nil, fmt.Errorf("reference currency: %w", err)
	}

	rates := make(map[enums.Currency]decimal.Decimal, len(cfg.Rates)+1)
	rates[reference] = decimal.NewFromInt(1)
	for code, raw := range cfg.Rates {
		cur, err := enums.ParseCurrency(code)
		if err != nil {
			return nil, err
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", cur, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", cur)
		}
		if cur == reference && !rate.Equal(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("rate for reference currency %s must be 1", cur)
		}
		rates[cur] = rate
	}

	return &StaticConverter{reference: reference, rates: rates}, nil
}

func (c *StaticConverter) Reference() enums.Currency {
	return c.reference
}

// ToReference converts amount and rounds to two decimal places.
func (c *StaticConverter) ToReference(amount decimal.Decimal, from enums.Currency) (decimal.Decimal, error) {
	if from == "" || from == c.reference {
		return amount.Round(2), nil
	}
	rate, ok := c.rates[from]
	if !ok {
		return decimal.Zero, ErrUnsupportedCurrency{Currency: from}
	}
	return amount.Mul(rate).Round(2), nil
}

// Supported lists every currency with a configured rate.
func (c *StaticConverter) Supported() []string {
	out := make([]string, 0, len(c.rates))
	for cur := range c.rates {
		out = append(out, cur.String())
	}
	sort.Strings(out)
	return out
}
