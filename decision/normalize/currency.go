package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "INR"
	DefaultUSDRate  = 83.0
)

// Converter turns prices into a single target currency using fixed linear rates.
type Converter struct {
	target string
	rates  map[string]decimal.Decimal
}

// NewConverter builds a converter. rates maps a source currency code to the number of
// target units one source unit is worth.
func NewConverter(target string, rates map[string]float64) *Converter {
	c := &Converter{
		target: strings.ToUpper(strings.TrimSpace(target)),
		rates:  make(map[string]decimal.Decimal, len(rates)),
	}
	if c.target == "" {
		c.target = DefaultCurrency
	}
	for code, rate := range rates {
		if rate > 0 {
			c.rates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
		}
	}
	return c
}

// DefaultConverter converts USD into INR at DefaultUSDRate.
func DefaultConverter() *Converter {
	return NewConverter(DefaultCurrency, map[string]float64{"USD": DefaultUSDRate})
}

// Target is the normalized currency code.
func (c *Converter) Target() string {
	return c.target
}

// Convert expresses amount (quoted in from) in the target currency. An empty source
// currency is taken to be the target. Currencies without a rate are not convertible.
func (c *Converter) Convert(amount decimal.Decimal, from string) (decimal.Decimal, bool) {
	from = strings.ToUpper(strings.TrimSpace(from))
	if from == "" || from == c.target {
		return amount, true
	}
	rate, ok := c.rates[from]
	if !ok {
		return decimal.Zero, false
	}
	return amount.Mul(rate), true
}

// CanConvert reports whether prices in from can be normalized.
func (c *Converter) CanConvert(from string) bool {
	_, ok := c.Convert(decimal.Zero, from)
	return ok
}
