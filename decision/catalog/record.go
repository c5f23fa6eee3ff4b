// Package catalog defines the canonical SKU record shared by every provider.
package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	skuerrors "cloud-sku-compare/pkg/errors"
	"cloud-sku-compare/pkg/units"
)

// Provider represents a cloud provider
type Provider string

const (
	Azure Provider = "azure"
	AWS   Provider = "aws"
	GCP   Provider = "gcp"
)

// AllProviders lists providers in presentation order.
var AllProviders = []Provider{Azure, AWS, GCP}

// ParseProvider accepts provider names case-insensitively.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case Azure:
		return Azure, nil
	case AWS:
		return AWS, nil
	case GCP, "google":
		return GCP, nil
	}
	return "", fmt.Errorf("unknown provider %q (valid: azure, aws, gcp)", s)
}

// ParseProviders parses a list of provider names, dropping duplicates.
func ParseProviders(names []string) ([]Provider, error) {
	seen := make(map[Provider]bool, len(names))
	out := make([]Provider, 0, len(names))
	for _, name := range names {
		p, err := ParseProvider(name)
		if err != nil {
			return nil, err
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// Display returns the human-facing provider label.
func (p Provider) Display() string {
	switch p {
	case Azure:
		return "Azure"
	case AWS:
		return "AWS"
	case GCP:
		return "GCP"
	default:
		return string(p)
	}
}

// SkuRecord is one normalized VM offering. Records are values: build a new one
// instead of mutating a record that has been handed out.
type SkuRecord struct {
	Provider       Provider            `json:"provider"`
	SkuID          string              `json:"sku_id"`
	Series         string              `json:"series,omitempty"`
	Region         string              `json:"region,omitempty"`
	VCPU           *int                `json:"vcpu,omitempty"`
	RAMGB          *float64            `json:"ram_gb,omitempty"`
	PricePerHour   decimal.NullDecimal `json:"price_per_hour"`
	Currency       string              `json:"currency,omitempty"`
	SourceCurrency string              `json:"source_currency,omitempty"`
}

// Eligible reports whether the record carries both vCPU and RAM and can be matched.
func (r SkuRecord) Eligible() bool {
	return r.VCPU != nil && r.RAMGB != nil
}

// HasPrice reports whether an hourly price is present.
func (r SkuRecord) HasPrice() bool {
	return r.PricePerHour.Valid
}

// PricePerMonth derives the monthly price from the hourly one (24h x 30d).
func (r SkuRecord) PricePerMonth() decimal.NullDecimal {
	if !r.PricePerHour.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(units.HourlyToMonthly(r.PricePerHour.Decimal))
}

// WithPrice returns a copy of the record carrying the given hourly price.
func (r SkuRecord) WithPrice(price decimal.Decimal, currency, sourceCurrency string) SkuRecord {
	r.PricePerHour = decimal.NewNullDecimal(price)
	r.Currency = currency
	r.SourceCurrency = sourceCurrency
	return r
}

// Requirement is the vCPU/RAM profile a comparison is made against.
type Requirement struct {
	VCPU  int     `json:"vcpu"`
	RAMGB float64 `json:"ram_gb"`
}

// Validate rejects non-positive requirements.
func (q Requirement) Validate() error {
	if q.VCPU <= 0 {
		return skuerrors.NewInvalidRequirementError(fmt.Sprintf("vcpu must be a positive integer, got %d", q.VCPU))
	}
	if math.IsNaN(q.RAMGB) || math.IsInf(q.RAMGB, 0) || q.RAMGB <= 0 {
		return skuerrors.NewInvalidRequirementError(fmt.Sprintf("ram must be a positive finite number, got %g", q.RAMGB))
	}
	return nil
}
