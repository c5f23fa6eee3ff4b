// Package normalize converts provider price-list payloads into catalog.SkuRecord values.
//
// Every provider shape is its own Payload type with its own conversion. Entries that
// cannot be parsed are dropped and logged at debug level; normalization itself never
// fails. Decode is the only step that returns errors, and only when a whole document
// cannot be read.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"cloud-sku-compare/decision/catalog"
	skuerrors "cloud-sku-compare/pkg/errors"
)

// Shape names a raw payload layout.
type Shape string

const (
	ShapeStatic          Shape = "static"
	ShapeAzureRetail     Shape = "retail"
	ShapeAWSProducts     Shape = "products"
	ShapeAWSOffer        Shape = "offer"
	ShapeGCPBilling      Shape = "billing"
	ShapeGCPMachineTypes Shape = "machinetypes"
)

var shapeProviders = map[Shape]catalog.Provider{
	ShapeAzureRetail:     catalog.Azure,
	ShapeAWSProducts:     catalog.AWS,
	ShapeAWSOffer:        catalog.AWS,
	ShapeGCPBilling:      catalog.GCP,
	ShapeGCPMachineTypes: catalog.GCP,
}

// Payload is one page of provider data. The set of implementations is closed.
type Payload interface {
	Provider() catalog.Provider
	Shape() Shape
	// NextPage returns the continuation token or link, empty on the last page.
	NextPage() string

	records(n *Normalizer) []catalog.SkuRecord
}

// Normalizer converts payloads using a fixed currency converter.
type Normalizer struct {
	conv   *Converter
	logger zerolog.Logger
}

// NewNormalizer creates a normalizer. A nil converter means DefaultConverter.
func NewNormalizer(conv *Converter, logger zerolog.Logger) *Normalizer {
	if conv == nil {
		conv = DefaultConverter()
	}
	return &Normalizer{conv: conv, logger: logger}
}

// Converter returns the currency converter in use.
func (n *Normalizer) Converter() *Converter {
	return n.conv
}

// Normalize returns the records a payload yields, in payload order.
func (n *Normalizer) Normalize(p Payload) []catalog.SkuRecord {
	if p == nil {
		return []catalog.SkuRecord{}
	}
	out := p.records(n)
	if out == nil {
		out = []catalog.SkuRecord{}
	}
	n.logger.Debug().
		Str("provider", string(p.Provider())).
		Str("shape", string(p.Shape())).
		Int("records", len(out)).
		Msg("Normalized payload")
	return out
}

// NormalizeAll normalizes consecutive pages and concatenates their records.
func (n *Normalizer) NormalizeAll(pages []Payload) []catalog.SkuRecord {
	out := []catalog.SkuRecord{}
	for _, p := range pages {
		out = append(out, n.Normalize(p)...)
	}
	return out
}

// NormalizeRaw decodes data as shape and normalizes it.
func (n *Normalizer) NormalizeRaw(provider catalog.Provider, shape Shape, data []byte) ([]catalog.SkuRecord, error) {
	p, err := Decode(provider, shape, data)
	if err != nil {
		return nil, err
	}
	return n.Normalize(p), nil
}

func (n *Normalizer) drop(p Payload, index int, err error) {
	n.logger.Debug().
		Err(skuerrors.NewMalformedRecordError(string(p.Shape()), err)).
		Str("provider", string(p.Provider())).
		Int("index", index).
		Msg("Dropped catalog entry")
}

// price attaches an hourly amount quoted in currency. The record comes back unpriced
// when the amount is unreadable or negative, or the currency has no rate.
func (n *Normalizer) price(r catalog.SkuRecord, amount any, currency string) catalog.SkuRecord {
	d, ok := decimalFrom(amount)
	if !ok || d.IsNegative() {
		return r
	}
	converted, ok := n.conv.Convert(d, currency)
	if !ok {
		return r
	}
	if currency == "" {
		currency = n.conv.Target()
	}
	return r.WithPrice(converted, n.conv.Target(), currency)
}

// DefaultShape is the shape assumed when a caller names none.
func DefaultShape(catalog.Provider) Shape {
	return ShapeStatic
}

// ParseShape validates a shape name, defaulting to static.
func ParseShape(s string) (Shape, error) {
	switch sh := Shape(s); sh {
	case "":
		return ShapeStatic, nil
	case ShapeStatic, ShapeAzureRetail, ShapeAWSProducts, ShapeAWSOffer, ShapeGCPBilling, ShapeGCPMachineTypes:
		return sh, nil
	}
	return "", fmt.Errorf("unknown payload shape %q", s)
}

// Decode parses data into the payload type for shape.
func Decode(provider catalog.Provider, shape Shape, data []byte) (Payload, error) {
	if shape == "" {
		shape = DefaultShape(provider)
	}
	if want, ok := shapeProviders[shape]; ok && want != provider {
		return nil, fmt.Errorf("shape %q belongs to provider %s, not %s", shape, want, provider)
	}

	switch shape {
	case ShapeStatic:
		return decodeStatic(provider, data)
	case ShapeAzureRetail:
		var page AzureRetailPage
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("failed to decode azure retail page: %w", err)
		}
		return &page, nil
	case ShapeAWSProducts:
		var page AWSProductsPage
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("failed to decode aws products page: %w", err)
		}
		return &page, nil
	case ShapeAWSOffer:
		var offer AWSOfferFile
		if err := json.Unmarshal(data, &offer); err != nil {
			return nil, fmt.Errorf("failed to decode aws offer file: %w", err)
		}
		return &offer, nil
	case ShapeGCPBilling:
		var page GCPBillingPage
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("failed to decode gcp billing page: %w", err)
		}
		return &page, nil
	case ShapeGCPMachineTypes:
		var list GCPMachineTypeList
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("failed to decode gcp machine types: %w", err)
		}
		return &list, nil
	}
	return nil, fmt.Errorf("unknown payload shape %q", shape)
}

func decodeStatic(provider catalog.Provider, data []byte) (*StaticCatalog, error) {
	var entries []any
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode static catalog: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode static catalog: %w", err)
		}
	}
	return &StaticCatalog{CatalogProvider: provider, Entries: entries}, nil
}
