// Package pricing attaches live prices to matched SKUs.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"cloud-sku-compare/decision/catalog"
	skuerrors "cloud-sku-compare/pkg/errors"
)

// PriceSource returns every price quote known for one SKU.
type PriceSource interface {
	LookupPrice(ctx context.Context, skuID string) ([]catalog.SkuRecord, error)
}

// PriceResult holds the matches after live price resolution.
type PriceResult struct {
	Records  []catalog.SkuRecord `json:"records"`
	Resolved int                 `json:"resolved"`
	Warnings []string            `json:"warnings,omitempty"`
}

// Resolver looks up live prices per provider.
type Resolver struct {
	target  string
	sources map[catalog.Provider]PriceSource
	logger  zerolog.Logger
}

// NewResolver creates a resolver that prefers quotes already in target currency.
func NewResolver(target string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		target:  strings.ToUpper(target),
		sources: make(map[catalog.Provider]PriceSource),
		logger:  logger,
	}
}

// Register sets the price source of a provider.
func (r *Resolver) Register(provider catalog.Provider, src PriceSource) {
	r.sources[provider] = src
}

// Has reports whether a provider has a registered source.
func (r *Resolver) Has(provider catalog.Provider) bool {
	_, ok := r.sources[provider]
	return ok
}

// Resolve returns matches in the same order, each carrying a live price when one
// was found. Lookups that fail keep the catalog price and add a warning.
func (r *Resolver) Resolve(ctx context.Context, matches []catalog.SkuRecord) *PriceResult {
	result := &PriceResult{
		Records:  make([]catalog.SkuRecord, 0, len(matches)),
		Warnings: []string{},
	}

	for _, m := range matches {
		src, ok := r.sources[m.Provider]
		if !ok {
			result.Records = append(result.Records, m)
			continue
		}

		priced, err := r.resolveOne(ctx, src, m)
		if err != nil {
			r.logger.Debug().Err(err).Str("sku", m.SkuID).Msg("Live price lookup failed")
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Live price not found for %s %s: %s", m.Provider.Display(), m.SkuID, err.Error()))
			result.Records = append(result.Records, m)
			continue
		}
		result.Resolved++
		result.Records = append(result.Records, priced)
	}

	return result
}

func (r *Resolver) resolveOne(ctx context.Context, src PriceSource, m catalog.SkuRecord) (catalog.SkuRecord, error) {
	quotes, err := src.LookupPrice(ctx, m.SkuID)
	if err != nil {
		return m, err
	}
	q, ok := SelectQuote(quotes, r.target)
	if !ok {
		return m, skuerrors.NewPriceNotFoundError(m.SkuID, string(m.Provider))
	}
	return m.WithPrice(q.PricePerHour.Decimal, q.Currency, q.SourceCurrency), nil
}

// SelectQuote picks the first priced quote whose source currency is target, falling
// back to the first priced quote of any currency.
func SelectQuote(quotes []catalog.SkuRecord, target string) (catalog.SkuRecord, bool) {
	var fallback *catalog.SkuRecord
	for i := range quotes {
		if !quotes[i].HasPrice() {
			continue
		}
		if strings.EqualFold(quotes[i].SourceCurrency, target) {
			return quotes[i], true
		}
		if fallback == nil {
			fallback = &quotes[i]
		}
	}
	if fallback == nil {
		return catalog.SkuRecord{}, false
	}
	return *fallback, true
}

// PriceStore is an in-memory PriceSource keyed by SKU, case-insensitively.
type PriceStore struct {
	entries map[string][]catalog.SkuRecord
}

// NewPriceStore indexes records by SKU id.
func NewPriceStore(records []catalog.SkuRecord) *PriceStore {
	store := &PriceStore{entries: make(map[string][]catalog.SkuRecord)}
	for _, rec := range records {
		store.Add(rec)
	}
	return store
}

// Add indexes one more quote.
func (s *PriceStore) Add(rec catalog.SkuRecord) {
	key := strings.ToLower(rec.SkuID)
	s.entries[key] = append(s.entries[key], rec)
}

// Len returns the number of distinct SKUs.
func (s *PriceStore) Len() int {
	return len(s.entries)
}

func (s *PriceStore) LookupPrice(ctx context.Context, skuID string) ([]catalog.SkuRecord, error) {
	quotes, ok := s.entries[strings.ToLower(skuID)]
	if !ok {
		return nil, skuerrors.NewPriceNotFoundError(skuID, "price-store")
	}
	return quotes, nil
}
