// Package compare runs a requirement against every provider catalog and returns the
// best-first rows the CLI and API render.
package compare

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/matching"
	"cloud-sku-compare/decision/pricing"
	"cloud-sku-compare/decision/sources"
)

// DefaultTopN is the number of rows per provider when a request names none.
const DefaultTopN = 5

// Request describes one comparison.
type Request struct {
	Requirement catalog.Requirement `json:"requirement"`
	Providers   []catalog.Provider  `json:"providers,omitempty"`
	TopN        int                 `json:"top_n,omitempty"`
	LivePrices  bool                `json:"live_prices,omitempty"`
}

// Row is one ranked SKU. SourceCurrency is the currency the provider quoted in
// before conversion.
type Row struct {
	Provider       catalog.Provider    `json:"provider"`
	SkuID          string              `json:"sku"`
	Series         string              `json:"series,omitempty"`
	Region         string              `json:"region,omitempty"`
	VCPU           int                 `json:"vcpu"`
	RAMGB          float64             `json:"ram_gb"`
	Hourly         decimal.NullDecimal `json:"price_per_hour"`
	Monthly        decimal.NullDecimal `json:"price_per_month"`
	Currency       string              `json:"currency,omitempty"`
	SourceCurrency string              `json:"source_currency,omitempty"`
	Distance       float64             `json:"distance"`
}

// Result is the outcome of a comparison.
type Result struct {
	ID          uuid.UUID           `json:"comparison_id"`
	Requirement catalog.Requirement `json:"requirement"`
	Currency    string              `json:"currency"`
	Rows        []Row               `json:"rows"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// Empty reports whether no provider produced a match.
func (r *Result) Empty() bool {
	return len(r.Rows) == 0
}

// ProviderRows returns the rows of one provider, best first.
func (r *Result) ProviderRows(p catalog.Provider) []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Provider == p {
			out = append(out, row)
		}
	}
	return out
}

// Service compares requirements against catalogs loaded up front. Catalogs are
// only read after construction.
type Service struct {
	catalogs   sources.Catalogs
	loadErrors map[catalog.Provider]error
	resolver   *pricing.Resolver
	currency string
	logger   zerolog.Logger
}

// NewService creates a comparison service. resolver may be nil when live prices
// are not available.
func NewService(catalogs sources.Catalogs, resolver *pricing.Resolver, currency string, logger zerolog.Logger) *Service {
	if catalogs == nil {
		catalogs = sources.Catalogs{}
	}
	return &Service{
		catalogs: catalogs,
		resolver: resolver,
		currency: currency,
		logger:   logger,
	}
}

// WithLoadErrors records why provider catalogs failed to load so comparisons can
// report the cause instead of a bare "not loaded" warning.
func (s *Service) WithLoadErrors(failed map[catalog.Provider]error) *Service {
	s.loadErrors = failed
	return s
}

// Providers returns the providers that have a catalog, in canonical order.
func (s *Service) Providers() []catalog.Provider {
	var out []catalog.Provider
	for _, p := range catalog.AllProviders {
		if _, ok := s.catalogs[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Compare ranks every requested provider's catalog against the requirement.
func (s *Service) Compare(ctx context.Context, req Request) (*Result, error) {
	if err := req.Requirement.Validate(); err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	providers := req.Providers
	if len(providers) == 0 {
		providers = catalog.AllProviders
	}

	result := &Result{
		ID:          uuid.New(),
		Requirement: req.Requirement,
		Currency:    s.currency,
		Rows:        []Row{},
		Warnings:    []string{},
	}

	for _, p := range providers {
		records, ok := s.catalogs[p]
		if !ok {
			result.Warnings = append(result.Warnings, s.notLoaded(p))
			continue
		}

		matches := matching.TopMatchesScored(records, req.Requirement, topN)
		if len(matches) == 0 {
			s.logger.Debug().Str("provider", string(p)).Msg("No eligible SKUs")
			continue
		}

		if req.LivePrices && s.resolver != nil && s.resolver.Has(p) {
			priced := s.resolver.Resolve(ctx, recordsOf(matches))
			for i := range matches {
				matches[i].Record = priced.Records[i]
			}
			result.Warnings = append(result.Warnings, priced.Warnings...)
		}

		for _, m := range matches {
			result.Rows = append(result.Rows, rowFor(m))
		}
	}

	s.logger.Info().
		Str("comparison_id", result.ID.String()).
		Int("vcpu", req.Requirement.VCPU).
		Float64("ram_gb", req.Requirement.RAMGB).
		Int("rows", len(result.Rows)).
		Msg("Comparison complete")
	return result, nil
}

func (s *Service) notLoaded(p catalog.Provider) string {
	if err := s.loadErrors[p]; err != nil {
		return fmt.Sprintf("%s catalog is not loaded: %v", p.Display(), err)
	}
	return p.Display() + " catalog is not loaded"
}

func recordsOf(matches []matching.Match) []catalog.SkuRecord {
	return lo.Map(matches, func(m matching.Match, _ int) catalog.SkuRecord {
		return m.Record
	})
}

func rowFor(m matching.Match) Row {
	r := m.Record
	return Row{
		Provider:       r.Provider,
		SkuID:          r.SkuID,
		Series:         r.Series,
		Region:         r.Region,
		VCPU:           *r.VCPU,
		RAMGB:          *r.RAMGB,
		Hourly:         r.PricePerHour,
		Monthly:        r.PricePerMonth(),
		Currency:       r.Currency,
		SourceCurrency: r.SourceCurrency,
		Distance:       m.Distance,
	}
}
