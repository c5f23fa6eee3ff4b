// Package sources fetches raw provider catalogs and hands normalized records to the
// matcher. Every failure to obtain a payload is reported as a SOURCE_UNAVAILABLE
// error so callers never normalize a missing payload.
package sources

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"cloud-sku-compare/decision/catalog"
	skuerrors "cloud-sku-compare/pkg/errors"
)

// DefaultMaxPages bounds pagination loops against runaway continuation links.
const DefaultMaxPages = 200

// CatalogSource loads the full catalog of one provider.
type CatalogSource interface {
	Name() string
	LoadCatalog(ctx context.Context, provider catalog.Provider) ([]catalog.SkuRecord, error)
}

// Catalogs maps each provider to its loaded catalog.
type Catalogs map[catalog.Provider][]catalog.SkuRecord

// LoadCatalogs loads each provider from src. A provider that fails is left out of the
// result and reported in the error map; the others still load.
func LoadCatalogs(ctx context.Context, src CatalogSource, providers []catalog.Provider, logger zerolog.Logger) (Catalogs, map[catalog.Provider]error) {
	loaded := make(Catalogs, len(providers))
	failed := make(map[catalog.Provider]error)

	for _, p := range providers {
		records, err := src.LoadCatalog(ctx, p)
		if err != nil {
			logger.Warn().Err(err).Str("provider", string(p)).Str("source", src.Name()).Msg("Catalog unavailable, matching disabled for provider")
			failed[p] = err
			continue
		}
		logger.Info().Str("provider", string(p)).Str("source", src.Name()).Int("records", len(records)).Msg("Catalog loaded")
		loaded[p] = records
	}
	return loaded, failed
}

// MultiSource dispatches each provider to its own source.
type MultiSource map[catalog.Provider]CatalogSource

func (m MultiSource) Name() string { return "multi" }

func (m MultiSource) LoadCatalog(ctx context.Context, provider catalog.Provider) ([]catalog.SkuRecord, error) {
	src, ok := m[provider]
	if !ok {
		return nil, unavailable("multi", fmt.Errorf("no source configured for provider %s", provider))
	}
	return src.LoadCatalog(ctx, provider)
}

func unavailable(source string, err error) error {
	return skuerrors.NewSourceUnavailableError(source, err)
}

func checkProvider(source string, want, got catalog.Provider) error {
	if want != got {
		return unavailable(source, fmt.Errorf("source serves %s, not %s", want, got))
	}
	return nil
}
