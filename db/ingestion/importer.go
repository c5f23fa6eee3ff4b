// Package ingestion copies catalogs from a source into a catalog store.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/sources"
	skuerrors "cloud-sku-compare/pkg/errors"
)

// CatalogStore replaces the stored catalog of one provider and counts what it holds.
type CatalogStore interface {
	Name() string
	ReplaceCatalog(ctx context.Context, provider catalog.Provider, records []catalog.SkuRecord) error
	CountCatalog(ctx context.Context, provider catalog.Provider) (uint64, error)
}

// ImportResult tracks the import of one provider catalog.
type ImportResult struct {
	RunID        uuid.UUID
	Provider     catalog.Provider
	Source       string
	Store        string
	RecordCount  int
	Stored       uint64
	Eligible     int
	Priced       int
	Duration     time.Duration
	Success      bool
	ErrorMessage string
}

// Importer loads catalogs from a source and writes them to a store.
type Importer struct {
	source sources.CatalogSource
	store  CatalogStore
	logger zerolog.Logger
}

func NewImporter(source sources.CatalogSource, store CatalogStore, logger zerolog.Logger) *Importer {
	return &Importer{source: source, store: store, logger: logger}
}

// Import replaces the stored catalog of each provider. A provider whose catalog
// cannot be loaded keeps its stored catalog; an empty catalog is refused for the
// same reason.
func (im *Importer) Import(ctx context.Context, providers []catalog.Provider) ([]*ImportResult, error) {
	runID := uuid.New()
	results := make([]*ImportResult, 0, len(providers))
	var firstErr error

	for _, p := range providers {
		result, err := im.importOne(ctx, runID, p)
		results = append(results, result)
		if err != nil {
			im.logger.Error().Err(err).Str("provider", string(p)).Msg("Catalog import failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		im.logger.Info().
			Str("run_id", runID.String()).
			Str("provider", string(p)).
			Int("records", result.RecordCount).
			Uint64("stored", result.Stored).
			Int("eligible", result.Eligible).
			Int("priced", result.Priced).
			Dur("duration", result.Duration).
			Msg("Catalog imported")
	}
	return results, firstErr
}

func (im *Importer) importOne(ctx context.Context, runID uuid.UUID, p catalog.Provider) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{
		RunID:    runID,
		Provider: p,
		Source:   im.source.Name(),
		Store:    im.store.Name(),
	}

	records, err := im.source.LoadCatalog(ctx, p)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to load catalog: %v", err)
		return result, err
	}
	if len(records) == 0 {
		err := skuerrors.NewEmptyCatalogError(im.source.Name())
		result.ErrorMessage = err.Error()
		return result, err
	}

	for _, r := range records {
		if r.Eligible() {
			result.Eligible++
		}
		if r.HasPrice() {
			result.Priced++
		}
	}

	if err := im.store.ReplaceCatalog(ctx, p, records); err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to store catalog: %v", err)
		return result, err
	}

	result.RecordCount = len(records)
	stored, err := im.store.CountCatalog(ctx, p)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to verify stored catalog: %v", err)
		return result, err
	}
	result.Stored = stored
	if stored != uint64(len(records)) {
		err := fmt.Errorf("%s holds %d %s records after writing %d", im.store.Name(), stored, p, len(records))
		result.ErrorMessage = err.Error()
		return result, err
	}
	result.Success = true
	result.Duration = time.Since(start)
	return result, nil
}
