package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"cloud-sku-compare/db/clickhouse"
	"cloud-sku-compare/db/postgres"
	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/normalize"
	"cloud-sku-compare/decision/pricing"
	"cloud-sku-compare/decision/sources"
	"cloud-sku-compare/internal/config"
	"cloud-sku-compare/pkg/platform"
)

// runtime holds the collaborators built from one config.
type runtime struct {
	cfg        *config.Config
	logger     zerolog.Logger
	normalizer *normalize.Normalizer
	client     *platform.HTTPClient
}

func newRuntime(cfg *config.Config, logger zerolog.Logger) *runtime {
	return &runtime{
		cfg:        cfg,
		logger:     logger,
		normalizer: normalize.NewNormalizer(cfg.Converter(), logger),
		client:     platform.NewHTTPClient(cfg.HTTPRetries, cfg.HTTPTimeout).WithLogger(logger),
	}
}

// storeSource is a catalog source backed by a database connection.
type storeSource interface {
	sources.CatalogSource
	io.Closer
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	ReplaceCatalog(ctx context.Context, provider catalog.Provider, records []catalog.SkuRecord) error
	CountCatalog(ctx context.Context, provider catalog.Provider) (uint64, error)
}

var (
	_ storeSource = (*clickhouse.Store)(nil)
	_ storeSource = (*postgres.Store)(nil)
)

func (rt *runtime) openStore(kind string) (storeSource, error) {
	switch kind {
	case config.SourceClickHouse:
		store, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     rt.cfg.ClickHouse.Host,
			Port:     rt.cfg.ClickHouse.Port,
			Database: rt.cfg.ClickHouse.Database,
			Username: rt.cfg.ClickHouse.Username,
			Password: rt.cfg.ClickHouse.Password,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SourcePostgres:
		if rt.cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres store requires a DSN")
		}
		store, err := postgres.NewStore(rt.cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown catalog store: %s", kind)
}

// liveSource queries the provider price APIs directly. GCP is included only when an
// API key is configured.
func (rt *runtime) liveSource(ctx context.Context) (sources.MultiSource, error) {
	aws, err := sources.NewAWSPricingSourceFromConfig(ctx, rt.cfg.AWSPricingRegion, rt.cfg.AWSRegion, rt.normalizer, rt.logger)
	if err != nil {
		return nil, err
	}
	multi := sources.MultiSource{
		catalog.Azure: sources.NewAzureRetailSource(rt.client, rt.normalizer, rt.cfg.AzureRegion, rt.logger),
		catalog.AWS:   aws,
	}
	if rt.cfg.GCPAPIKey != "" {
		multi[catalog.GCP] = sources.NewGCPBillingSource(rt.client, rt.normalizer, rt.cfg.GCPAPIKey, rt.logger)
	}
	return multi, nil
}

// catalogSource opens the configured source. The returned closer is never nil.
func (rt *runtime) catalogSource(ctx context.Context, kind string) (sources.CatalogSource, func(), error) {
	noop := func() {}
	switch kind {
	case config.SourceFile:
		return sources.NewFileSource(rt.cfg.Catalogs, rt.normalizer), noop, nil
	case config.SourceLive:
		src, err := rt.liveSource(ctx)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case config.SourceClickHouse, config.SourcePostgres:
		store, err := rt.openStore(kind)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { store.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown catalog source: %s", kind)
}

// resolver registers live price lookups for Azure and AWS. AWS is skipped when no
// credentials can be loaded.
func (rt *runtime) resolver(ctx context.Context) *pricing.Resolver {
	r := pricing.NewResolver(rt.cfg.Currency, rt.logger)
	r.Register(catalog.Azure, sources.NewAzureRetailSource(rt.client, rt.normalizer, rt.cfg.AzureRegion, rt.logger))

	aws, err := sources.NewAWSPricingSourceFromConfig(ctx, rt.cfg.AWSPricingRegion, rt.cfg.AWSRegion, rt.normalizer, rt.logger)
	if err != nil {
		rt.logger.Warn().Err(err).Msg("AWS live prices disabled")
		return r
	}
	r.Register(catalog.AWS, aws)
	return r
}

// loadCatalogs returns the catalogs that loaded along with the reason each
// missing provider failed.
func (rt *runtime) loadCatalogs(ctx context.Context, providers []catalog.Provider) (sources.Catalogs, map[catalog.Provider]error, error) {
	src, closeSrc, err := rt.catalogSource(ctx, rt.cfg.CatalogSource)
	if err != nil {
		return nil, nil, err
	}
	defer closeSrc()

	catalogs, failed := sources.LoadCatalogs(ctx, src, providers, rt.logger)
	return catalogs, failed, nil
}
