// Package clickhouse stores the current VM catalog of each provider in ClickHouse.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"cloud-sku-compare/db"
	"cloud-sku-compare/decision/catalog"
	skuerrors "cloud-sku-compare/pkg/errors"
)

// Config holds ClickHouse connection configuration
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "skucompare",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store is a catalog store and catalog source backed by ClickHouse.
type Store struct {
	conn driver.Conn
	cfg  *Config
}

// NewStore opens a native-protocol connection with LZ4 compression.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) Name() string { return "clickhouse" }

// =============================================================================
// SCHEMA
// =============================================================================

const createTable = `
	CREATE TABLE IF NOT EXISTS ` + db.CatalogTable + ` (
		id              UUID,
		provider        LowCardinality(String),
		position        UInt32,
		sku_id          String,
		series          String,
		region          LowCardinality(String),
		vcpu            Nullable(UInt32),
		memory_gb       Nullable(Float64),
		price_per_hour  Nullable(Decimal(38, 12)),
		currency        LowCardinality(String),
		source_currency LowCardinality(String),
		loaded_at       DateTime64(3)
	) ENGINE = MergeTree()
	ORDER BY (provider, position)
`

// EnsureSchema creates the catalog table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.conn.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create %s: %w", db.CatalogTable, err)
	}
	return nil
}

// =============================================================================
// CATALOG OPERATIONS
// =============================================================================

// LoadCatalog returns the stored catalog of a provider in its original order.
func (s *Store) LoadCatalog(ctx context.Context, provider catalog.Provider) ([]catalog.SkuRecord, error) {
	query := `
		SELECT provider, position, sku_id, series, region, vcpu, memory_gb,
		       price_per_hour, currency, source_currency
		FROM ` + db.CatalogTable + `
		WHERE provider = ?
		ORDER BY position
	`
	var rows []db.SkuRow
	if err := s.conn.Select(ctx, &rows, query, string(provider)); err != nil {
		return nil, skuerrors.NewSourceUnavailableError(s.Name(), fmt.Errorf("failed to query catalog: %w", err))
	}

	records := make([]catalog.SkuRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records, nil
}

// ReplaceCatalog swaps the stored catalog of a provider for records.
func (s *Store) ReplaceCatalog(ctx context.Context, provider catalog.Provider, records []catalog.SkuRecord) error {
	// Wait for the delete mutation so the insert below is never deleted with it.
	syncCtx := clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{
		"mutations_sync": 1,
	}))
	if err := s.conn.Exec(syncCtx, `ALTER TABLE `+db.CatalogTable+` DELETE WHERE provider = ?`, string(provider)); err != nil {
		return fmt.Errorf("failed to clear %s catalog: %w", provider, err)
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO `+db.CatalogTable+` (
			id, provider, position, sku_id, series, region, vcpu, memory_gb,
			price_per_hour, currency, source_currency, loaded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	loadedAt := time.Now()
	for _, row := range db.RowsFromRecords(records) {
		if err := batch.Append(
			uuid.New(), string(provider), row.Position, row.SkuID, row.Series, row.Region,
			row.VCPU, row.MemoryGB, row.PricePerHour, row.Currency, row.SourceCurrency,
			loadedAt,
		); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	return batch.Send()
}

// CountCatalog returns the number of stored records of a provider.
func (s *Store) CountCatalog(ctx context.Context, provider catalog.Provider) (uint64, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM `+db.CatalogTable+` WHERE provider = ?`, string(provider))
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count catalog: %w", err)
	}
	return count, nil
}
