package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/normalize"
)

// EnvPrefix prefixes every environment override, e.g. SKUCOMPARE_LOG_LEVEL.
const EnvPrefix = "skucompare"

type Config struct {
	LogLevel      string
	Currency      string
	ExchangeRates map[string]float64
	TopN          int

	CatalogSource string
	Catalogs      map[catalog.Provider]string

	AzureRegion      string
	AWSRegion        string
	AWSPricingRegion string
	GCPAPIKey        string

	HTTPTimeout time.Duration
	HTTPRetries int

	ClickHouse  ClickHouseConfig
	PostgresDSN string
	ServerPort  int
}

type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// Catalog sources a comparison can read from.
const (
	SourceFile       = "file"
	SourceLive       = "live"
	SourceClickHouse = "clickhouse"
	SourcePostgres   = "postgres"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("currency", normalize.DefaultCurrency)
	v.SetDefault("exchange_rates", map[string]any{"USD": normalize.DefaultUSDRate})
	v.SetDefault("top_n", 5)

	v.SetDefault("catalog_source", SourceFile)
	v.SetDefault("catalogs.azure", "data/azure_catalog.json")
	v.SetDefault("catalogs.aws", "data/aws_catalog.json")
	v.SetDefault("catalogs.gcp", "data/gcp_catalog.yaml")

	v.SetDefault("azure_region", "centralindia")
	v.SetDefault("aws_region", "ap-south-1")
	v.SetDefault("aws_pricing_region", "us-east-1")
	v.SetDefault("gcp_api_key", "")

	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.retries", 3)

	v.SetDefault("clickhouse.host", "localhost")
	v.SetDefault("clickhouse.port", 9000)
	v.SetDefault("clickhouse.database", "skucompare")
	v.SetDefault("clickhouse.username", "default")
	v.SetDefault("clickhouse.password", "")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("server.port", 8080)
}

// Load reads defaults, then the optional config file at path, then SKUCOMPARE_*
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	rates, err := exchangeRates(v.GetStringMap("exchange_rates"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:      strings.ToLower(v.GetString("log_level")),
		Currency:      strings.ToUpper(v.GetString("currency")),
		ExchangeRates: rates,
		TopN:          v.GetInt("top_n"),
		CatalogSource: strings.ToLower(v.GetString("catalog_source")),
		Catalogs: map[catalog.Provider]string{
			catalog.Azure: v.GetString("catalogs.azure"),
			catalog.AWS:   v.GetString("catalogs.aws"),
			catalog.GCP:   v.GetString("catalogs.gcp"),
		},
		AzureRegion:      v.GetString("azure_region"),
		AWSRegion:        v.GetString("aws_region"),
		AWSPricingRegion: v.GetString("aws_pricing_region"),
		GCPAPIKey:        v.GetString("gcp_api_key"),
		HTTPTimeout:      v.GetDuration("http.timeout"),
		HTTPRetries:      v.GetInt("http.retries"),
		ClickHouse: ClickHouseConfig{
			Host:     v.GetString("clickhouse.host"),
			Port:     v.GetInt("clickhouse.port"),
			Database: v.GetString("clickhouse.database"),
			Username: v.GetString("clickhouse.username"),
			Password: v.GetString("clickhouse.password"),
		},
		PostgresDSN: v.GetString("postgres.dsn"),
		ServerPort:  v.GetInt("server.port"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func exchangeRates(raw map[string]any) (map[string]float64, error) {
	rates := make(map[string]float64, len(raw))
	for code, value := range raw {
		rate, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("exchange rate for %s: %w", code, err)
		}
		rates[strings.ToUpper(code)] = rate
	}
	return rates, nil
}

func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}

	if len(c.Currency) != 3 {
		return fmt.Errorf("invalid currency code: %q", c.Currency)
	}
	for code, rate := range c.ExchangeRates {
		if rate <= 0 {
			return fmt.Errorf("exchange rate for %s must be positive, got %g", code, rate)
		}
	}

	switch c.CatalogSource {
	case SourceFile, SourceLive, SourceClickHouse:
	case SourcePostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres catalog source requires postgres.dsn")
		}
	default:
		return fmt.Errorf("invalid catalog source: %s (valid: file, live, clickhouse, postgres)", c.CatalogSource)
	}

	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.HTTPRetries < 0 {
		return fmt.Errorf("http.retries must not be negative, got %d", c.HTTPRetries)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port: %d", c.ServerPort)
	}
	return nil
}

// Converter returns the currency converter the config describes.
func (c *Config) Converter() *normalize.Converter {
	return normalize.NewConverter(c.Currency, c.ExchangeRates)
}
