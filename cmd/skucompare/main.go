// skucompare finds the closest VM SKUs to a vCPU/RAM requirement across Azure, AWS
// and GCP and compares their normalized prices.
//
// Usage:
//
//	skucompare match --vcpu 8 --ram 32 [--providers azure,aws] [--live-prices]
//	skucompare normalize --provider azure --shape retail --input page.json
//	skucompare catalog import --from file --to clickhouse
//	skucompare serve --port 8080
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"cloud-sku-compare/internal/config"
	"cloud-sku-compare/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "skucompare",
		Usage:   "Match VM requirements to the closest Azure, AWS and GCP SKUs and compare prices",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config file (yaml, json or toml)",
				EnvVars: []string{"SKUCOMPARE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "currency",
				Usage: "Currency prices are normalized to",
			},
			&cli.StringFlag{
				Name:  "catalog-source",
				Usage: "Where catalogs are read from (file, live, clickhouse, postgres)",
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Usage:   "PostgreSQL connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
		},

		Commands: []*cli.Command{
			matchCommand(),
			normalizeCommand(),
			catalogCommand(),
			serveCommand(),
		},
	}
}

// loadConfig reads the config file and environment, then applies any global flag
// the user set explicitly.
func loadConfig(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("currency") {
		cfg.Currency = c.String("currency")
	}
	if c.IsSet("catalog-source") {
		cfg.CatalogSource = c.String("catalog-source")
	}
	if c.IsSet("clickhouse-host") {
		cfg.ClickHouse.Host = c.String("clickhouse-host")
	}
	if c.IsSet("clickhouse-port") {
		cfg.ClickHouse.Port = c.Int("clickhouse-port")
	}
	if c.IsSet("clickhouse-database") {
		cfg.ClickHouse.Database = c.String("clickhouse-database")
	}
	if c.IsSet("clickhouse-user") {
		cfg.ClickHouse.Username = c.String("clickhouse-user")
	}
	if c.IsSet("clickhouse-password") {
		cfg.ClickHouse.Password = c.String("clickhouse-password")
	}
	if c.IsSet("postgres-dsn") {
		cfg.PostgresDSN = c.String("postgres-dsn")
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, platform.InitLogger(cfg.LogLevel), nil
}
