package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"cloud-sku-compare/api"
	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/compare"
	"cloud-sku-compare/decision/pricing"
	"cloud-sku-compare/internal/config"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the comparison API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "API server port (defaults to server.port from config)",
				EnvVars: []string{"SKUCOMPARE_PORT"},
			},
			&cli.StringFlag{
				Name:    "cors-origins",
				Value:   "*",
				Usage:   "Comma-separated list of allowed CORS origins",
				EnvVars: []string{"SKUCOMPARE_CORS_ORIGINS"},
			},
			&cli.BoolFlag{
				Name:  "live-prices",
				Value: true,
				Usage: "Allow requests to ask for live prices",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	rt := newRuntime(cfg, logger)

	catalogs, failed, err := rt.loadCatalogs(ctx, catalog.AllProviders)
	if err != nil {
		return err
	}
	if len(catalogs) == 0 {
		return fmt.Errorf("no provider catalog could be loaded from %s", cfg.CatalogSource)
	}

	var store api.Pinger
	if cfg.CatalogSource == config.SourceClickHouse || cfg.CatalogSource == config.SourcePostgres {
		s, err := rt.openStore(cfg.CatalogSource)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	var resolver *pricing.Resolver
	if c.Bool("live-prices") {
		resolver = rt.resolver(ctx)
	}
	svc := compare.NewService(catalogs, resolver, cfg.Currency, logger).WithLoadErrors(failed)

	corsOrigins := strings.Split(c.String("cors-origins"), ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}

	serverCfg := api.DefaultConfig()
	serverCfg.Port = cfg.ServerPort
	if c.IsSet("port") {
		serverCfg.Port = c.Int("port")
	}
	serverCfg.CORSOrigins = corsOrigins

	api.Version = version
	server := api.NewServer(svc, rt.normalizer, store, serverCfg, logger)
	return server.StartWithGracefulShutdown()
}
