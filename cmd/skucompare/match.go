package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/compare"
	"cloud-sku-compare/decision/pricing"
)

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Find the SKUs closest to a vCPU/RAM requirement",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "vcpu",
				Usage:    "Required vCPU count",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "ram",
				Usage:    "Required RAM in GB",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "providers",
				Aliases: []string{"p"},
				Usage:   "Providers to compare (azure, aws, gcp)",
				Value:   cli.NewStringSlice("azure", "aws", "gcp"),
			},
			&cli.IntFlag{
				Name:    "top-n",
				Aliases: []string{"n"},
				Usage:   "Matches per provider (defaults to top_n from config)",
			},
			&cli.BoolFlag{
				Name:  "live-prices",
				Usage: "Look up live prices for matched SKUs (Azure and AWS)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, markdown, csv)",
			},
		},
		Action: runMatch,
	}
}

func runMatch(c *cli.Context) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	render, err := rendererFor(c.String("format"))
	if err != nil {
		return err
	}
	providers, err := catalog.ParseProviders(c.StringSlice("providers"))
	if err != nil {
		return err
	}

	rt := newRuntime(cfg, logger)
	catalogs, failed, err := rt.loadCatalogs(ctx, providers)
	if err != nil {
		return err
	}

	var resolver *pricing.Resolver
	if c.Bool("live-prices") {
		resolver = rt.resolver(ctx)
	}

	topN := cfg.TopN
	if c.IsSet("top-n") {
		topN = c.Int("top-n")
	}

	svc := compare.NewService(catalogs, resolver, cfg.Currency, logger).WithLoadErrors(failed)
	result, err := svc.Compare(ctx, compare.Request{
		Requirement: catalog.Requirement{VCPU: c.Int("vcpu"), RAMGB: c.Float64("ram")},
		Providers:   providers,
		TopN:        topN,
		LivePrices:  c.Bool("live-prices"),
	})
	if err != nil {
		return err
	}

	return render(os.Stdout, result)
}
