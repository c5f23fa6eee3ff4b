package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"cloud-sku-compare/db/ingestion"
	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/internal/config"
)

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage stored SKU catalogs",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Load catalogs from files or live APIs into ClickHouse or PostgreSQL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Value: config.SourceFile,
						Usage: "Source to read (file, live)",
					},
					&cli.StringFlag{
						Name:  "to",
						Value: config.SourceClickHouse,
						Usage: "Store to write (clickhouse, postgres)",
					},
					&cli.StringSliceFlag{
						Name:    "providers",
						Aliases: []string{"p"},
						Usage:   "Providers to import (azure, aws, gcp)",
						Value:   cli.NewStringSlice("azure", "aws", "gcp"),
					},
				},
				Action: runCatalogImport,
			},
		},
	}
}

func runCatalogImport(c *cli.Context) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	providers, err := catalog.ParseProviders(c.StringSlice("providers"))
	if err != nil {
		return err
	}

	from := c.String("from")
	if from != config.SourceFile && from != config.SourceLive {
		return fmt.Errorf("catalogs can only be imported from file or live, not %s", from)
	}

	rt := newRuntime(cfg, logger)
	src, closeSrc, err := rt.catalogSource(ctx, from)
	if err != nil {
		return err
	}
	defer closeSrc()

	store, err := rt.openStore(c.String("to"))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("%s is not reachable: %w", store.Name(), err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	results, importErr := ingestion.NewImporter(src, store, logger).Import(ctx, providers)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Provider", "Records", "Stored", "Eligible", "Priced", "Duration", "Status"})
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = r.ErrorMessage
		}
		table.Append([]string{
			r.Provider.Display(),
			strconv.Itoa(r.RecordCount),
			strconv.FormatUint(r.Stored, 10),
			strconv.Itoa(r.Eligible),
			strconv.Itoa(r.Priced),
			r.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	table.Render()

	return importErr
}
