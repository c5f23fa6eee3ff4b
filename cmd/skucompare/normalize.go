package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/normalize"
)

func normalizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "normalize",
		Usage: "Normalize a raw provider price payload into SKU records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "provider",
				Usage:    "Provider the payload belongs to (azure, aws, gcp)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "shape",
				Value: string(normalize.ShapeStatic),
				Usage: "Payload shape (static, retail, products, offer, billing, machinetypes)",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Value:   "-",
				Usage:   "Payload file, or - for stdin",
			},
			&cli.BoolFlag{
				Name:  "eligible-only",
				Usage: "Drop records without vCPU or RAM",
			},
		},
		Action: runNormalize,
	}
}

func runNormalize(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	provider, err := catalog.ParseProvider(c.String("provider"))
	if err != nil {
		return err
	}
	shape, err := normalize.ParseShape(c.String("shape"))
	if err != nil {
		return err
	}

	data, err := readInput(c.String("input"))
	if err != nil {
		return err
	}

	records, err := newRuntime(cfg, logger).normalizer.NormalizeRaw(provider, shape, data)
	if err != nil {
		return err
	}
	if c.Bool("eligible-only") {
		eligible := records[:0]
		for _, r := range records {
			if r.Eligible() {
				eligible = append(eligible, r)
			}
		}
		records = eligible
	}

	logger.Info().Str("provider", string(provider)).Str("shape", string(shape)).Int("records", len(records)).Msg("Payload normalized")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
