package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"cloud-sku-compare/decision/compare"
)

const noMatchMessage = "No matches found (check the catalog files or the catalog source)."

type renderFunc func(w io.Writer, result *compare.Result) error

func rendererFor(format string) (renderFunc, error) {
	switch format {
	case "", "table":
		return renderTable, nil
	case "json":
		return renderJSON, nil
	case "markdown":
		return renderMarkdown, nil
	case "csv":
		return renderCSV, nil
	}
	return nil, fmt.Errorf("unknown output format %q (valid: table, json, markdown, csv)", format)
}

func hourlyText(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(4)
}

func monthlyText(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatRAM(gb float64) string {
	return strconv.FormatFloat(gb, 'f', -1, 64)
}

// =============================================================================
// TABLE
// =============================================================================

func renderTable(w io.Writer, result *compare.Result) error {
	if result.Empty() {
		fmt.Fprintln(w, noMatchMessage)
		return renderWarnings(w, result.Warnings)
	}

	data := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		monthly := ""
		if row.Monthly.Valid {
			monthly = humanize.CommafWithDigits(row.Monthly.Decimal.Round(2).InexactFloat64(), 2)
		}
		data = append(data, []string{
			row.Provider.Display(),
			row.SkuID,
			orNA(row.Series),
			strconv.Itoa(row.VCPU),
			formatRAM(row.RAMGB),
			strconv.FormatFloat(row.Distance, 'f', 2, 64),
			orNA(hourlyText(row.Hourly)),
			orNA(monthly),
			orNA(row.SourceCurrency),
		})
	}

	fmt.Fprintf(w, "Requirement: %d vCPU, %s GB RAM (prices in %s)\n",
		result.Requirement.VCPU, formatRAM(result.Requirement.RAMGB), result.Currency)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Provider", "SKU", "Series", "vCPU", "RAM (GB)", "Distance", "Price/Hour", "Price/Month", "Quoted In"})
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()

	return renderWarnings(w, result.Warnings)
}

func renderWarnings(w io.Writer, warnings []string) error {
	for _, msg := range warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// JSON
// =============================================================================

type jsonRow struct {
	Provider       string  `json:"provider"`
	SkuID          string  `json:"sku"`
	Series         string  `json:"series,omitempty"`
	Region         string  `json:"region,omitempty"`
	VCPU           int     `json:"vcpu"`
	RAMGB          float64 `json:"ram_gb"`
	Distance       float64 `json:"distance"`
	PricePerHour   *string `json:"price_per_hour"`
	PricePerMonth  *string `json:"price_per_month"`
	SourceCurrency string  `json:"source_currency,omitempty"`
}

type jsonOutput struct {
	ComparisonID string    `json:"comparison_id"`
	VCPU         int       `json:"vcpu"`
	RAMGB        float64   `json:"ram_gb"`
	Currency     string    `json:"currency"`
	NoMatch      bool      `json:"no_match"`
	Rows         []jsonRow `json:"rows"`
	Warnings     []string  `json:"warnings,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func renderJSON(w io.Writer, result *compare.Result) error {
	out := jsonOutput{
		ComparisonID: result.ID.String(),
		VCPU:         result.Requirement.VCPU,
		RAMGB:        result.Requirement.RAMGB,
		Currency:     result.Currency,
		NoMatch:      result.Empty(),
		Rows:         make([]jsonRow, 0, len(result.Rows)),
		Warnings:     result.Warnings,
	}
	for _, row := range result.Rows {
		out.Rows = append(out.Rows, jsonRow{
			Provider:       string(row.Provider),
			SkuID:          row.SkuID,
			Series:         row.Series,
			Region:         row.Region,
			VCPU:           row.VCPU,
			RAMGB:          row.RAMGB,
			Distance:       row.Distance,
			PricePerHour:   optional(hourlyText(row.Hourly)),
			PricePerMonth:  optional(monthlyText(row.Monthly)),
			SourceCurrency: row.SourceCurrency,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// =============================================================================
// MARKDOWN
// =============================================================================

func renderMarkdown(w io.Writer, result *compare.Result) error {
	fmt.Fprintf(w, "## VM SKU comparison: %d vCPU, %s GB RAM\n\n", result.Requirement.VCPU, formatRAM(result.Requirement.RAMGB))
	if result.Empty() {
		fmt.Fprintln(w, noMatchMessage)
		return nil
	}

	fmt.Fprintf(w, "| Provider | SKU | Series | vCPU | RAM (GB) | Price/Hour (%[1]s) | Price/Month (%[1]s) |\n", result.Currency)
	fmt.Fprintln(w, "|----------|-----|--------|------|----------|------------|-------------|")
	for _, row := range result.Rows {
		fmt.Fprintf(w, "| %s | %s | %s | %d | %s | %s | %s |\n",
			row.Provider.Display(), row.SkuID, orNA(row.Series), row.VCPU, formatRAM(row.RAMGB),
			orNA(hourlyText(row.Hourly)), orNA(monthlyText(row.Monthly)))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Warnings")
		fmt.Fprintln(w)
		for _, msg := range result.Warnings {
			fmt.Fprintf(w, "- %s\n", msg)
		}
	}
	return nil
}

// =============================================================================
// CSV
// =============================================================================

func csvHeader(currency string) []string {
	return []string{
		"csp", "sku", "series", "vcpu", "memoryGb",
		"pricePerHour_" + currency, "pricePerMonth_" + currency,
		"priceCurrency", "skuId",
	}
}

func renderCSV(w io.Writer, result *compare.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader(result.Currency)); err != nil {
		return err
	}
	for _, row := range result.Rows {
		if err := cw.Write([]string{
			row.Provider.Display(),
			row.SkuID,
			row.Series,
			strconv.Itoa(row.VCPU),
			formatRAM(row.RAMGB),
			hourlyText(row.Hourly),
			monthlyText(row.Monthly),
			row.SourceCurrency,
			row.SkuID,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
