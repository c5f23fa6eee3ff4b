package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/compare"
	"cloud-sku-compare/decision/sources"
)

func testResult(t *testing.T, req catalog.Requirement) *compare.Result {
	t.Helper()
	a := catalog.SkuRecord{Provider: catalog.Azure, SkuID: "Standard_D8s_v3", Series: "Dsv3", VCPU: lo.ToPtr(8), RAMGB: lo.ToPtr(32.0)}
	catalogs := sources.Catalogs{
		catalog.Azure: {
			a.WithPrice(decimal.RequireFromString("31.872"), "INR", "USD"),
		},
		catalog.AWS: {
			{Provider: catalog.AWS, SkuID: "m5.2xlarge", VCPU: lo.ToPtr(8), RAMGB: lo.ToPtr(32.0)},
		},
	}
	result, err := compare.NewService(catalogs, nil, "INR", zerolog.Nop()).Compare(context.Background(), compare.Request{
		Requirement: req,
		Providers:   []catalog.Provider{catalog.Azure, catalog.AWS},
	})
	require.NoError(t, err)
	return result
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderCSV(&buf, testResult(t, catalog.Requirement{VCPU: 8, RAMGB: 32})))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"csp", "sku", "series", "vcpu", "memoryGb", "pricePerHour_INR", "pricePerMonth_INR", "priceCurrency", "skuId"}, records[0])
	assert.Equal(t, []string{"Azure", "Standard_D8s_v3", "Dsv3", "8", "32", "31.8720", "22947.84", "USD", "Standard_D8s_v3"}, records[1])
	assert.Equal(t, "", records[2][5])
	assert.Equal(t, "", records[2][6])
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderJSON(&buf, testResult(t, catalog.Requirement{VCPU: 8, RAMGB: 32})))

	var out jsonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.False(t, out.NoMatch)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "22947.84", *out.Rows[0].PricePerMonth)
	assert.Nil(t, out.Rows[1].PricePerHour)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, testResult(t, catalog.Requirement{VCPU: 8, RAMGB: 32})))

	out := buf.String()
	assert.Contains(t, out, "Standard_D8s_v3")
	assert.Contains(t, out, "22,947.84")
	assert.Contains(t, out, "N/A")
}

func TestRenderNoMatch(t *testing.T) {
	empty := &compare.Result{Requirement: catalog.Requirement{VCPU: 2, RAMGB: 4}, Currency: "INR", Rows: []compare.Row{}}

	for _, format := range []string{"table", "markdown"} {
		render, err := rendererFor(format)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, render(&buf, empty))
		assert.True(t, strings.Contains(buf.String(), noMatchMessage), format)
	}

	_, err := rendererFor("xml")
	assert.Error(t, err)
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMarkdown(&buf, testResult(t, catalog.Requirement{VCPU: 8, RAMGB: 32})))

	assert.Contains(t, buf.String(), "| Azure | Standard_D8s_v3 | Dsv3 | 8 | 32 | 31.8720 | 22947.84 |")
}
