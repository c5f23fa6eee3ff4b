package normalize

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-sku-compare/decision/catalog"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(DefaultConverter(), zerolog.Nop())
}

func assertPrice(t *testing.T, want string, r catalog.SkuRecord) {
	t.Helper()
	require.True(t, r.PricePerHour.Valid, "record %s has no price", r.SkuID)
	assert.True(t, decimal.RequireFromString(want).Equal(r.PricePerHour.Decimal),
		"record %s: want %s, got %s", r.SkuID, want, r.PricePerHour.Decimal)
	assert.Equal(t, "INR", r.Currency)
}

func TestDecodeRejectsShapeOfOtherProvider(t *testing.T) {
	_, err := Decode(catalog.Azure, ShapeAWSOffer, []byte(`{}`))
	assert.Error(t, err)

	_, err = Decode(catalog.GCP, ShapeAzureRetail, []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeRejectsUnparseableDocument(t *testing.T) {
	_, err := Decode(catalog.Azure, ShapeAzureRetail, []byte(`<html>`))
	assert.Error(t, err)

	_, err = Decode(catalog.AWS, ShapeStatic, []byte(`[{"sku": `))
	assert.Error(t, err)
}

func TestParseShape(t *testing.T) {
	sh, err := ParseShape("")
	require.NoError(t, err)
	assert.Equal(t, ShapeStatic, sh)

	sh, err = ParseShape("retail")
	require.NoError(t, err)
	assert.Equal(t, ShapeAzureRetail, sh)

	_, err = ParseShape("xml")
	assert.Error(t, err)
}

func TestNormalizeNilPayload(t *testing.T) {
	got := newTestNormalizer().Normalize(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalizeAllConcatenatesPages(t *testing.T) {
	n := newTestNormalizer()
	first, err := Decode(catalog.Azure, ShapeAzureRetail, []byte(`{
		"Items": [{"armSkuName": "Standard_D2s_v3", "retailPrice": 0.1, "currencyCode": "USD", "unitOfMeasure": "1 Hour"}],
		"NextPageLink": "https://prices.azure.com/api/retail/prices?$skip=100"
	}`))
	require.NoError(t, err)
	assert.NotEmpty(t, first.NextPage())

	second, err := Decode(catalog.Azure, ShapeAzureRetail, []byte(`{
		"Items": [{"armSkuName": "Standard_D4s_v3", "retailPrice": 0.2, "currencyCode": "USD", "unitOfMeasure": "1 Hour"}],
		"NextPageLink": null
	}`))
	require.NoError(t, err)
	assert.Empty(t, second.NextPage())

	records := n.NormalizeAll([]Payload{first, second})
	require.Len(t, records, 2)
	assert.Equal(t, "Standard_D2s_v3", records[0].SkuID)
	assert.Equal(t, "Standard_D4s_v3", records[1].SkuID)
}
