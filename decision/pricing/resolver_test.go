package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-sku-compare/decision/catalog"
	skuerrors "cloud-sku-compare/pkg/errors"
)

func quote(sku string, price string, source string) catalog.SkuRecord {
	r := catalog.SkuRecord{Provider: catalog.Azure, SkuID: sku}
	if price == "" {
		return r
	}
	return r.WithPrice(decimal.RequireFromString(price), "INR", source)
}

type failingSource struct{}

func (failingSource) LookupPrice(ctx context.Context, skuID string) ([]catalog.SkuRecord, error) {
	return nil, errors.New("connection reset")
}

func TestSelectQuote(t *testing.T) {
	tests := []struct {
		name   string
		quotes []catalog.SkuRecord
		want   string
		found  bool
	}{
		{
			name:   "prefers target currency",
			quotes: []catalog.SkuRecord{quote("a", "16.6", "USD"), quote("a", "15", "INR")},
			want:   "15",
			found:  true,
		},
		{
			name:   "falls back to first priced",
			quotes: []catalog.SkuRecord{quote("a", "", ""), quote("a", "16.6", "USD"), quote("a", "20.75", "USD")},
			want:   "16.6",
			found:  true,
		},
		{
			name:   "nothing priced",
			quotes: []catalog.SkuRecord{quote("a", "", "")},
		},
		{
			name: "no quotes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectQuote(tt.quotes, "INR")
			require.Equal(t, tt.found, ok)
			if ok {
				assert.True(t, got.PricePerHour.Decimal.Equal(decimal.RequireFromString(tt.want)))
			}
		})
	}
}

func TestResolveAttachesLivePrice(t *testing.T) {
	store := NewPriceStore([]catalog.SkuRecord{
		quote("Standard_D8s_v3", "33.2", "USD"),
		quote("Standard_D8s_v3", "31.9", "INR"),
	})
	resolver := NewResolver("inr", zerolog.Nop())
	resolver.Register(catalog.Azure, store)

	matches := []catalog.SkuRecord{
		{Provider: catalog.Azure, SkuID: "standard_d8s_v3", VCPU: lo.ToPtr(8), RAMGB: lo.ToPtr(32.0)},
		{Provider: catalog.AWS, SkuID: "m5.2xlarge", VCPU: lo.ToPtr(8), RAMGB: lo.ToPtr(32.0)},
	}
	result := resolver.Resolve(context.Background(), matches)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Resolved)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "31.9", result.Records[0].PricePerHour.Decimal.String())
	assert.Equal(t, "INR", result.Records[0].SourceCurrency)
	assert.Equal(t, 8, *result.Records[0].VCPU)
	assert.False(t, result.Records[1].HasPrice())
	assert.False(t, matches[0].HasPrice(), "input must not be mutated")
}

func TestResolveKeepsCatalogPriceOnFailure(t *testing.T) {
	resolver := NewResolver("INR", zerolog.Nop())
	resolver.Register(catalog.Azure, failingSource{})
	resolver.Register(catalog.GCP, NewPriceStore(nil))

	matches := []catalog.SkuRecord{
		quote("Standard_D4s_v3", "14.2", "INR"),
		{Provider: catalog.GCP, SkuID: "n2-standard-8"},
	}
	result := resolver.Resolve(context.Background(), matches)

	require.Len(t, result.Records, 2)
	assert.Zero(t, result.Resolved)
	assert.Len(t, result.Warnings, 2)
	assert.Equal(t, "14.2", result.Records[0].PricePerHour.Decimal.String())
	assert.True(t, resolver.Has(catalog.GCP))
	assert.False(t, resolver.Has(catalog.AWS))
}

func TestPriceStoreLookup(t *testing.T) {
	store := NewPriceStore([]catalog.SkuRecord{quote("m5.large", "8.383", "USD")})
	assert.Equal(t, 1, store.Len())

	quotes, err := store.LookupPrice(context.Background(), "M5.LARGE")
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	_, err = store.LookupPrice(context.Background(), "m5.xlarge")
	assert.True(t, skuerrors.HasCode(err, skuerrors.ErrCodePriceNotFound))
}
