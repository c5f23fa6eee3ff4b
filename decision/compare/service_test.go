package compare

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
	"cloud-sku-compare/decision/pricing"
	"cloud-sku-compare/decision/sources"
	skuerrors "cloud-sku-compare/pkg/errors"
)

func sku(p catalog.Provider, id string, vcpu int, ram float64, price string) catalog.SkuRecord {
	r := catalog.SkuRecord{Provider: p, SkuID: id, VCPU: lo.ToPtr(vcpu), RAMGB: lo.ToPtr(ram)}
	if price != "" {
		r = r.WithPrice(decimal.RequireFromString(price), "INR", "INR")
	}
	return r
}

func testCatalogs() sources.Catalogs {
	return sources.Catalogs{
		catalog.Azure: {
			sku(catalog.Azure, "A", 8, 32, "10"),
			sku(catalog.Azure, "B", 8, 30, "9"),
			sku(catalog.Azure, "C", 4, 16, "5"),
			{Provider: catalog.Azure, SkuID: "D", RAMGB: lo.ToPtr(32.0)},
		},
		catalog.AWS: {
			sku(catalog.AWS, "m5.2xlarge", 8, 32, ""),
		},
		catalog.GCP: {},
	}
}

func TestCompareRanksEachProvider(t *testing.T) {
	svc := NewService(testCatalogs(), nil, "INR", zerolog.Nop())

	result, err := svc.Compare(context.Background(), Request{
		Requirement: catalog.Requirement{VCPU: 8, RAMGB: 32},
		TopN:        2,
	})
	require.NoError(t, err)
	assert.False(t, result.Empty())
	assert.NotEmpty(t, result.ID.String())

	azure := result.ProviderRows(catalog.Azure)
	require.Len(t, azure, 2)
	assert.Equal(t, "A", azure[0].SkuID)
	assert.Equal(t, "B", azure[1].SkuID)
	assert.InDelta(t, 0.5, azure[1].Distance, 1e-9)
	assert.Equal(t, "7200", azure[0].Monthly.Decimal.String())

	aws := result.ProviderRows(catalog.AWS)
	require.Len(t, aws, 1)
	assert.False(t, aws[0].Hourly.Valid)
	assert.False(t, aws[0].Monthly.Valid)

	assert.Empty(t, result.ProviderRows(catalog.GCP))
	assert.Equal(t, catalog.AllProviders, svc.Providers())
}

func TestCompareDefaultsTopN(t *testing.T) {
	records := make([]catalog.SkuRecord, 0, 8)
	for i := 1; i <= 8; i++ {
		records = append(records, sku(catalog.GCP, "e2-"+string(rune('a'+i)), i, float64(4*i), ""))
	}
	svc := NewService(sources.Catalogs{catalog.GCP: records}, nil, "INR", zerolog.Nop())

	result, err := svc.Compare(context.Background(), Request{
		Requirement: catalog.Requirement{VCPU: 2, RAMGB: 8},
		Providers:   []catalog.Provider{catalog.GCP, catalog.Azure},
	})
	require.NoError(t, err)
	assert.Len(t, result.Rows, DefaultTopN)
	assert.Equal(t, 2, result.Rows[0].VCPU)
	assert.Contains(t, result.Warnings, "Azure catalog is not loaded")
}

func TestCompareInvalidRequirement(t *testing.T) {
	svc := NewService(testCatalogs(), nil, "INR", zerolog.Nop())

	_, err := svc.Compare(context.Background(), Request{Requirement: catalog.Requirement{VCPU: 0, RAMGB: 8}})
	assert.True(t, skuerrors.IsInvalidRequirement(err))
}

func TestCompareEmptyCatalogs(t *testing.T) {
	svc := NewService(nil, nil, "INR", zerolog.Nop())

	result, err := svc.Compare(context.Background(), Request{Requirement: catalog.Requirement{VCPU: 2, RAMGB: 4}})
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Len(t, result.Warnings, 3)
}

func TestCompareReportsLoadErrors(t *testing.T) {
	failed := map[catalog.Provider]error{
		catalog.AWS: skuerrors.NewSourceUnavailableError("aws-pricing", errors.New("access denied")),
	}
	svc := NewService(sources.Catalogs{}, nil, "INR", zerolog.Nop()).WithLoadErrors(failed)

	result, err := svc.Compare(context.Background(), Request{
		Requirement: catalog.Requirement{VCPU: 2, RAMGB: 4},
		Providers:   []catalog.Provider{catalog.Azure, catalog.AWS},
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "Azure catalog is not loaded", result.Warnings[0])
	assert.Contains(t, result.Warnings[1], "AWS catalog is not loaded: ")
	assert.Contains(t, result.Warnings[1], "access denied")
}

func TestCompareLivePrices(t *testing.T) {
	resolver := pricing.NewResolver("INR", zerolog.Nop())
	resolver.Register(catalog.AWS, pricing.NewPriceStore([]catalog.SkuRecord{
		sku(catalog.AWS, "m5.2xlarge", 8, 32, "33.532"),
	}))
	svc := NewService(testCatalogs(), resolver, "INR", zerolog.Nop())

	req := Request{Requirement: catalog.Requirement{VCPU: 8, RAMGB: 32}, Providers: []catalog.Provider{catalog.AWS}}

	result, err := svc.Compare(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.False(t, result.Rows[0].Hourly.Valid, "live prices are opt-in")

	req.LivePrices = true
	result, err = svc.Compare(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "33.532", result.Rows[0].Hourly.Decimal.String())
	assert.Equal(t, "24143.04", result.Rows[0].Monthly.Decimal.String())
}
