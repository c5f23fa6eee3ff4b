package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-sku-compare/db"
	"cloud-sku-compare/decision/catalog"
)

type fakeScanner []any

func (f fakeScanner) Scan(dest ...any) error {
	for i, v := range f {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *string:
			*d = v.(string)
		default:
			if sc, ok := dest[i].(interface{ Scan(any) error }); ok {
				if err := sc.Scan(v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func TestCopyValues(t *testing.T) {
	loadedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := catalog.SkuRecord{
		Provider: catalog.AWS,
		SkuID:    "m5.large",
		VCPU:     lo.ToPtr(2),
		RAMGB:    lo.ToPtr(8.0),
	}.WithPrice(decimal.RequireFromString("8.383"), "INR", "USD")

	values := copyValues(db.RowFromRecord(3, rec), loadedAt)
	require.Len(t, values, 12)
	_, err := uuid.Parse(values[0].(string))
	require.NoError(t, err)
	assert.Equal(t, "aws", values[1])
	assert.Equal(t, int64(3), values[2])
	assert.Equal(t, int64(2), values[6])
	assert.Equal(t, 8.0, values[7])
	assert.Equal(t, "8.383", values[8])
	assert.Equal(t, loadedAt, values[11])

	bare := copyValues(db.RowFromRecord(0, catalog.SkuRecord{Provider: catalog.AWS, SkuID: "x"}), loadedAt)
	assert.Nil(t, bare[6])
	assert.Nil(t, bare[7])
	assert.Nil(t, bare[8])
}

func TestScanRowNulls(t *testing.T) {
	row, err := scanRow(fakeScanner{int64(4), "n2-standard-8", "N2", "asia-south1", nil, 32.0, "2.5", "INR", "USD"})
	require.NoError(t, err)

	assert.Equal(t, uint32(4), row.Position)
	assert.Nil(t, row.VCPU)
	require.NotNil(t, row.MemoryGB)
	assert.Equal(t, 32.0, *row.MemoryGB)
	require.NotNil(t, row.PricePerHour)
	assert.Equal(t, "2.5", row.PricePerHour.String())
	assert.False(t, row.Record().Eligible())
}

func TestSchemaPriceIsUnconstrainedNumeric(t *testing.T) {
	// sub-paisa converted rates must survive a round trip unrounded
	assert.Contains(t, createTable, "price_per_hour  NUMERIC,")

	row, err := scanRow(fakeScanner{
		int64(0), "t4g.nano", "", "", int64(2), 0.5, "0.349568123456", "INR", "USD",
	})
	require.NoError(t, err)
	require.NotNil(t, row.PricePerHour)
	assert.Equal(t, "0.349568123456", row.PricePerHour.String())
}
