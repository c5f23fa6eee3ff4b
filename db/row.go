// Package db holds the row layout shared by the catalog stores.
package db

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"cloud-sku-compare/decision/catalog"
)

// CatalogTable is the table holding the current catalog of every provider.
const CatalogTable = "vm_skus"

// SkuRow is the stored form of a catalog.SkuRecord. Position keeps catalog order so
// tie-breaking in the matcher survives a round trip.
type SkuRow struct {
	Provider       string           `ch:"provider"`
	Position       uint32           `ch:"position"`
	SkuID          string           `ch:"sku_id"`
	Series         string           `ch:"series"`
	Region         string           `ch:"region"`
	VCPU           *uint32          `ch:"vcpu"`
	MemoryGB       *float64         `ch:"memory_gb"`
	PricePerHour   *decimal.Decimal `ch:"price_per_hour"`
	Currency       string           `ch:"currency"`
	SourceCurrency string           `ch:"source_currency"`
}

// RowFromRecord converts a record at catalog position pos.
func RowFromRecord(pos int, r catalog.SkuRecord) SkuRow {
	row := SkuRow{
		Provider:       string(r.Provider),
		Position:       uint32(pos),
		SkuID:          r.SkuID,
		Series:         r.Series,
		Region:         r.Region,
		MemoryGB:       r.RAMGB,
		Currency:       r.Currency,
		SourceCurrency: r.SourceCurrency,
	}
	if r.VCPU != nil && *r.VCPU >= 0 {
		row.VCPU = lo.ToPtr(uint32(*r.VCPU))
	}
	if r.PricePerHour.Valid {
		row.PricePerHour = lo.ToPtr(r.PricePerHour.Decimal)
	}
	return row
}

// Record converts the row back into a catalog record.
func (row SkuRow) Record() catalog.SkuRecord {
	r := catalog.SkuRecord{
		Provider:       catalog.Provider(row.Provider),
		SkuID:          row.SkuID,
		Series:         row.Series,
		Region:         row.Region,
		RAMGB:          row.MemoryGB,
		Currency:       row.Currency,
		SourceCurrency: row.SourceCurrency,
	}
	if row.VCPU != nil {
		r.VCPU = lo.ToPtr(int(*row.VCPU))
	}
	if row.PricePerHour != nil {
		r.PricePerHour = decimal.NewNullDecimal(*row.PricePerHour)
	}
	return r
}

// RowsFromRecords converts a whole catalog, keeping its order.
func RowsFromRecords(records []catalog.SkuRecord) []SkuRow {
	return lo.Map(records, func(r catalog.SkuRecord, i int) SkuRow {
		return RowFromRecord(i, r)
	})
}
