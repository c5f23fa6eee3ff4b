package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/decision/sources"
	skuerrors "cloud-sku-compare/pkg/errors"
)

type memorySource map[catalog.Provider][]catalog.SkuRecord

func (m memorySource) Name() string { return "memory" }

func (m memorySource) LoadCatalog(ctx context.Context, p catalog.Provider) ([]catalog.SkuRecord, error) {
	records, ok := m[p]
	if !ok {
		return nil, skuerrors.NewSourceUnavailableError("memory", errors.New("not found"))
	}
	return records, nil
}

type memoryStore struct {
	stored map[catalog.Provider][]catalog.SkuRecord
	fail   bool
	// drop discards the last record on write so the count no longer matches
	drop bool
}

func (s *memoryStore) Name() string { return "memory-store" }

func (s *memoryStore) ReplaceCatalog(ctx context.Context, p catalog.Provider, records []catalog.SkuRecord) error {
	if s.fail {
		return errors.New("disk full")
	}
	if s.drop && len(records) > 0 {
		records = records[:len(records)-1]
	}
	s.stored[p] = records
	return nil
}

func (s *memoryStore) CountCatalog(ctx context.Context, p catalog.Provider) (uint64, error) {
	return uint64(len(s.stored[p])), nil
}

var _ sources.CatalogSource = memorySource{}

func TestImport(t *testing.T) {
	src := memorySource{
		catalog.Azure: {
			{Provider: catalog.Azure, SkuID: "A", VCPU: lo.ToPtr(2), RAMGB: lo.ToPtr(8.0)},
			{Provider: catalog.Azure, SkuID: "B"},
		},
		catalog.GCP: {},
	}
	store := &memoryStore{stored: map[catalog.Provider][]catalog.SkuRecord{
		catalog.GCP: {{Provider: catalog.GCP, SkuID: "kept"}},
	}}

	results, err := NewImporter(src, store, zerolog.Nop()).Import(context.Background(), catalog.AllProviders)
	require.Error(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.Equal(t, 2, results[0].RecordCount)
	assert.Equal(t, uint64(2), results[0].Stored)
	assert.Equal(t, 1, results[0].Eligible)
	assert.Len(t, store.stored[catalog.Azure], 2)

	assert.False(t, results[1].Success)
	assert.True(t, skuerrors.IsSourceUnavailable(err))

	assert.False(t, results[2].Success)
	assert.Equal(t, "kept", store.stored[catalog.GCP][0].SkuID)
	assert.Equal(t, results[0].RunID, results[2].RunID)
}

func TestImportStoreFailure(t *testing.T) {
	src := memorySource{catalog.AWS: {{Provider: catalog.AWS, SkuID: "m5.large"}}}
	store := &memoryStore{stored: map[catalog.Provider][]catalog.SkuRecord{}, fail: true}

	results, err := NewImporter(src, store, zerolog.Nop()).Import(context.Background(), []catalog.Provider{catalog.AWS})
	require.Error(t, err)
	assert.Contains(t, results[0].ErrorMessage, "disk full")
}

func TestImportDetectsShortWrite(t *testing.T) {
	src := memorySource{catalog.Azure: {
		{Provider: catalog.Azure, SkuID: "Standard_D2s_v3"},
		{Provider: catalog.Azure, SkuID: "Standard_D4s_v3"},
	}}
	store := &memoryStore{stored: map[catalog.Provider][]catalog.SkuRecord{}, drop: true}

	results, err := NewImporter(src, store, zerolog.Nop()).Import(context.Background(), []catalog.Provider{catalog.Azure})
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, uint64(1), results[0].Stored)
	assert.Contains(t, results[0].ErrorMessage, "holds 1 azure records after writing 2")
}
