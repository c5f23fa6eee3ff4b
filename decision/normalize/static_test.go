package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-sku-compare/decision/catalog"
)

const staticAzureJSON = `[
	{"name": "Standard_D8s_v3", "vcpu": 8, "memoryGb": 32, "series": "Dsv3"},
	{"name": "Standard_B2s", "vcpu": 2, "memoryGb": 4, "series": "B", "pricePerHour_INR": 3.5},
	{"name": "Standard_F4s", "vcpu": 4.5, "memoryGb": 8},
	{"vcpu": 4, "memoryGb": 16},
	"not-an-object",
	{"sku": "Standard_E4s_v3", "description": "4 vCPU 32 GiB memory optimized", "pricePerHour": 0.252, "currency": "USD"},
	{"sku": "Standard_X", "vcpu": 2, "memoryGb": 8, "pricePerHour": 1, "currency": "EUR"}
]`

func TestStaticCatalogJSON(t *testing.T) {
	records, err := newTestNormalizer().NormalizeRaw(catalog.Azure, ShapeStatic, []byte(staticAzureJSON))
	require.NoError(t, err)
	require.Len(t, records, 5)

	d8 := records[0]
	assert.Equal(t, catalog.Azure, d8.Provider)
	assert.Equal(t, "Standard_D8s_v3", d8.SkuID)
	assert.Equal(t, "Dsv3", d8.Series)
	assert.Equal(t, 8, *d8.VCPU)
	assert.Equal(t, 32.0, *d8.RAMGB)
	assert.False(t, d8.HasPrice())

	assertPrice(t, "3.5", records[1])
	assert.Equal(t, "INR", records[1].SourceCurrency)

	f4 := records[2]
	assert.Nil(t, f4.VCPU, "fractional vcpu is left absent")
	assert.False(t, f4.Eligible())

	e4 := records[3]
	assert.Equal(t, "Standard_E4s_v3", e4.SkuID)
	assert.Equal(t, 4, *e4.VCPU)
	assert.Equal(t, 32.0, *e4.RAMGB)
	assertPrice(t, "20.916", e4)
	assert.Equal(t, "USD", e4.SourceCurrency)

	assert.False(t, records[4].HasPrice(), "EUR has no fixed rate")
}

func TestStaticCatalogYAML(t *testing.T) {
	doc := `
- sku: m5.large
  skuId: 6QCMYABX3D
  vcpu: 2
  memoryGb: 8
  family: General purpose
  pricePerHour_INR: 7.968
- sku: t3.micro
  vcpu: 2
  memoryGb: 1
`
	records, err := newTestNormalizer().NormalizeRaw(catalog.AWS, ShapeStatic, []byte(doc))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "m5.large", records[0].SkuID)
	assert.Equal(t, "General purpose", records[0].Series)
	assertPrice(t, "7.968", records[0])
	assert.Equal(t, 1.0, *records[1].RAMGB)
}

func TestStaticCatalogEmpty(t *testing.T) {
	records, err := newTestNormalizer().NormalizeRaw(catalog.GCP, ShapeStatic, []byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStaticCatalogSharedCoreDescription(t *testing.T) {
	doc := `[{"sku": "e2-micro", "description": "0.25 vCPU shared core 1 GiB", "pricePerHour_INR": 0.7}]`
	records, err := newTestNormalizer().NormalizeRaw(catalog.GCP, ShapeStatic, []byte(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)

	micro := records[0]
	assert.Nil(t, micro.VCPU, "fractional vcpu in text is left absent")
	assert.Equal(t, 1.0, *micro.RAMGB)
	assert.False(t, micro.Eligible())
}
