package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-sku-compare/decision/catalog"
)

func TestGCPBillingPage(t *testing.T) {
	page := `{
		"skus": [
			{
				"name": "services/6F81-5844-456A/skus/0009-6F35-3126",
				"skuId": "0009-6F35-3126",
				"description": "E2 Instance 4 vCPU 16 GiB running in Mumbai",
				"category": {"serviceDisplayName": "Compute Engine", "resourceFamily": "Compute", "resourceGroup": "E2", "usageType": "OnDemand"},
				"serviceRegions": ["asia-south1"],
				"pricingInfo": [{
					"pricingExpression": {
						"usageUnit": "h",
						"tieredRates": [
							{"startUsageAmount": 0, "unitPrice": {"currencyCode": "USD", "units": "0", "nanos": 134000000}}
						]
					}
				}]
			},
			{
				"skuId": "N1-CORE",
				"description": "N1 Predefined Instance Core running in Americas",
				"category": {"resourceGroup": "N1Standard"},
				"pricingInfo": [{"pricingExpression": {"usageUnit": "h", "tieredRates": [{"startUsageAmount": 0, "unitPrice": {"currencyCode": "USD", "units": "1", "nanos": 500000000}}]}}]
			},
			{"description": "missing id"}
		],
		"nextPageToken": "page-2"
	}`
	payload, err := Decode(catalog.GCP, ShapeGCPBilling, []byte(page))
	require.NoError(t, err)
	assert.Equal(t, "page-2", payload.NextPage())

	records := newTestNormalizer().Normalize(payload)
	require.Len(t, records, 2)

	e2 := records[0]
	assert.Equal(t, "0009-6F35-3126", e2.SkuID)
	assert.Equal(t, "E2", e2.Series)
	assert.Equal(t, "asia-south1", e2.Region)
	assert.True(t, e2.Eligible())
	assertPrice(t, "11.122", e2)

	n1 := records[1]
	assert.False(t, n1.Eligible())
	assertPrice(t, "124.5", n1)
}

func TestGCPMachineTypeList(t *testing.T) {
	list := `{
		"items": [
			{"name": "n2-standard-8", "guestCpus": 8, "memoryMb": 32768, "zone": "projects/p/zones/asia-south1-a"},
			{"name": "e2-micro", "guestCpus": 0.25, "memoryMb": 1024},
			{"guestCpus": 2}
		]
	}`
	records, err := newTestNormalizer().NormalizeRaw(catalog.GCP, ShapeGCPMachineTypes, []byte(list))
	require.NoError(t, err)
	require.Len(t, records, 2)

	n2 := records[0]
	assert.Equal(t, "n2-standard-8", n2.SkuID)
	assert.Equal(t, "n2", n2.Series)
	assert.Equal(t, "asia-south1-a", n2.Region)
	assert.Equal(t, 8, *n2.VCPU)
	assert.Equal(t, 32.0, *n2.RAMGB)
	assert.False(t, n2.HasPrice())

	micro := records[1]
	assert.Nil(t, micro.VCPU)
	assert.Equal(t, 1.0, *micro.RAMGB)
}
