package normalize

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"cloud-sku-compare/decision/catalog"
	"cloud-sku-compare/pkg/units"
)

var nanosPerUnit = decimal.New(1, 9)

// GCPBillingPage is one page of Cloud Billing Catalog SKUs for Compute Engine.
type GCPBillingPage struct {
	Skus          []json.RawMessage `json:"skus"`
	NextPageToken string            `json:"nextPageToken"`
}

type gcpBillingSku struct {
	Name        string `json:"name"`
	SkuID       string `json:"skuId"`
	Description string `json:"description"`
	Category    struct {
		ServiceDisplayName string `json:"serviceDisplayName"`
		ResourceFamily     string `json:"resourceFamily"`
		ResourceGroup      string `json:"resourceGroup"`
		UsageType          string `json:"usageType"`
	} `json:"category"`
	ServiceRegions []string `json:"serviceRegions"`
	PricingInfo    []struct {
		PricingExpression struct {
			UsageUnit   string `json:"usageUnit"`
			TieredRates []struct {
				StartUsageAmount float64 `json:"startUsageAmount"`
				UnitPrice        struct {
					CurrencyCode string `json:"currencyCode"`
					Units        string `json:"units"`
					Nanos        int64  `json:"nanos"`
				} `json:"unitPrice"`
			} `json:"tieredRates"`
		} `json:"pricingExpression"`
	} `json:"pricingInfo"`
}

func (p *GCPBillingPage) Provider() catalog.Provider { return catalog.GCP }
func (p *GCPBillingPage) Shape() Shape               { return ShapeGCPBilling }
func (p *GCPBillingPage) NextPage() string           { return p.NextPageToken }

func (p *GCPBillingPage) records(n *Normalizer) []catalog.SkuRecord {
	out := make([]catalog.SkuRecord, 0, len(p.Skus))
	for i, raw := range p.Skus {
		var sku gcpBillingSku
		if err := json.Unmarshal(raw, &sku); err != nil {
			n.drop(p, i, err)
			continue
		}
		if sku.SkuID == "" {
			n.drop(p, i, errors.New("sku has no skuId"))
			continue
		}

		r := catalog.SkuRecord{
			Provider: catalog.GCP,
			SkuID:    sku.SkuID,
			Series:   sku.Category.ResourceGroup,
		}
		if len(sku.ServiceRegions) > 0 {
			r.Region = sku.ServiceRegions[0]
		}
		if v, ok := ExtractVCPU(sku.Description); ok {
			r.VCPU = lo.ToPtr(v)
		}
		if gb, ok := ExtractRAMGiB(sku.Description); ok {
			r.RAMGB = lo.ToPtr(gb)
		}
		out = append(out, gcpPrice(n, r, sku))
	}
	return out
}

// gcpPrice reads the base tier (startUsageAmount 0) of the first pricing expression.
func gcpPrice(n *Normalizer, r catalog.SkuRecord, sku gcpBillingSku) catalog.SkuRecord {
	for _, info := range sku.PricingInfo {
		expr := info.PricingExpression
		for _, tier := range expr.TieredRates {
			if tier.StartUsageAmount != 0 {
				continue
			}
			whole := decimal.Zero
			if tier.UnitPrice.Units != "" {
				u, err := decimal.NewFromString(tier.UnitPrice.Units)
				if err != nil {
					return r
				}
				whole = u
			}
			amount := whole.Add(decimal.NewFromInt(tier.UnitPrice.Nanos).Div(nanosPerUnit))
			hourly, ok := perHour(amount, expr.UsageUnit)
			if !ok {
				return r
			}
			return n.price(r, hourly, tier.UnitPrice.CurrencyCode)
		}
	}
	return r
}

// GCPMachineTypeList is a Compute Engine machineTypes list response.
type GCPMachineTypeList struct {
	Items         []json.RawMessage `json:"items"`
	NextPageToken string            `json:"nextPageToken"`
}

type gcpMachineType struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Zone        string   `json:"zone"`
	GuestCpus   *float64 `json:"guestCpus"`
	MemoryMb    *float64 `json:"memoryMb"`
}

func (l *GCPMachineTypeList) Provider() catalog.Provider { return catalog.GCP }
func (l *GCPMachineTypeList) Shape() Shape               { return ShapeGCPMachineTypes }
func (l *GCPMachineTypeList) NextPage() string           { return l.NextPageToken }

func (l *GCPMachineTypeList) records(n *Normalizer) []catalog.SkuRecord {
	out := make([]catalog.SkuRecord, 0, len(l.Items))
	for i, raw := range l.Items {
		var mt gcpMachineType
		if err := json.Unmarshal(raw, &mt); err != nil {
			n.drop(l, i, err)
			continue
		}
		if mt.Name == "" {
			n.drop(l, i, errors.New("machine type has no name"))
			continue
		}

		r := catalog.SkuRecord{
			Provider: catalog.GCP,
			SkuID:    mt.Name,
			Series:   strings.SplitN(mt.Name, "-", 2)[0],
			Region:   mt.Zone[strings.LastIndex(mt.Zone, "/")+1:],
		}
		if mt.GuestCpus != nil {
			if v, ok := vcpuFrom(*mt.GuestCpus); ok {
				r.VCPU = lo.ToPtr(v)
			}
		} else if v, ok := ExtractVCPU(mt.Description); ok {
			r.VCPU = lo.ToPtr(v)
		}
		if mt.MemoryMb != nil {
			if mb, ok := ramFrom(*mt.MemoryMb); ok {
				r.RAMGB = lo.ToPtr(units.MegabytesToGB(mb))
			}
		} else if gb, ok := ExtractRAMGiB(mt.Description); ok {
			r.RAMGB = lo.ToPtr(gb)
		}
		out = append(out, r)
	}
	return out
}
