package normalize

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"cloud-sku-compare/decision/catalog"
)

// AzureRetailPage is one page of the Azure Retail Prices API.
type AzureRetailPage struct {
	BillingCurrency string            `json:"BillingCurrency"`
	Items           []json.RawMessage `json:"Items"`
	NextPageLink    string            `json:"NextPageLink"`
	Count           int               `json:"Count"`
}

type azureRetailItem struct {
	CurrencyCode  string              `json:"currencyCode"`
	RetailPrice   decimal.NullDecimal `json:"retailPrice"`
	UnitPrice     decimal.NullDecimal `json:"unitPrice"`
	ArmRegionName string              `json:"armRegionName"`
	ArmSkuName    string              `json:"armSkuName"`
	SkuName       string              `json:"skuName"`
	ProductName   string              `json:"productName"`
	MeterName     string              `json:"meterName"`
	Type          string              `json:"type"`
	UnitOfMeasure string              `json:"unitOfMeasure"`
}

func (p *AzureRetailPage) Provider() catalog.Provider { return catalog.Azure }
func (p *AzureRetailPage) Shape() Shape               { return ShapeAzureRetail }
func (p *AzureRetailPage) NextPage() string           { return p.NextPageLink }

func (p *AzureRetailPage) records(n *Normalizer) []catalog.SkuRecord {
	out := make([]catalog.SkuRecord, 0, len(p.Items))
	for i, raw := range p.Items {
		var item azureRetailItem
		if err := json.Unmarshal(raw, &item); err != nil {
			n.drop(p, i, err)
			continue
		}
		id := lo.Ternary(item.ArmSkuName != "", item.ArmSkuName, item.SkuName)
		if id == "" {
			n.drop(p, i, errors.New("item has no armSkuName or skuName"))
			continue
		}
		if !item.payAsYouGoLinux() {
			continue
		}
		out = append(out, p.record(n, id, item))
	}
	return out
}

// payAsYouGoLinux reports whether a meter is the on-demand Linux rate. Spot, Low Priority,
// Windows, reservation and dev/test meters share the ARM SKU name and would otherwise
// compete with it for the quoted price.
func (item azureRetailItem) payAsYouGoLinux() bool {
	if item.Type != "" && !strings.EqualFold(item.Type, "Consumption") {
		return false
	}
	for _, name := range []string{item.SkuName, item.MeterName} {
		if strings.Contains(name, "Spot") || strings.Contains(name, "Low Priority") {
			return false
		}
	}
	return !strings.Contains(item.ProductName, "Windows")
}

func (p *AzureRetailPage) record(n *Normalizer, id string, item azureRetailItem) catalog.SkuRecord {
	r := catalog.SkuRecord{
		Provider: catalog.Azure,
		SkuID:    id,
		Series:   item.ProductName,
		Region:   item.ArmRegionName,
	}

	// The retail API carries no hardware figures; meter and product names sometimes do.
	text := strings.Join([]string{item.MeterName, item.ProductName, item.SkuName}, " ")
	if v, ok := ExtractVCPU(text); ok {
		r.VCPU = lo.ToPtr(v)
	}
	if gb, ok := ExtractRAMGiB(text); ok {
		r.RAMGB = lo.ToPtr(gb)
	}

	price := item.RetailPrice
	if !price.Valid {
		price = item.UnitPrice
	}
	if !price.Valid {
		return r
	}
	hourly, ok := perHour(price.Decimal, item.UnitOfMeasure)
	if !ok {
		return r
	}
	currency := lo.CoalesceOrEmpty(item.CurrencyCode, p.BillingCurrency, "USD")
	return n.price(r, hourly, currency)
}
