package normalize

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/samber/lo"

	"cloud-sku-compare/decision/catalog"
)

// AWSProductsPage is one page of the Price List GetProducts response; every
// PriceList element is a JSON document describing one product and its terms.
type AWSProductsPage struct {
	FormatVersion string   `json:"FormatVersion"`
	NextToken     string   `json:"NextToken"`
	PriceList     []string `json:"PriceList"`
}

// AWSOfferFile is the bulk offer file layout: products keyed by SKU with terms kept
// in a separate map, also keyed by SKU.
type AWSOfferFile struct {
	Products map[string]json.RawMessage `json:"products"`
	Terms    struct {
		OnDemand map[string]map[string]awsTerm `json:"OnDemand"`
	} `json:"terms"`
}

type awsProduct struct {
	SKU           string            `json:"sku"`
	ProductFamily string            `json:"productFamily"`
	Attributes    map[string]string `json:"attributes"`
}

type awsPriceListDocument struct {
	Product awsProduct `json:"product"`
	Terms   struct {
		OnDemand map[string]awsTerm `json:"OnDemand"`
	} `json:"terms"`
}

type awsTerm struct {
	PriceDimensions map[string]awsPriceDimension `json:"priceDimensions"`
}

type awsPriceDimension struct {
	Unit         string            `json:"unit"`
	Description  string            `json:"description"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

var errNotAnInstance = errors.New("product is not a compute instance")

func (p *AWSProductsPage) Provider() catalog.Provider { return catalog.AWS }
func (p *AWSProductsPage) Shape() Shape               { return ShapeAWSProducts }
func (p *AWSProductsPage) NextPage() string           { return p.NextToken }

func (p *AWSProductsPage) records(n *Normalizer) []catalog.SkuRecord {
	out := make([]catalog.SkuRecord, 0, len(p.PriceList))
	for i, doc := range p.PriceList {
		var parsed awsPriceListDocument
		if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
			n.drop(p, i, err)
			continue
		}
		r, err := awsRecord(n, parsed.Product, parsed.Terms.OnDemand)
		if err != nil {
			n.drop(p, i, err)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (f *AWSOfferFile) Provider() catalog.Provider { return catalog.AWS }
func (f *AWSOfferFile) Shape() Shape               { return ShapeAWSOffer }
func (f *AWSOfferFile) NextPage() string           { return "" }

func (f *AWSOfferFile) records(n *Normalizer) []catalog.SkuRecord {
	skus := lo.Keys(f.Products)
	sort.Strings(skus)

	out := make([]catalog.SkuRecord, 0, len(skus))
	for i, sku := range skus {
		var product awsProduct
		if err := json.Unmarshal(f.Products[sku], &product); err != nil {
			n.drop(f, i, err)
			continue
		}
		if product.SKU == "" {
			product.SKU = sku
		}
		r, err := awsRecord(n, product, f.Terms.OnDemand[product.SKU])
		if err != nil {
			n.drop(f, i, err)
			continue
		}
		out = append(out, r)
	}
	return out
}

func awsRecord(n *Normalizer, product awsProduct, onDemand map[string]awsTerm) (catalog.SkuRecord, error) {
	if product.ProductFamily != "" && !strings.HasPrefix(product.ProductFamily, "Compute Instance") {
		return catalog.SkuRecord{}, errNotAnInstance
	}
	attrs := product.Attributes
	id := lo.CoalesceOrEmpty(attrs["instanceType"], product.SKU)
	if id == "" {
		return catalog.SkuRecord{}, errors.New("product has no instanceType or sku")
	}

	r := catalog.SkuRecord{
		Provider: catalog.AWS,
		SkuID:    id,
		Series:   attrs["instanceFamily"],
		Region:   lo.CoalesceOrEmpty(attrs["regionCode"], attrs["location"]),
	}

	dims := sortedDimensions(onDemand)
	descriptions := strings.Join(lo.Map(dims, func(d awsPriceDimension, _ int) string { return d.Description }), " ")

	if v, ok := vcpuFrom(attrs["vcpu"]); ok {
		r.VCPU = lo.ToPtr(v)
	} else if v, ok := ExtractVCPU(descriptions); ok {
		r.VCPU = lo.ToPtr(v)
	}
	if gb, ok := ramFrom(attrs["memory"]); ok {
		r.RAMGB = lo.ToPtr(gb)
	} else if gb, ok := ExtractRAMGiB(attrs["memory"]); ok {
		r.RAMGB = lo.ToPtr(gb)
	}

	return awsPrice(n, r, dims), nil
}

// awsPrice prefers a dimension already quoted in the target currency and otherwise
// takes the first convertible quote.
func awsPrice(n *Normalizer, r catalog.SkuRecord, dims []awsPriceDimension) catalog.SkuRecord {
	target := n.conv.Target()
	for _, d := range dims {
		if amount, ok := d.PricePerUnit[target]; ok {
			if priced := hourlyAWS(n, r, d, amount, target); priced.HasPrice() {
				return priced
			}
		}
	}
	for _, d := range dims {
		currencies := lo.Keys(d.PricePerUnit)
		sort.Strings(currencies)
		for _, cur := range currencies {
			if priced := hourlyAWS(n, r, d, d.PricePerUnit[cur], cur); priced.HasPrice() {
				return priced
			}
		}
	}
	return r
}

func hourlyAWS(n *Normalizer, r catalog.SkuRecord, d awsPriceDimension, amount, currency string) catalog.SkuRecord {
	price, ok := decimalFrom(amount)
	if !ok {
		return r
	}
	hourly, ok := perHour(price, d.Unit)
	if !ok {
		return r
	}
	return n.price(r, hourly, currency)
}

func sortedDimensions(terms map[string]awsTerm) []awsPriceDimension {
	termCodes := lo.Keys(terms)
	sort.Strings(termCodes)

	var dims []awsPriceDimension
	for _, code := range termCodes {
		rateCodes := lo.Keys(terms[code].PriceDimensions)
		sort.Strings(rateCodes)
		for _, rc := range rateCodes {
			dims = append(dims, terms[code].PriceDimensions[rc])
		}
	}
	return dims
}
