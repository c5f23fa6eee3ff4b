package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"cloud-sku-compare/decision/catalog"
)

// StaticCatalog is a locally stored catalog: an array of objects carrying
// name/sku, vcpu, memoryGb, optional series/family and an optional hourly price.
type StaticCatalog struct {
	CatalogProvider catalog.Provider
	Entries         []any
}

func (s *StaticCatalog) Provider() catalog.Provider { return s.CatalogProvider }
func (s *StaticCatalog) Shape() Shape               { return ShapeStatic }
func (s *StaticCatalog) NextPage() string           { return "" }

func (s *StaticCatalog) records(n *Normalizer) []catalog.SkuRecord {
	out := make([]catalog.SkuRecord, 0, len(s.Entries))
	for i, raw := range s.Entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			n.drop(s, i, fmt.Errorf("entry is %T, not an object", raw))
			continue
		}
		record, err := s.record(n, entry)
		if err != nil {
			n.drop(s, i, err)
			continue
		}
		out = append(out, record)
	}
	return out
}

func (s *StaticCatalog) record(n *Normalizer, entry map[string]any) (catalog.SkuRecord, error) {
	id := firstString(entry, "name", "sku", "skuId")
	if id == "" {
		return catalog.SkuRecord{}, errors.New("entry has no name, sku or skuId")
	}

	r := catalog.SkuRecord{
		Provider: s.CatalogProvider,
		SkuID:    id,
		Series:   firstString(entry, "series", "family"),
		Region:   firstString(entry, "region"),
	}

	text := strings.Join([]string{firstString(entry, "description"), id}, " ")
	if v, ok := vcpuFrom(entry["vcpu"]); ok {
		r.VCPU = lo.ToPtr(v)
	} else if v, ok := ExtractVCPU(text); ok {
		r.VCPU = lo.ToPtr(v)
	}
	if gb, ok := ramFrom(entry["memoryGb"]); ok {
		r.RAMGB = lo.ToPtr(gb)
	} else if gb, ok := ExtractRAMGiB(text); ok {
		r.RAMGB = lo.ToPtr(gb)
	}

	if v, ok := entry["pricePerHour_"+n.conv.Target()]; ok && v != nil {
		r = n.price(r, v, n.conv.Target())
	}
	if v, ok := entry["pricePerHour"]; ok && v != nil && !r.HasPrice() {
		r = n.price(r, v, firstString(entry, "currency"))
	}
	return r, nil
}
