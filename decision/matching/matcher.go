// Package matching ranks SKU records by how closely they fit a vCPU/RAM requirement.
//
// The score is |vcpu - required vcpu| + |ram - required ram| / RAMWeight, so one vCPU
// of mismatch costs as much as RAMWeight GB of RAM mismatch. Lower is better.
package matching

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"cloud-sku-compare/decision/catalog"
)

// RAMWeight divides the RAM gap in the distance score.
const RAMWeight = 4.0

// Match is an eligible record together with its distance score.
type Match struct {
	Record   catalog.SkuRecord `json:"record"`
	Distance float64           `json:"distance"`
}

// Distance scores an eligible record against req. The second result is false when
// the record lacks vCPU or RAM and cannot be scored.
func Distance(record catalog.SkuRecord, req catalog.Requirement) (float64, bool) {
	if !record.Eligible() {
		return 0, false
	}
	cpuGap := math.Abs(float64(*record.VCPU - req.VCPU))
	ramGap := math.Abs(*record.RAMGB - req.RAMGB)
	return cpuGap + ramGap/RAMWeight, true
}

// Rank returns every eligible record ordered by ascending distance. Records with equal
// scores keep their catalog order.
func Rank(records []catalog.SkuRecord, req catalog.Requirement) []Match {
	eligible := lo.Filter(records, func(r catalog.SkuRecord, _ int) bool {
		return r.Eligible()
	})

	matches := make([]Match, 0, len(eligible))
	for _, r := range eligible {
		d, _ := Distance(r, req)
		matches = append(matches, Match{Record: r, Distance: d})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}

// TopMatchesScored returns the n best matches with their scores.
func TopMatchesScored(records []catalog.SkuRecord, req catalog.Requirement, n int) []Match {
	if n <= 0 {
		return []Match{}
	}
	ranked := Rank(records, req)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopMatches returns up to n records, best first.
func TopMatches(records []catalog.SkuRecord, vcpuRequired int, ramRequired float64, n int) []catalog.SkuRecord {
	req := catalog.Requirement{VCPU: vcpuRequired, RAMGB: ramRequired}
	return lo.Map(TopMatchesScored(records, req, n), func(m Match, _ int) catalog.SkuRecord {
		return m.Record
	})
}

// BestMatch returns the single closest record, if any record is eligible.
func BestMatch(records []catalog.SkuRecord, vcpuRequired int, ramRequired float64) (catalog.SkuRecord, bool) {
	top := TopMatches(records, vcpuRequired, ramRequired, 1)
	if len(top) == 0 {
		return catalog.SkuRecord{}, false
	}
	return top[0], true
}
