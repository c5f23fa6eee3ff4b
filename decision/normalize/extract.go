package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"cloud-sku-compare/pkg/units"
)

// Text extraction is heuristic: it reads figures out of provider descriptions such as
// "D4s v3 4 vCPU 16 GiB" and is only consulted when no explicit attribute exists.
var (
	vcpuPattern = regexp.MustCompile(`(?i)(?:^|[^\d.])(\d+(?:\.\d+)?)\s*vcpus?\b`)
	ramPattern  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*gib\b`)
	unitPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)?\s*/?\s*([a-zA-Z]+)`)
)

// ExtractVCPU finds the first number immediately followed by "vCPU" in text.
// Fractional counts such as "0.25 vCPU" (shared-core sizes) are reported as absent.
func ExtractVCPU(text string) (int, bool) {
	m := vcpuPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ExtractRAMGiB finds the first number immediately followed by "GiB" in text.
func ExtractRAMGiB(text string) (float64, bool) {
	m := ramPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	gb, err := strconv.ParseFloat(m[1], 64)
	if err != nil || gb < 0 {
		return 0, false
	}
	return gb, true
}

// numberFrom reads a number out of a loosely typed value (JSON, YAML or string).
func numberFrom(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// vcpuFrom accepts only positive integral values.
func vcpuFrom(v any) (int, bool) {
	f, ok := numberFrom(v)
	if !ok || f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func ramFrom(v any) (float64, bool) {
	f, ok := numberFrom(v)
	if !ok || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func decimalFrom(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	}
	f, ok := numberFrom(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// perHour rescales a price quoted per unitText ("1 Hour", "Hrs", "h", "1/Day",
// "1/Month") into a price per hour. Unknown units yield false.
func perHour(price decimal.Decimal, unitText string) (decimal.Decimal, bool) {
	if strings.TrimSpace(unitText) == "" {
		return price, true
	}
	m := unitPattern.FindStringSubmatch(unitText)
	if m == nil {
		return decimal.Zero, false
	}
	qty := 1.0
	if m[1] != "" {
		q, err := strconv.ParseFloat(m[1], 64)
		if err != nil || q <= 0 {
			return decimal.Zero, false
		}
		qty = q
	}

	var unit units.Unit
	switch strings.ToLower(m[2]) {
	case "h", "hr", "hrs", "hour", "hours":
		unit = units.UnitHours
	case "d", "day", "days":
		unit = units.UnitDays
	case "mo", "month", "months":
		unit = units.UnitMonths
	default:
		return decimal.Zero, false
	}
	hours := units.ToHours(qty, unit)
	return price.Div(decimal.NewFromFloat(hours)), true
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
