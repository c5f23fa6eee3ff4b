// Package units provides canonical billing units and price period conversions.
package units

import "github.com/shopspring/decimal"

// Unit represents a measurable quantity.
type Unit string

const (
	// Time units
	UnitHours  Unit = "hours"
	UnitDays   Unit = "days"
	UnitMonths Unit = "months"
)

// Billing month assumption used for every provider: 30 days of 24 hours.
const (
	HoursPerDay          = 24
	DaysPerBillingMonth  = 30
	HoursPerBillingMonth = HoursPerDay * DaysPerBillingMonth
)

var hoursPerMonth = decimal.NewFromInt(HoursPerBillingMonth)

// HourlyToMonthly calculates monthly cost from hourly.
func HourlyToMonthly(hourly decimal.Decimal) decimal.Decimal {
	return hourly.Mul(hoursPerMonth)
}

// ToHours converts a value expressed in the given time unit to hours.
func ToHours(value float64, unit Unit) float64 {
	switch unit {
	case UnitDays:
		return value * HoursPerDay
	case UnitMonths:
		return value * HoursPerBillingMonth
	default:
		return value
	}
}

// MegabytesToGB converts a MiB figure (as reported by GCP) to GB.
func MegabytesToGB(mb float64) float64 {
	return mb / 1024
}
