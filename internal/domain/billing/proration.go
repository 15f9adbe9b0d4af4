package billing

import (
	"time"

	"github.com/propman/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

// daysInMonth returns the number of calendar days in the month of t
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
}

// isFullMonth reports whether [from, to] spans the whole calendar month,
// i.e. from is the first day and to is the last day of the same month.
func isFullMonth(from, to time.Time) bool {
	if from.Year() != to.Year() || from.Month() != to.Month() {
		return false
	}
	return from.Day() == 1 && to.Day() == daysInMonth(from)
}

// occupiedDays counts the days in the inclusive [from, to] range
func occupiedDays(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

// Prorate charges a monthly amount for the inclusive [from, to] occupancy
// range under the given method. Both dates must fall inside the same calendar
// month. The range is inclusive on both ends, so to == from charges one day
// and a zero-day occupancy has no representation here; callers that bill
// nothing (a lease ending before the period starts) resolve that before
// calling and never reach proration. A range covering the entire month
// always yields exactly the monthly amount regardless of method, so no
// rounding drift can appear on full months. Partial amounts are rounded to
// 2 decimal places, half up.
func Prorate(monthly decimal.Decimal, from, to time.Time, method leasing.ProrationMethod) (decimal.Decimal, error) {
	if to.Before(from) {
		return decimal.Zero, ErrInvalidProrationRange
	}
	if from.Year() != to.Year() || from.Month() != to.Month() {
		return decimal.Zero, ErrInvalidProrationRange
	}
	if !method.IsValid() {
		return decimal.Zero, ErrInvalidProrationRange
	}

	if isFullMonth(from, to) {
		return monthly, nil
	}

	days := occupiedDays(from, to)

	var denominator int
	switch method {
	case leasing.ProrationActualDays:
		denominator = daysInMonth(from)
	case leasing.ProrationFixedThirty:
		denominator = 30
		// A 31st day of occupancy adds nothing under the fixed-30 convention.
		if days > 30 {
			days = 30
		}
	}

	return monthly.
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(int64(denominator))).
		Round(2), nil
}
