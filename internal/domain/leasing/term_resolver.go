package leasing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ResolveTerm returns the unique term whose [EffectiveFrom, EffectiveTo)
// interval contains the given date. History rows are append-only, so
// resolution is by interval containment, never by "latest created".
func ResolveTerm(terms []LeaseTerm, date time.Time) (*LeaseTerm, error) {
	sorted := make([]LeaseTerm, len(terms))
	copy(sorted, terms)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})

	for idx := range sorted {
		if sorted[idx].Contains(date) {
			term := sorted[idx]
			return &term, nil
		}
	}
	return nil, ErrNoTermFound
}

// EscalatedRent computes the rent effective on the given date under the
// term's escalation rule. It is a pure function: escalated terms are only
// materialized as new LeaseTerm rows by an explicit administrative action.
func EscalatedRent(term *LeaseTerm, date time.Time) decimal.Decimal {
	if term.EscalationType == EscalationNone || term.EscalationIntervalMonths <= 0 {
		return term.MonthlyRent
	}

	intervals := monthsBetween(term.EffectiveFrom, date) / term.EscalationIntervalMonths
	if intervals <= 0 {
		return term.MonthlyRent
	}

	switch term.EscalationType {
	case EscalationPercentage:
		factor := decimal.NewFromInt(1).Add(term.EscalationValue.Div(decimal.NewFromInt(100)))
		return term.MonthlyRent.Mul(factor.Pow(decimal.NewFromInt(int64(intervals)))).Round(2)
	case EscalationFixed:
		return term.MonthlyRent.Add(term.EscalationValue.Mul(decimal.NewFromInt(int64(intervals))))
	}
	return term.MonthlyRent
}

// monthsBetween returns the number of whole calendar months from a to b.
// Returns 0 when b is before a.
func monthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := int(b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
