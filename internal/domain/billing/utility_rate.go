package billing

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UtilityKind identifies the metered service a rate plan prices
type UtilityKind string

const (
	UtilityElectricity UtilityKind = "ELECTRICITY"
	UtilityWater       UtilityKind = "WATER"
	UtilityGas         UtilityKind = "GAS"
)

// IsValid checks if the utility kind is known
func (k UtilityKind) IsValid() bool {
	switch k {
	case UtilityElectricity, UtilityWater, UtilityGas:
		return true
	}
	return false
}

// String returns the string representation of UtilityKind
func (k UtilityKind) String() string {
	return string(k)
}

// RateSlab is one consumption tier of a rate plan. UpperBound is inclusive;
// the final slab of a plan leaves it nil, meaning unlimited. FixedCharge is
// levied once whenever any units land in the slab, on top of the per-unit
// rate (tier minimums, connection fees).
type RateSlab struct {
	ID          uuid.UUID
	RatePlanID  uuid.UUID
	UpperBound  *decimal.Decimal
	UnitRate    decimal.Decimal
	FixedCharge decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UtilityRatePlan is the aggregate root for a tiered utility tariff.
// Slabs partition the consumption axis from zero upward: each slab covers
// the units above the previous slab's bound up to and including its own.
type UtilityRatePlan struct {
	shared.TenantAggregateRoot
	Name        string
	UtilityKind UtilityKind
	UnitLabel   string
	Active      bool
	Slabs       []RateSlab `gorm:"foreignKey:RatePlanID"`
}

// SlabInput describes one tier when building a plan
type SlabInput struct {
	UpperBound  *decimal.Decimal
	UnitRate    decimal.Decimal
	FixedCharge decimal.Decimal
}

// NewUtilityRatePlan creates a validated rate plan. The slab set must be
// non-empty, strictly increasing in bounds, non-negative in rates, and end
// in exactly one unlimited slab.
func NewUtilityRatePlan(tenantID uuid.UUID, name string, kind UtilityKind, unitLabel string, slabs []SlabInput) (*UtilityRatePlan, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PLAN_NAME", "Rate plan name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_KIND", "Unknown utility kind")
	}
	if err := validateSlabs(slabs); err != nil {
		return nil, err
	}

	plan := &UtilityRatePlan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		UtilityKind:         kind,
		UnitLabel:           unitLabel,
		Active:              true,
		Slabs:               make([]RateSlab, 0, len(slabs)),
	}

	now := time.Now()
	for _, in := range slabs {
		plan.Slabs = append(plan.Slabs, RateSlab{
			ID:          uuid.New(),
			RatePlanID:  plan.ID,
			UpperBound:  in.UpperBound,
			UnitRate:    in.UnitRate,
			FixedCharge: in.FixedCharge,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	sortSlabs(plan.Slabs)

	return plan, nil
}

func validateSlabs(slabs []SlabInput) error {
	if len(slabs) == 0 {
		return ErrInvalidRatePlan
	}

	unlimited := 0
	for _, s := range slabs {
		if s.UnitRate.IsNegative() || s.FixedCharge.IsNegative() {
			return ErrInvalidRatePlan
		}
		if s.UpperBound == nil {
			unlimited++
		} else if !s.UpperBound.IsPositive() {
			return ErrInvalidRatePlan
		}
	}
	if unlimited != 1 {
		return ErrInvalidRatePlan
	}

	bounded := make([]decimal.Decimal, 0, len(slabs)-1)
	for _, s := range slabs {
		if s.UpperBound != nil {
			bounded = append(bounded, *s.UpperBound)
		}
	}
	sort.Slice(bounded, func(i, j int) bool { return bounded[i].LessThan(bounded[j]) })
	for i := 1; i < len(bounded); i++ {
		if !bounded[i-1].LessThan(bounded[i]) {
			return ErrInvalidRatePlan
		}
	}

	return nil
}

// sortSlabs orders slabs by bound ascending with the unlimited slab last
func sortSlabs(slabs []RateSlab) {
	sort.Slice(slabs, func(i, j int) bool {
		if slabs[i].UpperBound == nil {
			return false
		}
		if slabs[j].UpperBound == nil {
			return true
		}
		return slabs[i].UpperBound.LessThan(*slabs[j].UpperBound)
	})
}

// Deactivate retires the plan from further statement pricing
func (p *UtilityRatePlan) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// ChargeFor prices a consumption amount against the plan's tiers. Each tier
// charges its own rate on the units falling within it, plus its fixed charge
// when it receives any units at all; consumption landing exactly on a slab
// bound is priced entirely by that slab, never the next one. The result is
// rounded to 2 decimal places.
func (p *UtilityRatePlan) ChargeFor(consumption decimal.Decimal) (decimal.Decimal, error) {
	if consumption.IsNegative() {
		return decimal.Zero, ErrNegativeConsumption
	}

	total := decimal.Zero
	previous := decimal.Zero
	remaining := consumption

	for _, slab := range p.Slabs {
		if remaining.IsZero() {
			break
		}

		var width decimal.Decimal
		if slab.UpperBound == nil {
			width = remaining
		} else {
			width = slab.UpperBound.Sub(previous)
			if width.GreaterThan(remaining) {
				width = remaining
			}
			previous = *slab.UpperBound
		}

		total = total.Add(width.Mul(slab.UnitRate)).Add(slab.FixedCharge)
		remaining = remaining.Sub(width)
	}

	return total.Round(2), nil
}
