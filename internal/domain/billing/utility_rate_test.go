package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// threeTierPlan: up to 100 units at 0.05, 100-200 at 0.075, above 200 at 0.10
func threeTierPlan(t *testing.T) *UtilityRatePlan {
	t.Helper()
	plan, err := NewUtilityRatePlan(uuid.New(), "Residential electricity", UtilityElectricity, "kWh", []SlabInput{
		{UpperBound: decPtr("100"), UnitRate: dec("0.05")},
		{UpperBound: decPtr("200"), UnitRate: dec("0.075")},
		{UpperBound: nil, UnitRate: dec("0.10")},
	})
	require.NoError(t, err)
	return plan
}

func TestNewUtilityRatePlan(t *testing.T) {
	t.Run("valid plan sorts slabs ascending", func(t *testing.T) {
		plan, err := NewUtilityRatePlan(uuid.New(), "Water", UtilityWater, "kL", []SlabInput{
			{UpperBound: nil, UnitRate: dec("3.00")},
			{UpperBound: decPtr("10"), UnitRate: dec("1.00")},
			{UpperBound: decPtr("20"), UnitRate: dec("2.00")},
		})

		require.NoError(t, err)
		require.Len(t, plan.Slabs, 3)
		assert.True(t, plan.Slabs[0].UpperBound.Equal(dec("10")))
		assert.True(t, plan.Slabs[1].UpperBound.Equal(dec("20")))
		assert.Nil(t, plan.Slabs[2].UpperBound)
	})

	invalid := []struct {
		name  string
		slabs []SlabInput
	}{
		{name: "empty slab set", slabs: nil},
		{
			name: "no unlimited slab",
			slabs: []SlabInput{
				{UpperBound: decPtr("100"), UnitRate: dec("0.05")},
			},
		},
		{
			name: "two unlimited slabs",
			slabs: []SlabInput{
				{UpperBound: nil, UnitRate: dec("0.05")},
				{UpperBound: nil, UnitRate: dec("0.10")},
			},
		},
		{
			name: "duplicate bound",
			slabs: []SlabInput{
				{UpperBound: decPtr("100"), UnitRate: dec("0.05")},
				{UpperBound: decPtr("100"), UnitRate: dec("0.075")},
				{UpperBound: nil, UnitRate: dec("0.10")},
			},
		},
		{
			name: "negative rate",
			slabs: []SlabInput{
				{UpperBound: decPtr("100"), UnitRate: dec("-0.05")},
				{UpperBound: nil, UnitRate: dec("0.10")},
			},
		},
		{
			name: "zero bound",
			slabs: []SlabInput{
				{UpperBound: decPtr("0"), UnitRate: dec("0.05")},
				{UpperBound: nil, UnitRate: dec("0.10")},
			},
		},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUtilityRatePlan(uuid.New(), "Bad plan", UtilityElectricity, "kWh", tt.slabs)
			assert.ErrorIs(t, err, ErrInvalidRatePlan)
		})
	}
}

func TestUtilityRatePlanChargeFor(t *testing.T) {
	plan := threeTierPlan(t)

	tests := []struct {
		name        string
		consumption string
		want        string
	}{
		{name: "zero consumption", consumption: "0", want: "0"},
		{name: "inside first tier", consumption: "60", want: "3.00"},
		{name: "exactly on first bound stays in first tier", consumption: "100", want: "5.00"},
		{name: "just over first bound", consumption: "101", want: "5.08"},
		{name: "exactly on second bound", consumption: "200", want: "12.50"},
		{name: "spans all three tiers", consumption: "250", want: "17.50"},
		{name: "fractional units", consumption: "150.5", want: "8.79"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := plan.ChargeFor(dec(tt.consumption))
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}

	t.Run("negative consumption", func(t *testing.T) {
		_, err := plan.ChargeFor(dec("-1"))
		assert.ErrorIs(t, err, ErrNegativeConsumption)
	})

	t.Run("charge never decreases with consumption", func(t *testing.T) {
		previous := decimal.Zero
		for units := int64(0); units <= 300; units += 10 {
			charge, err := plan.ChargeFor(decimal.NewFromInt(units))
			require.NoError(t, err)
			assert.True(t, charge.GreaterThanOrEqual(previous), "charge dropped at %d units", units)
			previous = charge
		}
	})
}

func TestUtilityRatePlanFixedCharges(t *testing.T) {
	// 5.00 connection fee on the first tier, 2.50 minimum on the second.
	plan, err := NewUtilityRatePlan(uuid.New(), "Gas with connection fee", UtilityGas, "m3", []SlabInput{
		{UpperBound: decPtr("100"), UnitRate: dec("0.05"), FixedCharge: dec("5.00")},
		{UpperBound: decPtr("200"), UnitRate: dec("0.075"), FixedCharge: dec("2.50")},
		{UpperBound: nil, UnitRate: dec("0.10")},
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		consumption string
		want        string
	}{
		{name: "zero consumption levies nothing", consumption: "0", want: "0"},
		{name: "first tier adds its fee once", consumption: "60", want: "8.00"},
		{name: "exactly on first bound stays in first tier", consumption: "100", want: "10.00"},
		{name: "entering second tier adds both fees", consumption: "101", want: "12.58"},
		{name: "spanning all tiers adds every entered fee", consumption: "250", want: "25.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := plan.ChargeFor(dec(tt.consumption))
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}

	t.Run("negative fixed charge is rejected", func(t *testing.T) {
		_, err := NewUtilityRatePlan(uuid.New(), "Bad plan", UtilityGas, "m3", []SlabInput{
			{UpperBound: decPtr("100"), UnitRate: dec("0.05"), FixedCharge: dec("-1")},
			{UpperBound: nil, UnitRate: dec("0.10")},
		})
		assert.ErrorIs(t, err, ErrInvalidRatePlan)
	})
}
