package billing

import "github.com/shopspring/decimal"

// ChargeCode classifies what an invoice line bills for
type ChargeCode string

const (
	ChargeRent        ChargeCode = "RENT"
	ChargeMaintenance ChargeCode = "MAINTENANCE"
	ChargeUtility     ChargeCode = "UTILITY"
	ChargeLateFee     ChargeCode = "LATE_FEE"
	ChargeOther       ChargeCode = "OTHER"
)

// IsValid checks if the charge code is known
func (c ChargeCode) IsValid() bool {
	switch c {
	case ChargeRent, ChargeMaintenance, ChargeUtility, ChargeLateFee, ChargeOther:
		return true
	}
	return false
}

// String returns the string representation of ChargeCode
func (c ChargeCode) String() string {
	return string(c)
}

// ChargeTypeLookup supplies the tax treatment for a charge code. Rates are
// reference data maintained outside this core; a code without a configured
// rate is untaxed.
type ChargeTypeLookup interface {
	TaxRate(code ChargeCode) decimal.Decimal
}

// StaticTaxRates implements ChargeTypeLookup from a fixed rate table
type StaticTaxRates map[ChargeCode]decimal.Decimal

// TaxRate returns the configured rate for the code, or zero
func (r StaticTaxRates) TaxRate(code ChargeCode) decimal.Decimal {
	if rate, ok := r[code]; ok {
		return rate
	}
	return decimal.Zero
}
