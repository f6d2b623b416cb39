package statutory

import "github.com/shopspring/decimal"

// MonthlyProfessionalTax returns the monthly PT for a gross salary. An empty state
// uses DefaultState. A state with no slab table (including a case mismatch) pays
// nothing, per the "any other state: 0" row of the PT table; only an unset state
// falls back to Maharashtra.
func (r Rules) MonthlyProfessionalTax(gross decimal.Decimal, state string) decimal.Decimal {
	if state == "" {
		state = r.ProfessionalTax.DefaultState
	}
	slabs, ok := r.ProfessionalTax.States[state]
	if !ok {
		return decimal.Zero
	}
	return RoundMoney(lookup(slabs, gross).Amount)
}

// HasProfessionalTaxState reports whether a slab table exists for state.
func (r Rules) HasProfessionalTaxState(state string) bool {
	_, ok := r.ProfessionalTax.States[state]
	return ok
}
