package statutory

import "github.com/shopspring/decimal"

// Regime resolves a regime by name. Unknown or empty names fall back to the
// default regime; the returned name is the one actually applied.
func (r Rules) Regime(name string) (string, TaxRegime) {
	if regime, ok := r.IncomeTax.Regimes[name]; ok {
		return name, regime
	}
	name = r.IncomeTax.DefaultRegime
	return name, r.IncomeTax.Regimes[name]
}

// AnnualIncomeTax computes the yearly tax including cess, unrounded.
// section80C is ignored by regimes that do not allow it and is capped at Section80CCap.
func (r Rules) AnnualIncomeTax(annualIncome decimal.Decimal, regimeName string, section80C decimal.Decimal) decimal.Decimal {
	_, regime := r.Regime(regimeName)

	taxable := annualIncome.Sub(regime.StandardDeduction)
	if regime.AllowSection80C && section80C.IsPositive() {
		taxable = taxable.Sub(decimal.Min(section80C, r.IncomeTax.Section80CCap))
	}
	if taxable.LessThanOrEqual(regime.ExemptionLimit) {
		return decimal.Zero
	}

	tax := progressive(regime.Slabs, taxable.Sub(regime.ExemptionLimit))
	return tax.Add(tax.Mul(r.IncomeTax.CessRate))
}

// MonthlyTDS is AnnualIncomeTax spread over twelve months and rounded to paise.
func (r Rules) MonthlyTDS(annualIncome decimal.Decimal, regimeName string, section80C decimal.Decimal) decimal.Decimal {
	return RoundMoney(r.AnnualIncomeTax(annualIncome, regimeName, section80C).Div(decimal.NewFromInt(12)))
}
