package payslip

import (
	"fmt"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/shopspring/decimal"
)

// CalculateTDS returns the monthly TDS for an annualised gross under the regime
// named in options. Unknown regimes are taxed under the default regime.
func (c *Calculator) CalculateTDS(annualGross decimal.Decimal, options payslip.CalculationOptions) (decimal.Decimal, error) {
	section80C := decimal.Zero
	if options.Section80C != nil {
		if options.Section80C.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: section 80C", payslip.ErrNegativeAmount)
		}
		section80C = *options.Section80C
	}
	return c.rules.MonthlyTDS(annualGross, options.TaxRegime, section80C), nil
}
