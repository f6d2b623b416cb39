package payslip

import (
	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/statutory"
	"github.com/shopspring/decimal"
)

// ComputeDeductions builds the employee deductions for one pay period. Statutory
// lines (PF, ESIC, PT, TDS) are always reported, as zero when they do not apply,
// unless switched off through the Skip options.
func (c *Calculator) ComputeDeductions(
	earnings map[string]decimal.Decimal,
	grossSalary decimal.Decimal,
	structure payslip.SalaryStructure,
	options payslip.CalculationOptions,
) (map[string]decimal.Decimal, error) {
	deductions := make(map[string]decimal.Decimal)

	if !options.SkipPF {
		deductions[payslip.DeductionProvidentFund] = c.providentFund(earnings[payslip.EarningBasicSalary], c.rules.ProvidentFund.EmployeeRate)
	}
	if !options.SkipESIC {
		deductions[payslip.DeductionESIC] = c.esic(grossSalary, c.rules.ESIC.EmployeeRate)
	}
	if !options.SkipPT {
		if options.State != "" && !c.rules.HasProfessionalTaxState(options.State) {
			c.logger.Warn("No professional tax table for state, charging none", "state", options.State)
		}
		deductions[payslip.DeductionProfessionalTax] = c.rules.MonthlyProfessionalTax(grossSalary, options.State)
	}
	if !options.SkipTDS {
		tds, err := c.CalculateTDS(grossSalary.Mul(decimal.NewFromInt(12)), options)
		if err != nil {
			return nil, err
		}
		deductions[payslip.DeductionTDS] = tds
	}

	loan := structure.LoanDeduction
	if loan == nil {
		loan = options.LoanDeduction
	}
	if loan != nil {
		deductions[payslip.DeductionLoan] = statutory.RoundMoney(*loan)
	}

	for _, key := range payslip.FixedDeductionKeys {
		if v, ok := structure.FixedDeduction(key); ok {
			deductions[key] = statutory.RoundMoney(v)
		}
	}

	for name, amount := range options.OtherDeductions {
		deductions[name] = statutory.RoundMoney(amount)
	}

	return deductions, nil
}

// providentFund applies rate to basic salary capped at the PF wage ceiling.
func (c *Calculator) providentFund(basic, rate decimal.Decimal) decimal.Decimal {
	if !basic.IsPositive() {
		return decimal.Zero
	}
	wage := decimal.Min(basic, c.rules.ProvidentFund.WageCeiling)
	return statutory.RoundMoney(wage.Mul(rate))
}

// esicApplies is true up to and including the ESIC wage ceiling.
func (c *Calculator) esicApplies(gross decimal.Decimal) bool {
	return gross.LessThanOrEqual(c.rules.ESIC.WageCeiling)
}

func (c *Calculator) esic(gross, rate decimal.Decimal) decimal.Decimal {
	if !c.esicApplies(gross) {
		return decimal.Zero
	}
	return statutory.RoundMoney(gross.Mul(rate))
}
