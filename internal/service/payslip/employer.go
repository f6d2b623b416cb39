package payslip

import (
	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/shopspring/decimal"
)

// EmployerContributions reports the employer's PF and ESIC share. These are
// informational and are not subtracted from net pay.
func (c *Calculator) EmployerContributions(earnings map[string]decimal.Decimal, grossSalary decimal.Decimal) payslip.EmployerContributions {
	var contributions payslip.EmployerContributions
	total := decimal.Zero

	if basic := earnings[payslip.EarningBasicSalary]; basic.IsPositive() {
		pf := c.providentFund(basic, c.rules.ProvidentFund.EmployerRate)
		contributions.EmployerPF = &pf
		total = total.Add(pf)
	}
	if c.esicApplies(grossSalary) {
		esic := c.esic(grossSalary, c.rules.ESIC.EmployerRate)
		contributions.EmployerESIC = &esic
		total = total.Add(esic)
	}

	contributions.Total = total
	return contributions
}
