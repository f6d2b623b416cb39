package payslip

import (
	"fmt"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/statutory"
	"github.com/shopspring/decimal"
)

// ComputeEarnings builds the earnings breakdown for one pay period. Monthly
// components are prorated by payableDays/totalWorkingDays; bonus, arrears and
// other earnings are taken as given. Allowances that are not configured are
// left out of the map rather than reported as zero.
func (c *Calculator) ComputeEarnings(
	structure payslip.SalaryStructure,
	totalWorkingDays, payableDays int,
	overtimeHours decimal.Decimal,
	options payslip.CalculationOptions,
) (map[string]decimal.Decimal, error) {
	if totalWorkingDays <= 0 {
		return nil, fmt.Errorf("%w: got %d", payslip.ErrInvalidWorkingDays, totalWorkingDays)
	}

	total := decimal.NewFromInt(int64(totalWorkingDays))
	payable := decimal.NewFromInt(int64(payableDays))
	prorate := func(monthly decimal.Decimal) decimal.Decimal {
		return statutory.RoundMoney(monthly.Mul(payable).Div(total))
	}

	earnings := make(map[string]decimal.Decimal)
	earnings[payslip.EarningBasicSalary] = prorate(structure.BasicSalary)
	earnings[payslip.EarningHRA] = prorate(c.monthlyHRA(structure))

	for _, a := range payslip.NamedAllowances {
		if v, ok := structure.Allowance(a.Name); ok {
			earnings[a.EarningKey] = prorate(v)
		}
	}
	if structure.Allowances.Flat != nil {
		earnings[payslip.EarningAllowances] = prorate(*structure.Allowances.Flat)
	}

	if overtimeHours.IsPositive() {
		earnings[payslip.EarningOvertimePay] = c.overtimePay(structure.BasicSalary, totalWorkingDays, overtimeHours, options.OvertimeRate)
	}

	if options.Bonus != nil {
		earnings[payslip.EarningBonus] = statutory.RoundMoney(*options.Bonus)
	}
	if options.Arrears != nil {
		earnings[payslip.EarningArrears] = statutory.RoundMoney(*options.Arrears)
	}
	for name, amount := range options.OtherEarnings {
		earnings[name] = statutory.RoundMoney(amount)
	}

	return earnings, nil
}

// monthlyHRA is the configured HRA, or the HRA rate (structure or rule default)
// applied to basic salary.
func (c *Calculator) monthlyHRA(s payslip.SalaryStructure) decimal.Decimal {
	if s.HRA != nil {
		return *s.HRA
	}
	rate := c.rules.Earnings.DefaultHRARate
	if s.HRARate != nil {
		rate = *s.HRARate
	}
	return s.BasicSalary.Mul(rate)
}

// overtimePay is hours x hourly basic x multiplier, where the hourly basic is the
// monthly basic spread over the working days and the standard hours per day.
func (c *Calculator) overtimePay(basic decimal.Decimal, totalWorkingDays int, hours decimal.Decimal, rate *decimal.Decimal) decimal.Decimal {
	multiplier := c.rules.Earnings.DefaultOvertimeRate
	if rate != nil {
		multiplier = *rate
	}
	hoursInMonth := decimal.NewFromInt(int64(totalWorkingDays * c.rules.Earnings.HoursPerDay))
	return statutory.RoundMoney(hours.Mul(basic).Mul(multiplier).Div(hoursInMonth))
}
