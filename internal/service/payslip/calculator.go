package payslip

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/amountwords"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/statutory"
	"github.com/shopspring/decimal"
)

// Calculator is the payslip calculation engine. It only reads its rule table, so a
// single Calculator can serve any number of goroutines.
type Calculator struct {
	rules   statutory.Rules
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

type CalculatorOption func(*Calculator)

// WithBulkWorkers bounds how many employees CalculateBulk processes at once.
func WithBulkWorkers(n int) CalculatorOption {
	return func(c *Calculator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithClock overrides the source of CalculationDate.
func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCalculator(rules statutory.Rules, logger *slog.Logger, opts ...CalculatorOption) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Calculator{
		rules:   rules,
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Rules() statutory.Rules {
	return c.rules
}

// CalculatePayslip computes one payslip. It never panics or returns an error:
// any failure yields Success=false with zeroed amounts and the failure in Error.
func (c *Calculator) CalculatePayslip(
	employee payslip.EmployeeData,
	structure payslip.SalaryStructure,
	attendance payslip.AttendanceRecord,
	options payslip.CalculationOptions,
) (result payslip.CalculationResult) {
	calculatedAt := c.now()

	defer func() {
		if r := recover(); r != nil {
			result = c.failure(employee, fmt.Errorf("unexpected error: %v", r), calculatedAt)
		}
	}()

	result, err := c.calculate(structure, attendance, options)
	if err != nil {
		return c.failure(employee, err, calculatedAt)
	}
	result.CalculationDate = calculatedAt
	return result
}

func (c *Calculator) calculate(
	structure payslip.SalaryStructure,
	attendance payslip.AttendanceRecord,
	options payslip.CalculationOptions,
) (payslip.CalculationResult, error) {
	summary, err := c.resolveAttendance(attendance)
	if err != nil {
		return payslip.CalculationResult{}, err
	}
	if err := checkInputs(structure, attendance, options); err != nil {
		return payslip.CalculationResult{}, err
	}

	earnings, err := c.ComputeEarnings(structure, summary.TotalWorkingDays, summary.PayableDays, summary.OvertimeHours, options)
	if err != nil {
		return payslip.CalculationResult{}, err
	}
	gross := sumAmounts(earnings)

	deductions, err := c.ComputeDeductions(earnings, gross, structure, options)
	if err != nil {
		return payslip.CalculationResult{}, err
	}
	totalDeductions := sumAmounts(deductions)
	netPay := assembleNetPay(gross, totalDeductions)

	return payslip.CalculationResult{
		Success:               true,
		Earnings:              earnings,
		Deductions:            deductions,
		GrossSalary:           gross,
		TotalDeductions:       totalDeductions,
		NetPay:                netPay,
		NetPayInWords:         amountwords.Rupees(netPay),
		AttendanceSummary:     summary,
		CalculationMetadata:   c.metadata(earnings, gross, options),
		EmployerContributions: c.EmployerContributions(earnings, gross),
	}, nil
}

// resolveAttendance applies attendance defaults. Payable days are the present
// days (falling back to paid days, then to the full month) clamped to [0, total].
func (c *Calculator) resolveAttendance(a payslip.AttendanceRecord) (payslip.AttendanceSummary, error) {
	total := c.rules.Earnings.DefaultWorkingDays
	if a.TotalWorkingDays != nil {
		total = *a.TotalWorkingDays
	}
	if total <= 0 {
		return payslip.AttendanceSummary{}, fmt.Errorf("%w: got %d", payslip.ErrInvalidWorkingDays, total)
	}

	present := total
	switch {
	case a.PresentDays != nil:
		present = *a.PresentDays
	case a.PaidDays != nil:
		present = *a.PaidDays
	}

	payable := min(present, total)
	payable = max(payable, 0)

	return payslip.AttendanceSummary{
		TotalWorkingDays: total,
		PresentDays:      present,
		PayableDays:      payable,
		LOPDays:          a.LOPDays,
		OvertimeHours:    a.OvertimeHours,
		WeeklyOffs:       a.WeeklyOffs,
		Holidays:         a.Holidays,
	}, nil
}

// checkInputs rejects reserved extension keys and negative amounts before any
// line is computed.
func checkInputs(s payslip.SalaryStructure, a payslip.AttendanceRecord, o payslip.CalculationOptions) error {
	for key := range o.OtherEarnings {
		if payslip.IsReservedEarningKey(key) {
			return fmt.Errorf("%w: other earning %q", payslip.ErrReservedComponentKey, key)
		}
	}
	for key := range o.OtherDeductions {
		if payslip.IsReservedDeductionKey(key) {
			return fmt.Errorf("%w: other deduction %q", payslip.ErrReservedComponentKey, key)
		}
	}

	amounts := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"HRA", s.HRA},
		{"HRA rate", s.HRARate},
		{"allowances", s.Allowances.Flat},
		{"structure loan deduction", s.LoanDeduction},
		{"overtime hours", &a.OvertimeHours},
		{"overtime rate", o.OvertimeRate},
		{"bonus", o.Bonus},
		{"arrears", o.Arrears},
		{"section 80C", o.Section80C},
		{"loan deduction", o.LoanDeduction},
	}
	for _, amt := range amounts {
		if amt.value != nil && amt.value.IsNegative() {
			return fmt.Errorf("%w: %s", payslip.ErrNegativeAmount, amt.name)
		}
	}

	for _, na := range payslip.NamedAllowances {
		if v, ok := s.Allowance(na.Name); ok && v.IsNegative() {
			return fmt.Errorf("%w: %s allowance", payslip.ErrNegativeAmount, na.Name)
		}
	}
	for _, key := range payslip.FixedDeductionKeys {
		if v, ok := s.FixedDeduction(key); ok && v.IsNegative() {
			return fmt.Errorf("%w: %s", payslip.ErrNegativeAmount, key)
		}
	}
	for name, v := range o.OtherEarnings {
		if v.IsNegative() {
			return fmt.Errorf("%w: other earning %q", payslip.ErrNegativeAmount, name)
		}
	}
	for name, v := range o.OtherDeductions {
		if v.IsNegative() {
			return fmt.Errorf("%w: other deduction %q", payslip.ErrNegativeAmount, name)
		}
	}
	return nil
}

func (c *Calculator) metadata(earnings map[string]decimal.Decimal, gross decimal.Decimal, o payslip.CalculationOptions) payslip.CalculationMetadata {
	regime, _ := c.rules.Regime(o.TaxRegime)
	state := o.State
	if state == "" {
		state = c.rules.ProfessionalTax.DefaultState
	}
	return payslip.CalculationMetadata{
		RulesVersion:    c.rules.Version,
		PFWageCeiling:   c.rules.ProvidentFund.WageCeiling,
		PFApplied:       !o.SkipPF && earnings[payslip.EarningBasicSalary].IsPositive(),
		ESICWageCeiling: c.rules.ESIC.WageCeiling,
		ESICApplied:     !o.SkipESIC && c.esicApplies(gross),
		TaxRegime:       regime,
		State:           state,
	}
}

// assembleNetPay clamps at zero so deductions never produce a negative payslip.
func assembleNetPay(gross, totalDeductions decimal.Decimal) decimal.Decimal {
	net := statutory.RoundMoney(gross.Sub(totalDeductions))
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

func sumAmounts(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return statutory.RoundMoney(total)
}

func (c *Calculator) failure(employee payslip.EmployeeData, err error, at time.Time) payslip.CalculationResult {
	c.logger.Warn("Payslip calculation failed", "employee_id", employee.ID, "error", err)

	return payslip.CalculationResult{
		Success:         false,
		Earnings:        map[string]decimal.Decimal{},
		Deductions:      map[string]decimal.Decimal{},
		GrossSalary:     decimal.Zero,
		TotalDeductions: decimal.Zero,
		NetPay:          decimal.Zero,
		CalculationDate: at,
		Error:           err.Error(),
	}
}
