// Package statutory holds the Indian payroll rule tables (PF, ESIC, Professional Tax
// and income tax regimes) read by the payslip calculator. A Rules value is immutable
// once built and is safe to share between goroutines.
package statutory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	RegimeOld = "old"
	RegimeNew = "new"

	StateMaharashtra = "Maharashtra"
	StateKarnataka   = "Karnataka"
	StateWestBengal  = "West Bengal"
)

// Rules is one versioned set of statutory limits and rates.
type Rules struct {
	Version         string               `yaml:"version" json:"version"`
	ProvidentFund   ProvidentFundRules   `yaml:"pf" json:"pf"`
	ESIC            ESICRules            `yaml:"esic" json:"esic"`
	ProfessionalTax ProfessionalTaxRules `yaml:"professionalTax" json:"professional_tax"`
	IncomeTax       IncomeTaxRules       `yaml:"incomeTax" json:"income_tax"`
	Earnings        EarningsRules        `yaml:"earnings" json:"earnings"`
}

type ProvidentFundRules struct {
	WageCeiling  decimal.Decimal `yaml:"wageCeiling" json:"wage_ceiling"`
	EmployeeRate decimal.Decimal `yaml:"employeeRate" json:"employee_rate"`
	EmployerRate decimal.Decimal `yaml:"employerRate" json:"employer_rate"`
}

type ESICRules struct {
	WageCeiling  decimal.Decimal `yaml:"wageCeiling" json:"wage_ceiling"`
	EmployeeRate decimal.Decimal `yaml:"employeeRate" json:"employee_rate"`
	EmployerRate decimal.Decimal `yaml:"employerRate" json:"employer_rate"`
}

// ProfessionalTaxRules maps a state name (exact, case-sensitive) to its monthly slabs.
// DefaultState is used when no state is given.
type ProfessionalTaxRules struct {
	DefaultState string            `yaml:"defaultState" json:"default_state"`
	States       map[string][]Slab `yaml:"states" json:"states"`
}

type IncomeTaxRules struct {
	DefaultRegime string               `yaml:"defaultRegime" json:"default_regime"`
	Regimes       map[string]TaxRegime `yaml:"regimes" json:"regimes"`
	CessRate      decimal.Decimal      `yaml:"cessRate" json:"cess_rate"`
	Section80CCap decimal.Decimal      `yaml:"section80CCap" json:"section_80c_cap"`
}

// TaxRegime describes one annual income tax regime. Slabs apply to the income
// above ExemptionLimit.
type TaxRegime struct {
	ExemptionLimit    decimal.Decimal `yaml:"exemptionLimit" json:"exemption_limit"`
	StandardDeduction decimal.Decimal `yaml:"standardDeduction" json:"standard_deduction"`
	AllowSection80C   bool            `yaml:"allowSection80C" json:"allow_section_80c"`
	Slabs             []Slab          `yaml:"slabs" json:"slabs"`
}

type EarningsRules struct {
	DefaultWorkingDays  int             `yaml:"defaultWorkingDays" json:"default_working_days"`
	HoursPerDay         int             `yaml:"hoursPerDay" json:"hours_per_day"`
	DefaultHRARate      decimal.Decimal `yaml:"defaultHraRate" json:"default_hra_rate"`
	DefaultOvertimeRate decimal.Decimal `yaml:"defaultOvertimeRate" json:"default_overtime_rate"`
}

// Default returns the FY2024-25 rule set.
func Default() Rules {
	return Rules{
		Version: "FY2024-25",
		ProvidentFund: ProvidentFundRules{
			WageCeiling:  decimal.NewFromInt(15000),
			EmployeeRate: decimal.RequireFromString("0.12"),
			EmployerRate: decimal.RequireFromString("0.12"),
		},
		ESIC: ESICRules{
			WageCeiling:  decimal.NewFromInt(21000),
			EmployeeRate: decimal.RequireFromString("0.0075"),
			EmployerRate: decimal.RequireFromString("0.0325"),
		},
		ProfessionalTax: ProfessionalTaxRules{
			DefaultState: StateMaharashtra,
			States: map[string][]Slab{
				StateMaharashtra: {
					{UpTo: amount(21000), Amount: decimal.Zero},
					{UpTo: amount(25000), Amount: decimal.NewFromInt(150)},
					{Amount: decimal.NewFromInt(200)},
				},
				StateKarnataka: {
					{UpTo: amount(15000), Amount: decimal.Zero},
					{UpTo: amount(20000), Amount: decimal.NewFromInt(150)},
					{Amount: decimal.NewFromInt(200)},
				},
				StateWestBengal: {
					{UpTo: amount(10000), Amount: decimal.Zero},
					{UpTo: amount(15000), Amount: decimal.NewFromInt(110)},
					{UpTo: amount(25000), Amount: decimal.NewFromInt(130)},
					{Amount: decimal.NewFromInt(200)},
				},
			},
		},
		IncomeTax: IncomeTaxRules{
			DefaultRegime: RegimeOld,
			CessRate:      decimal.RequireFromString("0.04"),
			Section80CCap: decimal.NewFromInt(150000),
			Regimes: map[string]TaxRegime{
				RegimeOld: {
					ExemptionLimit:    decimal.NewFromInt(250000),
					StandardDeduction: decimal.NewFromInt(50000),
					AllowSection80C:   true,
					Slabs: []Slab{
						{UpTo: amount(250000), Rate: decimal.RequireFromString("0.05")},
						{UpTo: amount(500000), Rate: decimal.RequireFromString("0.20")},
						{Rate: decimal.RequireFromString("0.30")},
					},
				},
				RegimeNew: {
					ExemptionLimit:    decimal.NewFromInt(300000),
					StandardDeduction: decimal.Zero,
					Slabs: []Slab{
						{UpTo: amount(300000), Rate: decimal.RequireFromString("0.05")},
						{UpTo: amount(600000), Rate: decimal.RequireFromString("0.10")},
						{UpTo: amount(900000), Rate: decimal.RequireFromString("0.15")},
						{UpTo: amount(1200000), Rate: decimal.RequireFromString("0.20")},
						{Rate: decimal.RequireFromString("0.30")},
					},
				},
			},
		},
		Earnings: EarningsRules{
			DefaultWorkingDays:  26,
			HoursPerDay:         8,
			DefaultHRARate:      decimal.RequireFromString("0.5"),
			DefaultOvertimeRate: decimal.RequireFromString("1.5"),
		},
	}
}

// Validate checks that the table is internally consistent.
func (r Rules) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("version is required")
	}
	if !r.ProvidentFund.WageCeiling.IsPositive() {
		return fmt.Errorf("pf.wageCeiling must be positive")
	}
	if !r.ESIC.WageCeiling.IsPositive() {
		return fmt.Errorf("esic.wageCeiling must be positive")
	}
	rates := map[string]decimal.Decimal{
		"pf.employeeRate":         r.ProvidentFund.EmployeeRate,
		"pf.employerRate":         r.ProvidentFund.EmployerRate,
		"esic.employeeRate":       r.ESIC.EmployeeRate,
		"esic.employerRate":       r.ESIC.EmployerRate,
		"incomeTax.cessRate":      r.IncomeTax.CessRate,
		"earnings.defaultHraRate": r.Earnings.DefaultHRARate,
	}
	for name, rate := range rates {
		if !isRate(rate) {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if r.Earnings.DefaultWorkingDays <= 0 {
		return fmt.Errorf("earnings.defaultWorkingDays must be positive")
	}
	if r.Earnings.HoursPerDay <= 0 {
		return fmt.Errorf("earnings.hoursPerDay must be positive")
	}
	if r.Earnings.DefaultOvertimeRate.IsNegative() {
		return fmt.Errorf("earnings.defaultOvertimeRate must be non-negative")
	}

	if r.ProfessionalTax.DefaultState != "" {
		if _, ok := r.ProfessionalTax.States[r.ProfessionalTax.DefaultState]; !ok {
			return fmt.Errorf("professionalTax.defaultState %q has no slabs", r.ProfessionalTax.DefaultState)
		}
	}
	for state, slabs := range r.ProfessionalTax.States {
		if err := validateSlabs(slabs); err != nil {
			return fmt.Errorf("professionalTax.states[%s]: %w", state, err)
		}
	}

	if _, ok := r.IncomeTax.Regimes[r.IncomeTax.DefaultRegime]; !ok {
		return fmt.Errorf("incomeTax.defaultRegime %q is not defined", r.IncomeTax.DefaultRegime)
	}
	if r.IncomeTax.Section80CCap.IsNegative() {
		return fmt.Errorf("incomeTax.section80CCap must be non-negative")
	}
	for name, regime := range r.IncomeTax.Regimes {
		if regime.ExemptionLimit.IsNegative() || regime.StandardDeduction.IsNegative() {
			return fmt.Errorf("incomeTax.regimes[%s]: limits must be non-negative", name)
		}
		if err := validateSlabs(regime.Slabs); err != nil {
			return fmt.Errorf("incomeTax.regimes[%s]: %w", name, err)
		}
		for _, s := range regime.Slabs {
			if !isRate(s.Rate) {
				return fmt.Errorf("incomeTax.regimes[%s]: slab rate must be between 0 and 1", name)
			}
		}
	}
	return nil
}

// RoundMoney rounds to paise, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func isRate(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
