package payslip

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical earning keys
const (
	EarningBasicSalary            = "basicSalary"
	EarningHRA                    = "hra"
	EarningTransportAllowance     = "transportAllowance"
	EarningMedicalAllowance       = "medicalAllowance"
	EarningFoodAllowance          = "foodAllowance"
	EarningCommunicationAllowance = "communicationAllowance"
	EarningSpecialAllowance       = "specialAllowance"
	EarningOtherAllowance         = "otherAllowance"
	EarningAllowances             = "allowances"
	EarningOvertimePay            = "overtimePay"
	EarningBonus                  = "bonus"
	EarningArrears                = "arrears"
)

// Canonical deduction keys
const (
	DeductionProvidentFund   = "providentFund"
	DeductionESIC            = "esic"
	DeductionProfessionalTax = "professionalTax"
	DeductionTDS             = "tds"
	DeductionLoan            = "loanDeduction"
	DeductionMedicalPremium  = "medicalPremium"
	DeductionNPS             = "nps"
	DeductionVoluntaryPF     = "voluntaryPF"
)

// NamedAllowance pairs an allowance name accepted in SalaryStructure.Allowances
// with the earning key it is reported under.
type NamedAllowance struct {
	Name       string
	EarningKey string
}

// NamedAllowances is ordered the way allowances appear on a payslip.
var NamedAllowances = []NamedAllowance{
	{Name: "transport", EarningKey: EarningTransportAllowance},
	{Name: "medical", EarningKey: EarningMedicalAllowance},
	{Name: "food", EarningKey: EarningFoodAllowance},
	{Name: "communication", EarningKey: EarningCommunicationAllowance},
	{Name: "special", EarningKey: EarningSpecialAllowance},
	{Name: "other", EarningKey: EarningOtherAllowance},
}

// FixedDeductionKeys are the recurring deductions a salary structure may carry.
var FixedDeductionKeys = []string{DeductionMedicalPremium, DeductionNPS, DeductionVoluntaryPF}

var earningKeys = map[string]bool{
	EarningBasicSalary: true, EarningHRA: true,
	EarningTransportAllowance: true, EarningMedicalAllowance: true, EarningFoodAllowance: true,
	EarningCommunicationAllowance: true, EarningSpecialAllowance: true, EarningOtherAllowance: true,
	EarningAllowances: true, EarningOvertimePay: true, EarningBonus: true, EarningArrears: true,
}

var deductionKeys = map[string]bool{
	DeductionProvidentFund: true, DeductionESIC: true, DeductionProfessionalTax: true, DeductionTDS: true,
	DeductionLoan: true, DeductionMedicalPremium: true, DeductionNPS: true, DeductionVoluntaryPF: true,
}

// IsReservedEarningKey reports whether key is produced by the calculator itself.
func IsReservedEarningKey(key string) bool { return earningKeys[key] }

// IsReservedDeductionKey reports whether key is produced by the calculator itself.
func IsReservedDeductionKey(key string) bool { return deductionKeys[key] }

// Allowances holds either a single flat monthly amount or named allowance amounts.
// In JSON it is a number (or numeric string) or an object.
type Allowances struct {
	Flat  *decimal.Decimal
	Named map[string]decimal.Decimal
}

func (a Allowances) IsZero() bool {
	return a.Flat == nil && len(a.Named) == 0
}

func (a *Allowances) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Allowances{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '{' {
		return json.Unmarshal(data, &a.Named)
	}
	var flat decimal.Decimal
	if err := flat.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("allowances must be a number or an object: %w", err)
	}
	a.Flat = &flat
	return nil
}

func (a Allowances) MarshalJSON() ([]byte, error) {
	switch {
	case a.Named != nil:
		return json.Marshal(a.Named)
	case a.Flat != nil:
		return json.Marshal(a.Flat)
	default:
		return []byte("null"), nil
	}
}

// StructureDeductions are recurring voluntary deductions configured on a salary structure.
type StructureDeductions struct {
	MedicalPremium *decimal.Decimal `json:"medical_premium,omitempty"`
	NPS            *decimal.Decimal `json:"nps,omitempty"`
	VoluntaryPF    *decimal.Decimal `json:"voluntary_pf,omitempty"`
}

// SalaryStructure - Monthly salary configuration of one employee
type SalaryStructure struct {
	BasicSalary decimal.Decimal  `json:"basic_salary"`
	HRA         *decimal.Decimal `json:"hra,omitempty"`
	HRARate     *decimal.Decimal `json:"hra_rate,omitempty"`
	Allowances  Allowances       `json:"allowances"`

	TransportAllowance     *decimal.Decimal `json:"transport_allowance,omitempty"`
	MedicalAllowance       *decimal.Decimal `json:"medical_allowance,omitempty"`
	FoodAllowance          *decimal.Decimal `json:"food_allowance,omitempty"`
	CommunicationAllowance *decimal.Decimal `json:"communication_allowance,omitempty"`
	SpecialAllowance       *decimal.Decimal `json:"special_allowance,omitempty"`
	OtherAllowance         *decimal.Decimal `json:"other_allowance,omitempty"`

	LoanDeduction *decimal.Decimal    `json:"loan_deduction,omitempty"`
	Deductions    StructureDeductions `json:"deductions"`

	MedicalPremium *decimal.Decimal `json:"medical_premium,omitempty"`
	NPS            *decimal.Decimal `json:"nps,omitempty"`
	VoluntaryPF    *decimal.Decimal `json:"voluntary_pf,omitempty"`
}

// Allowance returns the configured amount for a named allowance. The entry under
// Allowances wins over the flat <name>_allowance field.
func (s SalaryStructure) Allowance(name string) (decimal.Decimal, bool) {
	if v, ok := s.Allowances.Named[name]; ok {
		return v, true
	}
	var flat *decimal.Decimal
	switch name {
	case "transport":
		flat = s.TransportAllowance
	case "medical":
		flat = s.MedicalAllowance
	case "food":
		flat = s.FoodAllowance
	case "communication":
		flat = s.CommunicationAllowance
	case "special":
		flat = s.SpecialAllowance
	case "other":
		flat = s.OtherAllowance
	}
	if flat == nil {
		return decimal.Zero, false
	}
	return *flat, true
}

// FixedDeduction returns a structure-level deduction by its deduction key, looking at
// the nested Deductions block first.
func (s SalaryStructure) FixedDeduction(key string) (decimal.Decimal, bool) {
	var nested, flat *decimal.Decimal
	switch key {
	case DeductionMedicalPremium:
		nested, flat = s.Deductions.MedicalPremium, s.MedicalPremium
	case DeductionNPS:
		nested, flat = s.Deductions.NPS, s.NPS
	case DeductionVoluntaryPF:
		nested, flat = s.Deductions.VoluntaryPF, s.VoluntaryPF
	}
	if nested != nil {
		return *nested, true
	}
	if flat != nil {
		return *flat, true
	}
	return decimal.Zero, false
}

// Problems lists human-readable problems that make the structure unusable.
func (s SalaryStructure) Problems() []string {
	var problems []string
	if !s.BasicSalary.IsPositive() {
		problems = append(problems, "Basic salary is required and must be greater than 0")
	}
	if s.HRA != nil && s.HRA.IsNegative() {
		problems = append(problems, "HRA cannot be negative")
	}
	return problems
}

// AttendanceRecord - Attendance figures for one pay period
type AttendanceRecord struct {
	TotalWorkingDays *int            `json:"total_working_days,omitempty"`
	PresentDays      *int            `json:"present_days,omitempty"`
	PaidDays         *int            `json:"paid_days,omitempty"`
	LOPDays          int             `json:"lop_days"`
	OvertimeHours    decimal.Decimal `json:"overtime_hours"`
	WeeklyOffs       int             `json:"weekly_offs"`
	Holidays         int             `json:"holidays"`
}

// CalculationOptions - Per-run policy switches and ad-hoc components
type CalculationOptions struct {
	SkipPF   bool `json:"skip_pf"`
	SkipESIC bool `json:"skip_esic"`
	SkipPT   bool `json:"skip_pt"`
	SkipTDS  bool `json:"skip_tds"`

	OvertimeRate *decimal.Decimal `json:"overtime_rate,omitempty"`
	Bonus        *decimal.Decimal `json:"bonus,omitempty"`
	Arrears      *decimal.Decimal `json:"arrears,omitempty"`

	OtherEarnings   map[string]decimal.Decimal `json:"other_earnings,omitempty"`
	OtherDeductions map[string]decimal.Decimal `json:"other_deductions,omitempty"`

	TaxRegime     string           `json:"tax_regime,omitempty"`
	Section80C    *decimal.Decimal `json:"section_80c,omitempty"`
	State         string           `json:"state,omitempty"`
	LoanDeduction *decimal.Decimal `json:"loan_deduction,omitempty"`
}

// EmployeeData - Employee identity printed on the payslip
type EmployeeData struct {
	ID           string  `json:"id"`
	EmployeeCode string  `json:"employee_code,omitempty"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Designation  *string `json:"designation,omitempty"`
	Department   *string `json:"department,omitempty"`
	PAN          *string `json:"pan,omitempty"`
	UAN          *string `json:"uan,omitempty"`
	DateOfJoin   *string `json:"date_of_joining,omitempty"`
}

func (e EmployeeData) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// AttendanceSummary echoes the attendance figures the calculation used.
type AttendanceSummary struct {
	TotalWorkingDays int             `json:"total_working_days"`
	PresentDays      int             `json:"present_days"`
	PayableDays      int             `json:"payable_days"`
	LOPDays          int             `json:"lop_days"`
	OvertimeHours    decimal.Decimal `json:"overtime_hours"`
	WeeklyOffs       int             `json:"weekly_offs"`
	Holidays         int             `json:"holidays"`
}

type CalculationMetadata struct {
	RulesVersion    string          `json:"rules_version"`
	PFWageCeiling   decimal.Decimal `json:"pf_wage_ceiling"`
	PFApplied       bool            `json:"pf_applied"`
	ESICWageCeiling decimal.Decimal `json:"esic_wage_ceiling"`
	ESICApplied     bool            `json:"esic_applied"`
	TaxRegime       string          `json:"tax_regime"`
	State           string          `json:"state"`
}

// EmployerContributions are reported alongside the payslip and never reduce net pay.
type EmployerContributions struct {
	EmployerPF   *decimal.Decimal `json:"employer_pf,omitempty"`
	EmployerESIC *decimal.Decimal `json:"employer_esic,omitempty"`
	Total        decimal.Decimal  `json:"total"`
}

// CalculationResult - Output of one payslip calculation. When Success is false,
// Error is set and every amount is zero.
type CalculationResult struct {
	Success               bool                       `json:"success"`
	Earnings              map[string]decimal.Decimal `json:"earnings"`
	Deductions            map[string]decimal.Decimal `json:"deductions"`
	GrossSalary           decimal.Decimal            `json:"gross_salary"`
	TotalDeductions       decimal.Decimal            `json:"total_deductions"`
	NetPay                decimal.Decimal            `json:"net_pay"`
	NetPayInWords         string                     `json:"net_pay_in_words"`
	AttendanceSummary     AttendanceSummary          `json:"attendance_summary"`
	CalculationMetadata   CalculationMetadata        `json:"calculation_metadata"`
	EmployerContributions EmployerContributions      `json:"employer_contributions"`
	CalculationDate       time.Time                  `json:"calculation_date"`
	Error                 string                     `json:"error,omitempty"`
}

// StructureValidation is the outcome of a salary structure pre-flight check.
type StructureValidation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// BulkEmployee - One entry of a bulk calculation run
type BulkEmployee struct {
	EmployeeData
	SalaryStructure SalaryStructure    `json:"salary_structure"`
	Attendance      AttendanceRecord   `json:"attendance"`
	Options         CalculationOptions `json:"options"`
}

type BulkResult struct {
	EmployeeID   string            `json:"employee_id"`
	EmployeeName string            `json:"employee_name"`
	Calculation  CalculationResult `json:"calculation"`
}

// PayslipStatus enum
type PayslipStatus string

const (
	PayslipStatusDraft  PayslipStatus = "draft"
	PayslipStatusIssued PayslipStatus = "issued"
)

// Payslip - Persisted payslip for one employee and period
type Payslip struct {
	ID                    string
	EmployeeID            string
	EmployeeCode          string
	EmployeeName          string
	PeriodMonth           int
	PeriodYear            int
	Earnings              map[string]decimal.Decimal
	Deductions            map[string]decimal.Decimal
	GrossSalary           decimal.Decimal
	TotalDeductions       decimal.Decimal
	NetPay                decimal.Decimal
	NetPayInWords         string
	Attendance            AttendanceSummary
	Metadata              CalculationMetadata
	EmployerContributions EmployerContributions
	TemplateName          string
	FilePath              *string
	Status                PayslipStatus
	IssuedAt              *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// PeriodLabel renders the period as e.g. "March 2025".
func (p Payslip) PeriodLabel() string {
	return PeriodLabel(p.PeriodMonth, p.PeriodYear)
}

func PeriodLabel(month, year int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%02d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}
