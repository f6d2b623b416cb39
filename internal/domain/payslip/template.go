package payslip

import (
	"sort"
	"strings"

	"github.com/cmlabs-hris/payslip-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// TemplateField - One labelled line on a printed payslip
type TemplateField struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Template decides which calculation lines are printed, in which order and under
// which labels.
type Template struct {
	Name                      string          `json:"name" yaml:"name"`
	CompanyName               string          `json:"company_name,omitempty" yaml:"companyName,omitempty"`
	CompanyAddress            string          `json:"company_address,omitempty" yaml:"companyAddress,omitempty"`
	Earnings                  []TemplateField `json:"earnings" yaml:"earnings"`
	Deductions                []TemplateField `json:"deductions" yaml:"deductions"`
	ShowEmployerContributions bool            `json:"show_employer_contributions" yaml:"showEmployerContributions"`
	ShowAmountInWords         bool            `json:"show_amount_in_words" yaml:"showAmountInWords"`
	FooterNote                string          `json:"footer_note,omitempty" yaml:"footerNote,omitempty"`
}

// Line is a resolved label/amount pair ready for rendering.
type Line struct {
	Key    string
	Label  string
	Amount decimal.Decimal
}

const DefaultTemplateName = "standard"

func DefaultTemplate() Template {
	return Template{
		Name: DefaultTemplateName,
		Earnings: []TemplateField{
			{Key: EarningBasicSalary, Label: "Basic Salary"},
			{Key: EarningHRA, Label: "House Rent Allowance"},
			{Key: EarningTransportAllowance, Label: "Transport Allowance"},
			{Key: EarningMedicalAllowance, Label: "Medical Allowance"},
			{Key: EarningFoodAllowance, Label: "Food Allowance"},
			{Key: EarningCommunicationAllowance, Label: "Communication Allowance"},
			{Key: EarningSpecialAllowance, Label: "Special Allowance"},
			{Key: EarningOtherAllowance, Label: "Other Allowance"},
			{Key: EarningAllowances, Label: "Allowances"},
			{Key: EarningOvertimePay, Label: "Overtime Pay"},
			{Key: EarningBonus, Label: "Bonus"},
			{Key: EarningArrears, Label: "Arrears"},
		},
		Deductions: []TemplateField{
			{Key: DeductionProvidentFund, Label: "Provident Fund"},
			{Key: DeductionESIC, Label: "ESIC"},
			{Key: DeductionProfessionalTax, Label: "Professional Tax"},
			{Key: DeductionTDS, Label: "TDS"},
			{Key: DeductionLoan, Label: "Loan Deduction"},
			{Key: DeductionMedicalPremium, Label: "Medical Insurance Premium"},
			{Key: DeductionNPS, Label: "NPS"},
			{Key: DeductionVoluntaryPF, Label: "Voluntary PF"},
		},
		ShowEmployerContributions: true,
		ShowAmountInWords:         true,
	}
}

// Inherit fills the company header and footer from base where t leaves them empty.
func (t Template) Inherit(base Template) Template {
	if t.CompanyName == "" {
		t.CompanyName = base.CompanyName
	}
	if t.CompanyAddress == "" {
		t.CompanyAddress = base.CompanyAddress
	}
	if t.FooterNote == "" {
		t.FooterNote = base.FooterNote
	}
	return t
}

func (t Template) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(t.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	errs = append(errs, validateFields("earnings", t.Earnings)...)
	errs = append(errs, validateFields("deductions", t.Deductions)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateFields(section string, fields []TemplateField) validator.ValidationErrors {
	var errs validator.ValidationErrors
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		field := section + "[" + validator.Itoa(i) + "]"
		if validator.IsEmpty(f.Key) {
			errs = append(errs, validator.ValidationError{Field: field + ".key", Message: "is required"})
			continue
		}
		if seen[f.Key] {
			errs = append(errs, validator.ValidationError{Field: field + ".key", Message: "duplicate key " + f.Key})
		}
		seen[f.Key] = true
		if validator.IsEmpty(f.Label) {
			errs = append(errs, validator.ValidationError{Field: field + ".label", Message: "is required"})
		}
	}
	return errs
}

// EarningLines resolves the earnings map against the template.
func (t Template) EarningLines(earnings map[string]decimal.Decimal) []Line {
	return resolveLines(t.Earnings, earnings)
}

// DeductionLines resolves the deductions map against the template.
func (t Template) DeductionLines(deductions map[string]decimal.Decimal) []Line {
	return resolveLines(t.Deductions, deductions)
}

// resolveLines keeps template order for configured keys that are present, then
// appends remaining amounts sorted by key so nothing on the payslip goes missing.
func resolveLines(fields []TemplateField, amounts map[string]decimal.Decimal) []Line {
	lines := make([]Line, 0, len(amounts))
	used := make(map[string]bool, len(fields))
	for _, f := range fields {
		v, ok := amounts[f.Key]
		if !ok {
			continue
		}
		used[f.Key] = true
		lines = append(lines, Line{Key: f.Key, Label: f.Label, Amount: v})
	}

	var extra []string
	for k := range amounts {
		if !used[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		lines = append(lines, Line{Key: k, Label: humanize(k), Amount: amounts[k]})
	}
	return lines
}

// humanize turns "festivalAdvance" or "festival_advance" into "Festival Advance".
func humanize(key string) string {
	var b strings.Builder
	upperNext := true
	prevUpper := false
	for _, r := range key {
		isUpper := r >= 'A' && r <= 'Z'
		switch {
		case r == '_' || r == '-' || r == ' ':
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			upperNext = true
			prevUpper = false
			continue
		case isUpper && !upperNext && !prevUpper:
			b.WriteByte(' ')
		}
		if upperNext && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
		upperNext = false
		prevUpper = isUpper
	}
	return b.String()
}
