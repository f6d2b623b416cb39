package payslip

import (
	"time"

	"github.com/cmlabs-hris/payslip-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const MaxBulkEmployees = 1000

// ========== CALCULATION DTOs ==========

type CalculatePayslipRequest struct {
	Employee        EmployeeData       `json:"employee"`
	SalaryStructure SalaryStructure    `json:"salary_structure"`
	Attendance      AttendanceRecord   `json:"attendance"`
	Options         CalculationOptions `json:"options"`
}

func (r *CalculatePayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateEmployee("employee", r.Employee)...)
	errs = append(errs, validateStructure("salary_structure", r.SalaryStructure)...)
	errs = append(errs, validateAttendance("attendance", r.Attendance)...)
	errs = append(errs, validateOptions("options", r.Options)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkCalculateRequest struct {
	Employees []BulkEmployee `json:"employees"`
}

// Validate checks the envelope only; each employee is validated on its own
// during the run so one bad entry does not reject the batch.
func (r *BulkCalculateRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Employees) == 0 {
		errs = append(errs, validator.ValidationError{Field: "employees", Message: "at least one employee is required"})
	}
	if len(r.Employees) > MaxBulkEmployees {
		errs = append(errs, validator.ValidationError{Field: "employees", Message: "must not exceed " + validator.Itoa(MaxBulkEmployees) + " entries"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ValidateStructureRequest struct {
	SalaryStructure SalaryStructure `json:"salary_structure"`
}

// ========== PAYSLIP DTOs ==========

type GeneratePayslipRequest struct {
	PeriodMonth     int                `json:"period_month"`
	PeriodYear      int                `json:"period_year"`
	Employee        EmployeeData       `json:"employee"`
	SalaryStructure SalaryStructure    `json:"salary_structure"`
	Attendance      AttendanceRecord   `json:"attendance"`
	Options         CalculationOptions `json:"options"`
	Template        *Template          `json:"template,omitempty"`
}

func (r *GeneratePayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePeriod(r.PeriodMonth, r.PeriodYear)...)
	if validator.IsEmpty(r.Employee.ID) {
		errs = append(errs, validator.ValidationError{Field: "employee.id", Message: "is required"})
	}
	if validator.IsEmpty(r.Employee.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "employee.first_name", Message: "is required"})
	}
	errs = append(errs, validateEmployee("employee", r.Employee)...)
	errs = append(errs, validateStructure("salary_structure", r.SalaryStructure)...)
	errs = append(errs, validateAttendance("attendance", r.Attendance)...)
	errs = append(errs, validateOptions("options", r.Options)...)
	if r.Template != nil {
		if err := r.Template.Validate(); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, e := range verrs {
					errs = append(errs, validator.ValidationError{Field: "template." + e.Field, Message: e.Message})
				}
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type FinalizePayslipRequest struct {
	PayslipIDs []string `json:"payslip_ids"`
}

func (r *FinalizePayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.PayslipIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "payslip_ids", Message: "at least one payslip is required"})
	}
	for i, id := range r.PayslipIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "payslip_ids[" + validator.Itoa(i) + "]", Message: "must be a valid UUID"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayslipFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	SortBy      string  `json:"sort_by"`
	SortOrder   string  `json:"sort_order"`
}

// Normalize applies paging defaults.
func (f *PayslipFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
}

func (f *PayslipFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(PayslipStatusDraft), string(PayslipStatusIssued)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'draft' or 'issued'"})
	}
	if f.SortOrder != "" && !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{Field: "sort_order", Message: "must be 'asc' or 'desc'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayslipResponse struct {
	ID                    string                     `json:"id"`
	EmployeeID            string                     `json:"employee_id"`
	EmployeeCode          string                     `json:"employee_code,omitempty"`
	EmployeeName          string                     `json:"employee_name"`
	PeriodMonth           int                        `json:"period_month"`
	PeriodYear            int                        `json:"period_year"`
	Period                string                     `json:"period"`
	Earnings              map[string]decimal.Decimal `json:"earnings"`
	Deductions            map[string]decimal.Decimal `json:"deductions"`
	GrossSalary           decimal.Decimal            `json:"gross_salary"`
	TotalDeductions       decimal.Decimal            `json:"total_deductions"`
	NetPay                decimal.Decimal            `json:"net_pay"`
	NetPayInWords         string                     `json:"net_pay_in_words"`
	Attendance            AttendanceSummary          `json:"attendance"`
	Metadata              CalculationMetadata        `json:"metadata"`
	EmployerContributions EmployerContributions      `json:"employer_contributions"`
	TemplateName          string                     `json:"template_name"`
	HasDocument           bool                       `json:"has_document"`
	Status                string                     `json:"status"`
	IssuedAt              *string                    `json:"issued_at,omitempty"`
	CreatedAt             string                     `json:"created_at"`
}

type ListPayslipResponse struct {
	Data       []PayslipResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// PayslipDocument is a rendered payslip file.
type PayslipDocument struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ========== HELPERS ==========

func validatePeriod(month, year int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if year < 2000 || year > time.Now().Year()+1 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be between 2000 and next year"})
	}
	return errs
}

// ValidatePeriod checks a month/year pair used to address a payroll period.
func ValidatePeriod(month, year int) error {
	if errs := validatePeriod(month, year); len(errs) > 0 {
		return errs
	}
	return nil
}

func validateEmployee(prefix string, e EmployeeData) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if e.PAN != nil && !validator.IsValidPAN(*e.PAN) {
		errs = append(errs, validator.ValidationError{Field: prefix + ".pan", Message: "must be a valid PAN (e.g. ABCDE1234F)"})
	}
	if e.UAN != nil && !validator.IsValidUAN(*e.UAN) {
		errs = append(errs, validator.ValidationError{Field: prefix + ".uan", Message: "must be 12 digits"})
	}
	if e.DateOfJoin != nil {
		if _, ok := validator.IsValidDate(*e.DateOfJoin); !ok {
			errs = append(errs, validator.ValidationError{Field: prefix + ".date_of_joining", Message: "must be in YYYY-MM-DD format"})
		}
	}
	return errs
}

func validateStructure(prefix string, s SalaryStructure) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if !s.BasicSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: prefix + ".basic_salary", Message: "is required and must be greater than 0"})
	} else if !validator.MaxDecimalPlaces(s.BasicSalary, 2) {
		errs = append(errs, validator.ValidationError{Field: prefix + ".basic_salary", Message: "must have at most 2 decimal places"})
	}
	if s.HRA != nil && s.HRA.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: prefix + ".hra", Message: "must be non-negative"})
	}
	if s.HRARate != nil && !validator.IsRate(*s.HRARate) {
		errs = append(errs, validator.ValidationError{Field: prefix + ".hra_rate", Message: "must be between 0 and 1"})
	}
	if s.Allowances.Flat != nil && s.Allowances.Flat.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: prefix + ".allowances", Message: "must be non-negative"})
	}
	for _, a := range NamedAllowances {
		if v, ok := s.Allowance(a.Name); ok && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: prefix + ".allowances." + a.Name, Message: "must be non-negative"})
		}
	}
	if s.LoanDeduction != nil && s.LoanDeduction.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: prefix + ".loan_deduction", Message: "must be non-negative"})
	}
	for _, key := range FixedDeductionKeys {
		if v, ok := s.FixedDeduction(key); ok && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: prefix + ".deductions." + key, Message: "must be non-negative"})
		}
	}
	return errs
}

func validateAttendance(prefix string, a AttendanceRecord) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if a.TotalWorkingDays != nil && *a.TotalWorkingDays <= 0 {
		errs = append(errs, validator.ValidationError{Field: prefix + ".total_working_days", Message: "must be greater than 0"})
	}
	if a.PresentDays != nil && *a.PresentDays < 0 {
		errs = append(errs, validator.ValidationError{Field: prefix + ".present_days", Message: "must be non-negative"})
	}
	if a.PaidDays != nil && *a.PaidDays < 0 {
		errs = append(errs, validator.ValidationError{Field: prefix + ".paid_days", Message: "must be non-negative"})
	}
	if a.LOPDays < 0 {
		errs = append(errs, validator.ValidationError{Field: prefix + ".lop_days", Message: "must be non-negative"})
	}
	if a.OvertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: prefix + ".overtime_hours", Message: "must be non-negative"})
	}
	return errs
}

func validateOptions(prefix string, o CalculationOptions) validator.ValidationErrors {
	var errs validator.ValidationErrors
	amounts := map[string]*decimal.Decimal{
		"overtime_rate":  o.OvertimeRate,
		"bonus":          o.Bonus,
		"arrears":        o.Arrears,
		"section_80c":    o.Section80C,
		"loan_deduction": o.LoanDeduction,
	}
	for _, name := range []string{"overtime_rate", "bonus", "arrears", "section_80c", "loan_deduction"} {
		if v := amounts[name]; v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: prefix + "." + name, Message: "must be non-negative"})
		}
	}
	for key := range o.OtherEarnings {
		if IsReservedEarningKey(key) {
			errs = append(errs, validator.ValidationError{Field: prefix + ".other_earnings." + key, Message: "is a reserved earning name"})
		}
	}
	for key := range o.OtherDeductions {
		if IsReservedDeductionKey(key) {
			errs = append(errs, validator.ValidationError{Field: prefix + ".other_deductions." + key, Message: "is a reserved deduction name"})
		}
	}
	return errs
}
