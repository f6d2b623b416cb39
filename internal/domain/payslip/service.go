package payslip

import (
	"context"
)

// Engine is the payslip calculation engine. Calculate and CalculateBulk never
// return errors; failures are reported inside each result.
type Engine interface {
	CalculatePayslip(employee EmployeeData, structure SalaryStructure, attendance AttendanceRecord, options CalculationOptions) CalculationResult
	CalculateBulk(ctx context.Context, employees []BulkEmployee) []BulkResult
	ValidateSalaryStructure(structure SalaryStructure) StructureValidation
}

type PayslipService interface {
	// Calculation
	Calculate(ctx context.Context, req CalculatePayslipRequest) (CalculationResult, error)
	CalculateBulk(ctx context.Context, req BulkCalculateRequest) ([]BulkResult, error)
	ValidateStructure(ctx context.Context, structure SalaryStructure) StructureValidation

	// Payslips
	Generate(ctx context.Context, req GeneratePayslipRequest) (PayslipResponse, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) (ListPayslipResponse, error)
	DownloadPayslip(ctx context.Context, id string) (PayslipDocument, error)
	FinalizePayslips(ctx context.Context, req FinalizePayslipRequest) error
	DeletePayslip(ctx context.Context, id string) error

	// Reports
	ExportRegister(ctx context.Context, month, year int) (PayslipDocument, error)
}
