package payslip

import "errors"

var (
	ErrInvalidStructure     = errors.New("invalid salary structure")
	ErrInvalidWorkingDays   = errors.New("total working days must be greater than 0")
	ErrNegativeAmount       = errors.New("amount cannot be negative")
	ErrReservedComponentKey = errors.New("component name is reserved")
	ErrCalculationFailed    = errors.New("payslip calculation failed")
	ErrPayslipNotFound      = errors.New("payslip not found")
	ErrPayslipAlreadyExists = errors.New("payslip already exists for this period")
	ErrPayslipAlreadyIssued = errors.New("payslip already issued, cannot modify")
	ErrCannotDeleteIssued   = errors.New("cannot delete issued payslip")
	ErrPayslipFileNotFound  = errors.New("payslip document not found")
	ErrNoPayslipsForPeriod  = errors.New("no payslips found for this period")
	ErrInvalidPeriod        = errors.New("invalid payslip period")
	ErrInvalidTemplate      = errors.New("invalid payslip template")
)
