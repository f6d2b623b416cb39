package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Lookup errors
	case errors.Is(err, payslip.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payslip.ErrPayslipFileNotFound):
		NotFound(w, "Payslip document not found")
	case errors.Is(err, payslip.ErrNoPayslipsForPeriod):
		NotFound(w, "No payslips found for this period")

	// State errors
	case errors.Is(err, payslip.ErrPayslipAlreadyExists):
		Conflict(w, "Payslip already exists for this employee and period")
	case errors.Is(err, payslip.ErrPayslipAlreadyIssued):
		Conflict(w, "Payslip already issued")
	case errors.Is(err, payslip.ErrCannotDeleteIssued):
		Conflict(w, "Issued payslips cannot be deleted")

	// Calculation errors
	case errors.Is(err, payslip.ErrCalculationFailed):
		UnprocessableEntity(w, "CALCULATION_FAILED", err.Error())
	case errors.Is(err, payslip.ErrInvalidStructure),
		errors.Is(err, payslip.ErrInvalidWorkingDays),
		errors.Is(err, payslip.ErrNegativeAmount),
		errors.Is(err, payslip.ErrReservedComponentKey),
		errors.Is(err, payslip.ErrInvalidPeriod),
		errors.Is(err, payslip.ErrInvalidTemplate):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
