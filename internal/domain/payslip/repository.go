package payslip

import (
	"context"
	"time"
)

// PayslipRepository defines data access methods for persisted payslips.
type PayslipRepository interface {
	Create(ctx context.Context, payslip Payslip) (Payslip, error)
	GetByID(ctx context.Context, id string) (Payslip, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Payslip, error)
	List(ctx context.Context, filter PayslipFilter) ([]Payslip, int64, error)
	ListByPeriod(ctx context.Context, month, year int) ([]Payslip, error)

	// Issue moves draft payslips to issued. It fails with ErrPayslipAlreadyIssued
	// or ErrPayslipNotFound without changing any row.
	Issue(ctx context.Context, ids []string, issuedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
