package payslip

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"golang.org/x/sync/errgroup"
)

// CalculateBulk runs CalculatePayslip for every employee, at most c.workers at a
// time. Results keep the input order. Every employee gets its own result: an
// invalid salary structure or a cancelled ctx fails that entry only.
func (c *Calculator) CalculateBulk(ctx context.Context, employees []payslip.BulkEmployee) []payslip.BulkResult {
	results := make([]payslip.BulkResult, len(employees))
	started := c.now()

	var g errgroup.Group
	g.SetLimit(c.workers)

	for i, emp := range employees {
		g.Go(func() error {
			results[i] = c.calculateBulkEntry(ctx, emp)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Calculation.Success {
			failed++
		}
	}
	c.logger.Info("Bulk payslip calculation finished",
		"employees", len(employees),
		"succeeded", len(employees)-failed,
		"failed", failed,
		"duration", time.Since(started),
	)

	return results
}

func (c *Calculator) calculateBulkEntry(ctx context.Context, emp payslip.BulkEmployee) payslip.BulkResult {
	result := payslip.BulkResult{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName(),
	}

	if err := ctx.Err(); err != nil {
		result.Calculation = c.failure(emp.EmployeeData, fmt.Errorf("bulk calculation cancelled: %w", err), c.now())
		return result
	}

	validation := c.ValidateSalaryStructure(emp.SalaryStructure)
	if !validation.IsValid {
		err := fmt.Errorf("%w: %s", payslip.ErrInvalidStructure, strings.Join(validation.Errors, "; "))
		result.Calculation = c.failure(emp.EmployeeData, err, c.now())
		return result
	}

	result.Calculation = c.CalculatePayslip(emp.EmployeeData, emp.SalaryStructure, emp.Attendance, emp.Options)
	return result
}
