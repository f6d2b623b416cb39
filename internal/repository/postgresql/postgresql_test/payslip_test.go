package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) payslip.PayslipRepository {
	t.Helper()
	ctx := context.Background()

	setup, err := NewTestDatabase(ctx)
	require.NoError(t, err)
	if setup == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(func() {
		_ = setup.TruncateAllTables(context.Background())
		setup.Close()
	})

	return postgresql.NewPayslipRepository(setup.DB)
}

func newTestPayslip(t *testing.T, employeeID string, month int) payslip.Payslip {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	pf := decimal.NewFromInt(1800)
	path := "payslips/2025-03/" + id.String() + ".pdf"

	return payslip.Payslip{
		ID:           id.String(),
		EmployeeID:   employeeID,
		EmployeeCode: employeeID,
		EmployeeName: "Employee " + employeeID,
		PeriodMonth:  month,
		PeriodYear:   2025,
		Earnings: map[string]decimal.Decimal{
			payslip.EarningBasicSalary: decimal.NewFromInt(30000),
			payslip.EarningHRA:         decimal.NewFromInt(15000),
		},
		Deductions: map[string]decimal.Decimal{
			payslip.DeductionProvidentFund:   pf,
			payslip.DeductionProfessionalTax: decimal.NewFromInt(200),
			payslip.DeductionTDS:             decimal.NewFromInt(1040),
		},
		GrossSalary:     decimal.NewFromInt(45000),
		TotalDeductions: decimal.NewFromInt(3040),
		NetPay:          decimal.NewFromInt(41960),
		NetPayInWords:   "Forty One Thousand Nine Hundred Sixty Rupees Only",
		Attendance:      payslip.AttendanceSummary{TotalWorkingDays: 26, PresentDays: 26, PayableDays: 26},
		Metadata:        payslip.CalculationMetadata{RulesVersion: "FY2024-25", TaxRegime: "old", State: "Maharashtra"},
		EmployerContributions: payslip.EmployerContributions{
			EmployerPF: &pf,
			Total:      pf,
		},
		TemplateName: payslip.DefaultTemplateName,
		FilePath:     &path,
		Status:       payslip.PayslipStatusDraft,
	}
}

// ===== CREATE TESTS =====

func TestPayslipRepository_Create_Success(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	p := newTestPayslip(t, "EMP001", 3)

	created, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, created.ID)
	assert.Equal(t, payslip.PayslipStatusDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.NetPay.Equal(decimal.NewFromInt(41960)))
	assert.True(t, created.Deductions[payslip.DeductionTDS].Equal(decimal.NewFromInt(1040)))
	require.NotNil(t, created.EmployerContributions.EmployerPF)
	assert.True(t, created.EmployerContributions.EmployerPF.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, 26, created.Attendance.PayableDays)
	assert.Equal(t, "FY2024-25", created.Metadata.RulesVersion)
	assert.Equal(t, "Maharashtra", created.Metadata.State)

	fetched, err := repo.GetByEmployeePeriod(ctx, "EMP001", 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, p.ID, fetched.ID)
}

func TestPayslipRepository_Create_Duplicate(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestPayslip(t, "EMP001", 3))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newTestPayslip(t, "EMP001", 3))
	assert.ErrorIs(t, err, payslip.ErrPayslipAlreadyExists)
}

// ===== QUERY TESTS =====

func TestPayslipRepository_GetByID_NotFound(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.GetByID(context.Background(), "0190c1b2-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, payslip.ErrPayslipNotFound)
}

func TestPayslipRepository_List(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	for _, emp := range []string{"EMP001", "EMP002", "EMP003"} {
		_, err := repo.Create(ctx, newTestPayslip(t, emp, 3))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, newTestPayslip(t, "EMP001", 4))
	require.NoError(t, err)

	month := 3
	records, total, err := repo.List(ctx, payslip.PayslipFilter{PeriodMonth: &month, SortBy: "employee_name", SortOrder: "asc", Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, records, 2)
	assert.Equal(t, "EMP001", records[0].EmployeeID)
	assert.Equal(t, "EMP002", records[1].EmployeeID)

	byPeriod, err := repo.ListByPeriod(ctx, 4, 2025)
	require.NoError(t, err)
	require.Len(t, byPeriod, 1)
}

// ===== ISSUE / DELETE TESTS =====

func TestPayslipRepository_IssueAndDelete(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	first, err := repo.Create(ctx, newTestPayslip(t, "EMP001", 3))
	require.NoError(t, err)
	second, err := repo.Create(ctx, newTestPayslip(t, "EMP002", 3))
	require.NoError(t, err)
	issuedAt := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

	err = repo.Issue(ctx, []string{first.ID, "0190c1b2-0000-7000-8000-000000000000"}, issuedAt)
	assert.ErrorIs(t, err, payslip.ErrPayslipNotFound)

	require.NoError(t, repo.Issue(ctx, []string{first.ID}, issuedAt))
	issued, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.PayslipStatusIssued, issued.Status)
	require.NotNil(t, issued.IssuedAt)
	assert.True(t, issued.IssuedAt.Equal(issuedAt))

	err = repo.Issue(ctx, []string{second.ID, first.ID}, issuedAt)
	assert.ErrorIs(t, err, payslip.ErrPayslipAlreadyIssued)
	stillDraft, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, payslip.PayslipStatusDraft, stillDraft.Status)

	assert.ErrorIs(t, repo.Delete(ctx, first.ID), payslip.ErrCannotDeleteIssued)
	require.NoError(t, repo.Delete(ctx, second.ID))
	assert.ErrorIs(t, repo.Delete(ctx, second.ID), payslip.ErrPayslipNotFound)
}
