package payslip

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/storage"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/payslip-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type serviceFixture struct {
	service payslip.PayslipService
	repo    payslip.PayslipRepository
	storage *storage.LocalStorage
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	fileStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	repo := memory.NewPayslipRepository()
	tmpl := payslip.DefaultTemplate()
	tmpl.CompanyName = "Acme Technologies Pvt Ltd"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewPayslipService(newTestCalculator(), repo, fileStorage, tmpl, logger)

	return serviceFixture{service: svc, repo: repo, storage: fileStorage}
}

func generateRequest(employeeID string, basic string) payslip.GeneratePayslipRequest {
	return payslip.GeneratePayslipRequest{
		PeriodMonth:     3,
		PeriodYear:      2025,
		Employee:        payslip.EmployeeData{ID: employeeID, EmployeeCode: employeeID, FirstName: "Asha", LastName: "Rao"},
		SalaryStructure: payslip.SalaryStructure{BasicSalary: dec(basic)},
		Attendance:      fullMonth(),
	}
}

// ===== CALCULATE TESTS =====

func TestPayslipService_Calculate_Success(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Calculate(context.Background(), payslip.CalculatePayslipRequest{
		Employee:        testEmployee(),
		SalaryStructure: payslip.SalaryStructure{BasicSalary: dec("30000")},
		Attendance:      fullMonth(),
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assertAmount(t, "41960", result.NetPay)
}

func TestPayslipService_Calculate_ValidationError(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Calculate(context.Background(), payslip.CalculatePayslipRequest{
		Employee:        testEmployee(),
		SalaryStructure: payslip.SalaryStructure{BasicSalary: dec("0")},
	})

	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "salary_structure.basic_salary")
}

func TestPayslipService_CalculateBulk(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.CalculateBulk(context.Background(), payslip.BulkCalculateRequest{})
	require.Error(t, err)

	results, err := f.service.CalculateBulk(context.Background(), payslip.BulkCalculateRequest{
		Employees: []payslip.BulkEmployee{bulkEmployee("EMP001", "30000"), bulkEmployee("EMP002", "0")},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Calculation.Success)
	assert.False(t, results[1].Calculation.Success)
}

func TestPayslipService_ValidateStructure(t *testing.T) {
	f := newServiceFixture(t)

	v := f.service.ValidateStructure(context.Background(), payslip.SalaryStructure{BasicSalary: dec("-1")})

	assert.False(t, v.IsValid)
	assert.Len(t, v.Errors, 1)
}

// ===== GENERATE TESTS =====

func TestPayslipService_Generate_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	resp, err := f.service.Generate(ctx, generateRequest("EMP001", "30000"))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.True(t, validator.IsValidUUID(resp.ID))
	assert.Equal(t, "March 2025", resp.Period)
	assert.Equal(t, "Asha Rao", resp.EmployeeName)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, payslip.DefaultTemplateName, resp.TemplateName)
	assert.True(t, resp.HasDocument)
	assertAmount(t, "41960", resp.NetPay)
	assert.Nil(t, resp.IssuedAt)

	stored, err := f.repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FilePath)
	assert.True(t, strings.HasPrefix(*stored.FilePath, "payslips/2025-03/"))

	exists, err := f.storage.Exists(ctx, *stored.FilePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPayslipService_ResolveTemplate_KeepsCompanyDetails(t *testing.T) {
	f := newServiceFixture(t)
	svc, ok := f.service.(*PayslipServiceImpl)
	require.True(t, ok)

	assert.Equal(t, "Acme Technologies Pvt Ltd", svc.resolveTemplate(nil).CompanyName)

	custom := payslip.Template{
		Name:     "compact",
		Earnings: []payslip.TemplateField{{Key: payslip.EarningBasicSalary, Label: "Basic"}},
	}
	got := svc.resolveTemplate(&custom)
	assert.Equal(t, "compact", got.Name)
	assert.Equal(t, "Acme Technologies Pvt Ltd", got.CompanyName)
	require.Len(t, got.Earnings, 1)

	custom.CompanyName = "Acme Payroll Services"
	assert.Equal(t, "Acme Payroll Services", svc.resolveTemplate(&custom).CompanyName)
}

func TestPayslipService_Generate_Duplicate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Generate(ctx, generateRequest("EMP001", "30000"))
	require.NoError(t, err)

	_, err = f.service.Generate(ctx, generateRequest("EMP001", "32000"))
	assert.ErrorIs(t, err, payslip.ErrPayslipAlreadyExists)
}

type failingEngine struct {
	payslip.Engine
}

func (failingEngine) CalculatePayslip(payslip.EmployeeData, payslip.SalaryStructure, payslip.AttendanceRecord, payslip.CalculationOptions) payslip.CalculationResult {
	return payslip.CalculationResult{Success: false, Error: "rules unavailable"}
}

func TestPayslipService_Generate_CalculationFailed(t *testing.T) {
	fileStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := memory.NewPayslipRepository()
	svc := NewPayslipService(failingEngine{}, repo, fileStorage, payslip.DefaultTemplate(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = svc.Generate(context.Background(), generateRequest("EMP001", "30000"))

	assert.ErrorIs(t, err, payslip.ErrCalculationFailed)
	assert.Contains(t, err.Error(), "rules unavailable")
	_, err = repo.GetByEmployeePeriod(context.Background(), "EMP001", 3, 2025)
	assert.ErrorIs(t, err, payslip.ErrPayslipNotFound)
}

func TestPayslipService_Generate_ValidationError(t *testing.T) {
	f := newServiceFixture(t)
	req := generateRequest("", "30000")
	req.PeriodMonth = 13

	_, err := f.service.Generate(context.Background(), req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "period_month")
	assert.Contains(t, fields, "employee.id")
}

// ===== DOWNLOAD TESTS =====

func TestPayslipService_DownloadPayslip(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	resp, err := f.service.Generate(ctx, generateRequest("EMP001", "30000"))
	require.NoError(t, err)

	doc, err := f.service.DownloadPayslip(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "payslip-EMP001-2025-03.pdf", doc.FileName)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF-")))

	_, err = f.service.DownloadPayslip(ctx, "0190c1b2-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, payslip.ErrPayslipNotFound)
}

func TestPayslipService_DownloadPayslip_MissingFile(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	resp, err := f.service.Generate(ctx, generateRequest("EMP001", "30000"))
	require.NoError(t, err)
	stored, err := f.repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.NoError(t, f.storage.Delete(ctx, *stored.FilePath))

	_, err = f.service.DownloadPayslip(ctx, resp.ID)
	assert.ErrorIs(t, err, payslip.ErrPayslipFileNotFound)
}

// ===== LIFECYCLE TESTS =====

func TestPayslipService_FinalizeAndDelete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.service.Generate(ctx, generateRequest("EMP001", "30000"))
	require.NoError(t, err)
	second, err := f.service.Generate(ctx, generateRequest("EMP002", "26000"))
	require.NoError(t, err)

	require.NoError(t, f.service.FinalizePayslips(ctx, payslip.FinalizePayslipRequest{PayslipIDs: []string{first.ID}}))

	issued, err := f.service.GetPayslip(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "issued", issued.Status)
	assert.NotNil(t, issued.IssuedAt)

	err = f.service.FinalizePayslips(ctx, payslip.FinalizePayslipRequest{PayslipIDs: []string{first.ID}})
	assert.ErrorIs(t, err, payslip.ErrPayslipAlreadyIssued)

	assert.ErrorIs(t, f.service.DeletePayslip(ctx, first.ID), payslip.ErrCannotDeleteIssued)

	stored, err := f.repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.NoError(t, f.service.DeletePayslip(ctx, second.ID))

	_, err = f.service.GetPayslip(ctx, second.ID)
	assert.ErrorIs(t, err, payslip.ErrPayslipNotFound)
	exists, err := f.storage.Exists(ctx, *stored.FilePath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPayslipService_FinalizePayslips_InvalidIDs(t *testing.T) {
	f := newServiceFixture(t)

	err := f.service.FinalizePayslips(context.Background(), payslip.FinalizePayslipRequest{PayslipIDs: []string{"not-a-uuid"}})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "payslip_ids[0]")
}

func TestPayslipService_ListPayslips(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	for _, id := range []string{"EMP001", "EMP002", "EMP003"} {
		_, err := f.service.Generate(ctx, generateRequest(id, "30000"))
		require.NoError(t, err)
	}

	list, err := f.service.ListPayslips(ctx, payslip.PayslipFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalCount)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 2, list.Limit)
	assert.Len(t, list.Data, 2)

	bad := "paid"
	_, err = f.service.ListPayslips(ctx, payslip.PayslipFilter{Status: &bad})
	assert.Error(t, err)
}

// ===== REGISTER TESTS =====

func TestPayslipService_ExportRegister(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.ExportRegister(ctx, 3, 2025)
	assert.ErrorIs(t, err, payslip.ErrNoPayslipsForPeriod)

	_, err = f.service.Generate(ctx, generateRequest("EMP001", "30000"))
	require.NoError(t, err)
	req := generateRequest("EMP002", "26000")
	req.Attendance = payslip.AttendanceRecord{TotalWorkingDays: intPtr(26), PresentDays: intPtr(13)}
	_, err = f.service.Generate(ctx, req)
	require.NoError(t, err)

	doc, err := f.service.ExportRegister(ctx, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, "payroll-register-2025-03.xlsx", doc.FileName)

	book, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Register")
	require.NoError(t, err)
	// title, header, two employees, totals
	require.Len(t, rows, 5)
	assert.Equal(t, "Payroll Register - March 2025", rows[0][0])
	assert.Equal(t, "EMP001", rows[2][0])
	assert.Equal(t, "EMP002", rows[3][0])

	_, err = f.service.ExportRegister(ctx, 0, 2025)
	assert.Error(t, err)
}

func TestMapToPayslipResponse(t *testing.T) {
	path := "payslips/2025-03/x.pdf"
	resp := mapToPayslipResponse(payslip.Payslip{
		ID:          "x",
		PeriodMonth: 3,
		PeriodYear:  2025,
		NetPay:      decimal.NewFromInt(10),
		FilePath:    &path,
		Status:      payslip.PayslipStatusDraft,
	})

	assert.Equal(t, "March 2025", resp.Period)
	assert.True(t, resp.HasDocument)
	assert.Equal(t, "draft", resp.Status)
	assert.Nil(t, resp.IssuedAt)
}
