package payslip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/render"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/storage"
	"github.com/google/uuid"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type PayslipServiceImpl struct {
	engine      payslip.Engine
	payslipRepo payslip.PayslipRepository
	fileStorage storage.FileStorage
	template    payslip.Template
	logger      *slog.Logger
	now         func() time.Time
}

// NewPayslipService wires the engine to persistence and document storage.
// tmpl is the default layout used when a request carries none.
func NewPayslipService(
	engine payslip.Engine,
	payslipRepo payslip.PayslipRepository,
	fileStorage storage.FileStorage,
	tmpl payslip.Template,
	logger *slog.Logger,
) payslip.PayslipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayslipServiceImpl{
		engine:      engine,
		payslipRepo: payslipRepo,
		fileStorage: fileStorage,
		template:    tmpl,
		logger:      logger,
		now:         time.Now,
	}
}

// ========== CALCULATION ==========

func (s *PayslipServiceImpl) Calculate(ctx context.Context, req payslip.CalculatePayslipRequest) (payslip.CalculationResult, error) {
	if err := req.Validate(); err != nil {
		return payslip.CalculationResult{}, err
	}
	return s.engine.CalculatePayslip(req.Employee, req.SalaryStructure, req.Attendance, req.Options), nil
}

func (s *PayslipServiceImpl) CalculateBulk(ctx context.Context, req payslip.BulkCalculateRequest) ([]payslip.BulkResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.engine.CalculateBulk(ctx, req.Employees), nil
}

func (s *PayslipServiceImpl) ValidateStructure(ctx context.Context, structure payslip.SalaryStructure) payslip.StructureValidation {
	return s.engine.ValidateSalaryStructure(structure)
}

// ========== PAYSLIPS ==========

func (s *PayslipServiceImpl) Generate(ctx context.Context, req payslip.GeneratePayslipRequest) (payslip.PayslipResponse, error) {
	if err := req.Validate(); err != nil {
		return payslip.PayslipResponse{}, err
	}

	// Check if payslip already exists
	_, err := s.payslipRepo.GetByEmployeePeriod(ctx, req.Employee.ID, req.PeriodMonth, req.PeriodYear)
	if err == nil {
		return payslip.PayslipResponse{}, payslip.ErrPayslipAlreadyExists
	}
	if !errors.Is(err, payslip.ErrPayslipNotFound) {
		return payslip.PayslipResponse{}, fmt.Errorf("failed to check existing payslip: %w", err)
	}

	result := s.engine.CalculatePayslip(req.Employee, req.SalaryStructure, req.Attendance, req.Options)
	if !result.Success {
		return payslip.PayslipResponse{}, fmt.Errorf("%w: %s", payslip.ErrCalculationFailed, result.Error)
	}

	tmpl := s.resolveTemplate(req.Template)

	id, err := uuid.NewV7()
	if err != nil {
		return payslip.PayslipResponse{}, fmt.Errorf("failed to generate payslip id: %w", err)
	}

	record := payslip.Payslip{
		ID:                    id.String(),
		EmployeeID:            req.Employee.ID,
		EmployeeCode:          req.Employee.EmployeeCode,
		EmployeeName:          req.Employee.FullName(),
		PeriodMonth:           req.PeriodMonth,
		PeriodYear:            req.PeriodYear,
		Earnings:              result.Earnings,
		Deductions:            result.Deductions,
		GrossSalary:           result.GrossSalary,
		TotalDeductions:       result.TotalDeductions,
		NetPay:                result.NetPay,
		NetPayInWords:         result.NetPayInWords,
		Attendance:            result.AttendanceSummary,
		Metadata:              result.CalculationMetadata,
		EmployerContributions: result.EmployerContributions,
		TemplateName:          tmpl.Name,
		Status:                payslip.PayslipStatusDraft,
	}

	document, err := render.PayslipPDF(render.PayslipData{
		Employee: req.Employee,
		Period:   record.PeriodLabel(),
		Result:   result,
	}, tmpl)
	if err != nil {
		return payslip.PayslipResponse{}, err
	}

	filePath, err := s.fileStorage.Upload(ctx, bytes.NewReader(document), payslipFilePath(record), contentTypePDF)
	if err != nil {
		return payslip.PayslipResponse{}, fmt.Errorf("failed to store payslip document: %w", err)
	}
	record.FilePath = &filePath

	created, err := s.payslipRepo.Create(ctx, record)
	if err != nil {
		if delErr := s.fileStorage.Delete(ctx, filePath); delErr != nil {
			s.logger.Warn("Failed to remove orphaned payslip document", "path", filePath, "error", delErr)
		}
		return payslip.PayslipResponse{}, err
	}

	s.logger.Info("Payslip generated",
		"payslip_id", created.ID,
		"employee_id", created.EmployeeID,
		"period", created.PeriodLabel(),
		"net_pay", created.NetPay.StringFixed(2),
	)
	return mapToPayslipResponse(created), nil
}

func (s *PayslipServiceImpl) GetPayslip(ctx context.Context, id string) (payslip.PayslipResponse, error) {
	record, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payslip.PayslipResponse{}, err
	}
	return mapToPayslipResponse(record), nil
}

func (s *PayslipServiceImpl) ListPayslips(ctx context.Context, filter payslip.PayslipFilter) (payslip.ListPayslipResponse, error) {
	if err := filter.Validate(); err != nil {
		return payslip.ListPayslipResponse{}, err
	}
	filter.Normalize()

	records, totalCount, err := s.payslipRepo.List(ctx, filter)
	if err != nil {
		return payslip.ListPayslipResponse{}, err
	}

	return payslip.ListPayslipResponse{
		Data:       mapToPayslipResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayslipServiceImpl) DownloadPayslip(ctx context.Context, id string) (payslip.PayslipDocument, error) {
	record, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payslip.PayslipDocument{}, err
	}
	if record.FilePath == nil {
		return payslip.PayslipDocument{}, payslip.ErrPayslipFileNotFound
	}

	rc, err := s.fileStorage.Download(ctx, *record.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return payslip.PayslipDocument{}, payslip.ErrPayslipFileNotFound
		}
		return payslip.PayslipDocument{}, fmt.Errorf("failed to read payslip document: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return payslip.PayslipDocument{}, fmt.Errorf("failed to read payslip document: %w", err)
	}

	return payslip.PayslipDocument{
		FileName:    fmt.Sprintf("payslip-%s-%04d-%02d.pdf", fileSafe(record.EmployeeID), record.PeriodYear, record.PeriodMonth),
		ContentType: contentTypePDF,
		Content:     content,
	}, nil
}

func (s *PayslipServiceImpl) FinalizePayslips(ctx context.Context, req payslip.FinalizePayslipRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.payslipRepo.Issue(ctx, req.PayslipIDs, s.now()); err != nil {
		return err
	}
	s.logger.Info("Payslips issued", "count", len(req.PayslipIDs))
	return nil
}

func (s *PayslipServiceImpl) DeletePayslip(ctx context.Context, id string) error {
	record, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.Status == payslip.PayslipStatusIssued {
		return payslip.ErrCannotDeleteIssued
	}

	if err := s.payslipRepo.Delete(ctx, id); err != nil {
		return err
	}

	if record.FilePath != nil {
		if err := s.fileStorage.Delete(ctx, *record.FilePath); err != nil {
			s.logger.Warn("Failed to delete payslip document", "payslip_id", id, "path", *record.FilePath, "error", err)
		}
	}
	return nil
}

// ========== REPORTS ==========

func (s *PayslipServiceImpl) ExportRegister(ctx context.Context, month, year int) (payslip.PayslipDocument, error) {
	if err := payslip.ValidatePeriod(month, year); err != nil {
		return payslip.PayslipDocument{}, err
	}

	records, err := s.payslipRepo.ListByPeriod(ctx, month, year)
	if err != nil {
		return payslip.PayslipDocument{}, err
	}
	if len(records) == 0 {
		return payslip.PayslipDocument{}, payslip.ErrNoPayslipsForPeriod
	}

	rows := make([]render.RegisterRow, 0, len(records))
	for _, r := range records {
		row := render.RegisterRow{
			EmployeeCode:    r.EmployeeCode,
			EmployeeName:    r.EmployeeName,
			PayableDays:     r.Attendance.PayableDays,
			Earnings:        r.Earnings,
			Deductions:      r.Deductions,
			GrossSalary:     r.GrossSalary,
			TotalDeductions: r.TotalDeductions,
			NetPay:          r.NetPay,
			Status:          string(r.Status),
		}
		if pf := r.EmployerContributions.EmployerPF; pf != nil {
			row.EmployerPF = *pf
		}
		if esic := r.EmployerContributions.EmployerESIC; esic != nil {
			row.EmployerESIC = *esic
		}
		rows = append(rows, row)
	}

	content, err := render.RegisterXLSX("Payroll Register - "+payslip.PeriodLabel(month, year), rows, s.template)
	if err != nil {
		return payslip.PayslipDocument{}, err
	}

	return payslip.PayslipDocument{
		FileName:    fmt.Sprintf("payroll-register-%04d-%02d.xlsx", year, month),
		ContentType: contentTypeXLSX,
		Content:     content,
	}, nil
}

// ========== HELPERS ==========

func payslipFilePath(p payslip.Payslip) string {
	return fmt.Sprintf("payslips/%04d-%02d/%s.pdf", p.PeriodYear, p.PeriodMonth, p.ID)
}

// fileSafe keeps letters, digits, dash and underscore.
// resolveTemplate picks the request template, keeping the configured company
// details it does not set.
func (s *PayslipServiceImpl) resolveTemplate(override *payslip.Template) payslip.Template {
	if override == nil {
		return s.template
	}
	return override.Inherit(s.template)
}

func fileSafe(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func mapToPayslipResponse(p payslip.Payslip) payslip.PayslipResponse {
	var issuedAt *string
	if p.IssuedAt != nil {
		str := p.IssuedAt.Format(time.RFC3339)
		issuedAt = &str
	}

	return payslip.PayslipResponse{
		ID:                    p.ID,
		EmployeeID:            p.EmployeeID,
		EmployeeCode:          p.EmployeeCode,
		EmployeeName:          p.EmployeeName,
		PeriodMonth:           p.PeriodMonth,
		PeriodYear:            p.PeriodYear,
		Period:                p.PeriodLabel(),
		Earnings:              p.Earnings,
		Deductions:            p.Deductions,
		GrossSalary:           p.GrossSalary,
		TotalDeductions:       p.TotalDeductions,
		NetPay:                p.NetPay,
		NetPayInWords:         p.NetPayInWords,
		Attendance:            p.Attendance,
		Metadata:              p.Metadata,
		EmployerContributions: p.EmployerContributions,
		TemplateName:          p.TemplateName,
		HasDocument:           p.FilePath != nil,
		Status:                string(p.Status),
		IssuedAt:              issuedAt,
		CreatedAt:             p.CreatedAt.Format(time.RFC3339),
	}
}

func mapToPayslipResponses(records []payslip.Payslip) []payslip.PayslipResponse {
	responses := make([]payslip.PayslipResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapToPayslipResponse(r))
	}
	return responses
}
