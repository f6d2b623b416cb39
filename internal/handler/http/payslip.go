package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayslipHandler interface {
	// Calculation
	Calculate(w http.ResponseWriter, r *http.Request)
	CalculateBulk(w http.ResponseWriter, r *http.Request)
	ValidateStructure(w http.ResponseWriter, r *http.Request)

	// Payslips
	Generate(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// Reports
	ExportRegister(w http.ResponseWriter, r *http.Request)
}

type payslipHandlerImpl struct {
	payslipService payslip.PayslipService
}

func NewPayslipHandler(payslipService payslip.PayslipService) PayslipHandler {
	return &payslipHandlerImpl{payslipService: payslipService}
}

// ========== CALCULATION ==========

func (h *payslipHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req payslip.CalculatePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payslipService.Calculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payslipHandlerImpl) CalculateBulk(w http.ResponseWriter, r *http.Request) {
	var req payslip.BulkCalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	results, err := h.payslipService.CalculateBulk(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (h *payslipHandlerImpl) ValidateStructure(w http.ResponseWriter, r *http.Request) {
	var req payslip.ValidateStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	response.Success(w, h.payslipService.ValidateStructure(r.Context(), req.SalaryStructure))
}

// ========== PAYSLIPS ==========

func (h *payslipHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req payslip.GeneratePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payslipService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payslip generated", result)
}

func (h *payslipHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := payslipID(w, r)
	if !ok {
		return
	}

	result, err := h.payslipService.GetPayslip(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payslipHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := payslip.PayslipFilter{
		Page:      1,
		Limit:     20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if monthStr := query.Get("period_month"); monthStr != "" {
		if month, err := strconv.Atoi(monthStr); err == nil {
			filter.PeriodMonth = &month
		}
	}
	if yearStr := query.Get("period_year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			filter.PeriodYear = &year
		}
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if sortBy := query.Get("sort_by"); sortBy != "" {
		filter.SortBy = sortBy
	}
	if sortOrder := query.Get("sort_order"); sortOrder != "" {
		filter.SortOrder = sortOrder
	}

	result, err := h.payslipService.ListPayslips(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *payslipHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := payslipID(w, r)
	if !ok {
		return
	}

	doc, err := h.payslipService.DownloadPayslip(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, doc.FileName, doc.ContentType, doc.Content)
}

func (h *payslipHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	var req payslip.FinalizePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.payslipService.FinalizePayslips(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslips issued successfully", nil)
}

func (h *payslipHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := payslipID(w, r)
	if !ok {
		return
	}

	if err := h.payslipService.DeletePayslip(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip deleted successfully", nil)
}

// ========== REPORTS ==========

func (h *payslipHandlerImpl) ExportRegister(w http.ResponseWriter, r *http.Request) {
	monthStr := r.URL.Query().Get("period_month")
	yearStr := r.URL.Query().Get("period_year")

	if monthStr == "" || yearStr == "" {
		response.BadRequest(w, "period_month and period_year are required", nil)
		return
	}

	month, monthErr := strconv.Atoi(monthStr)
	year, yearErr := strconv.Atoi(yearStr)
	if monthErr != nil || yearErr != nil {
		response.HandleError(w, fmt.Errorf("%w: period_month and period_year must be numbers", payslip.ErrInvalidPeriod))
		return
	}

	doc, err := h.payslipService.ExportRegister(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, doc.FileName, doc.ContentType, doc.Content)
}

// payslipID reads the {id} URL parameter, writing a 400 when it is not a UUID.
func payslipID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payslip ID is required", nil)
		return "", false
	}
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Payslip ID must be a valid UUID", nil)
		return "", false
	}
	return id, true
}
