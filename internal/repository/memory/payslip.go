// Package memory holds process-local repositories used when no database is
// configured and in service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/shopspring/decimal"
)

type payslipRepository struct {
	mu       sync.RWMutex
	payslips map[string]payslip.Payslip
	now      func() time.Time
}

func NewPayslipRepository() payslip.PayslipRepository {
	return &payslipRepository{
		payslips: make(map[string]payslip.Payslip),
		now:      time.Now,
	}
}

func (r *payslipRepository) Create(ctx context.Context, p payslip.Payslip) (payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.payslips {
		if existing.EmployeeID == p.EmployeeID && existing.PeriodMonth == p.PeriodMonth && existing.PeriodYear == p.PeriodYear {
			return payslip.Payslip{}, payslip.ErrPayslipAlreadyExists
		}
	}
	if _, ok := r.payslips[p.ID]; ok {
		return payslip.Payslip{}, payslip.ErrPayslipAlreadyExists
	}

	now := r.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = payslip.PayslipStatusDraft
	}
	p = clonePayslip(p)
	r.payslips[p.ID] = p

	return clonePayslip(p), nil
}

func (r *payslipRepository) GetByID(ctx context.Context, id string) (payslip.Payslip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payslips[id]
	if !ok {
		return payslip.Payslip{}, payslip.ErrPayslipNotFound
	}
	return clonePayslip(p), nil
}

func (r *payslipRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payslip.Payslip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payslips {
		if p.EmployeeID == employeeID && p.PeriodMonth == month && p.PeriodYear == year {
			return clonePayslip(p), nil
		}
	}
	return payslip.Payslip{}, payslip.ErrPayslipNotFound
}

func (r *payslipRepository) List(ctx context.Context, filter payslip.PayslipFilter) ([]payslip.Payslip, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []payslip.Payslip
	for _, p := range r.payslips {
		if filter.PeriodMonth != nil && p.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != nil && p.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		matched = append(matched, p)
	}

	less := lessBy(filter.SortBy)
	desc := filter.SortOrder != "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	totalCount := int64(len(matched))

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return []payslip.Payslip{}, totalCount, nil
	}
	end := min(offset+filter.Limit, len(matched))

	records := make([]payslip.Payslip, 0, end-offset)
	for _, p := range matched[offset:end] {
		records = append(records, clonePayslip(p))
	}
	return records, totalCount, nil
}

func (r *payslipRepository) ListByPeriod(ctx context.Context, month, year int) ([]payslip.Payslip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := []payslip.Payslip{}
	for _, p := range r.payslips {
		if p.PeriodMonth == month && p.PeriodYear == year {
			records = append(records, clonePayslip(p))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].EmployeeCode != records[j].EmployeeCode {
			return records[i].EmployeeCode < records[j].EmployeeCode
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})
	return records, nil
}

func (r *payslipRepository) Issue(ctx context.Context, ids []string, issuedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		p, ok := r.payslips[id]
		if !ok {
			return payslip.ErrPayslipNotFound
		}
		if p.Status == payslip.PayslipStatusIssued {
			return payslip.ErrPayslipAlreadyIssued
		}
	}

	for _, id := range ids {
		p := r.payslips[id]
		at := issuedAt
		p.Status = payslip.PayslipStatusIssued
		p.IssuedAt = &at
		p.UpdatedAt = r.now()
		r.payslips[id] = p
	}
	return nil
}

func (r *payslipRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payslips[id]
	if !ok {
		return payslip.ErrPayslipNotFound
	}
	if p.Status == payslip.PayslipStatusIssued {
		return payslip.ErrCannotDeleteIssued
	}
	delete(r.payslips, id)
	return nil
}

func lessBy(sortBy string) func(a, b payslip.Payslip) bool {
	switch sortBy {
	case "period":
		return func(a, b payslip.Payslip) bool {
			if a.PeriodYear != b.PeriodYear {
				return a.PeriodYear < b.PeriodYear
			}
			return a.PeriodMonth < b.PeriodMonth
		}
	case "employee_name":
		return func(a, b payslip.Payslip) bool {
			return strings.ToLower(a.EmployeeName) < strings.ToLower(b.EmployeeName)
		}
	case "net_pay":
		return func(a, b payslip.Payslip) bool { return a.NetPay.LessThan(b.NetPay) }
	default:
		return func(a, b payslip.Payslip) bool {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
}

// clonePayslip copies the maps and pointers so callers never share state with the store.
func clonePayslip(p payslip.Payslip) payslip.Payslip {
	p.Earnings = cloneAmounts(p.Earnings)
	p.Deductions = cloneAmounts(p.Deductions)
	if p.FilePath != nil {
		path := *p.FilePath
		p.FilePath = &path
	}
	if p.IssuedAt != nil {
		at := *p.IssuedAt
		p.IssuedAt = &at
	}
	return p
}

func cloneAmounts(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
