package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payslip.PayslipRepository {
	return &payslipRepository{db: db}
}

const payslipColumns = `
	id, employee_id, employee_code, employee_name, period_month, period_year,
	earnings, deductions, gross_salary, total_deductions, net_pay, net_pay_in_words,
	attendance, metadata, employer_contributions, template_name, file_path,
	status, issued_at, created_at, updated_at`

// payslipRow holds the JSONB columns until they are decoded.
type payslipRow struct {
	payslip.Payslip
	earnings, deductions, attendance, metadata, employer []byte
}

func (row *payslipRow) targets() []interface{} {
	p := &row.Payslip
	return []interface{}{
		&p.ID, &p.EmployeeID, &p.EmployeeCode, &p.EmployeeName, &p.PeriodMonth, &p.PeriodYear,
		&row.earnings, &row.deductions, &p.GrossSalary, &p.TotalDeductions, &p.NetPay, &p.NetPayInWords,
		&row.attendance, &row.metadata, &row.employer, &p.TemplateName, &p.FilePath,
		&p.Status, &p.IssuedAt, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (row *payslipRow) decode() (payslip.Payslip, error) {
	p := row.Payslip
	for _, col := range []struct {
		name string
		raw  []byte
		dst  interface{}
	}{
		{"earnings", row.earnings, &p.Earnings},
		{"deductions", row.deductions, &p.Deductions},
		{"attendance", row.attendance, &p.Attendance},
		{"metadata", row.metadata, &p.Metadata},
		{"employer_contributions", row.employer, &p.EmployerContributions},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return payslip.Payslip{}, fmt.Errorf("failed to decode payslip %s: %w", col.name, err)
		}
	}
	return p, nil
}

func (r *payslipRepository) Create(ctx context.Context, p payslip.Payslip) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	earningsJSON, err := json.Marshal(p.Earnings)
	if err != nil {
		return payslip.Payslip{}, fmt.Errorf("failed to encode earnings: %w", err)
	}
	deductionsJSON, err := json.Marshal(p.Deductions)
	if err != nil {
		return payslip.Payslip{}, fmt.Errorf("failed to encode deductions: %w", err)
	}
	attendanceJSON, err := json.Marshal(p.Attendance)
	if err != nil {
		return payslip.Payslip{}, fmt.Errorf("failed to encode attendance: %w", err)
	}
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return payslip.Payslip{}, fmt.Errorf("failed to encode metadata: %w", err)
	}
	employerJSON, err := json.Marshal(p.EmployerContributions)
	if err != nil {
		return payslip.Payslip{}, fmt.Errorf("failed to encode employer contributions: %w", err)
	}

	status := p.Status
	if status == "" {
		status = payslip.PayslipStatusDraft
	}

	query := `
		INSERT INTO payslips (
			id, employee_id, employee_code, employee_name, period_month, period_year,
			earnings, deductions, gross_salary, total_deductions, net_pay, net_pay_in_words,
			attendance, metadata, employer_contributions, template_name, file_path, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + payslipColumns

	var row payslipRow
	err = q.QueryRow(ctx, query,
		p.ID, p.EmployeeID, p.EmployeeCode, p.EmployeeName, p.PeriodMonth, p.PeriodYear,
		earningsJSON, deductionsJSON, p.GrossSalary, p.TotalDeductions, p.NetPay, p.NetPayInWords,
		attendanceJSON, metadataJSON, employerJSON, p.TemplateName, p.FilePath, status,
	).Scan(row.targets()...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return payslip.Payslip{}, payslip.ErrPayslipAlreadyExists
		}
		return payslip.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return row.decode()
}

func (r *payslipRepository) GetByID(ctx context.Context, id string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE id = $1`

	var row payslipRow
	if err := q.QueryRow(ctx, query, id).Scan(row.targets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return row.decode()
}

func (r *payslipRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3`

	var row payslipRow
	if err := q.QueryRow(ctx, query, employeeID, month, year).Scan(row.targets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return row.decode()
}

func (r *payslipRepository) List(ctx context.Context, filter payslip.PayslipFilter) ([]payslip.Payslip, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM payslips WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		baseQuery += fmt.Sprintf(" AND period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	// Sort
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	orderBy := fmt.Sprintf("created_at %s, id %s", sortOrder, sortOrder)
	switch filter.SortBy {
	case "period":
		orderBy = fmt.Sprintf("period_year %s, period_month %s, employee_code ASC", sortOrder, sortOrder)
	case "employee_name":
		orderBy = fmt.Sprintf("LOWER(employee_name) %s", sortOrder)
	case "net_pay":
		orderBy = fmt.Sprintf("net_pay %s", sortOrder)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		payslipColumns, baseQuery, orderBy, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	records, err := r.query(ctx, q, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, totalCount, nil
}

func (r *payslipRepository) ListByPeriod(ctx context.Context, month, year int) ([]payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips
		WHERE period_month = $1 AND period_year = $2
		ORDER BY employee_code, employee_id`

	return r.query(ctx, q, query, month, year)
}

func (r *payslipRepository) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]payslip.Payslip, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	records := []payslip.Payslip{}
	for rows.Next() {
		var row payslipRow
		if err := rows.Scan(row.targets()...); err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		p, err := row.decode()
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	return records, nil
}

func (r *payslipRepository) Issue(ctx context.Context, ids []string, issuedAt time.Time) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		rows, err := q.Query(ctx, `SELECT id, status FROM payslips WHERE id = ANY($1) FOR UPDATE`, ids)
		if err != nil {
			return fmt.Errorf("failed to lock payslips: %w", err)
		}
		statuses := make(map[string]string, len(ids))
		for rows.Next() {
			var id, status string
			if err := rows.Scan(&id, &status); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan payslip status: %w", err)
			}
			statuses[id] = status
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to lock payslips: %w", err)
		}

		for _, id := range ids {
			status, ok := statuses[id]
			if !ok {
				return payslip.ErrPayslipNotFound
			}
			if status == string(payslip.PayslipStatusIssued) {
				return payslip.ErrPayslipAlreadyIssued
			}
		}

		query := `
			UPDATE payslips
			SET status = 'issued', issued_at = $1, updated_at = NOW()
			WHERE id = ANY($2) AND status = 'draft'
		`
		if _, err := q.Exec(ctx, query, issuedAt, ids); err != nil {
			return fmt.Errorf("failed to issue payslips: %w", err)
		}
		return nil
	})
}

func (r *payslipRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	// Check if payslip is already issued
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM payslips WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payslip.ErrPayslipNotFound
		}
		return fmt.Errorf("failed to check payslip status: %w", err)
	}
	if status == string(payslip.PayslipStatusIssued) {
		return payslip.ErrCannotDeleteIssued
	}

	var deletedID string
	err = q.QueryRow(ctx, `DELETE FROM payslips WHERE id = $1 AND status = 'draft' RETURNING id`, id).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payslip.ErrPayslipNotFound
		}
		return fmt.Errorf("failed to delete payslip: %w", err)
	}

	return nil
}
