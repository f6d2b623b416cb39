package render

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Register"

// RegisterRow is one employee line in a payroll register.
type RegisterRow struct {
	EmployeeCode    string
	EmployeeName    string
	PayableDays     int
	Earnings        map[string]decimal.Decimal
	Deductions      map[string]decimal.Decimal
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	EmployerPF      decimal.Decimal
	EmployerESIC    decimal.Decimal
	Status          string
}

// RegisterXLSX builds a payroll register workbook: one row per employee, one
// column per earning and deduction that appears in any row, and a totals row.
func RegisterXLSX(title string, rows []RegisterRow, tmpl payslip.Template) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	earningCols := registerColumns(tmpl.Earnings, rows, func(r RegisterRow) map[string]decimal.Decimal { return r.Earnings })
	deductionCols := registerColumns(tmpl.Deductions, rows, func(r RegisterRow) map[string]decimal.Decimal { return r.Deductions })

	headers := []string{"Employee Code", "Employee Name", "Payable Days"}
	for _, c := range earningCols {
		headers = append(headers, c.Label)
	}
	headers = append(headers, "Gross Salary")
	for _, c := range deductionCols {
		headers = append(headers, c.Label)
	}
	headers = append(headers, "Total Deductions", "Net Pay", "Employer PF", "Employer ESIC", "Status")

	if err := f.SetCellValue(registerSheet, "A1", title); err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(registerSheet, cell, h); err != nil {
			return nil, err
		}
	}

	totals := make([]decimal.Decimal, len(headers))
	numeric := make([]bool, len(headers))

	for r, row := range rows {
		values := []any{row.EmployeeCode, row.EmployeeName, row.PayableDays}
		amounts := make([]*decimal.Decimal, 0, len(headers))
		amounts = append(amounts, nil, nil, nil)
		for _, c := range earningCols {
			v := row.Earnings[c.Key]
			amounts = append(amounts, &v)
		}
		gross := row.GrossSalary
		amounts = append(amounts, &gross)
		for _, c := range deductionCols {
			v := row.Deductions[c.Key]
			amounts = append(amounts, &v)
		}
		td, net, pf, esic := row.TotalDeductions, row.NetPay, row.EmployerPF, row.EmployerESIC
		amounts = append(amounts, &td, &net, &pf, &esic, nil)

		for col := 3; col < len(headers); col++ {
			if amounts[col] == nil {
				values = append(values, row.Status)
				continue
			}
			numeric[col] = true
			totals[col] = totals[col].Add(*amounts[col])
			values = append(values, amounts[col].InexactFloat64())
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+3)
			if err := f.SetCellValue(registerSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(rows) + 3
	if err := f.SetCellValue(registerSheet, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	for col := range headers {
		if !numeric[col] {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(col+1, totalRow)
		if err := f.SetCellValue(registerSheet, cell, totals[col].InexactFloat64()); err != nil {
			return nil, err
		}
	}

	if err := styleRegister(f, len(headers), totalRow); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write register: %w", err)
	}
	return buf.Bytes(), nil
}

// registerColumns returns template fields used by at least one row, followed by
// any other keys in sorted order.
func registerColumns(fields []payslip.TemplateField, rows []RegisterRow, pick func(RegisterRow) map[string]decimal.Decimal) []payslip.TemplateField {
	present := make(map[string]bool)
	for _, r := range rows {
		for k := range pick(r) {
			present[k] = true
		}
	}

	var cols []payslip.TemplateField
	for _, f := range fields {
		if present[f.Key] {
			cols = append(cols, f)
			delete(present, f.Key)
		}
	}
	var extra []string
	for k := range present {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		cols = append(cols, payslip.TemplateField{Key: k, Label: k})
	}
	return cols
}

func styleRegister(f *excelize.File, columns, totalRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}
	totalMoney, err := f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	lastCol, _ := excelize.ColumnNumberToName(columns)
	if err := f.SetCellStyle(registerSheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(registerSheet, "A2", lastCol+"2", bold); err != nil {
		return err
	}
	if totalRow > 3 {
		if err := f.SetCellStyle(registerSheet, "D3", fmt.Sprintf("%s%d", lastCol, totalRow-1), money); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(registerSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), totalMoney); err != nil {
		return err
	}
	if err := f.SetColWidth(registerSheet, "A", "A", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(registerSheet, "B", "B", 28); err != nil {
		return err
	}
	return f.SetColWidth(registerSheet, "C", lastCol, 16)
}
