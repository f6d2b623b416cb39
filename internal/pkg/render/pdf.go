// Package render produces printable payslips (PDF) and payroll registers (XLSX).
package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// PayslipData is everything printed on one payslip.
type PayslipData struct {
	Employee payslip.EmployeeData
	Period   string
	Result   payslip.CalculationResult
}

const (
	pageWidth   = 190.0
	labelWidth  = 60.0
	amountWidth = 35.0
	rowHeight   = 7.0
)

// PayslipPDF renders an A4 payslip laid out by tmpl.
func PayslipPDF(data PayslipData, tmpl payslip.Template) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetTitle("Payslip "+data.Period, true)
	pdf.SetCreator("payslip-engine", true)
	pdf.AddPage()

	writeHeader(pdf, tmpl, data.Period)
	writeEmployee(pdf, data)
	writeLines(pdf, tmpl.EarningLines(data.Result.Earnings), tmpl.DeductionLines(data.Result.Deductions))
	writeTotals(pdf, data.Result, tmpl)
	if tmpl.ShowEmployerContributions {
		writeEmployerContributions(pdf, data.Result.EmployerContributions)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	note := tmpl.FooterNote
	if note == "" {
		note = "This is a computer-generated payslip and does not require a signature."
	}
	pdf.MultiCell(pageWidth, 4, note, "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf, tmpl payslip.Template, period string) {
	if tmpl.CompanyName != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(pageWidth, 9, tmpl.CompanyName, "", 1, "C", false, 0, "")
	}
	if tmpl.CompanyAddress != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(pageWidth, 4.5, tmpl.CompanyAddress, "", "C", false)
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(pageWidth, 9, "Payslip for "+period, "B", 1, "C", false, 0, "")
	pdf.Ln(3)
}

func writeEmployee(pdf *gofpdf.Fpdf, data PayslipData) {
	e := data.Employee
	a := data.Result.AttendanceSummary

	left := [][2]string{
		{"Employee Name", e.FullName()},
		{"Employee Code", e.EmployeeCode},
		{"Designation", deref(e.Designation)},
		{"Department", deref(e.Department)},
		{"PAN", deref(e.PAN)},
		{"UAN", deref(e.UAN)},
	}
	right := [][2]string{
		{"Working Days", strconv.Itoa(a.TotalWorkingDays)},
		{"Payable Days", strconv.Itoa(a.PayableDays)},
		{"LOP Days", strconv.Itoa(a.LOPDays)},
		{"Overtime Hours", a.OvertimeHours.String()},
		{"Tax Regime", data.Result.CalculationMetadata.TaxRegime},
		{"State", data.Result.CalculationMetadata.State},
	}

	pdf.SetFont("Helvetica", "", 9)
	for i := range left {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(35, 5.5, left[i][0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(60, 5.5, left[i][1], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(35, 5.5, right[i][0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(60, 5.5, right[i][1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func writeLines(pdf *gofpdf.Fpdf, earnings, deductions []payslip.Line) {
	pdf.SetFillColor(230, 236, 245)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth, rowHeight, "Earnings", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, "Amount", "1", 0, "R", true, 0, "")
	pdf.CellFormat(labelWidth, rowHeight, "Deductions", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	rows := max(len(earnings), len(deductions))
	for i := 0; i < rows; i++ {
		writeLineCells(pdf, earnings, i, 0)
		writeLineCells(pdf, deductions, i, 1)
	}
}

func writeLineCells(pdf *gofpdf.Fpdf, lines []payslip.Line, i int, ln int) {
	label, amount := "", ""
	if i < len(lines) {
		label, amount = lines[i].Label, FormatINR(lines[i].Amount)
	}
	pdf.CellFormat(labelWidth, rowHeight, label, "LR", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, amount, "LR", ln, "R", false, 0, "")
}

func writeTotals(pdf *gofpdf.Fpdf, r payslip.CalculationResult, tmpl payslip.Template) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth, rowHeight, "Gross Earnings", "1", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, FormatINR(r.GrossSalary), "1", 0, "R", false, 0, "")
	pdf.CellFormat(labelWidth, rowHeight, "Total Deductions", "1", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, FormatINR(r.TotalDeductions), "1", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(labelWidth*2+amountWidth, 9, "Net Pay (INR)", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, 9, FormatINR(r.NetPay), "1", 1, "R", true, 0, "")

	if tmpl.ShowAmountInWords && r.NetPayInWords != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(pageWidth, 6, "Amount in words: "+r.NetPayInWords, "", "L", false)
	}
}

func writeEmployerContributions(pdf *gofpdf.Fpdf, c payslip.EmployerContributions) {
	if c.EmployerPF == nil && c.EmployerESIC == nil {
		return
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(pageWidth, 6, "Employer Contributions (not deducted from pay)", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	writeContribution(pdf, "Employer PF", c.EmployerPF)
	writeContribution(pdf, "Employer ESIC", c.EmployerESIC)
}

func writeContribution(pdf *gofpdf.Fpdf, label string, amount *decimal.Decimal) {
	if amount == nil {
		return
	}
	pdf.CellFormat(labelWidth, 5.5, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, 5.5, FormatINR(*amount), "", 1, "R", false, 0, "")
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
