package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/statutory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const calculateRequest = `{
  "employee": {"id": "EMP001", "first_name": "Asha", "last_name": "Rao"},
  "salary_structure": {"basic_salary": "30000"},
  "attendance": {"total_working_days": 26, "present_days": 26}
}`

type runResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(strings.NewReader(stdin), &stdout, &stderr)
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"payslipctl"}, args...))
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var coder cli.ExitCoder
	require.ErrorAs(t, err, &coder)
	return coder.ExitCode()
}

// ===== CALCULATE TESTS =====

func TestCalculate_FromStdin(t *testing.T) {
	res := runCLI(t, calculateRequest, "calculate")
	require.NoError(t, res.err)

	var result payslip.CalculationResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &result))
	assert.True(t, result.Success)
	assert.True(t, decimal.RequireFromString("41960").Equal(result.NetPay), result.NetPay.String())
	assert.Equal(t, "Forty One Thousand Nine Hundred Sixty Rupees Only", result.NetPayInWords)
}

func TestCalculate_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(calculateRequest), 0o644))

	res := runCLI(t, "", "calculate", "--input", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"success": true`)
}

func TestCalculate_InvalidJSON(t *testing.T) {
	res := runCLI(t, "{not json", "calculate")
	require.Error(t, res.err)
	assert.Equal(t, 2, exitCode(t, res.err))
}

func TestCalculate_ValidationError(t *testing.T) {
	res := runCLI(t, `{"employee": {"id": "EMP001"}, "salary_structure": {"basic_salary": "0"}}`, "calculate")
	require.Error(t, res.err)
	assert.Equal(t, 2, exitCode(t, res.err))
}

// ===== BULK TESTS =====

func TestBulk_ReportsFailedEntries(t *testing.T) {
	req := `{"employees": [
	  {"id": "EMP001", "first_name": "Asha", "salary_structure": {"basic_salary": "30000"}, "attendance": {"total_working_days": 26, "present_days": 26}},
	  {"id": "EMP002", "first_name": "Ravi", "salary_structure": {"basic_salary": "0"}, "attendance": {"total_working_days": 26, "present_days": 26}}
	]}`

	res := runCLI(t, req, "bulk", "--workers", "2")
	require.Error(t, res.err)
	assert.Equal(t, 1, exitCode(t, res.err))
	assert.Contains(t, res.err.Error(), "1 of 2 calculations failed")

	var results []payslip.BulkResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "EMP001", results[0].EmployeeID)
	assert.True(t, results[0].Calculation.Success)
	assert.False(t, results[1].Calculation.Success)
}

// ===== WORDS TESTS =====

func TestWords(t *testing.T) {
	tests := []struct {
		arg      string
		expected string
	}{
		{"41960", "Forty One Thousand Nine Hundred Sixty Rupees Only"},
		{"1,00,000.75", "One Lakh Rupees Only"},
		{"0", "Zero Rupees Only"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			res := runCLI(t, "", "words", tt.arg)
			require.NoError(t, res.err)
			assert.Equal(t, tt.expected, strings.TrimSpace(res.stdout))
		})
	}
}

func TestWords_Plain(t *testing.T) {
	res := runCLI(t, "", "words", "--plain", "2019")
	require.NoError(t, res.err)
	assert.Equal(t, "Two Thousand Nineteen", strings.TrimSpace(res.stdout))
}

func TestWords_InvalidAmount(t *testing.T) {
	res := runCLI(t, "", "words", "lots")
	require.Error(t, res.err)
	assert.Equal(t, 2, exitCode(t, res.err))
}

// ===== PDF TESTS =====

func TestPDF_WritesFile(t *testing.T) {
	req := `{"period_month": 3, "period_year": 2025,
	  "employee": {"id": "EMP001", "first_name": "Asha", "last_name": "Rao"},
	  "salary_structure": {"basic_salary": "30000"},
	  "attendance": {"total_working_days": 26, "present_days": 26}}`
	output := filepath.Join(t.TempDir(), "out.pdf")

	res := runCLI(t, req, "pdf", "--output", output)
	require.NoError(t, res.err)
	assert.Equal(t, output, strings.TrimSpace(res.stdout))

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestPDF_InvalidTemplateFile(t *testing.T) {
	tmplPath := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(tmplPath, []byte("name: \"\"\nearnings:\n  - key: basicSalary\n"), 0o644))

	res := runCLI(t, `{}`, "pdf", "--template", tmplPath)
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, payslip.ErrInvalidTemplate)
}

// ===== RULES TESTS =====

func TestRules_PrintsDefault(t *testing.T) {
	res := runCLI(t, "", "rules")
	require.NoError(t, res.err)

	rules, err := statutory.Decode(strings.NewReader(res.stdout))
	require.NoError(t, err)
	assert.Equal(t, statutory.Default().Version, rules.Version)
}

func TestRules_MissingFile(t *testing.T) {
	res := runCLI(t, "", "--rules", filepath.Join(t.TempDir(), "missing.yaml"), "rules")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, os.ErrNotExist)
}
