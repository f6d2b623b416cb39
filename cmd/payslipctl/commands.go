package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/amountwords"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/render"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/statutory"
	payslipService "github.com/cmlabs-hris/payslip-engine/internal/service/payslip"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var inputFlag = &cli.StringFlag{
	Name:    "input",
	Aliases: []string{"i"},
	Value:   "-",
	Usage:   "JSON request file, - for stdin",
}

// ========== calculate ==========

func calculateCommand() *cli.Command {
	return &cli.Command{
		Name:  "calculate",
		Usage: "calculate one payslip and print the result as JSON",
		Flags: []cli.Flag{inputFlag},
		Action: func(c *cli.Context) error {
			var req payslip.CalculatePayslipRequest
			if err := readRequest(c, &req); err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return cli.Exit(err.Error(), 2)
			}

			calc, err := newCalculator(c)
			if err != nil {
				return err
			}
			result := calc.CalculatePayslip(req.Employee, req.SalaryStructure, req.Attendance, req.Options)
			if err := writeJSON(c.App.Writer, result); err != nil {
				return err
			}
			if !result.Success {
				return cli.Exit("calculation failed: "+result.Error, 1)
			}
			return nil
		},
	}
}

// ========== bulk ==========

func bulkCommand() *cli.Command {
	return &cli.Command{
		Name:  "bulk",
		Usage: "calculate payslips for a batch of employees",
		Flags: []cli.Flag{
			inputFlag,
			&cli.IntFlag{Name: "workers", Usage: "parallel calculations, 0 for the default"},
		},
		Action: func(c *cli.Context) error {
			var req payslip.BulkCalculateRequest
			if err := readRequest(c, &req); err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return cli.Exit(err.Error(), 2)
			}

			calc, err := newCalculator(c, payslipService.WithBulkWorkers(c.Int("workers")))
			if err != nil {
				return err
			}
			results := calc.CalculateBulk(c.Context, req.Employees)
			if err := writeJSON(c.App.Writer, results); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if !r.Calculation.Success {
					failed++
				}
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d calculations failed", failed, len(results)), 1)
			}
			return nil
		},
	}
}

// ========== words ==========

func wordsCommand() *cli.Command {
	return &cli.Command{
		Name:      "words",
		Usage:     "spell an amount in Indian English",
		ArgsUsage: "<amount>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "plain", Usage: "spell the number only, without \"Rupees Only\""},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one amount", 2)
			}
			amount, err := decimal.NewFromString(strings.ReplaceAll(c.Args().First(), ",", ""))
			if err != nil {
				return cli.Exit("invalid amount "+c.Args().First(), 2)
			}
			words := amountwords.Rupees(amount)
			if c.Bool("plain") {
				words = amountwords.Number(amount)
			}
			_, err = fmt.Fprintln(c.App.Writer, words)
			return err
		},
	}
}

// ========== pdf ==========

func pdfCommand() *cli.Command {
	return &cli.Command{
		Name:  "pdf",
		Usage: "calculate a payslip and render it to PDF",
		Flags: []cli.Flag{
			inputFlag,
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "template YAML file"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "PDF file to write"},
		},
		Action: func(c *cli.Context) error {
			var req payslip.GeneratePayslipRequest
			if err := readRequest(c, &req); err != nil {
				return err
			}

			tmpl := payslip.DefaultTemplate()
			if req.Template != nil {
				tmpl = *req.Template
			}
			if path := c.String("template"); path != "" {
				t, err := loadTemplate(path)
				if err != nil {
					return err
				}
				tmpl = t
				req.Template = &t
			}
			if err := req.Validate(); err != nil {
				return cli.Exit(err.Error(), 2)
			}

			calc, err := newCalculator(c)
			if err != nil {
				return err
			}
			result := calc.CalculatePayslip(req.Employee, req.SalaryStructure, req.Attendance, req.Options)
			if !result.Success {
				return cli.Exit("calculation failed: "+result.Error, 1)
			}

			content, err := render.PayslipPDF(render.PayslipData{
				Employee: req.Employee,
				Period:   payslip.PeriodLabel(req.PeriodMonth, req.PeriodYear),
				Result:   result,
			}, tmpl)
			if err != nil {
				return err
			}

			output := c.String("output")
			if output == "" {
				output = fmt.Sprintf("payslip-%s-%04d-%02d.pdf", req.Employee.ID, req.PeriodYear, req.PeriodMonth)
			}
			if err := os.WriteFile(output, content, 0o644); err != nil {
				return fmt.Errorf("write pdf: %w", err)
			}
			_, err = fmt.Fprintln(c.App.Writer, output)
			return err
		},
	}
}

func loadTemplate(path string) (payslip.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payslip.Template{}, fmt.Errorf("read template: %w", err)
	}

	var tmpl payslip.Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return payslip.Template{}, fmt.Errorf("%w: %s: %v", payslip.ErrInvalidTemplate, path, err)
	}
	if err := tmpl.Validate(); err != nil {
		return payslip.Template{}, fmt.Errorf("%w: %s: %v", payslip.ErrInvalidTemplate, path, err)
	}
	return tmpl, nil
}

// ========== rules ==========

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "print the active statutory rules as YAML",
		Action: func(c *cli.Context) error {
			rules, err := loadRules(c)
			if err != nil {
				return err
			}
			return statutory.Encode(c.App.Writer, rules)
		},
	}
}

func readRequest(c *cli.Context, v any) error {
	var r io.Reader = c.App.Reader
	if path := c.String("input"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return cli.Exit("empty request", 2)
		}
		return cli.Exit("invalid request JSON: "+err.Error(), 2)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
