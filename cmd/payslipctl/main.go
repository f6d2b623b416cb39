// Command payslipctl runs payslip calculations offline from JSON request files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	appHTTP "github.com/cmlabs-hris/payslip-engine/internal/handler/http"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/statutory"
	payslipService "github.com/cmlabs-hris/payslip-engine/internal/service/payslip"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "payslipctl",
		Usage:     "calculate and print Indian payslips without the API",
		Version:   version,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rules",
				Usage:   "statutory rules YAML file (defaults to the built-in FY table)",
				EnvVars: []string{"PAYROLL_RULES_FILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			calculateCommand(),
			bulkCommand(),
			wordsCommand(),
			pdfCommand(),
			rulesCommand(),
		},
	}
}

func loadRules(c *cli.Context) (statutory.Rules, error) {
	path := c.String("rules")
	if path == "" {
		return statutory.Default(), nil
	}
	return statutory.Load(path)
}

func newCalculator(c *cli.Context, opts ...payslipService.CalculatorOption) (*payslipService.Calculator, error) {
	rules, err := loadRules(c)
	if err != nil {
		return nil, err
	}
	return payslipService.NewCalculator(rules, newLogger(c), opts...), nil
}

func newLogger(c *cli.Context) *slog.Logger {
	return appHTTP.NewLogger(c.App.ErrWriter, c.App.Name, c.App.Version, "cli", c.String("log-level"))
}
