package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payslip-engine/internal/pkg/database"
)

const payslipSchema = `
CREATE TABLE IF NOT EXISTS payslips (
	id                     UUID PRIMARY KEY,
	employee_id            TEXT NOT NULL,
	employee_code          TEXT NOT NULL DEFAULT '',
	employee_name          TEXT NOT NULL,
	period_month           SMALLINT NOT NULL CHECK (period_month BETWEEN 1 AND 12),
	period_year            SMALLINT NOT NULL,
	earnings               JSONB NOT NULL DEFAULT '{}'::jsonb,
	deductions             JSONB NOT NULL DEFAULT '{}'::jsonb,
	gross_salary           NUMERIC(15, 2) NOT NULL,
	total_deductions       NUMERIC(15, 2) NOT NULL,
	net_pay                NUMERIC(15, 2) NOT NULL,
	net_pay_in_words       TEXT NOT NULL,
	attendance             JSONB NOT NULL DEFAULT '{}'::jsonb,
	metadata               JSONB NOT NULL DEFAULT '{}'::jsonb,
	employer_contributions JSONB NOT NULL DEFAULT '{}'::jsonb,
	template_name          TEXT NOT NULL,
	file_path              TEXT,
	status                 TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'issued')),
	issued_at              TIMESTAMPTZ,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uk_payslip_employee_period UNIQUE (employee_id, period_month, period_year)
);

CREATE INDEX IF NOT EXISTS idx_payslips_period ON payslips (period_year, period_month);
CREATE INDEX IF NOT EXISTS idx_payslips_status ON payslips (status);
`

// EnsureSchema creates the payslip tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, payslipSchema); err != nil {
		return fmt.Errorf("failed to apply payslip schema: %w", err)
	}
	return nil
}
