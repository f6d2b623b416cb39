package payslip

import (
	"github.com/cmlabs-hris/payslip-engine/internal/domain/payslip"
)

// ValidateSalaryStructure is the pre-flight check callers may run before
// CalculatePayslip, which does not validate the structure itself.
func (c *Calculator) ValidateSalaryStructure(structure payslip.SalaryStructure) payslip.StructureValidation {
	return ValidateSalaryStructure(structure)
}

func ValidateSalaryStructure(structure payslip.SalaryStructure) payslip.StructureValidation {
	problems := structure.Problems()
	if problems == nil {
		problems = []string{}
	}
	return payslip.StructureValidation{
		IsValid: len(problems) == 0,
		Errors:  problems,
	}
}
