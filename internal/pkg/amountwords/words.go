// Package amountwords spells rupee amounts in English using the Indian
// numbering system (thousand, lakh, crore).
package amountwords

import (
	"strings"

	"github.com/shopspring/decimal"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

var (
	crore    = decimal.NewFromInt(10000000)
	lakh     = decimal.NewFromInt(100000)
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
)

// Rupees spells the whole-rupee part of amount followed by "Rupees Only".
// Paise are dropped. Negative amounts are prefixed with "Minus".
func Rupees(amount decimal.Decimal) string {
	n := amount.Truncate(0)
	if n.IsZero() {
		return "Zero Rupees Only"
	}

	var b strings.Builder
	if n.IsNegative() {
		b.WriteString("Minus ")
		n = n.Neg()
	}
	b.WriteString(spell(n))
	b.WriteString(" Rupees Only")
	return b.String()
}

// Number spells a non-negative whole number without the currency suffix.
func Number(n decimal.Decimal) string {
	n = n.Truncate(0).Abs()
	if n.IsZero() {
		return "Zero"
	}
	return spell(n)
}

func spell(n decimal.Decimal) string {
	var parts []string

	if n.GreaterThanOrEqual(crore) {
		// Counts of crore may themselves run past a lakh.
		parts = append(parts, spell(n.Div(crore).Truncate(0)), "Crore")
		n = n.Mod(crore)
	}
	for _, g := range []struct {
		unit decimal.Decimal
		name string
	}{
		{lakh, "Lakh"},
		{thousand, "Thousand"},
		{hundred, "Hundred"},
	} {
		if n.GreaterThanOrEqual(g.unit) {
			parts = append(parts, belowHundred(n.Div(g.unit).Truncate(0).IntPart()), g.name)
			n = n.Mod(g.unit)
		}
	}
	if n.IsPositive() {
		parts = append(parts, belowHundred(n.IntPart()))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
