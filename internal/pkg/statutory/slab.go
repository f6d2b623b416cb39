package statutory

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Slab is one band of a table. UpTo is the inclusive upper bound; nil marks the
// open-ended last band. Income tax bands use Rate, professional tax bands use Amount.
type Slab struct {
	UpTo   *decimal.Decimal `yaml:"upTo,omitempty" json:"up_to,omitempty"`
	Rate   decimal.Decimal  `yaml:"rate,omitempty" json:"rate,omitempty"`
	Amount decimal.Decimal  `yaml:"amount,omitempty" json:"amount,omitempty"`
}

var (
	errEmptySlabs      = errors.New("at least one slab is required")
	errSlabOrder       = errors.New("slab bounds must be strictly ascending")
	errSlabOpenEnd     = errors.New("only the last slab may be open-ended and it must be")
	errNegativeSlabFee = errors.New("slab amount must be non-negative")
)

func validateSlabs(slabs []Slab) error {
	if len(slabs) == 0 {
		return errEmptySlabs
	}
	last := len(slabs) - 1
	var prev *decimal.Decimal
	for i, s := range slabs {
		if (s.UpTo == nil) != (i == last) {
			return errSlabOpenEnd
		}
		if s.Amount.IsNegative() {
			return errNegativeSlabFee
		}
		if s.UpTo != nil {
			if prev != nil && !s.UpTo.GreaterThan(*prev) {
				return errSlabOrder
			}
			prev = s.UpTo
		}
	}
	return nil
}

// lookup returns the first slab whose bound covers v.
func lookup(slabs []Slab, v decimal.Decimal) Slab {
	for _, s := range slabs {
		if s.UpTo == nil || v.LessThanOrEqual(*s.UpTo) {
			return s
		}
	}
	return Slab{}
}

// progressive sums rate*portion over each band that v reaches.
func progressive(slabs []Slab, v decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	lower := decimal.Zero
	for _, s := range slabs {
		if !v.GreaterThan(lower) {
			break
		}
		upper := v
		if s.UpTo != nil && s.UpTo.LessThan(v) {
			upper = *s.UpTo
		}
		total = total.Add(upper.Sub(lower).Mul(s.Rate))
		if s.UpTo == nil {
			break
		}
		lower = *s.UpTo
	}
	return total
}
