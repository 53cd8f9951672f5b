// Package money provides exact arithmetic and formatting for amounts held
// in minor currency units (cents). All arithmetic happens on integers;
// division by 100 occurs only at the formatting boundary.
package money

import (
	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units. Negative values are permitted
// at the type level (differences, adjustments) but every externally facing
// amount is validated non-negative before leaving the process.
type Cents int64

// Decimal returns the amount in major units as an exact decimal (34900 -> 349).
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount with exactly two fraction digits, the wire
// format payment providers expect ("349.00", "401.46").
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Display formats the amount for human-facing output, prefixed with the
// currency code ("CAD 349.00").
func (c Cents) Display(currency string) string {
	return currency + " " + c.String()
}

// IsNegative reports whether the amount is below zero.
func (c Cents) IsNegative() bool {
	return c < 0
}

// MulQty returns the amount multiplied by an item quantity.
func (c Cents) MulQty(qty int) Cents {
	return c * Cents(qty)
}

// Clamp returns the amount floored at zero. Used where an optional input
// (shipping, tax) may arrive negative from a client and must be treated as
// absent rather than rejected.
func (c Cents) Clamp() Cents {
	if c < 0 {
		return 0
	}
	return c
}

// Sum adds amounts without leaving integer minor units.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}
