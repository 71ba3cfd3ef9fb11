// Package money implements accrued_cost as an exact decimal quantity, kept
// separate from temperature (an IEEE-754 double): the two are never mixed in
// arithmetic.
//
// github.com/woodsbury/decimal128 was considered and rejected: it surfaces
// only as a transitive dependency pulled in by an unrelated OpenAPI codegen
// stack elsewhere in the example pack, never as a deliberate choice for
// money arithmetic by any example's author. math/big.Rat is the standard
// library's exact rational type and gives bit-for-bit reproducible accrual
// with no external dependency; see DESIGN.md for the fuller justification.
package money

import (
	"fmt"
	"math/big"
)

// Amount is an exact, non-negative decimal quantity of currency or energy.
// Zero value is zero.
type Amount struct {
	r *big.Rat
}

// Zero returns the additive identity.
func Zero() Amount {
	return Amount{r: new(big.Rat)}
}

// FromFloat builds an Amount holding the exact binary value of a float64.
// The simulator uses it to convert each tick's float64 energy and cost
// deltas; the running totals are then summed exactly with Add.
func FromFloat(f float64) Amount {
	r := new(big.Rat)
	r.SetFloat64(f)
	return Amount{r: r}
}

func (a Amount) rat() *big.Rat {
	if a.r == nil {
		return new(big.Rat)
	}
	return a.r
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{r: new(big.Rat).Add(a.rat(), b.rat())}
}

// Mul returns a * b.
func (a Amount) Mul(b Amount) Amount {
	return Amount{r: new(big.Rat).Mul(a.rat(), b.rat())}
}

// Cmp compares a to b: -1, 0, or 1.
func (a Amount) Cmp(b Amount) int {
	return a.rat().Cmp(b.rat())
}

// Float64 renders the amount as a float64, for display and persistence
// columns that are not cost-arithmetic-sensitive (e.g. a Detail Record's
// final cost column).
func (a Amount) Float64() float64 {
	f, _ := a.rat().Float64()
	return f
}

// String renders a fixed-point decimal string with exactly 6 fractional
// digits (rounded); trailing zeros are kept.
func (a Amount) String() string {
	return a.rat().FloatString(6)
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.rat().Sign() == 0
}

// MarshalJSON renders the amount as a JSON number for API responses.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%.6f", a.Float64())), nil
}
