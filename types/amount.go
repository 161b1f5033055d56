// Package types provides common types used across Vesting.
package types

import (
	"fmt"
	"math/bits"
)

// Assets is an amount of the underlying asset in its smallest unit.
// All arithmetic is integer-only — no floating point.
type Assets uint64

// Shares is an amount of vault shares, the yield vault's unit of account.
// Shares are distinct from Assets: the vault's exchange rate between the two
// moves over time, which is how yield accrues to vesting beneficiaries.
type Shares uint64

// IsZero returns true if the amount is zero.
func (a Assets) IsZero() bool { return a == 0 }

// IsZero returns true if the share amount is zero.
func (s Shares) IsZero() bool { return s == 0 }

// String returns the plain decimal representation.
func (a Assets) String() string { return fmt.Sprintf("%d", uint64(a)) }

// String returns the plain decimal representation.
func (s Shares) String() string { return fmt.Sprintf("%d", uint64(s)) }

// AddAssets adds two asset amounts and reports whether the sum overflowed.
func AddAssets(a, b Assets) (Assets, bool) {
	sum := a + b
	return sum, sum < a
}

// AddShares adds two share amounts and reports whether the sum overflowed.
func AddShares(a, b Shares) (Shares, bool) {
	sum := a + b
	return sum, sum < a
}

// MulDiv returns floor(s * num / den) computed with a 128-bit intermediate
// product, so s * num cannot overflow before the division.
//
// Panics if den is zero or the quotient does not fit in 64 bits. Callers in
// this module always pass num <= den (elapsed time over total time), which
// guarantees the quotient fits.
func MulDiv(s Shares, num, den uint64) Shares {
	if den == 0 {
		panic("types: muldiv division by zero")
	}
	hi, lo := bits.Mul64(uint64(s), num)
	if hi >= den {
		panic("types: muldiv quotient overflow")
	}
	q, _ := bits.Div64(hi, lo, den)
	return Shares(q)
}
