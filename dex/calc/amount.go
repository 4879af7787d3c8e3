// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package calc implements the fixed-point arithmetic required of the
// market and market-issued-asset core: signed 64-bit share amounts, and
// the two rounding-direction price multiplications that matching and fee
// routing must perform bit-identically across nodes.
package calc

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// MaxShareSupply is the hard cap on any Amount, matching the chain-wide
// MAX_SHARE_SUPPLY constant.
const MaxShareSupply = 1_000_000_000_000_000 // 10^15

// HundredPercent is the basis-point denominator used by Percent.
const HundredPercent = 10_000

// Amount is a signed count of the smallest indivisible unit of an asset.
// It is never allowed to exceed MaxShareSupply in absolute value.
type Amount int64

// ErrOverflow is returned when a 256-bit intermediate product would not fit
// back into an Amount within [-MaxShareSupply, MaxShareSupply].
var ErrOverflow = errors.New("calc: amount overflow")

// checkBounds converts a uint256 result back to an Amount, failing if it
// exceeds MaxShareSupply.
func checkBounds(v *uint256.Int) (Amount, error) {
	if v.Sign() < 0 {
		// uint256 is unsigned; negative inputs are rejected by callers
		// before reaching here, so this indicates a programmer error.
		return 0, errors.Wrap(ErrOverflow, "negative intermediate")
	}
	if v.Gt(uint256.NewInt(MaxShareSupply)) {
		return 0, ErrOverflow
	}
	return Amount(v.Uint64()), nil
}

// Percent returns floor(v * bp / HundredPercent), checked against overflow
// on the 256-bit intermediate product.
func Percent(v Amount, bp uint32) (Amount, error) {
	if v < 0 {
		return 0, errors.Wrap(ErrOverflow, "negative base amount")
	}
	prod := new(uint256.Int).Mul(uint256.NewInt(uint64(v)), uint256.NewInt(uint64(bp)))
	prod.Div(prod, uint256.NewInt(HundredPercent))
	return checkBounds(prod)
}

// Min returns the lesser of two Amounts.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}
