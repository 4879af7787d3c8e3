// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package calc

import (
	"github.com/holiman/uint256"
)

// Price is a ratio of two asset amounts, base/quote, read as "Base per
// Quote": Base is paid, Quote is received. A Price of {Base: 2, Quote: 1}
// means 2 units of the base asset buy 1 unit of the quote asset.
type Price struct {
	Base  Amount
	Quote Amount
}

// Invert returns the reciprocal price, swapping which asset is base and
// which is quote. Invert is used throughout matching to flip a price
// between "what the seller offers" and "what the buyer requires" framing.
func (p Price) Invert() Price {
	return Price{Base: p.Quote, Quote: p.Base}
}

// LessThan reports whether p < other as a cross-multiplied comparison,
// avoiding any floating-point division. Both prices must share the same
// base/quote asset pair for the comparison to be meaningful.
func (p Price) LessThan(other Price) bool {
	lhs := new(uint256.Int).Mul(u256(p.Base), u256(other.Quote))
	rhs := new(uint256.Int).Mul(u256(other.Base), u256(p.Quote))
	return lhs.Lt(rhs)
}

// LessOrEqual reports whether p <= other, see LessThan.
func (p Price) LessOrEqual(other Price) bool {
	lhs := new(uint256.Int).Mul(u256(p.Base), u256(other.Quote))
	rhs := new(uint256.Int).Mul(u256(other.Base), u256(p.Quote))
	return lhs.Lt(rhs) || lhs.Eq(rhs)
}

// Equal reports whether p and other represent the same ratio.
func (p Price) Equal(other Price) bool {
	lhs := new(uint256.Int).Mul(u256(p.Base), u256(other.Quote))
	rhs := new(uint256.Int).Mul(u256(other.Base), u256(p.Quote))
	return lhs.Eq(rhs)
}

func u256(a Amount) *uint256.Int {
	return uint256.NewInt(uint64(a))
}

// MulFloor computes floor(a * p.Quote / p.Base): the amount of the quote
// asset obtained for `a` units of the base asset, rounded down. This is the
// rounding direction used "in favor of the larger order" when filling, per
// spec.md 4.1.
func MulFloor(a Amount, p Price) (Amount, error) {
	if a < 0 || p.Base <= 0 || p.Quote < 0 {
		return 0, ErrOverflow
	}
	prod := new(uint256.Int).Mul(u256(a), u256(p.Quote))
	prod.Div(prod, u256(p.Base))
	return checkBounds(prod)
}

// MulCeil computes ceil(a * p.Quote / p.Base): the amount of the quote
// asset that must be paid for `a` units of the base asset, rounded up.
// MulCeil is used to back-compute the counter-asset amount after MulFloor,
// preventing the maker from paying something for nothing, per spec.md 4.1.
func MulCeil(a Amount, p Price) (Amount, error) {
	if a < 0 || p.Base <= 0 || p.Quote < 0 {
		return 0, ErrOverflow
	}
	num := new(uint256.Int).Mul(u256(a), u256(p.Quote))
	base := u256(p.Base)
	quot := new(uint256.Int).Div(num, base)
	rem := new(uint256.Int).Mod(num, base)
	if !rem.IsZero() {
		quot.AddUint64(quot, 1)
	}
	return checkBounds(quot)
}
