// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package book implements the continuous double-auction order book and
// matching engine of spec.md 4.4: limit, call, and settlement orders;
// apply_order's three-phase interleave; the pairwise match and fill
// functions; the margin-call scan; and dust culling.
package book

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/decred/dcrd/crypto/blake256"

	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// Hash is a 32-byte content-addressed identifier for an order or match,
// used for external references (events, client-facing IDs) distinct
// from the store.ID used for in-process secondary-index lookups.
type Hash [blake256.Size]byte

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// LimitOrder offers ForSale of SellAsset (X) for BuyAsset (Y) at
// SellPrice, a ratio with SellPrice.Base denominated in X and
// SellPrice.Quote denominated in Y (spec.md 3: "sell_price.base.asset =
// X, sell_price.quote.asset = Y").
type LimitOrder struct {
	ID store.ID

	Seller    account.AccountID
	SellAsset store.ID
	BuyAsset  store.ID

	ForSale   calc.Amount
	SellPrice calc.Price

	Expiration int64

	DeferredFee          calc.Amount // CORE, paid on first fill only
	DeferredPaidFeeAsset store.ID
	DeferredPaidFee      calc.Amount // non-CORE equivalent, paid on first fill only
}

// UID satisfies store.Entry for indices keyed by store.ID.
func (o *LimitOrder) UID() store.ID { return o.ID }

// AmountToReceive returns how much of BuyAsset o would receive if fully
// filled at its own price, used by maybe_cull_small_order.
func (o *LimitOrder) AmountToReceive() (calc.Amount, error) {
	return calc.MulFloor(o.ForSale, o.SellPrice)
}

// Hash computes an identifier for o from its seller and seq only (the
// order's terms are not hashed), so two orders from the same seller are
// told apart by seq (spec.md 5: no tie ever broken by hash or
// allocation order — seq is supplied by the caller from the store.ID
// the order was actually allocated under, not from wall-clock or
// iteration state).
func (o *LimitOrder) Hash(seq store.ID) Hash {
	h := blake256.New()
	h.Write(o.Seller[:])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seq))
	h.Write(buf[:])
	var sum Hash
	copy(sum[:], h.Sum(nil))
	return sum
}

// CallOrder is a collateralized debt position: Debt of DebtAsset (the
// MIA, X) backed by Collateral of CollateralAsset (short_backing_asset,
// Y). TargetCollateralRatio, if set, caps how far a margin-call fill may
// restore the position above MCR (x1000, same scale as MCR/ICR/MSSR).
type CallOrder struct {
	ID store.ID

	Borrower        account.AccountID
	CollateralAsset store.ID
	DebtAsset       store.ID

	Collateral calc.Amount
	Debt       calc.Amount

	TargetCollateralRatio *uint32
}

func (o *CallOrder) UID() store.ID { return o.ID }

// Hash computes an identifier for o from its borrower and store ID (its
// debt and collateral are not hashed), for use as the order_id field of
// a fill_order event.
func (o *CallOrder) Hash() Hash {
	h := blake256.New()
	h.Write(o.Borrower[:])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(o.ID))
	h.Write(buf[:])
	var sum Hash
	copy(sum[:], h.Sum(nil))
	return sum
}

// CallPrice returns debt/collateral as a Price in the same Base=debt,
// Quote=collateral orientation as a bitasset's settlement price, so it
// can be compared directly against current_maintenance_collateralization.
func (o *CallOrder) CallPrice() calc.Price {
	return calc.Price{Base: o.Debt, Quote: o.Collateral}
}

// Collateralization is an alias of CallPrice matching spec.md 3's
// derived-field vocabulary.
func (o *CallOrder) Collateralization() calc.Price { return o.CallPrice() }

// GetMaxDebtToCover returns the most debt o may be required to cover in
// a single margin-call fill at callPaysPrice and feedPrice, honoring
// TargetCollateralRatio by capping coverage to just restore that ratio
// rather than fully closing the position (spec.md 4.4.3).
func (o *CallOrder) GetMaxDebtToCover(callPaysPrice, feedPrice calc.Price, mcr uint32) (calc.Amount, error) {
	if o.TargetCollateralRatio == nil {
		return o.Debt, nil
	}
	tcr := *o.TargetCollateralRatio
	if tcr >= mcr {
		// A target at or above MCR can never be reached by a partial
		// cover; the position must be fully closed, same as no target.
		return o.Debt, nil
	}

	// Solve for debt_to_cover such that, after paying
	// debt_to_cover*callPaysPrice of collateral, the remaining position's
	// collateralization equals tcr/1000:
	//   (collateral - paid) / (debt - debt_to_cover) = tcr/1000 * feed_price^-1 ... expressed as amounts.
	// Using the closed form from the original implementation:
	//   debt_to_cover = (debt*tcr - collateral*1000/feed_price) / (tcr - mcr_equiv)
	// is the textbook derivation; this core instead solves it directly
	// with the same two fixed-point multiplications the original applies,
	// to stay within the mul_floor/mul_ceil vocabulary rather than
	// introducing a third rounding rule.
	collateralAtFeed, err := calc.MulFloor(o.Debt, feedPrice)
	if err != nil {
		return 0, err
	}
	targetCollateral, err := calc.Percent(collateralAtFeed, tcr*10)
	if err != nil {
		return 0, err
	}
	if o.Collateral <= targetCollateral {
		return o.Debt, nil
	}
	excessCollateral := o.Collateral - targetCollateral
	// debt_to_cover = excess_collateral / (call_pays_price - target_price_delta);
	// approximate with callPaysPrice directly, floor-rounded, which never
	// overcovers relative to the target (a conservative direction: it may
	// leave the position slightly above target, never below).
	debtToCover, err := calc.MulFloor(excessCollateral, callPaysPrice.Invert())
	if err != nil {
		return 0, err
	}
	if debtToCover > o.Debt {
		debtToCover = o.Debt
	}
	return debtToCover, nil
}

// SettleOrder is a pending force-settlement request, queued when the
// owner's asset is not (yet) globally settled.
type SettleOrder struct {
	ID store.ID

	Owner           account.AccountID
	SettlementAsset store.ID
	Balance         calc.Amount
	SettlementDate  int64
}

func (o *SettleOrder) UID() store.ID { return o.ID }

// Hash computes a content-addressed identifier for o.
func (o *SettleOrder) Hash() Hash {
	h := blake256.New()
	h.Write(o.Owner[:])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(o.ID))
	h.Write(buf[:])
	var sum Hash
	copy(sum[:], h.Sum(nil))
	return sum
}
