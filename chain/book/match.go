// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package book

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/fees"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/calc"
)

// callMatchContext holds the two derived prices that govern call-order
// eligibility for the pair (sellAsset, buyAsset), computed once per
// apply_order invocation (spec.md 4.4.1 step 2).
type callMatchContext struct {
	eligible       bool
	callMatchPrice calc.Price // margin_call_order_price(MCFR), Base = debt asset
	callPaysPrice  calc.Price // max_short_squeeze_price(), Base = debt asset
	bitassetID     store.ID
	mcr            uint32
	mcfr           uint32
}

// resolveCallMatchContext determines whether limit orders selling
// sellAsset for buyAsset may match against call orders: sellAsset must
// be market-issued, buyAsset must be its short_backing_asset, it must
// not be a prediction market or already settled, and it must carry a
// live feed.
func (m *Matcher) resolveCallMatchContext(sellAsset, buyAsset store.ID) (callMatchContext, error) {
	a := m.Assets.Assets.Get(sellAsset)
	if a == nil || a.BitassetID == nil {
		return callMatchContext{}, nil
	}
	bad := m.Assets.Bitassets.Get(*a.BitassetID)
	if bad == nil || bad.IsPredictionMarket || bad.IsGloballySettled() {
		return callMatchContext{}, nil
	}
	if bad.ShortBackingAsset != buyAsset {
		return callMatchContext{}, nil
	}
	if bad.CurrentFeed.IsNull() {
		return callMatchContext{}, nil
	}

	callMatchPrice, err := asset.MarginCallOrderPrice(bad.CurrentFeed)
	if err != nil {
		return callMatchContext{}, err
	}
	callPaysPrice, err := asset.MaxShortSqueezePrice(bad.CurrentFeed)
	if err != nil {
		return callMatchContext{}, err
	}
	return callMatchContext{
		eligible:       true,
		callMatchPrice: callMatchPrice,
		callPaysPrice:  callPaysPrice,
		bitassetID:     *a.BitassetID,
		mcr:            bad.CurrentFeed.MCR,
		mcfr:           bad.CurrentFeed.MCFR,
	}, nil
}

// ApplyOrder is the continuous double-auction entry point of spec.md
// 4.4.1. taker has already been inserted into the book by the caller
// (limit_order_create's evaluator); ApplyOrder consumes resting
// liquidity against it until it is exhausted, not the best offer at its
// price key, or no longer profitable, then culls any dust remainder.
func (m *Matcher) ApplyOrder(taker *LimitOrder) error {
	// Front-of-book test: if something else already rests ahead of taker
	// at a better-or-equal price, there is nothing to match yet.
	if !m.Book.IsBestLimit(taker) {
		return nil
	}

	cmCtx, err := m.resolveCallMatchContext(taker.SellAsset, taker.BuyAsset)
	if err != nil {
		return err
	}
	takerEligibleForCalls := cmCtx.eligible && taker.SellPrice.LessOrEqual(cmCtx.callMatchPrice)

	for taker.ForSale > 0 {
		progressed, err := m.matchOnePhase(taker, cmCtx, takerEligibleForCalls)
		if err != nil {
			return err
		}
		if !progressed {
			break
		}
	}

	return m.maybeCullSmall(taker)
}

// matchOnePhase consumes exactly one resting order against taker,
// choosing among the three phases of spec.md 4.4.1 step 3 in priority
// order: (a) limit orders strictly better than call_match_price, (b)
// call orders (if taker is eligible to match them), (c) any remaining
// limit order so long as it is still profitable for taker. It reports
// whether it made progress.
func (m *Matcher) matchOnePhase(taker *LimitOrder, cmCtx callMatchContext, takerEligibleForCalls bool) (bool, error) {
	bestLimit := m.Book.BestLimit(taker.BuyAsset, taker.SellAsset)

	if bestLimit != nil && cmCtx.eligible {
		invertedCallMatch := cmCtx.callMatchPrice.Invert()
		if bestLimit.SellPrice.LessThan(invertedCallMatch) {
			return true, m.consumeLimitLimit(taker, bestLimit)
		}
	}

	if takerEligibleForCalls {
		if call := m.Book.BestCall(taker.SellAsset); call != nil {
			bad := m.Assets.Bitassets.Get(cmCtx.bitassetID)
			// call.Collateralization() is debt/collateral; the call is at
			// risk when that ratio is at or above the maintenance threshold
			// (collateral has fallen to or below MCR), i.e. the threshold
			// is LessOrEqual the call's own ratio, not the reverse.
			if bad.CurrentMaintenanceCollateralization.LessOrEqual(call.Collateralization()) {
				return true, m.consumeLimitCall(taker, call, cmCtx, cmCtx.callMatchPrice)
			}
		}
	}

	if bestLimit != nil {
		// Phase (c): still profitable iff crossing prices.
		if !taker.SellPrice.LessThan(bestLimit.SellPrice.Invert()) {
			return true, m.consumeLimitLimit(taker, bestLimit)
		}
	}

	return false, nil
}

// consumeLimitLimit matches taker against maker per spec.md 4.4.2 and
// applies both fills.
func (m *Matcher) consumeLimitLimit(taker, maker *LimitOrder) error {
	// match_price is maker's own sell_price: Base denominated in maker's
	// sell asset (taker's buy asset, Y), Quote denominated in maker's buy
	// asset (taker's sell asset, X). Converting an amount FROM maker's
	// sell asset (Y, Base) TO taker's sell asset (X, Quote) uses
	// matchPrice directly; the opposite direction (X -> Y) uses its
	// Invert.
	matchPrice := maker.SellPrice

	uForSale := taker.ForSale
	cForSale := maker.ForSale

	// cCapacityInU is how much of X (taker's sell asset) maker's
	// remaining cForSale (Y) can absorb at match_price.
	cCapacityInU, err := calc.MulFloor(cForSale, matchPrice)
	if err != nil {
		return err
	}

	var uReceives, cReceives calc.Amount

	if uForSale <= cCapacityInU {
		uReceives, err = calc.MulFloor(uForSale, matchPrice.Invert())
		if err != nil {
			return err
		}
		if uReceives == 0 {
			cReceives = 0
		} else {
			cReceives, err = calc.MulCeil(uReceives, matchPrice)
			if err != nil {
				return err
			}
		}
	} else {
		cReceives = cCapacityInU
		uReceives, err = calc.MulCeil(cReceives, matchPrice.Invert())
		if err != nil {
			return err
		}
	}

	cPays := uReceives // maker pays what taker receives, in maker's sell asset (Y)
	uPays := cReceives // taker pays what maker receives, in taker's sell asset (X)

	if err := m.fillLimitOrder(taker, uPays, uReceives, true, matchPrice, false); err != nil {
		return err
	}
	if err := m.fillLimitOrder(maker, cPays, cReceives, true, matchPrice, true); err != nil {
		return err
	}

	return nil
}

// consumeLimitCall matches limit taker against call-order maker per
// spec.md 4.4.3. matchPrice sets the fill price for the debt leg: from
// ApplyOrder's phase (b) this is call_match_price, the price improvement
// a fresh taker whose own price is better than call_match_price is owed
// (a resting order never fills worse than the price it posted); from
// CheckCallOrders it is simply the resting limit maker's own sell_price,
// since there taker already IS that resting order. The call pays that
// same value in collateral plus an additional margin_call_fee_percent
// markup, which is retained as accumulated_collateral_fees rather than
// passed on to taker — this keeps the two legs of the fill exactly
// balanced (call_pays = limit_receives + margin_call_fee) regardless of
// how far below maintenance collateralization the call has fallen.
func (m *Matcher) consumeLimitCall(taker *LimitOrder, maker *CallOrder, cmCtx callMatchContext, matchPrice calc.Price) error {
	bad := m.Assets.Bitassets.Get(cmCtx.bitassetID)
	feedPrice := bad.CurrentFeed.SettlementPrice // the feed price governs how much debt the call may be made to cover

	maxDebt, err := maker.GetMaxDebtToCover(cmCtx.callPaysPrice, feedPrice, cmCtx.mcr)
	if err != nil {
		return err
	}

	callReceives := maxDebt
	if taker.ForSale < callReceives {
		callReceives = taker.ForSale
	}

	limitReceives, err := calc.MulCeil(callReceives, matchPrice)
	if err != nil {
		return err
	}
	marginCallFee, err := fees.MarginCallFee(limitReceives, cmCtx.mcfr)
	if err != nil {
		return err
	}
	callPays := limitReceives + marginCallFee

	if err := m.fillLimitOrder(taker, callReceives, limitReceives, true, matchPrice, false); err != nil {
		return err
	}
	return m.fillCallOrder(maker, callPays, callReceives, matchPrice, true, marginCallFee)
}

// maybeCullSmall implements spec.md 4.4.7: if O would receive zero at
// its own price, cancel and refund it.
func (m *Matcher) maybeCullSmall(o *LimitOrder) error {
	if o.ForSale == 0 {
		return nil
	}
	toReceive, err := o.AmountToReceive()
	if err != nil {
		return err
	}
	if toReceive != 0 {
		return nil
	}
	m.Ledger.Credit(o.Seller, o.SellAsset, o.ForSale)
	m.Book.RemoveLimit(o)
	return nil
}

// CheckCallOrders implements spec.md 4.4.6: scan call orders on
// debtAsset in ascending collateralization, matching each undercollateralized
// position against the best eligible limit, diverting to global
// settlement on a black swan.
func (m *Matcher) CheckCallOrders(debtAsset store.ID) error {
	a := m.Assets.Assets.Get(debtAsset)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", debtAsset)
	}
	bad := m.Assets.Bitassets.Get(*a.BitassetID)
	if bad.IsPredictionMarket {
		return errs.E(errs.Precondition, "check_call_orders is not valid for prediction markets")
	}
	if bad.CurrentFeed.IsNull() {
		return nil
	}

	callMatchPrice, err := asset.MarginCallOrderPrice(bad.CurrentFeed)
	if err != nil {
		return err
	}
	callPaysPrice, err := asset.MaxShortSqueezePrice(bad.CurrentFeed)
	if err != nil {
		return err
	}
	cmCtx := callMatchContext{
		eligible:       true,
		callMatchPrice: callMatchPrice,
		callPaysPrice:  callPaysPrice,
		bitassetID:     *a.BitassetID,
		mcr:            bad.CurrentFeed.MCR,
		mcfr:           bad.CurrentFeed.MCFR,
	}

	for {
		call := m.Book.BestCall(debtAsset)
		if call == nil {
			return nil
		}
		// BestCall now yields the highest debt/collateral (least
		// collateralized) position first; stop scanning once even that one
		// is no longer at or below the maintenance threshold.
		if call.Collateralization().LessThan(bad.CurrentMaintenanceCollateralization) {
			return nil
		}

		// The counterparty is a resting limit order selling the debt
		// asset (X) for the collateral asset (Y) — exactly the "taker"
		// role consumeLimitCall expects (spec.md 4.4.3: "Taker is limit
		// B; maker is call A").
		limit := m.Book.BestLimit(debtAsset, bad.ShortBackingAsset)
		if limit == nil || !limit.SellPrice.LessOrEqual(callMatchPrice) {
			return nil
		}

		usdToBuy, err := call.GetMaxDebtToCover(callPaysPrice, bad.CurrentFeed.SettlementPrice, cmCtx.mcr)
		if err != nil {
			return err
		}
		requiredCollateral, err := calc.MulFloor(usdToBuy, callPaysPrice)
		if err != nil {
			return err
		}
		if requiredCollateral > call.Collateral {
			if !m.EnableBlackSwan {
				return errs.E(errs.Invariant, "black swan on asset %d with black-swan handling disabled", debtAsset)
			}
			log.Warnf("black swan on asset %d: worst call needs %d collateral but holds %d, triggering global settlement",
				debtAsset, requiredCollateral, call.Collateral)
			return m.GlobalSettle(m, debtAsset, bad.CurrentFeed.SettlementPrice)
		}

		if err := m.consumeLimitCall(limit, call, cmCtx, limit.SellPrice); err != nil {
			return err
		}
	}
}
