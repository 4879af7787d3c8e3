// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package book

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/calc"
)

// ProcessForceSettlements implements spec.md 4.4.4's call x force-settle
// matching for one MIA: it walks pending settlement orders against call
// orders at the feed-derived settlement price, up to the per-block
// max_force_settlement_volume cap on current_supply.
func (m *Matcher) ProcessForceSettlements(debtAsset store.ID) error {
	a := m.Assets.Assets.Get(debtAsset)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", debtAsset)
	}
	bad := m.Assets.Bitassets.Get(*a.BitassetID)
	if bad.CurrentFeed.IsNull() {
		return errs.E(errs.InsufficientFeeds, "asset %d has no usable feed", debtAsset)
	}
	dd := m.Assets.DynamicData.Get(a.DynamicDataID)

	maxSettlement, err := calc.Percent(dd.CurrentSupply, m.Params.MaxForceSettlementVolume)
	if err != nil {
		return err
	}
	var settled calc.Amount

	matchPrice := bad.CurrentFeed.SettlementPrice

	for settled < maxSettlement {
		settleOrder := m.Book.BestSettle(debtAsset)
		if settleOrder == nil {
			return nil
		}
		call := m.Book.BestCall(debtAsset)
		if call == nil {
			return nil
		}

		before := settleOrder.Balance
		settleID := settleOrder.ID
		if err := m.matchCallSettle(call, settleOrder, bad, matchPrice, maxSettlement-settled); err != nil {
			return err
		}
		after := calc.Amount(0)
		if stillResting := m.Book.SettleOrders.Get(settleID); stillResting != nil {
			after = stillResting.Balance
		}
		settled += before - after
		if after > 0 {
			// The call side was exhausted or capped before the settle
			// order could be fully consumed; stop this pass rather than
			// spin against the same two orders.
			return nil
		}
	}
	return nil
}

// matchCallSettle implements spec.md 4.4.4: fill the settle order
// against call at matchPrice, capped by maxSettlement, applying the dust
// rules (call_pays = 0 cancels the settle unless the call is smaller,
// in which case call_pays is floored up to 1).
func (m *Matcher) matchCallSettle(call *CallOrder, settleOrder *SettleOrder, bad *asset.BitassetData, matchPrice calc.Price, maxSettlement calc.Amount) error {
	settleAmount := calc.Min(settleOrder.Balance, maxSettlement)
	callIsSmaller := call.Debt < settleAmount

	// receives is in debt (MIA) terms: whichever side is smaller bounds
	// how much debt this fill can retire.
	receives := calc.Min(settleAmount, call.Debt)

	callPays, err := calc.MulFloor(receives, matchPrice)
	if err != nil {
		return err
	}
	if callIsSmaller {
		// The call side is the smaller of the two: re-round its
		// collateral leg up so the call is not left paying less
		// collateral than receives*matchPrice actually costs.
		callPays, err = calc.MulCeil(receives, matchPrice)
		if err != nil {
			return err
		}
	}

	if callPays == 0 {
		if !callIsSmaller {
			m.Ledger.Credit(settleOrder.Owner, settleOrder.SettlementAsset, settleOrder.Balance)
			m.Book.RemoveSettle(settleOrder)
			m.emit(SettleCancel{
				SettlementID: settleOrder.Hash(),
				Account:      settleOrder.Owner,
				Amount:       AssetAmount{Asset: settleOrder.SettlementAsset, Amount: settleOrder.Balance},
			})
			return nil
		}
		callPays = 1
	}

	cullSettle := receives >= settleOrder.Balance

	if err := m.fillCallOrder(call, callPays, receives, matchPrice, true, 0); err != nil {
		return err
	}
	// The settle order's own balance is denominated in the debt asset
	// (receives here); callPays is the collateral amount it is owed —
	// the call and settle sides of one fill always swap which leg is
	// "pays" and which is "receives".
	return m.fillSettleOrderWithCull(settleOrder, bad, call.CollateralAsset, receives, callPays, matchPrice, cullSettle)
}

// fillSettleOrderWithCull is fillSettleOrder plus the settle-specific
// cull flag, since a settle order's removal condition (receives covers
// its full remaining balance) differs from a limit order's.
func (m *Matcher) fillSettleOrderWithCull(o *SettleOrder, bad *asset.BitassetData, collateralAssetID store.ID, pays, receives calc.Amount, fillPrice calc.Price, cullSettle bool) error {
	if cullSettle {
		pays = o.Balance
	}
	forceSettleFeePercent := bad.ForceSettleFeePercent
	return m.fillSettleOrder(o, bad, collateralAssetID, pays, receives, fillPrice, true, forceSettleFeePercent)
}
