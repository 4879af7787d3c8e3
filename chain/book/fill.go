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

// CoreAssetID is the reserved store.ID of the network's base currency,
// the asset every bitasset ultimately grounds in and in which every
// deferred order-placement fee and vesting cashback is denominated.
const CoreAssetID store.ID = 0

// fillLimitOrder implements spec.md 4.4.5's fill_limit_order: charge
// market fees on receives, credit the remainder to the seller, decrement
// for_sale, emit a fill_order event, settle the deferred order-placement
// fee on first fill, and remove or cull the order.
func (m *Matcher) fillLimitOrder(o *LimitOrder, pays, receives calc.Amount, cullIfSmall bool, fillPrice calc.Price, isMaker bool) error {
	buyAsset := m.Assets.Assets.Get(o.BuyAsset)
	if buyAsset == nil {
		return errs.E(errs.State, "unknown asset %d", o.BuyAsset)
	}

	split, err := fees.MarketFee(assetFeeInfo(buyAsset), m.SellerInfo.Lookup(o.Seller), receives, !isMaker, m.Params.MarketFeeNetworkPercent)
	if err != nil {
		return err
	}
	net := receives - split.Total
	m.Ledger.Credit(o.Seller, o.BuyAsset, net)

	dd := m.Assets.DynamicData.Get(buyAsset.DynamicDataID)
	dd.AccumulatedFees += split.Residue

	o.ForSale -= pays

	m.emit(FillOrder{
		OrderID:   o.Hash(o.ID),
		Account:   o.Seller,
		Pays:      AssetAmount{Asset: o.SellAsset, Amount: pays},
		Receives:  AssetAmount{Asset: o.BuyAsset, Amount: receives},
		Fee:       AssetAmount{Asset: o.BuyAsset, Amount: split.Total},
		FillPrice: fillPrice,
		IsMaker:   isMaker,
	})

	m.settleDeferredFee(o, isMaker)

	if o.ForSale == 0 {
		m.Book.RemoveLimit(o)
		return nil
	}
	o.DeferredFee = 0
	o.DeferredPaidFee = 0
	if cullIfSmall {
		return m.maybeCullSmall(o)
	}
	return nil
}

// settleDeferredFee pays O's deferred order-placement fee on its first
// fill only (spec.md 4.4.5 step 4), applying the maker discount and
// routing the remainder to the fee asset's accumulated_fees (non-CORE
// deferred fee) or back to the seller as CORE, through vesting cashback
// at or above CashbackVestingThreshold (CORE deferred fee).
func (m *Matcher) settleDeferredFee(o *LimitOrder, isMaker bool) {
	discount := m.Params.MakerFeeDiscountPercent

	if o.DeferredPaidFee > 0 {
		var discounted calc.Amount
		if isMaker && discount > 0 {
			discounted, _ = calc.Percent(o.DeferredPaidFee, discount)
		}
		if discounted > 0 {
			m.Ledger.Credit(o.Seller, o.DeferredPaidFeeAsset, discounted)
		}
		remainder := o.DeferredPaidFee - discounted
		if remainder > 0 {
			if feeAsset := m.Assets.Assets.Get(o.DeferredPaidFeeAsset); feeAsset != nil {
				if dd := m.Assets.DynamicData.Get(feeAsset.DynamicDataID); dd != nil {
					dd.AccumulatedFees += remainder
				}
			}
		}
		return
	}
	if o.DeferredFee > 0 {
		var discounted calc.Amount
		if isMaker && discount > 0 {
			discounted, _ = calc.Percent(o.DeferredFee, discount)
		}
		if discounted > 0 {
			m.Ledger.Credit(o.Seller, CoreAssetID, discounted)
		}
		remainder := o.DeferredFee - discounted
		if remainder >= m.Params.CashbackVestingThreshold {
			m.Ledger.CreditVestingCashback(o.Seller, remainder)
		} else if remainder > 0 {
			m.Ledger.Credit(o.Seller, CoreAssetID, remainder)
		}
	}
}

// fillCallOrder implements spec.md 4.4.5's fill_call_order: decrement
// debt and collateral, release the remainder and remove the position if
// debt reaches zero, decrement current_supply, accumulate the
// margin-call fee in the debt asset's accumulated_collateral_fees, and
// emit a fill_order event with the call as maker.
func (m *Matcher) fillCallOrder(o *CallOrder, pays, receives calc.Amount, fillPrice calc.Price, isMaker bool, marginCallFee calc.Amount) error {
	o.Debt -= receives
	o.Collateral -= pays

	debtAsset := m.Assets.Assets.Get(o.DebtAsset)
	if debtAsset == nil {
		return errs.E(errs.State, "unknown asset %d", o.DebtAsset)
	}
	dd := m.Assets.DynamicData.Get(debtAsset.DynamicDataID)
	dd.CurrentSupply -= receives
	dd.AccumulatedCollateralFees += marginCallFee

	m.emit(FillOrder{
		OrderID:   o.Hash(),
		Account:   o.Borrower,
		Pays:      AssetAmount{Asset: o.CollateralAsset, Amount: pays},
		Receives:  AssetAmount{Asset: o.DebtAsset, Amount: receives},
		Fee:       AssetAmount{Asset: o.CollateralAsset, Amount: marginCallFee},
		FillPrice: fillPrice,
		IsMaker:   isMaker,
	})

	if o.Debt == 0 {
		if o.Collateral > 0 {
			m.Ledger.Credit(o.Borrower, o.CollateralAsset, o.Collateral)
		}
		m.Book.RemoveCall(o)
		return nil
	}
	m.Book.ReindexCall(o)
	return nil
}

// FillCallOrderForSettlement fully closes o at pays (already clamped to
// o.Collateral by the caller), crediting no margin-call fee, for use by
// global settlement (spec.md 4.7), which liquidates every call order at
// a single swan price rather than through the ordinary margin-call path.
func (m *Matcher) FillCallOrderForSettlement(o *CallOrder, pays calc.Amount, fillPrice calc.Price) error {
	return m.fillCallOrder(o, pays, o.Debt, fillPrice, true, 0)
}

// fillSettleOrder implements spec.md 4.4.5's fill_settle_order: charge
// the market fee and the force-settle fee on the collateral received,
// credit the remainder to owner, and decrement or remove S.
func (m *Matcher) fillSettleOrder(o *SettleOrder, bad *asset.BitassetData, collateralAssetID store.ID, pays, receives calc.Amount, fillPrice calc.Price, isMaker bool, forceSettleFeePercent uint32) error {
	collateralAsset := m.Assets.Assets.Get(collateralAssetID)
	if collateralAsset == nil {
		return errs.E(errs.State, "unknown collateral asset %d", collateralAssetID)
	}

	split, err := fees.MarketFee(assetFeeInfo(collateralAsset), m.SellerInfo.Lookup(o.Owner), receives, !isMaker, m.Params.MarketFeeNetworkPercent)
	if err != nil {
		return err
	}
	afterMarket := receives - split.Total

	forceSettleFee, err := fees.ForceSettleFee(afterMarket, forceSettleFeePercent)
	if err != nil {
		return err
	}
	net := afterMarket - forceSettleFee

	bad.SettlementFund -= receives

	settlementAsset := m.Assets.Assets.Get(o.SettlementAsset)
	settlementDD := m.Assets.DynamicData.Get(settlementAsset.DynamicDataID)
	settlementDD.AccumulatedCollateralFees += forceSettleFee

	collateralDD := m.Assets.DynamicData.Get(collateralAsset.DynamicDataID)
	collateralDD.AccumulatedFees += split.Residue

	m.Ledger.Credit(o.Owner, collateralAssetID, net)

	o.Balance -= pays
	if o.Balance == 0 {
		m.Book.RemoveSettle(o)
	}
	return nil
}
