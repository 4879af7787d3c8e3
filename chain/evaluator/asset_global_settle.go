// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/book"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// AssetGlobalSettle implements spec.md 4.3's issuer-triggered global
// settle, valid only for a bitasset whose options grant the
// global_settle permission. Apply delegates to GlobalSettle, the same
// routine check_call_orders invokes on a black swan (spec.md 4.7), so
// both paths liquidate identically.
type AssetGlobalSettle struct {
	Issuer          account.AccountID
	AssetID         store.ID
	SettlementPrice calc.Price
}

func (op *AssetGlobalSettle) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", op.AssetID)
	}
	if a.Issuer != op.Issuer {
		return errs.E(errs.Precondition, "issuer mismatch")
	}
	if a.Options.Permissions&asset.GlobalSettle == 0 {
		return errs.E(errs.Precondition, "asset %d does not grant global_settle", op.AssetID)
	}
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
	if bad.IsGloballySettled() {
		return errs.E(errs.State, "asset %d is already globally settled", op.AssetID)
	}
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
	if dd.CurrentSupply <= 0 {
		return errs.E(errs.Precondition, "asset %d has no outstanding supply to settle", op.AssetID)
	}
	worst := ctx.Matcher.Book.BestCall(op.AssetID)
	if worst == nil {
		return errs.E(errs.State, "asset %d has no call orders to settle", op.AssetID)
	}
	pays, err := calc.MulCeil(worst.Debt, op.SettlementPrice)
	if err != nil {
		return err
	}
	if pays > worst.Collateral {
		return errs.E(errs.Precondition, "settlement price %v would not fully cover the least-collateralized position", op.SettlementPrice)
	}
	return nil
}

func (op *AssetGlobalSettle) Apply(ctx *Context) error {
	log.Infof("issuer %x triggered global settlement of asset %d at price %v", op.Issuer, op.AssetID, op.SettlementPrice)
	return GlobalSettle(ctx.Matcher, op.AssetID, op.SettlementPrice)
}

// GlobalSettle implements spec.md 4.7's global settlement: every call
// order on debtAsset is closed at swanPrice (clamped to each position's
// own collateral, never paying out more than it holds), the collateral
// gathered becomes the asset's settlement_fund, and settlement_price is
// set to original_supply/collateral_gathered so that every later
// force_settle redeems proportionally. current_supply itself is left
// unchanged: global settlement converts the backing of outstanding
// balances from individual positions to a shared fund, it does not
// destroy them.
//
// This is the single routine both AssetGlobalSettle.Apply (an explicit
// issuer operation) and check_call_orders' black-swan branch invoke, so
// an issuer-triggered settle and an automatic one leave identical state.
func GlobalSettle(m *book.Matcher, debtAsset store.ID, swanPrice calc.Price) error {
	a := m.Assets.Assets.Get(debtAsset)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", debtAsset)
	}
	bad := m.Assets.Bitassets.Get(*a.BitassetID)
	dd := m.Assets.DynamicData.Get(a.DynamicDataID)
	originalSupply := dd.CurrentSupply

	var collateralGathered calc.Amount
	for {
		call := m.Book.BestCall(debtAsset)
		if call == nil {
			break
		}
		pays, err := calc.MulCeil(call.Debt, swanPrice)
		if err != nil {
			return err
		}
		if pays > call.Collateral {
			pays = call.Collateral
		}
		collateralGathered += pays
		if err := m.FillCallOrderForSettlement(call, pays, swanPrice); err != nil {
			return err
		}
	}

	dd.CurrentSupply = originalSupply

	if collateralGathered == 0 {
		return errs.E(errs.Invariant, "global settle on asset %d gathered no collateral", debtAsset)
	}
	bad.SettlementPrice = calc.Price{Base: originalSupply, Quote: collateralGathered}
	bad.SettlementFund = collateralGathered
	return nil
}
