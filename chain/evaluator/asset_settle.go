// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/book"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/fees"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// assetFeeInfo adapts a chain/asset.Options into the fees package's
// leaf Asset type, mirroring chain/book's unexported helper of the same
// shape (fees is deliberately kept free of a chain/asset dependency).
func assetFeeInfo(a *asset.Asset) fees.Asset {
	return fees.Asset{
		MarketFeePercent:          a.Options.MarketFeePercent,
		TakerFeePercent:           a.Options.TakerFeePercent,
		MaxMarketFee:              a.Options.MaxMarketFee,
		RewardPercent:             a.Options.RewardPercent,
		WhitelistMarketFeeSharing: a.Options.WhitelistMarketFeeSharing,
	}
}

// AssetSettle implements spec.md 4.3's "force settle" evaluator: owner
// surrenders Amount of AssetID, either immediately against an already
// globally-settled asset's settlement_fund, or by queuing a pending
// SettleOrder that matures force_settlement_delay_sec from now.
type AssetSettle struct {
	Owner   account.AccountID
	AssetID store.ID
	Amount  calc.Amount
}

func (op *AssetSettle) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", op.AssetID)
	}
	if op.Amount <= 0 {
		return errs.E(errs.Precondition, "settle amount must be positive")
	}
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
	if bad.IsPredictionMarket {
		return errs.E(errs.Precondition, "prediction markets do not force-settle")
	}
	if !bad.IsGloballySettled() && a.Options.Flags&asset.DisableForceSettle != 0 {
		return errs.E(errs.Precondition, "force settlement is disabled for asset %d", op.AssetID)
	}
	return nil
}

func (op *AssetSettle) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)

	if bad.IsGloballySettled() {
		return op.applyImmediate(ctx, a, bad)
	}

	if err := ctx.Ledger.Debit(op.Owner, op.AssetID, op.Amount); err != nil {
		return err
	}
	ctx.Matcher.Book.InsertSettle(book.SettleOrder{
		Owner:           op.Owner,
		SettlementAsset: op.AssetID,
		Balance:         op.Amount,
		SettlementDate:  ctx.Now + int64(bad.ForceSettlementDelaySec),
	})
	return nil
}

// applyImmediate implements spec.md 4.3's exchange against an already
// globally-settled asset's settlement_fund: pays is mul_floor(amount,
// settlement_price), except when amount equals the asset's entire
// remaining current_supply, where the whole remaining fund is routed to
// avoid a rounding residue (the same legacy "current_supply exhausted"
// branch noted as an open question in spec.md 9).
func (op *AssetSettle) applyImmediate(ctx *Context, a *asset.Asset, bad *asset.BitassetData) error {
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)

	var pays calc.Amount
	var err error
	if op.Amount == dd.CurrentSupply {
		pays = bad.SettlementFund
	} else {
		pays, err = calc.MulFloor(op.Amount, bad.SettlementPrice)
		if err != nil {
			return err
		}
	}

	if pays == 0 && !bad.IsPredictionMarket {
		return errs.E(errs.Precondition, "settlement amount too small to produce any collateral")
	}

	collateralAsset := ctx.Assets.Assets.Get(bad.ShortBackingAsset)
	if collateralAsset == nil {
		return errs.E(errs.State, "unknown collateral asset %d", bad.ShortBackingAsset)
	}
	split, err := fees.MarketFee(assetFeeInfo(collateralAsset), ctx.Matcher.SellerInfo.Lookup(op.Owner), pays, true, ctx.Params.MarketFeeNetworkPercent)
	if err != nil {
		return err
	}
	net := pays - split.Total

	if err := ctx.Ledger.Debit(op.Owner, op.AssetID, op.Amount); err != nil {
		return err
	}
	bad.SettlementFund -= pays
	dd.CurrentSupply -= op.Amount

	collateralDD := ctx.Assets.DynamicData.Get(collateralAsset.DynamicDataID)
	collateralDD.AccumulatedFees += split.Residue

	ctx.Ledger.Credit(op.Owner, bad.ShortBackingAsset, net)
	return dd.CheckSupplyInvariant(a.Options.MaxSupply)
}
