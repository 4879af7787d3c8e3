// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/book"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
)

// AssetUpdate implements spec.md 4.3's "update (common options)"
// evaluator: issuer permissions may only shrink once supply is positive,
// precision is then frozen, flags stay within the held permission mask.
type AssetUpdate struct {
	Issuer      account.AccountID
	AssetID     store.ID
	NewOptions  asset.Options
	NewPrecision uint8
}

func (op *AssetUpdate) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.AssetID)
	}
	if a.Issuer != op.Issuer {
		return errs.E(errs.Precondition, "issuer mismatch")
	}
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)

	if dd.CurrentSupply > 0 {
		if !asset.Subset(op.NewOptions.Permissions, a.Options.Permissions) {
			return errs.E(errs.Precondition, "issuer permissions may only shrink once supply is positive")
		}
		if op.NewPrecision != a.Precision {
			return errs.E(errs.Precondition, "precision may not change once supply is positive")
		}
		if op.NewOptions.MaxSupply < dd.CurrentSupply {
			return errs.E(errs.Precondition, "max_supply may not drop below current_supply")
		}
	}
	allowedFlags := op.NewOptions.Permissions
	if a.BitassetID != nil {
		bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
		if bad != nil && bad.IsPredictionMarket {
			allowedFlags |= asset.GlobalSettle
		}
	}
	if !asset.Subset(op.NewOptions.Flags, allowedFlags) {
		return errs.E(errs.Precondition, "flags not a subset of issuer permissions")
	}
	if op.NewPrecision > 12 {
		return errs.E(errs.Precondition, "precision %d exceeds 12", op.NewPrecision)
	}
	if uint8(len(op.NewOptions.Whitelist)) > ctx.Params.MaximumAssetWhitelistAuthorities {
		return errs.E(errs.Precondition, "whitelist exceeds %d authorities", ctx.Params.MaximumAssetWhitelistAuthorities)
	}
	if op.NewPrecision != a.Precision {
		if len(ctx.Assets.ChildrenOf(op.AssetID)) > 0 {
			return errs.E(errs.Precondition, "precision change forbidden while another bitasset backs onto this asset")
		}
	}
	return nil
}

func (op *AssetUpdate) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	oldCER := a.Options.CoreExchangeRate
	forceSettleWasEnabled := a.Options.Flags&asset.DisableForceSettle == 0
	forceSettleNowDisabled := op.NewOptions.Flags&asset.DisableForceSettle != 0

	a.Precision = op.NewPrecision
	a.Options = op.NewOptions

	if forceSettleWasEnabled && forceSettleNowDisabled {
		cancelAllForceSettlements(ctx, op.AssetID)
	}

	if a.BitassetID != nil && !oldCER.Equal(op.NewOptions.CoreExchangeRate) {
		bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
		bad.AssetCERUpdated = true
	}
	return nil
}

// cancelAllForceSettlements refunds and removes every pending
// force-settlement order on assetID, for the disable-force-settle branch
// of AssetUpdate.Apply, emitting the same asset_settle_cancel virtual
// event (spec.md 6) that chain/book's own matchCallSettle emits on its
// dust-cancellation path.
func cancelAllForceSettlements(ctx *Context, assetID store.ID) {
	bk := ctx.Matcher.Book
	for {
		s := bk.BestSettle(assetID)
		if s == nil {
			return
		}
		ctx.Ledger.Credit(s.Owner, s.SettlementAsset, s.Balance)
		bk.RemoveSettle(s)
		ctx.Matcher.Events = append(ctx.Matcher.Events, book.SettleCancel{
			SettlementID: s.Hash(),
			Account:      s.Owner,
			Amount:       book.AssetAmount{Asset: s.SettlementAsset, Amount: s.Balance},
		})
	}
}
