// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// FeedProducerAuthority reports whether publisher is authorized to feed
// assetID: an active witness (witness-fed), an active committee member
// (committee-fed), or a configured producer otherwise. Authority itself
// is an external-collaborator concern (spec.md 1 excludes accounts and
// their roles); the caller supplies the answer.
type FeedProducerAuthority interface {
	IsAuthorizedProducer(publisher account.AccountID, assetID store.ID, isWitnessFed, isCommitteeFed bool) bool
}

// AssetPublishFeed implements spec.md 4.3's "publish feed" evaluator.
type AssetPublishFeed struct {
	Publisher account.AccountID
	AssetID   store.ID
	Feed      asset.PriceFeed
	Authority FeedProducerAuthority
}

func (op *AssetPublishFeed) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", op.AssetID)
	}
	isWitnessFed := a.Options.Flags&asset.WitnessFedAsset != 0
	isCommitteeFed := a.Options.Flags&asset.CommitteeFedAsset != 0
	if op.Authority != nil && !op.Authority.IsAuthorizedProducer(op.Publisher, op.AssetID, isWitnessFed, isCommitteeFed) {
		return errs.E(errs.Precondition, "publisher not authorized to feed asset %d", op.AssetID)
	}
	return nil
}

func (op *AssetPublishFeed) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)

	wasSettled := bad.IsGloballySettled()
	changed, err := bad.PublishFeed(op.Publisher, ctx.Now, op.Feed)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if wasSettled {
		reviveBitasset(ctx, op.AssetID)
		return nil
	}
	return ctx.Matcher.CheckCallOrders(op.AssetID)
}

// reviveBitasset implements spec.md 4.7's revival condition, triggered
// from feed publish: settlement active, feed non-null, and either
// current_supply = 0 or settlement_fund/current_supply exceeds
// current_maintenance_collateralization.
func reviveBitasset(ctx *Context, assetID store.ID) {
	a := ctx.Assets.Assets.Get(assetID)
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
	if !bad.IsGloballySettled() || bad.CurrentFeed.IsNull() {
		return
	}
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)

	if dd.CurrentSupply == 0 {
		bad.SettlementPrice = calc.Price{}
		bad.SettlementFund = 0
		return
	}

	// fundCollateralization is settlement_fund/current_supply expressed in
	// the same Base=debt, Quote=collateral orientation as
	// current_maintenance_collateralization (both are debt/collateral), so
	// the fund is adequately collateralized exactly when its ratio is
	// strictly below the maintenance threshold.
	fundCollateralization := calc.Price{Base: dd.CurrentSupply, Quote: bad.SettlementFund}
	if fundCollateralization.LessThan(bad.CurrentMaintenanceCollateralization) {
		bad.SettlementPrice = calc.Price{}
		bad.SettlementFund = 0
	}
}
