// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
)

// AssetUpdateFeedProducers implements spec.md 4.3's "update feed
// producers" evaluator, valid only for non-witness, non-committee-fed
// MIAs (those select producers out of band).
type AssetUpdateFeedProducers struct {
	Issuer       account.AccountID
	AssetID      store.ID
	NewProducers []account.AccountID
}

func (op *AssetUpdateFeedProducers) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", op.AssetID)
	}
	if a.Issuer != op.Issuer {
		return errs.E(errs.Precondition, "issuer mismatch")
	}
	if a.Options.Flags&(asset.WitnessFedAsset|asset.CommitteeFedAsset) != 0 {
		return errs.E(errs.Precondition, "witness-fed and committee-fed assets do not take explicit feed producers")
	}
	if len(op.NewProducers) > int(ctx.Params.MaximumAssetFeedPublishers) {
		return errs.E(errs.Precondition, "too many feed producers")
	}
	return nil
}

func (op *AssetUpdateFeedProducers) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)

	wanted := make(map[account.AccountID]bool, len(op.NewProducers))
	for _, p := range op.NewProducers {
		wanted[p] = true
	}
	for _, publisher := range bad.Producers() {
		if !wanted[publisher] {
			bad.RemoveFeed(publisher)
		}
	}
	for _, publisher := range bad.Producers() {
		wanted[publisher] = false // already present, don't re-zero below
	}
	for publisher, isNew := range wanted {
		if isNew {
			if _, err := bad.PublishFeed(publisher, ctx.Now, asset.PriceFeed{}); err != nil {
				return err
			}
		}
	}
	if err := bad.UpdateMedianFeeds(ctx.Now); err != nil {
		return err
	}
	return ctx.Matcher.CheckCallOrders(op.AssetID)
}
