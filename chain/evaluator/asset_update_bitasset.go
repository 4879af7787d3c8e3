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

// AssetUpdateBitasset implements spec.md 4.3's "update bitasset"
// evaluator.
type AssetUpdateBitasset struct {
	Issuer  account.AccountID
	AssetID store.ID

	NewShortBackingAsset         store.ID
	NewFeedLifetimeSec           uint32
	NewMinimumFeeds              uint8
	NewForceSettlementDelaySec   uint32
	NewForceSettlementOffsetPercent uint32
	NewForceSettleFeePercent     uint32
	NewMCR, NewICR, NewMSSR, NewMCFR uint32
}

func (op *AssetUpdateBitasset) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", op.AssetID)
	}
	if a.Issuer != op.Issuer {
		return errs.E(errs.Precondition, "issuer mismatch")
	}
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
	if bad.IsGloballySettled() {
		return errs.E(errs.State, "asset %d is globally settled", op.AssetID)
	}

	if op.NewMCR != bad.OptionsMCR && !asset.Has(a.Options.Permissions, asset.CommitteeFedMCRUpdate) {
		return errs.E(errs.Precondition, "issuer may not override MCR")
	}
	if op.NewICR != bad.OptionsICR && !asset.Has(a.Options.Permissions, asset.CommitteeFedICRUpdate) {
		return errs.E(errs.Precondition, "issuer may not override ICR")
	}
	if op.NewMSSR != bad.OptionsMSSR && !asset.Has(a.Options.Permissions, asset.CommitteeFedMSSRUpdate) {
		return errs.E(errs.Precondition, "issuer may not override MSSR")
	}

	if op.NewShortBackingAsset != bad.ShortBackingAsset {
		dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
		if dd.CurrentSupply != 0 || dd.AccumulatedCollateralFees != 0 {
			return errs.E(errs.Precondition, "backing asset may not change while supply or collateral fees are outstanding")
		}
		if op.NewShortBackingAsset == op.AssetID {
			return errs.E(errs.Invariant, "asset cannot back itself")
		}
		newBacking := ctx.Assets.Assets.Get(op.NewShortBackingAsset)
		if newBacking == nil {
			return errs.E(errs.Precondition, "new backing asset %d does not exist", op.NewShortBackingAsset)
		}
		if newBacking.IsMarketIssued() {
			grandparent := ctx.Assets.Bitassets.Get(*newBacking.BitassetID)
			grandparentAsset := ctx.Assets.Assets.Get(grandparent.ShortBackingAsset)
			if grandparentAsset != nil && grandparentAsset.IsMarketIssued() {
				return errs.E(errs.Invariant, "new backing asset chain would be more than 2 deep")
			}
		}
		for _, childID := range ctx.Assets.ChildrenOf(op.AssetID) {
			if childID == op.NewShortBackingAsset {
				return errs.E(errs.Invariant, "new backing asset %d would create a cycle with a child bitasset", op.NewShortBackingAsset)
			}
			child := ctx.Assets.Assets.Get(childID)
			if child != nil && newBacking.IsMarketIssued() {
				return errs.E(errs.Invariant, "new backing asset is itself market-issued, which would make child %d 3-deep", childID)
			}
			if child != nil && child.Options.Flags&asset.CommitteeFedAsset != 0 {
				return errs.E(errs.Invariant, "child %d is committee-fed and cannot tolerate a backing change upstream", childID)
			}
		}
	}
	return nil
}

func (op *AssetUpdateBitasset) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)

	feedParamsChanged := op.NewMCR != bad.OptionsMCR || op.NewICR != bad.OptionsICR ||
		op.NewMSSR != bad.OptionsMSSR || op.NewMCFR != bad.OptionsMCFR
	mcfrChanged := op.NewMCFR != bad.OptionsMCFR
	backingChanged := op.NewShortBackingAsset != bad.ShortBackingAsset

	if backingChanged {
		ctx.Assets.UnlinkBitasset(op.AssetID, bad.ShortBackingAsset)
		ctx.Assets.LinkBitasset(op.AssetID, op.NewShortBackingAsset)
		bad.ShortBackingAsset = op.NewShortBackingAsset

		witnessOrCommitteeFed := a.Options.Flags&(asset.WitnessFedAsset|asset.CommitteeFedAsset) != 0
		if witnessOrCommitteeFed {
			bad.Feeds = nil
		} else {
			for publisher, e := range bad.Feeds {
				e.Feed.SettlementPrice = calc.Price{}
				bad.Feeds[publisher] = e
			}
		}
	}

	bad.FeedLifetimeSec = op.NewFeedLifetimeSec
	bad.MinimumFeeds = op.NewMinimumFeeds
	bad.ForceSettlementDelaySec = op.NewForceSettlementDelaySec
	bad.ForceSettlementOffsetPercent = op.NewForceSettlementOffsetPercent
	bad.ForceSettleFeePercent = op.NewForceSettleFeePercent
	bad.OptionsMCR = op.NewMCR
	bad.OptionsICR = op.NewICR
	bad.OptionsMSSR = op.NewMSSR
	bad.OptionsMCFR = op.NewMCFR

	feedEffectivelyChanged := feedParamsChanged || backingChanged
	if feedEffectivelyChanged {
		if err := bad.UpdateMedianFeeds(ctx.Now); err != nil {
			return err
		}
	}
	if feedEffectivelyChanged || mcfrChanged {
		if err := ctx.Matcher.CheckCallOrders(op.AssetID); err != nil {
			return err
		}
	}
	return nil
}
