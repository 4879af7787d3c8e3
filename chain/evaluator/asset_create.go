// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"strings"

	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/book"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// BitassetOptions is the market-issuance configuration an AssetCreate (or
// AssetUpdateBitasset) carries, mirroring spec.md 3's bitasset-data
// static fields.
type BitassetOptions struct {
	ShortBackingAsset            store.ID
	FeedLifetimeSec              uint32
	MinimumFeeds                 uint8
	ForceSettlementDelaySec      uint32
	ForceSettlementOffsetPercent uint32
	ForceSettleFeePercent        uint32
	MCR, ICR, MSSR, MCFR         uint32 // overrides; zero means "no override"
	IsPredictionMarket           bool
}

// AssetCreate implements spec.md 4.3's create evaluator.
type AssetCreate struct {
	Issuer      account.AccountID
	Symbol      string
	Precision   uint8
	Options     asset.Options
	Bitasset    *BitassetOptions // nil for a plain UIA
	CreationFee calc.Amount      // paid in CORE

	id store.ID // captured at apply for the caller to read back
}

// ID returns the store.ID assigned to the created asset. Only valid after
// Apply has succeeded.
func (op *AssetCreate) ID() store.ID { return op.id }

func (op *AssetCreate) Validate(ctx *Context) error {
	if op.Precision > 12 {
		return errs.E(errs.Precondition, "precision %d exceeds 12", op.Precision)
	}
	if strings.Count(op.Symbol, ".") > 1 {
		return errs.E(errs.Precondition, "symbol %q has more than one dotted prefix", op.Symbol)
	}
	if i := strings.IndexByte(op.Symbol, '.'); i >= 0 {
		prefixID, ok := ctx.Assets.BySymbol(op.Symbol[:i])
		if !ok {
			return errs.E(errs.Precondition, "dotted prefix %q does not exist", op.Symbol[:i])
		}
		prefix := ctx.Assets.Assets.Get(prefixID)
		if prefix == nil || prefix.Issuer != op.Issuer {
			return errs.E(errs.Precondition, "dotted prefix %q is not owned by issuer", op.Symbol[:i])
		}
	}
	if _, taken := ctx.Assets.BySymbol(op.Symbol); taken {
		return errs.E(errs.Invariant, "symbol %q already exists", op.Symbol)
	}
	if uint8(len(op.Options.Whitelist)) > ctx.Params.MaximumAssetWhitelistAuthorities {
		return errs.E(errs.Precondition, "whitelist exceeds %d authorities", ctx.Params.MaximumAssetWhitelistAuthorities)
	}
	if uint8(len(op.Options.Blacklist)) > ctx.Params.MaximumAssetWhitelistAuthorities {
		return errs.E(errs.Precondition, "blacklist exceeds %d authorities", ctx.Params.MaximumAssetWhitelistAuthorities)
	}
	if !asset.Subset(op.Options.Flags, op.Options.Permissions) {
		return errs.E(errs.Precondition, "flags not a subset of issuer permissions")
	}

	if op.Bitasset == nil {
		return nil
	}
	ba := op.Bitasset

	backing := ctx.Assets.Assets.Get(ba.ShortBackingAsset)
	if backing == nil {
		return errs.E(errs.Precondition, "short_backing_asset %d does not exist", ba.ShortBackingAsset)
	}
	if backing.IsMarketIssued() {
		grandparentBacking := ctx.Assets.Bitassets.Get(*backing.BitassetID)
		if grandparentBacking == nil {
			return errs.E(errs.State, "backing asset %d has no bitasset data", ba.ShortBackingAsset)
		}
		grandparent := ctx.Assets.Assets.Get(grandparentBacking.ShortBackingAsset)
		if grandparent != nil && grandparent.IsMarketIssued() {
			return errs.E(errs.Invariant, "backing asset chain would be more than 2 deep")
		}
	}
	if op.Options.Flags&asset.CommitteeFedAsset != 0 {
		if !groundsInCore(ctx, ba.ShortBackingAsset) {
			return errs.E(errs.Invariant, "committee-fed MIA must ground in CORE")
		}
	}
	if ba.FeedLifetimeSec <= ctx.Params.BlockInterval {
		return errs.E(errs.Precondition, "feed_lifetime_sec must exceed block_interval")
	}
	if ba.ForceSettlementDelaySec <= ctx.Params.BlockInterval {
		return errs.E(errs.Precondition, "force_settlement_delay_sec must exceed block_interval")
	}
	if ba.IsPredictionMarket && op.Precision != backing.Precision {
		return errs.E(errs.Precondition, "prediction market precision must match backing asset")
	}
	return nil
}

// groundsInCore reports whether walking at most one short_backing_asset
// hop from assetID reaches CORE directly, the depth bound the 3-deep
// cycle invariant leaves available to a committee-fed MIA.
func groundsInCore(ctx *Context, assetID store.ID) bool {
	if assetID == book.CoreAssetID {
		return true
	}
	a := ctx.Assets.Assets.Get(assetID)
	if a == nil || !a.IsMarketIssued() {
		return false
	}
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
	return bad != nil && bad.ShortBackingAsset == book.CoreAssetID
}

func (op *AssetCreate) Apply(ctx *Context) error {
	if err := ctx.Ledger.Debit(op.Issuer, book.CoreAssetID, op.CreationFee); err != nil {
		return err
	}

	// CoreExchangeRate carries no embedded asset-id component in this
	// representation (calc.Price is two bare amounts), so there is no
	// self-referential placeholder to rewrite once the asset id exists.
	a := asset.Asset{
		Issuer:    op.Issuer,
		Symbol:    op.Symbol,
		Precision: op.Precision,
		Options:   op.Options,
	}
	ddID := ctx.Assets.DynamicData.Create(func(store.ID) asset.DynamicData { return asset.DynamicData{} })
	a.DynamicDataID = ddID

	if op.Bitasset != nil {
		ba := op.Bitasset
		bid := ctx.Assets.Bitassets.Create(func(store.ID) asset.BitassetData {
			return asset.BitassetData{
				ShortBackingAsset:            ba.ShortBackingAsset,
				FeedLifetimeSec:              ba.FeedLifetimeSec,
				MinimumFeeds:                 ba.MinimumFeeds,
				ForceSettlementDelaySec:      ba.ForceSettlementDelaySec,
				ForceSettlementOffsetPercent: ba.ForceSettlementOffsetPercent,
				ForceSettleFeePercent:        ba.ForceSettleFeePercent,
				OptionsMCR:                   ba.MCR,
				OptionsICR:                   ba.ICR,
				OptionsMSSR:                  ba.MSSR,
				OptionsMCFR:                  ba.MCFR,
				IsPredictionMarket:           ba.IsPredictionMarket,
			}
		})
		a.BitassetID = &bid
	}

	id, err := ctx.Assets.CreateAsset(a)
	if err != nil {
		return err
	}
	if op.Bitasset != nil {
		ctx.Assets.LinkBitasset(id, op.Bitasset.ShortBackingAsset)
	}
	op.id = id

	poolReturn, err := calc.Percent(op.CreationFee, 5000) // half, floor
	if err != nil {
		return err
	}
	burned := op.CreationFee - poolReturn

	dd := ctx.Assets.DynamicData.Get(ddID)
	dd.FeePool += poolReturn

	coreAsset := ctx.Assets.Assets.Get(book.CoreAssetID)
	if coreAsset != nil {
		coreDD := ctx.Assets.DynamicData.Get(coreAsset.DynamicDataID)
		coreDD.CurrentSupply -= burned
		if err := coreDD.CheckSupplyInvariant(ctx.Params.MaxShareSupply); err != nil {
			return err
		}
	}
	return nil
}
