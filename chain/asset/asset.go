// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package asset models the static, dynamic, and bitasset entities of
// spec.md 3: fungible assets (user-issued and collateral-backed
// "bitassets"), their permission/flag masks, and the median price-feed
// computation that drives margin calls.
package asset

import (
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// The size of Options.Whitelist/Blacklist is bounded by the chain
// parameter params.ChainParameters.MaximumAssetWhitelistAuthorities,
// checked by the create/update evaluators, not by this package.

// Options carries the permissions mask, flags mask, and the remaining
// per-asset configuration of spec.md 3's "options" field.
type Options struct {
	MaxSupply       calc.Amount
	MarketFeePercent uint32 // basis points
	TakerFeePercent  *uint32 // nil means "use MarketFeePercent"
	MaxMarketFee     calc.Amount
	Permissions      Permission
	Flags            Flag
	CoreExchangeRate calc.Price

	Whitelist []account.AccountID
	Blacklist []account.AccountID

	// RewardPercent and WhitelistMarketFeeSharing implement the referrer
	// reward split of spec.md 4.5.
	RewardPercent             uint32
	WhitelistMarketFeeSharing []account.AccountID
}

// Asset is the static identity of a fungible asset: issuer, symbol,
// precision, and options, plus the store IDs of its owned dynamic and
// (if market-issued) bitasset data.
type Asset struct {
	Issuer    account.AccountID
	Symbol    string
	Precision uint8
	Options   Options

	DynamicDataID store.ID
	BitassetID    *store.ID // nil unless this asset is market-issued
}

// IsMarketIssued reports whether a is a bitasset (backed by collateral).
func (a *Asset) IsMarketIssued() bool { return a.BitassetID != nil }

// DynamicData is the mutable supply and fee-accumulator state of an
// asset, held by unique reference from Asset.DynamicDataID.
type DynamicData struct {
	CurrentSupply             calc.Amount
	ConfidentialSupply        calc.Amount
	AccumulatedFees           calc.Amount // in this asset
	AccumulatedCollateralFees calc.Amount // in the backing asset, MIAs only
	FeePool                   calc.Amount // in CORE
}

// CheckSupplyInvariant enforces spec.md 3's "current_supply >= 0 and <=
// max_supply" invariant; the evaluators invoke this after the supply
// changes they make, while the matching fills in chain/book do not.
func (d *DynamicData) CheckSupplyInvariant(maxSupply calc.Amount) error {
	if d.CurrentSupply < 0 {
		return errs.E(errs.Invariant, "current supply %d is negative", d.CurrentSupply)
	}
	if d.CurrentSupply > maxSupply {
		return errs.E(errs.Invariant, "current supply %d exceeds max supply %d", d.CurrentSupply, maxSupply)
	}
	if d.AccumulatedFees < 0 || d.AccumulatedCollateralFees < 0 {
		return errs.E(errs.Invariant, "negative accumulated fees")
	}
	return nil
}

// Table holds every asset and its dynamic/bitasset data, plus the
// secondary indices spec.md 4.2 requires for this component: "asset by
// symbol" (unique) and "bitasset by short_backing_asset" (reverse lookup
// for cycle checks).
type Table struct {
	Assets       *store.Store[Asset]
	DynamicData  *store.Store[DynamicData]
	Bitassets    *store.Store[BitassetData]

	bySymbol        map[string]store.ID
	byBackingAsset  map[store.ID][]store.ID // backing asset ID -> bitasset-carrying asset IDs
}

// NewTable creates an empty asset table.
func NewTable() *Table {
	return &Table{
		Assets:         store.New[Asset](),
		DynamicData:    store.New[DynamicData](),
		Bitassets:      store.New[BitassetData](),
		bySymbol:       make(map[string]store.ID),
		byBackingAsset: make(map[store.ID][]store.ID),
	}
}

// BySymbol looks up an asset by its unique symbol.
func (t *Table) BySymbol(symbol string) (store.ID, bool) {
	id, ok := t.bySymbol[symbol]
	return id, ok
}

// ChildrenOf returns the IDs of every asset whose bitasset data names
// backingAssetID as its short_backing_asset, for the 3-deep cycle and
// check_children rules of spec.md 4.3.
func (t *Table) ChildrenOf(backingAssetID store.ID) []store.ID {
	return append([]store.ID(nil), t.byBackingAsset[backingAssetID]...)
}

// CreateAsset inserts a new asset, indexing it by symbol. It fails if the
// symbol is already taken.
func (t *Table) CreateAsset(a Asset) (store.ID, error) {
	if _, taken := t.bySymbol[a.Symbol]; taken {
		return 0, errs.E(errs.Invariant, "symbol %q already exists", a.Symbol)
	}
	id := t.Assets.Create(func(store.ID) Asset { return a })
	t.bySymbol[a.Symbol] = id
	return id, nil
}

// LinkBitasset records assetID's backing-asset relationship in the
// reverse index, for later ChildrenOf lookups. Callers must call
// UnlinkBitasset first if assetID's backing asset is changing.
func (t *Table) LinkBitasset(assetID, backingAssetID store.ID) {
	t.byBackingAsset[backingAssetID] = append(t.byBackingAsset[backingAssetID], assetID)
}

// UnlinkBitasset removes assetID from backingAssetID's reverse index.
func (t *Table) UnlinkBitasset(assetID, backingAssetID store.ID) {
	children := t.byBackingAsset[backingAssetID]
	for i, id := range children {
		if id == assetID {
			t.byBackingAsset[backingAssetID] = append(children[:i], children[i+1:]...)
			return
		}
	}
}
