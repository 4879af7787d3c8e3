// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package params carries the chain-wide configuration constants that
// evaluators and the matching engine consult. There is no file format or
// CLI owned by this core (spec.md 6) — the caller constructs and threads
// a ChainParameters value per block; it is never a process singleton.
package params

import "github.com/abitmore/revpop-core/dex/calc"

// ChainParameters is an immutable snapshot of the committee-controlled
// constants in effect for the operations being processed.
type ChainParameters struct {
	// BlockInterval is the nominal seconds between blocks, used to bound
	// feed_lifetime_sec and force_settlement_delay_sec.
	BlockInterval uint32

	// MaximumAssetWhitelistAuthorities caps the size of an asset's
	// whitelist/blacklist authority sets.
	MaximumAssetWhitelistAuthorities uint8

	// MaximumAssetFeedPublishers caps the number of feed producers a
	// non-witness, non-committee-fed MIA may configure.
	MaximumAssetFeedPublishers uint8

	// MarketFeeNetworkPercent is the basis-point share of a collected
	// market fee that is deposited to the network (committee) account.
	MarketFeeNetworkPercent uint32

	// MakerFeeDiscountPercent is the basis-point discount applied to a
	// maker's deferred order-placement fee, which is settled on the
	// order's first fill only.
	MakerFeeDiscountPercent uint32

	// CashbackVestingThreshold is the minimum CORE amount that triggers a
	// vesting cashback payout rather than an immediate deposit.
	CashbackVestingThreshold calc.Amount

	// MaxForceSettlementVolume is the basis-point cap, per block, on the
	// fraction of current_supply that may be force-settled against calls.
	MaxForceSettlementVolume uint32

	// MaxShareSupply mirrors calc.MaxShareSupply; carried here so callers
	// constructing a ChainParameters don't need to import calc separately.
	MaxShareSupply calc.Amount

	// HundredPercent is the basis-point denominator (10,000).
	HundredPercent uint32
}

// Default returns the stock constants used throughout this module's tests
// and examples.
func Default() ChainParameters {
	return ChainParameters{
		BlockInterval:                    5,
		MaximumAssetWhitelistAuthorities: 10,
		MaximumAssetFeedPublishers:       10,
		MarketFeeNetworkPercent:          2000, // 20%
		MakerFeeDiscountPercent:          5000, // 50%
		CashbackVestingThreshold:         100_000_000,
		MaxForceSettlementVolume:         2000, // 20%
		MaxShareSupply:                   calc.MaxShareSupply,
		HundredPercent:                   calc.HundredPercent,
	}
}
