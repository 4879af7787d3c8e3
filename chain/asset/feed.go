// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package asset

import (
	"sort"

	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// PriceFeed is a single publisher's view of a bitasset's settlement price
// and the margin-call ratios it is willing to vouch for.
type PriceFeed struct {
	SettlementPrice calc.Price // base is the MIA (debt asset), quote is short_backing_asset (collateral); zero Base means "null"
	MCR             uint32     // maintenance collateral ratio, x1000
	ICR             uint32     // initial collateral ratio, x1000
	MSSR            uint32     // maximum short squeeze ratio, x1000
	MCFR            uint32     // margin call fee ratio, x1000 (same scale as MSSR; see margin_call_order_price)

	CoreExchangeRate calc.Price // quotes in CORE; optional, zero Base means unset
}

// IsNull reports whether f carries no usable settlement price.
func (f PriceFeed) IsNull() bool { return f.SettlementPrice.Base == 0 }

// feedEntry is a stored (timestamp, feed) pair keyed by publisher.
type feedEntry struct {
	Timestamp int64
	Feed      PriceFeed
}

// BitassetData is the market-issuance-specific state of an asset: the
// parameters governing feed aggregation and margin calls, the raw
// per-publisher feeds, the aggregated current_feed, and (if the asset
// has been globally settled) the settlement price and fund.
type BitassetData struct {
	ShortBackingAsset store.ID

	FeedLifetimeSec              uint32
	MinimumFeeds                 uint8
	ForceSettlementDelaySec      uint32
	ForceSettlementOffsetPercent uint32 // basis points
	ForceSettleFeePercent        uint32 // basis points, charged on settle proceeds after the asset's market fee

	// OptionsMCR etc. are explicit overrides from asset options (spec.md
	// 4.6 step 4); zero means "no override, use the computed median".
	OptionsMCR  uint32
	OptionsICR  uint32
	OptionsMSSR uint32
	OptionsMCFR uint32

	IsPredictionMarket bool
	AssetCERUpdated    bool

	Feeds map[account.AccountID]feedEntry

	CurrentFeed                         PriceFeed
	CurrentMaintenanceCollateralization calc.Price // zero Base means null, mirrors CurrentFeed.IsNull

	SettlementPrice calc.Price // zero Base means "not globally settled"
	SettlementFund  calc.Amount
}

// IsGloballySettled reports whether b has an active settlement price and
// fund (spec.md 3's "non-null iff globally settled").
func (b *BitassetData) IsGloballySettled() bool { return b.SettlementPrice.Base != 0 }

// Producers returns the current set of feed publishers, for evaluators
// that need to diff against a new requested set.
func (b *BitassetData) Producers() []account.AccountID {
	out := make([]account.AccountID, 0, len(b.Feeds))
	for publisher := range b.Feeds {
		out = append(out, publisher)
	}
	return out
}

// RemoveFeed drops publisher's entry entirely, used by
// update_feed_producers to drop a publisher no longer in the configured
// set (spec.md 4.3: "remove entries not in the new set").
func (b *BitassetData) RemoveFeed(publisher account.AccountID) {
	delete(b.Feeds, publisher)
}

// PublishFeed records (now, feed) from publisher, overwriting any prior
// entry, and recomputes CurrentFeed. It does not itself decide whether
// publisher is authorized to publish; that is the evaluator's job.
func (b *BitassetData) PublishFeed(publisher account.AccountID, now int64, feed PriceFeed) (changed bool, err error) {
	before := b.CurrentFeed
	if b.Feeds == nil {
		b.Feeds = make(map[account.AccountID]feedEntry)
	}
	b.Feeds[publisher] = feedEntry{Timestamp: now, Feed: feed}
	if err := b.UpdateMedianFeeds(now); err != nil {
		return false, err
	}
	return !marginCallParamsEqual(before, b.CurrentFeed), nil
}

// UpdateMedianFeeds recomputes CurrentFeed and
// CurrentMaintenanceCollateralization from the current set of live feeds,
// following spec.md 4.6 exactly: discard stale entries, null out below
// minimum_feeds, else take the median of each numeric field (lower of
// the two middles on a tie), then apply any asset-option override.
//
// It is idempotent: calling it twice with no feed insertion between calls
// produces the same CurrentFeed (spec.md 8's idempotence law), since it
// is a pure function of Feeds and now.
func (b *BitassetData) UpdateMedianFeeds(now int64) error {
	cutoff := now - int64(b.FeedLifetimeSec)
	var live []PriceFeed
	for publisher, e := range b.Feeds {
		if e.Timestamp < cutoff {
			continue
		}
		_ = publisher
		live = append(live, e.Feed)
	}

	if len(live) < int(b.MinimumFeeds) {
		b.CurrentFeed = PriceFeed{}
		b.CurrentMaintenanceCollateralization = calc.Price{}
		return nil
	}

	median := PriceFeed{
		SettlementPrice: medianPrice(pricesOf(live, func(f PriceFeed) calc.Price { return f.SettlementPrice })),
		MCR:             medianUint(uint32sOf(live, func(f PriceFeed) uint32 { return f.MCR })),
		ICR:             medianUint(uint32sOf(live, func(f PriceFeed) uint32 { return f.ICR })),
		MSSR:            medianUint(uint32sOf(live, func(f PriceFeed) uint32 { return f.MSSR })),
		MCFR:            medianUint(uint32sOf(live, func(f PriceFeed) uint32 { return f.MCFR })),
	}

	if b.OptionsMCR != 0 {
		median.MCR = b.OptionsMCR
	}
	if b.OptionsICR != 0 {
		median.ICR = b.OptionsICR
	}
	if b.OptionsMSSR != 0 {
		median.MSSR = b.OptionsMSSR
	}
	if b.OptionsMCFR != 0 {
		median.MCFR = b.OptionsMCFR
	}

	b.CurrentFeed = median

	maintColl, err := maintenanceCollateralization(median)
	if err != nil {
		return err
	}
	b.CurrentMaintenanceCollateralization = maintColl
	return nil
}

// marginCallParamsEqual reports whether two feeds are "margin-call-
// params-equal" (spec.md 4.6): pairwise equal settlement_price, MCR,
// MSSR, MCFR. ICR does not gate margin calls, so it is excluded.
func marginCallParamsEqual(a, b PriceFeed) bool {
	return a.SettlementPrice.Equal(b.SettlementPrice) && a.MCR == b.MCR && a.MSSR == b.MSSR && a.MCFR == b.MCFR
}

func pricesOf(feeds []PriceFeed, get func(PriceFeed) calc.Price) []calc.Price {
	out := make([]calc.Price, len(feeds))
	for i, f := range feeds {
		out[i] = get(f)
	}
	return out
}

func uint32sOf(feeds []PriceFeed, get func(PriceFeed) uint32) []uint32 {
	out := make([]uint32, len(feeds))
	for i, f := range feeds {
		out[i] = get(f)
	}
	return out
}

// medianPrice returns the median of a set of Price samples ordered by
// cross-product comparison, taking the lower of the two middles on an
// even count, matching the deterministic tie-break spec.md 4.6 step 3
// requires (no floating-point comparison is ever used).
func medianPrice(prices []calc.Price) calc.Price {
	sorted := append([]calc.Price(nil), prices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1]
}

// medianUint returns the median of a set of uint32 samples, lower of the
// two middles on an even count.
func medianUint(vals []uint32) uint32 {
	sorted := append([]uint32(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1]
}

// maintenanceCollateralization computes settlement_price * MCR / 1000
// (spec.md 4.6 step 5) as a Price ratio, returning the null Price if the
// feed itself is null.
func maintenanceCollateralization(f PriceFeed) (calc.Price, error) {
	if f.IsNull() {
		return calc.Price{}, nil
	}
	quote, err := calc.Percent(f.SettlementPrice.Quote, f.MCR*10) // MCR is x1000, Percent wants basis points (x10000)
	if err != nil {
		return calc.Price{}, err
	}
	return calc.Price{Base: f.SettlementPrice.Base, Quote: quote}, nil
}

// InitialCollateralization computes settlement_price * ICR / 1000: the
// same formula as maintenanceCollateralization with ICR in place of MCR,
// the minimum collateralization call_order_update must clear when
// opening a new debt position or increasing an existing one (GLOSSARY
// "ICR — Initial Collateral Ratio").
func InitialCollateralization(f PriceFeed) (calc.Price, error) {
	if f.IsNull() {
		return calc.Price{}, nil
	}
	quote, err := calc.Percent(f.SettlementPrice.Quote, f.ICR*10)
	if err != nil {
		return calc.Price{}, err
	}
	return calc.Price{Base: f.SettlementPrice.Base, Quote: quote}, nil
}

// MarginCallOrderPrice computes settlement_price * MSSR / (MSSR - MCFR)
// (spec.md 4.6 step 6): the price at which a limit order becomes
// eligible to match against call orders. The ratio MSSR/(MSSR-MCFR) is
// reduced to lowest terms and applied without rounding, so with MCFR=0
// the result is settlement_price itself.
func MarginCallOrderPrice(f PriceFeed) (calc.Price, error) {
	if f.IsNull() {
		return calc.Price{}, nil
	}
	denom := f.MSSR - f.MCFR
	g, r := f.MSSR, denom
	for r != 0 {
		g, r = r, g%r
	}
	if g == 0 {
		g = 1
	}
	quote, err := calc.MulFloor(f.SettlementPrice.Quote, calc.Price{Base: 1, Quote: calc.Amount(f.MSSR / g)})
	if err != nil {
		return calc.Price{}, err
	}
	base, err := calc.MulFloor(f.SettlementPrice.Base, calc.Price{Base: 1, Quote: calc.Amount(denom / g)})
	if err != nil {
		return calc.Price{}, err
	}
	return calc.Price{Base: base, Quote: quote}, nil
}

// MaxShortSqueezePrice computes settlement_price * MSSR / 1000 (spec.md
// 4.6 step 6): the worst price a call order pays when covering debt.
func MaxShortSqueezePrice(f PriceFeed) (calc.Price, error) {
	if f.IsNull() {
		return calc.Price{}, nil
	}
	quote, err := calc.Percent(f.SettlementPrice.Quote, f.MSSR*10)
	if err != nil {
		return calc.Price{}, err
	}
	return calc.Price{Base: f.SettlementPrice.Base, Quote: quote}, nil
}
