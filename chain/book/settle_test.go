// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package book

import (
	"testing"

	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/params"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/calc"
)

// newSettleTestMarket builds a CORE/MIA pair with matchPrice as the MIA's
// current feed settlement price (base denominated in MIA, quote in CORE,
// matching fill_call_order's convention), ready to drive
// matchCallSettle/ProcessForceSettlements scenarios directly.
func newSettleTestMarket(t *testing.T, matchPrice calc.Price, forceSettleFeePercent uint32) (*Matcher, store.ID, store.ID) {
	t.Helper()
	tbl := asset.NewTable()

	core, err := tbl.CreateAsset(asset.Asset{Symbol: "CORE", Precision: 5})
	if err != nil {
		t.Fatal(err)
	}
	coreDD := tbl.DynamicData.Create(func(store.ID) asset.DynamicData { return asset.DynamicData{} })
	tbl.Assets.Get(core).DynamicDataID = coreDD

	mia, err := tbl.CreateAsset(asset.Asset{Symbol: "MIA", Precision: 4})
	if err != nil {
		t.Fatal(err)
	}
	miaDD := tbl.DynamicData.Create(func(store.ID) asset.DynamicData {
		return asset.DynamicData{CurrentSupply: 10_000_000}
	})
	miaAsset := tbl.Assets.Get(mia)
	miaAsset.DynamicDataID = miaDD

	badID := tbl.Bitassets.Create(func(store.ID) asset.BitassetData {
		return asset.BitassetData{
			ShortBackingAsset:     core,
			ForceSettleFeePercent: forceSettleFeePercent,
			CurrentFeed:           asset.PriceFeed{SettlementPrice: matchPrice},
		}
	})
	miaAsset.BitassetID = &badID
	tbl.LinkBitasset(mia, core)

	bk := NewBook()
	m := &Matcher{
		Book:       bk,
		Assets:     tbl,
		Params:     params.Default(),
		Ledger:     newStubLedger(),
		SellerInfo: stubSellerInfo{},
	}
	return m, core, mia
}

// TestMatchCallSettleCallSmallerReCeils covers spec.md 4.4.4's "after the
// floor pass, re-ceil the counter-amount once" rule: when the call is the
// smaller side, its collateral leg must round up from receives, not down
// from the (larger) settle amount.
func TestMatchCallSettleCallSmallerReCeils(t *testing.T) {
	// matchPrice = 3 MIA : 2 CORE; receives=5 MIA floors to 3 CORE but
	// ceils to 4 — the call being the smaller side must see the ceiling.
	m, core, mia := newSettleTestMarket(t, calc.Price{Base: 3, Quote: 2}, 0)
	bad := m.Assets.Bitassets.Get(*m.Assets.Assets.Get(mia).BitassetID)

	borrower := acctFromByte(1)
	call := m.Book.InsertCall(CallOrder{
		Borrower: borrower, CollateralAsset: core, DebtAsset: mia,
		Collateral: 10, Debt: 5,
	})

	owner := acctFromByte(2)
	settle := m.Book.InsertSettle(SettleOrder{
		Owner: owner, SettlementAsset: mia, Balance: 100,
	})

	if err := m.matchCallSettle(call, settle, bad, bad.CurrentFeed.SettlementPrice, 1000); err != nil {
		t.Fatal(err)
	}

	if got := m.Book.CallOrders.Get(call.ID); got != nil {
		t.Fatalf("call order still present: %+v, want fully closed (debt 5 consumed)", got)
	}
	ledger := m.Ledger.(*stubLedger)
	// callPays = ceil(5 * 2/3) = 4, out of 10 collateral; 6 refunded to
	// the borrower on close.
	if got := ledger.credits[borrower][core]; got != 6 {
		t.Fatalf("borrower refund = %d CORE, want 6 (10 collateral - 4 call_pays)", got)
	}
	if got := ledger.credits[owner][core]; got != 4 {
		t.Fatalf("settle owner received %d CORE, want 4 (the re-ceiled call_pays)", got)
	}
	remaining := m.Book.SettleOrders.Get(settle.ID)
	if remaining == nil || remaining.Balance != 95 {
		t.Fatalf("settle order balance = %v, want 95 (100 - 5 MIA consumed)", remaining)
	}
}

// TestMatchCallSettleSettleSmallerFloorsAndCulls covers the settle-order-
// is-smaller case: call_pays floors from the settle's own (smaller)
// amount, and the settle order is fully consumed and removed.
func TestMatchCallSettleSettleSmallerFloorsAndCulls(t *testing.T) {
	m, core, mia := newSettleTestMarket(t, calc.Price{Base: 3, Quote: 2}, 0)
	bad := m.Assets.Bitassets.Get(*m.Assets.Assets.Get(mia).BitassetID)

	borrower := acctFromByte(1)
	call := m.Book.InsertCall(CallOrder{
		Borrower: borrower, CollateralAsset: core, DebtAsset: mia,
		Collateral: 1000, Debt: 100,
	})

	owner := acctFromByte(2)
	settle := m.Book.InsertSettle(SettleOrder{
		Owner: owner, SettlementAsset: mia, Balance: 5,
	})

	if err := m.matchCallSettle(call, settle, bad, bad.CurrentFeed.SettlementPrice, 1000); err != nil {
		t.Fatal(err)
	}

	got := m.Book.CallOrders.Get(call.ID)
	if got == nil {
		t.Fatal("call order removed, want it still open (only partially covered)")
	}
	if got.Debt != 95 || got.Collateral != 997 {
		t.Fatalf("call order = %+v, want Debt=95 Collateral=997 (pays=floor(5*2/3)=3)", got)
	}
	if m.Book.SettleOrders.Get(settle.ID) != nil {
		t.Fatal("settle order still present, want fully consumed and removed")
	}
	ledger := m.Ledger.(*stubLedger)
	if got := ledger.credits[owner][core]; got != 3 {
		t.Fatalf("settle owner received %d CORE, want 3 (floor(5*2/3))", got)
	}
}

// TestMatchCallSettleZeroCallPaysCancelsSettle covers the call_pays=0 dust
// rule: when the call is not the smaller side and the rounded collateral
// leg is zero, the settle order is cancelled and refunded in full rather
// than matched for nothing.
func TestMatchCallSettleZeroCallPaysCancelsSettle(t *testing.T) {
	// matchPrice = 1000 MIA : 1 CORE; a 1-MIA settle floors to 0 CORE.
	m, core, mia := newSettleTestMarket(t, calc.Price{Base: 1000, Quote: 1}, 0)
	bad := m.Assets.Bitassets.Get(*m.Assets.Assets.Get(mia).BitassetID)

	borrower := acctFromByte(1)
	call := m.Book.InsertCall(CallOrder{
		Borrower: borrower, CollateralAsset: core, DebtAsset: mia,
		Collateral: 1_000_000, Debt: 1_000_000,
	})

	owner := acctFromByte(2)
	settle := m.Book.InsertSettle(SettleOrder{
		Owner: owner, SettlementAsset: mia, Balance: 1,
	})

	if err := m.matchCallSettle(call, settle, bad, bad.CurrentFeed.SettlementPrice, 1000); err != nil {
		t.Fatal(err)
	}

	got := m.Book.CallOrders.Get(call.ID)
	if got == nil || got.Debt != 1_000_000 || got.Collateral != 1_000_000 {
		t.Fatalf("call order = %+v, want untouched", got)
	}
	if m.Book.SettleOrders.Get(settle.ID) != nil {
		t.Fatal("settle order still present, want cancelled")
	}
	ledger := m.Ledger.(*stubLedger)
	if got := ledger.credits[owner][mia]; got != 1 {
		t.Fatalf("cancelled settle refund = %d MIA, want 1 (its own balance back)", got)
	}
	if len(m.Events) != 1 {
		t.Fatalf("events = %v, want exactly one SettleCancel", m.Events)
	}
}
