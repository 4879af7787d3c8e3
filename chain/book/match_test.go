// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package book

import (
	"testing"

	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/fees"
	"github.com/abitmore/revpop-core/chain/params"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

type stubLedger struct {
	credits map[account.AccountID]map[store.ID]calc.Amount
}

func newStubLedger() *stubLedger {
	return &stubLedger{credits: make(map[account.AccountID]map[store.ID]calc.Amount)}
}

func (l *stubLedger) Credit(acct account.AccountID, assetID store.ID, amt calc.Amount) {
	if l.credits[acct] == nil {
		l.credits[acct] = make(map[store.ID]calc.Amount)
	}
	l.credits[acct][assetID] += amt
}

func (l *stubLedger) CreditVestingCashback(acct account.AccountID, amt calc.Amount) {
	l.Credit(acct, CoreAssetID, amt)
}

type stubSellerInfo struct{}

func (stubSellerInfo) Lookup(acct account.AccountID) fees.Seller { return fees.Seller{} }

func acctFromByte(b byte) account.AccountID {
	var id account.AccountID
	id[0] = b
	return id
}

// newTestMarket sets up two assets (CORE and a 2%-fee UIA) and a Matcher
// ready to drive spec.md 8 scenario 1.
func newTestMarket(t *testing.T) (*Matcher, store.ID, store.ID) {
	t.Helper()
	tbl := asset.NewTable()
	core, err := tbl.CreateAsset(asset.Asset{Symbol: "CORE", Precision: 5})
	if err != nil {
		t.Fatal(err)
	}
	coreDD := tbl.DynamicData.Create(func(store.ID) asset.DynamicData { return asset.DynamicData{} })
	a := tbl.Assets.Get(core)
	a.DynamicDataID = coreDD

	x, err := tbl.CreateAsset(asset.Asset{
		Symbol:    "X",
		Precision: 2,
		Options:   asset.Options{MarketFeePercent: 200, MaxSupply: 1_000_000},
	})
	if err != nil {
		t.Fatal(err)
	}
	xDD := tbl.DynamicData.Create(func(store.ID) asset.DynamicData { return asset.DynamicData{} })
	xa := tbl.Assets.Get(x)
	xa.DynamicDataID = xDD

	bk := NewBook()
	m := &Matcher{
		Book:       bk,
		Assets:     tbl,
		Params:     params.Default(),
		Ledger:     newStubLedger(),
		SellerInfo: stubSellerInfo{},
	}
	return m, core, x
}

func TestSimpleUIATradeScenario(t *testing.T) {
	m, core, x := newTestMarket(t)

	seller := acctFromByte(1)
	buyer := acctFromByte(2)

	// A posts sell 1000 X @ 1 X/CORE: SellPrice Base=X denominated,
	// Quote=CORE denominated, 1:1.
	restingA := m.Book.InsertLimit(LimitOrder{
		Seller:    seller,
		SellAsset: x,
		BuyAsset:  core,
		ForSale:   1000,
		SellPrice: calc.Price{Base: 1, Quote: 1},
	})
	_ = restingA

	// B posts buy 500 X @ 1 X/CORE == sell 500 CORE for X at 1:1.
	takerB := m.Book.InsertLimit(LimitOrder{
		Seller:    buyer,
		SellAsset: core,
		BuyAsset:  x,
		ForSale:   500,
		SellPrice: calc.Price{Base: 1, Quote: 1},
	})

	if err := m.ApplyOrder(takerB); err != nil {
		t.Fatal(err)
	}

	ledger := m.Ledger.(*stubLedger)

	// B receives 500 X minus 2% fee = 490 X.
	if got := ledger.credits[buyer][x]; got != 490 {
		t.Fatalf("buyer received %d X, want 490", got)
	}
	// A receives 500 CORE (no fee on CORE in this scenario).
	if got := ledger.credits[seller][core]; got != 500 {
		t.Fatalf("seller received %d CORE, want 500", got)
	}

	remaining := m.Book.LimitOrders.Get(restingA.ID)
	if remaining == nil || remaining.ForSale != 500 {
		t.Fatalf("seller's resting order for_sale = %v, want 500", remaining)
	}
}

func TestDustCullScenario(t *testing.T) {
	// A partial fill (spec.md 8 scenario 5) that leaves a maker with a
	// for_sale remainder whose amount_to_receive floors to zero must cull
	// that remainder rather than leave unfillable dust on the book.
	m, core, x := newTestMarket(t)
	maker := acctFromByte(1)
	taker := acctFromByte(2)

	// Maker sells 4 X at a rate of 3 X per 1 CORE.
	restingMaker := m.Book.InsertLimit(LimitOrder{
		Seller:    maker,
		SellAsset: x,
		BuyAsset:  core,
		ForSale:   4,
		SellPrice: calc.Price{Base: 3, Quote: 1},
	})

	// Taker sells 1 CORE at the same rate, buying floor(1*3/1) = 3 X.
	takerOrder := m.Book.InsertLimit(LimitOrder{
		Seller:    taker,
		SellAsset: core,
		BuyAsset:  x,
		ForSale:   1,
		SellPrice: calc.Price{Base: 1, Quote: 3},
	})

	if err := m.ApplyOrder(takerOrder); err != nil {
		t.Fatal(err)
	}

	if m.Book.LimitOrders.Get(restingMaker.ID) != nil {
		t.Fatal("maker's 1-X dust remainder should have been culled")
	}

	ledger := m.Ledger.(*stubLedger)
	if got := ledger.credits[maker][x]; got != 1 {
		t.Fatalf("maker refund = %d X, want 1 (its uncrossable remainder)", got)
	}
	if got := ledger.credits[taker][x]; got != 3 {
		t.Fatalf("taker received %d X, want 3", got)
	}
}
