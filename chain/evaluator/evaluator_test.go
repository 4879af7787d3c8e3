// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"testing"

	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/book"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/fees"
	"github.com/abitmore/revpop-core/chain/params"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// ledgerStub is a balance table satisfying evaluator.Ledger, the
// minimal external-collaborator double these tests need in place of a
// real account/vesting layer (spec.md 1 excludes both).
type ledgerStub struct {
	balances map[account.AccountID]map[store.ID]calc.Amount
}

func newLedgerStub() *ledgerStub {
	return &ledgerStub{balances: make(map[account.AccountID]map[store.ID]calc.Amount)}
}

func (l *ledgerStub) Credit(acct account.AccountID, assetID store.ID, amt calc.Amount) {
	if l.balances[acct] == nil {
		l.balances[acct] = make(map[store.ID]calc.Amount)
	}
	l.balances[acct][assetID] += amt
}

func (l *ledgerStub) CreditVestingCashback(acct account.AccountID, amt calc.Amount) {
	l.Credit(acct, book.CoreAssetID, amt)
}

func (l *ledgerStub) Debit(acct account.AccountID, assetID store.ID, amt calc.Amount) error {
	if l.balances[acct][assetID] < amt {
		return errs.E(errs.Precondition, "account has insufficient balance of asset %d", assetID)
	}
	l.Credit(acct, assetID, -amt)
	return nil
}

func (l *ledgerStub) Balance(acct account.AccountID, assetID store.ID) calc.Amount {
	return l.balances[acct][assetID]
}

type sellerInfoStub struct{}

func (sellerInfoStub) Lookup(acct account.AccountID) fees.Seller { return fees.Seller{} }

func acctFromByte(b byte) account.AccountID {
	var id account.AccountID
	id[0] = b
	return id
}

// bitassetMarket bundles a ready-to-use Context over a two-asset table:
// CORE (id 0) and a bitasset MIA backed by it.
type bitassetMarket struct {
	ctx       *Context
	ledger    *ledgerStub
	core, mia store.ID
	bitID     store.ID
}

// newBitassetMarket builds CORE plus a market-issued asset MIA backed by
// it, with no price feed published yet (CurrentFeed starts null).
func newBitassetMarket(t *testing.T) *bitassetMarket {
	t.Helper()
	tbl := asset.NewTable()

	core, err := tbl.CreateAsset(asset.Asset{
		Symbol:    "CORE",
		Precision: 5,
		Options:   asset.Options{MaxSupply: calc.MaxShareSupply},
	})
	if err != nil {
		t.Fatal(err)
	}
	coreDD := tbl.DynamicData.Create(func(store.ID) asset.DynamicData { return asset.DynamicData{} })
	tbl.Assets.Get(core).DynamicDataID = coreDD

	mia, err := tbl.CreateAsset(asset.Asset{
		Symbol:    "MIA",
		Precision: 4,
		Options:   asset.Options{MaxSupply: 1_000_000_000, Permissions: asset.GlobalSettle},
	})
	if err != nil {
		t.Fatal(err)
	}
	miaDD := tbl.DynamicData.Create(func(store.ID) asset.DynamicData { return asset.DynamicData{} })
	mAsset := tbl.Assets.Get(mia)
	mAsset.DynamicDataID = miaDD

	bitID := tbl.Bitassets.Create(func(store.ID) asset.BitassetData {
		return asset.BitassetData{
			ShortBackingAsset:       core,
			FeedLifetimeSec:         86_400,
			MinimumFeeds:            1,
			ForceSettlementDelaySec: 3_600,
		}
	})
	mAsset.BitassetID = &bitID
	tbl.LinkBitasset(mia, core)

	ledger := newLedgerStub()
	bk := book.NewBook()
	m := &book.Matcher{
		Book:            bk,
		Assets:          tbl,
		Params:          params.Default(),
		Ledger:          ledger,
		SellerInfo:      sellerInfoStub{},
		EnableBlackSwan: true,
		Now:             1_000,
	}
	m.GlobalSettle = GlobalSettle

	ctx := &Context{
		Assets:  tbl,
		Matcher: m,
		Ledger:  ledger,
		Params:  params.Default(),
		Now:     1_000,
	}

	return &bitassetMarket{ctx: ctx, ledger: ledger, core: core, mia: mia, bitID: bitID}
}

// priceFeedFixture returns the feed shared by tests that only care about
// a 1:1 settlement price at the ICR=2000/MCR=1750/MSSR=1100 boundary
// used throughout this package's margin-call scenarios.
func priceFeedFixture() asset.PriceFeed {
	return asset.PriceFeed{
		SettlementPrice: calc.Price{Base: 1000, Quote: 1000},
		MCR:             1750, ICR: 2000, MSSR: 1100,
	}
}

// publishFeed installs a single live feed on the market's bitasset,
// bypassing authority checks (those belong to the publish_feed
// evaluator, tested separately).
func (bm *bitassetMarket) publishFeed(t *testing.T, feed asset.PriceFeed) {
	t.Helper()
	bad := bm.ctx.Assets.Bitassets.Get(bm.bitID)
	if _, err := bad.PublishFeed(acctFromByte(250), bm.ctx.Now, feed); err != nil {
		t.Fatal(err)
	}
}
