// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package book

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/fees"
	"github.com/abitmore/revpop-core/chain/params"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// Ledger is the balance-crediting collaborator this core relies on but
// does not own (spec.md 1: account balances and vesting are external
// concerns). Matcher calls it once per leg of every fill; the caller is
// responsible for making the debit/credit pair atomic with everything
// else in the enclosing operation.
type Ledger interface {
	Credit(acct account.AccountID, assetID store.ID, amt calc.Amount)
	// CreditVestingCashback deposits a CORE amount as vesting cashback.
	// settleDeferredFee applies the cashback-vesting-threshold rule of
	// spec.md 4.4.5 itself: it calls this only for amounts at or above the
	// threshold and uses Credit below it. The vesting schedule lives in
	// the caller's account layer.
	CreditVestingCashback(acct account.AccountID, amt calc.Amount)
}

// SellerInfo resolves the registrar/referrer lookups the fee router
// needs for an account, another external-collaborator hook (spec.md 1:
// accounts are out of scope).
type SellerInfo interface {
	Lookup(acct account.AccountID) fees.Seller
}

// Matcher bundles everything apply_order and check_call_orders need:
// the asset table, chain parameters, the balance-crediting collaborator,
// and an accumulator of emitted events.
type Matcher struct {
	Book   *Book
	Assets *asset.Table
	Params params.ChainParameters

	Ledger     Ledger
	SellerInfo SellerInfo

	EnableBlackSwan bool
	// GlobalSettle is invoked when check_call_orders detects a black
	// swan; it implements C7 and is supplied by the evaluator package to
	// avoid a book->evaluator import cycle.
	GlobalSettle func(m *Matcher, debtAsset store.ID, swanPrice calc.Price) error

	Now int64

	Events []any
}

func (m *Matcher) emit(e any) { m.Events = append(m.Events, e) }

func assetFeeInfo(a *asset.Asset) fees.Asset {
	return fees.Asset{
		MarketFeePercent:          a.Options.MarketFeePercent,
		TakerFeePercent:           a.Options.TakerFeePercent,
		MaxMarketFee:              a.Options.MaxMarketFee,
		RewardPercent:             a.Options.RewardPercent,
		WhitelistMarketFeeSharing: a.Options.WhitelistMarketFeeSharing,
	}
}
