// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package evaluator dispatches the closed operation set of spec.md 6
// through a tagged-variant Operation interface (spec.md 9: "a tagged
// variant of operations dispatched through a pair of functions"),
// implementing asset lifecycle evaluation (C4) and global settlement
// and revival (C7) on top of the chain/asset and chain/book state.
package evaluator

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/book"
	"github.com/abitmore/revpop-core/chain/params"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// Ledger is the balance-crediting/debiting collaborator this package
// relies on but does not own (spec.md 1 excludes accounts). It extends
// book.Ledger with Debit, needed by operations that escrow or burn a
// caller's balance (reserve, force-settle, order placement).
type Ledger interface {
	book.Ledger
	// Debit withdraws amt of assetID from acct, failing with
	// errs.Precondition if the balance is insufficient.
	Debit(acct account.AccountID, assetID store.ID, amt calc.Amount) error
}

// Context bundles everything an Operation's Validate/Apply pair needs:
// the asset table, the order book and matcher, the balance collaborator,
// and the chain parameters and block time in effect. It is threaded
// through by value per spec.md 9 ("immutable configuration reference per
// block; not a process singleton") except for the pointers it carries,
// which are this block's exclusive mutable state.
type Context struct {
	Assets  *asset.Table
	Matcher *book.Matcher
	Ledger  Ledger
	Params  params.ChainParameters
	Now     int64
}

// Operation is one variant of spec.md 6's closed operation set. Validate
// runs on read-only state and may fail; Apply performs the mutation and
// must not fail under conditions Validate has already checked.
type Operation interface {
	Validate(ctx *Context) error
	Apply(ctx *Context) error
}

// Do validates then applies op, the single entry point callers use to
// process one operation. No partial mutation is visible if Validate
// fails (spec.md 7).
func Do(ctx *Context, op Operation) error {
	if err := op.Validate(ctx); err != nil {
		return err
	}
	return op.Apply(ctx)
}
