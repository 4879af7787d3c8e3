// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/abitmore/revpop-core/chain/book"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// LimitOrderCreate implements spec.md 6's limit_order_create: escrow
// ForSale plus any order-placement fee, insert into the book, then run
// the apply_order entry point (spec.md 4.4.1). SellPrice is ForSale
// against MinToReceive, the same ratio-of-amounts convention
// chain/book.LimitOrder itself uses.
//
// DeferredFee/DeferredPaidFeeAsset/DeferredPaidFee mirror
// chain/book.LimitOrder's own fields exactly: at most one of DeferredFee
// (paid in CORE) or DeferredPaidFee (paid in DeferredPaidFeeAsset, a
// non-CORE fee already converted upstream via that asset's
// core_exchange_rate) is set, escrowed here and settled on first fill by
// chain/book's settleDeferredFee.
type LimitOrderCreate struct {
	Seller    account.AccountID
	SellAsset store.ID
	BuyAsset  store.ID

	ForSale      calc.Amount
	MinToReceive calc.Amount

	Expiration int64
	FillOrKill bool

	DeferredFee          calc.Amount
	DeferredPaidFeeAsset store.ID
	DeferredPaidFee      calc.Amount
}

func (op *LimitOrderCreate) Validate(ctx *Context) error {
	if op.SellAsset == op.BuyAsset {
		return errs.E(errs.Precondition, "cannot sell an asset for itself")
	}
	if op.ForSale <= 0 || op.MinToReceive <= 0 {
		return errs.E(errs.Precondition, "for_sale and min_to_receive must be positive")
	}
	if ctx.Assets.Assets.Get(op.SellAsset) == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.SellAsset)
	}
	if ctx.Assets.Assets.Get(op.BuyAsset) == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.BuyAsset)
	}
	if op.DeferredFee > 0 && op.DeferredPaidFee > 0 {
		return errs.E(errs.Precondition, "order-placement fee may be paid in only one asset")
	}
	return nil
}

func (op *LimitOrderCreate) Apply(ctx *Context) error {
	if err := ctx.Ledger.Debit(op.Seller, op.SellAsset, op.ForSale); err != nil {
		return err
	}
	if op.DeferredFee > 0 {
		if err := ctx.Ledger.Debit(op.Seller, book.CoreAssetID, op.DeferredFee); err != nil {
			return err
		}
	}
	if op.DeferredPaidFee > 0 {
		if err := ctx.Ledger.Debit(op.Seller, op.DeferredPaidFeeAsset, op.DeferredPaidFee); err != nil {
			return err
		}
	}

	taker := ctx.Matcher.Book.InsertLimit(book.LimitOrder{
		Seller:               op.Seller,
		SellAsset:            op.SellAsset,
		BuyAsset:             op.BuyAsset,
		ForSale:              op.ForSale,
		SellPrice:            calc.Price{Base: op.ForSale, Quote: op.MinToReceive},
		Expiration:           op.Expiration,
		DeferredFee:          op.DeferredFee,
		DeferredPaidFeeAsset: op.DeferredPaidFeeAsset,
		DeferredPaidFee:      op.DeferredPaidFee,
	})

	if err := ctx.Matcher.ApplyOrder(taker); err != nil {
		return err
	}

	if op.FillOrKill && taker.ForSale > 0 {
		return cancelLimitOrder(ctx, taker)
	}
	return nil
}

// LimitOrderCancel implements spec.md 6's limit_order_cancel: refund the
// remaining for_sale and any unpaid order-placement fee, then remove O
// from the book.
type LimitOrderCancel struct {
	Seller  account.AccountID
	OrderID store.ID
}

func (op *LimitOrderCancel) Validate(ctx *Context) error {
	o := ctx.Matcher.Book.LimitOrders.Get(op.OrderID)
	if o == nil {
		return errs.E(errs.Precondition, "order %d does not exist", op.OrderID)
	}
	if o.Seller != op.Seller {
		return errs.E(errs.Precondition, "only the seller may cancel order %d", op.OrderID)
	}
	return nil
}

func (op *LimitOrderCancel) Apply(ctx *Context) error {
	o := ctx.Matcher.Book.LimitOrders.Get(op.OrderID)
	return cancelLimitOrder(ctx, o)
}

// cancelLimitOrder refunds o's remaining for_sale and any unpaid
// order-placement fee to its seller and removes it from the book, shared
// by an explicit cancel and a fill-or-kill order's unfilled remainder.
func cancelLimitOrder(ctx *Context, o *book.LimitOrder) error {
	if o.ForSale > 0 {
		ctx.Ledger.Credit(o.Seller, o.SellAsset, o.ForSale)
	}
	if o.DeferredFee > 0 {
		ctx.Ledger.Credit(o.Seller, book.CoreAssetID, o.DeferredFee)
	}
	if o.DeferredPaidFee > 0 {
		ctx.Ledger.Credit(o.Seller, o.DeferredPaidFeeAsset, o.DeferredPaidFee)
	}
	ctx.Matcher.Book.RemoveLimit(o)
	return nil
}
