// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/book"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// CallOrderUpdate implements spec.md 6's call_order_update: open,
// adjust, top up, partially repay, or close a borrower's collateralized
// debt position on DebtAsset. DeltaCollateral/DeltaDebt are signed:
// positive deposits collateral or borrows more debt, negative withdraws
// collateral or repays debt. TargetCollateralRatio is written
// unconditionally, including as nil to clear it.
type CallOrderUpdate struct {
	Borrower  account.AccountID
	DebtAsset store.ID

	DeltaCollateral calc.Amount
	DeltaDebt       calc.Amount

	TargetCollateralRatio *uint32
}

func (op *CallOrderUpdate) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.DebtAsset)
	if a == nil || a.BitassetID == nil {
		return errs.E(errs.Precondition, "asset %d is not market-issued", op.DebtAsset)
	}
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
	if bad.IsGloballySettled() {
		return errs.E(errs.State, "asset %d is globally settled", op.DebtAsset)
	}

	curCollateral, curDebt := op.currentPosition(ctx)
	newCollateral := curCollateral + op.DeltaCollateral
	newDebt := curDebt + op.DeltaDebt
	if newCollateral < 0 || newDebt < 0 {
		return errs.E(errs.Precondition, "position cannot go negative")
	}
	if newDebt > 0 && newCollateral == 0 {
		return errs.E(errs.Precondition, "a debt position requires nonzero collateral")
	}
	if bad.IsPredictionMarket && newCollateral != newDebt {
		return errs.E(errs.Precondition, "prediction markets require collateral to equal debt")
	}

	if newDebt > curDebt {
		if bad.CurrentFeed.IsNull() {
			return errs.E(errs.State, "asset %d has no price feed to open or grow a debt position", op.DebtAsset)
		}
		required, err := asset.InitialCollateralization(bad.CurrentFeed)
		if err != nil {
			return err
		}
		// newRatio is debt/collateral; the position clears ICR only when
		// that ratio is at or below the required threshold, so it is
		// insufficient when the threshold is strictly less than newRatio.
		newRatio := calc.Price{Base: newDebt, Quote: newCollateral}
		if required.LessThan(newRatio) {
			return errs.E(errs.Precondition, "insufficient collateral to meet the initial collateral ratio")
		}
	}

	if op.TargetCollateralRatio != nil && *op.TargetCollateralRatio < bad.CurrentFeed.MCR {
		return errs.E(errs.Precondition, "target collateral ratio below maintenance collateral ratio")
	}
	return nil
}

// currentPosition returns borrower's existing collateral and debt on
// DebtAsset, or (0, 0) if they have no open position.
func (op *CallOrderUpdate) currentPosition(ctx *Context) (collateral, debt calc.Amount) {
	existing := ctx.Matcher.Book.FindCall(op.Borrower, op.DebtAsset)
	if existing == nil {
		return 0, 0
	}
	return existing.Collateral, existing.Debt
}

func (op *CallOrderUpdate) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.DebtAsset)
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)

	if err := op.settleLegs(ctx, dd); err != nil {
		return err
	}
	if err := dd.CheckSupplyInvariant(a.Options.MaxSupply); err != nil {
		return err
	}

	existing := ctx.Matcher.Book.FindCall(op.Borrower, op.DebtAsset)
	var curCollateral, curDebt calc.Amount
	if existing != nil {
		curCollateral, curDebt = existing.Collateral, existing.Debt
	}
	newCollateral := curCollateral + op.DeltaCollateral
	newDebt := curDebt + op.DeltaDebt

	switch {
	case existing == nil && newDebt == 0 && newCollateral == 0:
		return nil
	case existing == nil:
		ctx.Matcher.Book.InsertCall(book.CallOrder{
			Borrower:              op.Borrower,
			CollateralAsset:       bad.ShortBackingAsset,
			DebtAsset:             op.DebtAsset,
			Collateral:            newCollateral,
			Debt:                  newDebt,
			TargetCollateralRatio: op.TargetCollateralRatio,
		})
	case newDebt == 0 && newCollateral == 0:
		ctx.Matcher.Book.RemoveCall(existing)
	default:
		existing.Collateral = newCollateral
		existing.Debt = newDebt
		existing.TargetCollateralRatio = op.TargetCollateralRatio
		ctx.Matcher.Book.ReindexCall(existing)
	}

	return ctx.Matcher.CheckCallOrders(op.DebtAsset)
}

// settleLegs debits or credits the collateral and debt legs of the
// update: depositing collateral and repaying debt are escrowed from the
// borrower, withdrawing collateral and borrowing new debt are credited
// to them, with current_supply adjusted for the debt leg.
func (op *CallOrderUpdate) settleLegs(ctx *Context, dd *asset.DynamicData) error {
	a := ctx.Assets.Assets.Get(op.DebtAsset)
	bad := ctx.Assets.Bitassets.Get(*a.BitassetID)

	switch {
	case op.DeltaCollateral > 0:
		if err := ctx.Ledger.Debit(op.Borrower, bad.ShortBackingAsset, op.DeltaCollateral); err != nil {
			return err
		}
	case op.DeltaCollateral < 0:
		ctx.Ledger.Credit(op.Borrower, bad.ShortBackingAsset, -op.DeltaCollateral)
	}

	switch {
	case op.DeltaDebt > 0:
		ctx.Ledger.Credit(op.Borrower, op.DebtAsset, op.DeltaDebt)
		dd.CurrentSupply += op.DeltaDebt
	case op.DeltaDebt < 0:
		if err := ctx.Ledger.Debit(op.Borrower, op.DebtAsset, -op.DeltaDebt); err != nil {
			return err
		}
		dd.CurrentSupply += op.DeltaDebt
	}
	return nil
}
