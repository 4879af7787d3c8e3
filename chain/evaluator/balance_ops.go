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

// AssetIssue implements spec.md 4.3's issue evaluator: straightforward
// supply/balance mutation, forbidden on market-issued assets (their
// supply changes only through matching and settlement).
type AssetIssue struct {
	Issuer    account.AccountID
	AssetID   store.ID
	Recipient account.AccountID
	Amount    calc.Amount
}

func (op *AssetIssue) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.AssetID)
	}
	if a.Issuer != op.Issuer {
		return errs.E(errs.Precondition, "issuer mismatch")
	}
	if a.IsMarketIssued() {
		return errs.E(errs.Precondition, "market-issued assets cannot be issued directly")
	}
	if op.Amount <= 0 {
		return errs.E(errs.Precondition, "issue amount must be positive")
	}
	return nil
}

func (op *AssetIssue) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
	dd.CurrentSupply += op.Amount
	if err := dd.CheckSupplyInvariant(a.Options.MaxSupply); err != nil {
		return err
	}
	ctx.Ledger.Credit(op.Recipient, op.AssetID, op.Amount)
	return nil
}

// AssetReserve implements spec.md 4.3's reserve (burn) evaluator.
type AssetReserve struct {
	Payer   account.AccountID
	AssetID store.ID
	Amount  calc.Amount
}

func (op *AssetReserve) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.AssetID)
	}
	if a.IsMarketIssued() {
		return errs.E(errs.Precondition, "market-issued assets cannot be reserved directly")
	}
	if op.Amount <= 0 {
		return errs.E(errs.Precondition, "reserve amount must be positive")
	}
	return nil
}

func (op *AssetReserve) Apply(ctx *Context) error {
	if err := ctx.Ledger.Debit(op.Payer, op.AssetID, op.Amount); err != nil {
		return err
	}
	a := ctx.Assets.Assets.Get(op.AssetID)
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
	dd.CurrentSupply -= op.Amount
	return dd.CheckSupplyInvariant(a.Options.MaxSupply)
}

// AssetFundFeePool implements spec.md 4.3's fund fee pool evaluator:
// deposit CORE into an asset's fee_pool, consumed over time to pay
// transaction fees quoted in that asset via its core_exchange_rate.
type AssetFundFeePool struct {
	Payer   account.AccountID
	AssetID store.ID
	Amount  calc.Amount
}

func (op *AssetFundFeePool) Validate(ctx *Context) error {
	if ctx.Assets.Assets.Get(op.AssetID) == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.AssetID)
	}
	if op.Amount <= 0 {
		return errs.E(errs.Precondition, "fund amount must be positive")
	}
	return nil
}

func (op *AssetFundFeePool) Apply(ctx *Context) error {
	if err := ctx.Ledger.Debit(op.Payer, book.CoreAssetID, op.Amount); err != nil {
		return err
	}
	a := ctx.Assets.Assets.Get(op.AssetID)
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
	dd.FeePool += op.Amount
	return nil
}

// AssetClaimFees implements spec.md 4.3's claim fees evaluator. The
// container asset is either AssetID itself (claiming accumulated_fees) or
// AssetID's short_backing_asset (claiming accumulated_collateral_fees).
// ContainerAssetID has no default: a zero value names store.ID 0, not
// AssetID, so callers pass it explicitly.
type AssetClaimFees struct {
	Issuer          account.AccountID
	AssetID         store.ID
	ContainerAssetID store.ID
	Amount          calc.Amount
}

func (op *AssetClaimFees) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.AssetID)
	}
	if a.Issuer != op.Issuer {
		return errs.E(errs.Precondition, "issuer mismatch")
	}
	if op.Amount <= 0 {
		return errs.E(errs.Precondition, "claim amount must be positive")
	}
	if op.ContainerAssetID != op.AssetID {
		if a.BitassetID == nil {
			return errs.E(errs.Precondition, "asset %d has no backing asset to claim collateral fees in", op.AssetID)
		}
		bad := ctx.Assets.Bitassets.Get(*a.BitassetID)
		if bad.ShortBackingAsset != op.ContainerAssetID {
			return errs.E(errs.Precondition, "container asset %d is not asset %d's backing asset", op.ContainerAssetID, op.AssetID)
		}
	}
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
	if op.ContainerAssetID == op.AssetID {
		if dd.AccumulatedFees < op.Amount {
			return errs.E(errs.Precondition, "insufficient accumulated fees")
		}
	} else if dd.AccumulatedCollateralFees < op.Amount {
		return errs.E(errs.Precondition, "insufficient accumulated collateral fees")
	}
	return nil
}

func (op *AssetClaimFees) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
	if op.ContainerAssetID == op.AssetID {
		dd.AccumulatedFees -= op.Amount
	} else {
		dd.AccumulatedCollateralFees -= op.Amount
	}
	ctx.Ledger.Credit(op.Issuer, op.ContainerAssetID, op.Amount)
	return nil
}

// AssetClaimPool implements spec.md 4.3's claim pool evaluator: withdraw
// CORE back out of an asset's fee_pool.
type AssetClaimPool struct {
	Issuer  account.AccountID
	AssetID store.ID
	Amount  calc.Amount
}

func (op *AssetClaimPool) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.AssetID)
	}
	if a.Issuer != op.Issuer {
		return errs.E(errs.Precondition, "issuer mismatch")
	}
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
	if dd.FeePool < op.Amount {
		return errs.E(errs.Precondition, "insufficient fee pool balance")
	}
	return nil
}

func (op *AssetClaimPool) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	dd := ctx.Assets.DynamicData.Get(a.DynamicDataID)
	dd.FeePool -= op.Amount
	ctx.Ledger.Credit(op.Issuer, book.CoreAssetID, op.Amount)
	return nil
}
