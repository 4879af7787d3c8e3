// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/abitmore/revpop-core/chain/asset"
	"github.com/abitmore/revpop-core/chain/errs"
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
)

// AssetUpdateIssuer implements spec.md 4.3's dedicated "update issuer"
// evaluator: only the issuer field changes.
type AssetUpdateIssuer struct {
	Issuer    account.AccountID
	AssetID   store.ID
	NewIssuer account.AccountID
}

func (op *AssetUpdateIssuer) Validate(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	if a == nil {
		return errs.E(errs.Precondition, "asset %d does not exist", op.AssetID)
	}
	if a.Issuer != op.Issuer {
		return errs.E(errs.Precondition, "issuer mismatch")
	}
	if a.BitassetID != nil && a.Options.Flags&asset.CommitteeFedAsset != 0 {
		if !groundsInCore(ctx, op.AssetID) {
			return errs.E(errs.Invariant, "committee-fed MIA must remain backed by CORE")
		}
	}
	return nil
}

func (op *AssetUpdateIssuer) Apply(ctx *Context) error {
	a := ctx.Assets.Assets.Get(op.AssetID)
	a.Issuer = op.NewIssuer
	return nil
}
