// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package book

import (
	"github.com/abitmore/revpop-core/chain/store"
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// AssetAmount pairs an amount with the asset it is denominated in, the
// shape spec.md 6 uses for every event field.
type AssetAmount struct {
	Asset  store.ID
	Amount calc.Amount
}

// FillOrder mirrors spec.md 6's fill_order_operation, emitted once per
// pays/receives leg of every match.
type FillOrder struct {
	OrderID  Hash
	Account  account.AccountID
	Pays     AssetAmount
	Receives AssetAmount
	Fee      AssetAmount
	FillPrice calc.Price
	IsMaker  bool
}

// SettleCancel mirrors spec.md 6's asset_settle_cancel_operation,
// emitted when a pending force-settlement order is cancelled rather
// than fully consumed (e.g. the asset's force_settle permission was
// disabled while the order was pending).
type SettleCancel struct {
	SettlementID Hash
	Account      account.AccountID
	Amount       AssetAmount
}
