// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

func openBoundaryCall(t *testing.T, bm *bitassetMarket, borrower account.AccountID) {
	t.Helper()
	bm.publishFeed(t, priceFeedFixture())
	bm.ledger.Credit(borrower, bm.core, 140_000)
	require.NoError(t, Do(bm.ctx, &CallOrderUpdate{
		Borrower: borrower, DebtAsset: bm.mia, DeltaCollateral: 140_000, DeltaDebt: 70_000,
	}))
}

func TestAssetGlobalSettleClosesCallOrdersAndSetsSettlementFund(t *testing.T) {
	bm := newBitassetMarket(t)
	borrower := acctFromByte(1)
	openBoundaryCall(t, bm, borrower)

	settle := &AssetGlobalSettle{
		AssetID:         bm.mia,
		SettlementPrice: calc.Price{Base: 1000, Quote: 1000},
	}
	require.NoError(t, Do(bm.ctx, settle))

	require.Nil(t, bm.ctx.Matcher.Book.FindCall(borrower, bm.mia), "global settle closes every call order")
	require.Equal(t, calc.Amount(70_000), bm.ledger.Balance(borrower, bm.core), "leftover collateral refunds to the borrower")

	bad := bm.ctx.Assets.Bitassets.Get(bm.bitID)
	require.True(t, bad.IsGloballySettled())
	require.Equal(t, calc.Amount(70_000), bad.SettlementFund)
	require.Equal(t, calc.Price{Base: 70_000, Quote: 70_000}, bad.SettlementPrice)

	mAsset := bm.ctx.Assets.Assets.Get(bm.mia)
	dd := bm.ctx.Assets.DynamicData.Get(mAsset.DynamicDataID)
	require.Equal(t, calc.Amount(70_000), dd.CurrentSupply, "global settle never destroys outstanding supply")
}

func TestAssetGlobalSettleRejectsAPriceThatWouldNotCoverTheWorstPosition(t *testing.T) {
	bm := newBitassetMarket(t)
	borrower := acctFromByte(1)
	openBoundaryCall(t, bm, borrower)

	settle := &AssetGlobalSettle{
		AssetID:         bm.mia,
		SettlementPrice: calc.Price{Base: 1, Quote: 3},
	}
	err := Do(bm.ctx, settle)
	require.Error(t, err)
	require.NotNil(t, bm.ctx.Matcher.Book.FindCall(borrower, bm.mia), "a rejected settlement leaves the position untouched")
}
