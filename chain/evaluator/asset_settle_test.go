// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abitmore/revpop-core/dex/calc"
)

func TestAssetSettleQueuesAgainstALiveAsset(t *testing.T) {
	bm := newBitassetMarket(t)
	owner := acctFromByte(1)
	bm.ledger.Credit(owner, bm.mia, 40_000)

	settle := &AssetSettle{Owner: owner, AssetID: bm.mia, Amount: 40_000}
	require.NoError(t, Do(bm.ctx, settle))

	require.Equal(t, calc.Amount(0), bm.ledger.Balance(owner, bm.mia), "settle amount is escrowed immediately")
	require.Equal(t, 1, bm.ctx.Matcher.Book.SettleOrders.Len())

	bad := bm.ctx.Assets.Bitassets.Get(bm.bitID)
	require.False(t, bad.IsGloballySettled())
}

func TestAssetSettleExchangesImmediatelyAgainstAnAlreadySettledAsset(t *testing.T) {
	bm := newBitassetMarket(t)
	bad := bm.ctx.Assets.Bitassets.Get(bm.bitID)
	bad.SettlementPrice = calc.Price{Base: 1000, Quote: 1000}
	bad.SettlementFund = 100_000

	mAsset := bm.ctx.Assets.Assets.Get(bm.mia)
	dd := bm.ctx.Assets.DynamicData.Get(mAsset.DynamicDataID)
	dd.CurrentSupply = 100_000

	owner := acctFromByte(1)
	bm.ledger.Credit(owner, bm.mia, 40_000)

	settle := &AssetSettle{Owner: owner, AssetID: bm.mia, Amount: 40_000}
	require.NoError(t, Do(bm.ctx, settle))

	require.Equal(t, calc.Amount(0), bm.ledger.Balance(owner, bm.mia))
	require.Equal(t, calc.Amount(40_000), bm.ledger.Balance(owner, bm.core), "1:1 settlement price pays CORE 1-for-1")
	require.Equal(t, calc.Amount(60_000), dd.CurrentSupply)
	require.Equal(t, calc.Amount(60_000), bad.SettlementFund)
}

func TestAssetSettleFullSupplyRoutesTheEntireRemainingFund(t *testing.T) {
	bm := newBitassetMarket(t)
	bad := bm.ctx.Assets.Bitassets.Get(bm.bitID)
	// An odd settlement price leaves a rounding residue under mul_floor;
	// settling the entire remaining supply instead routes the whole fund,
	// never leaving dust behind.
	bad.SettlementPrice = calc.Price{Base: 3, Quote: 1}
	bad.SettlementFund = 33_334

	mAsset := bm.ctx.Assets.Assets.Get(bm.mia)
	dd := bm.ctx.Assets.DynamicData.Get(mAsset.DynamicDataID)
	dd.CurrentSupply = 100_000

	owner := acctFromByte(1)
	bm.ledger.Credit(owner, bm.mia, 100_000)

	settle := &AssetSettle{Owner: owner, AssetID: bm.mia, Amount: 100_000}
	require.NoError(t, Do(bm.ctx, settle))

	require.Equal(t, calc.Amount(33_334), bm.ledger.Balance(owner, bm.core))
	require.Equal(t, calc.Amount(0), bad.SettlementFund)
	require.Equal(t, calc.Amount(0), dd.CurrentSupply)
}
