// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

func TestAssetIssueAndReserveRoundTrip(t *testing.T) {
	bm := newBitassetMarket(t)
	recipient := acctFromByte(1)

	issue := &AssetIssue{AssetID: bm.core, Recipient: recipient, Amount: 1_000}
	require.NoError(t, Do(bm.ctx, issue))
	require.Equal(t, calc.Amount(1_000), bm.ledger.Balance(recipient, bm.core))

	coreAsset := bm.ctx.Assets.Assets.Get(bm.core)
	dd := bm.ctx.Assets.DynamicData.Get(coreAsset.DynamicDataID)
	require.Equal(t, calc.Amount(1_000), dd.CurrentSupply)

	reserve := &AssetReserve{Payer: recipient, AssetID: bm.core, Amount: 400}
	require.NoError(t, Do(bm.ctx, reserve))
	require.Equal(t, calc.Amount(600), bm.ledger.Balance(recipient, bm.core))
	require.Equal(t, calc.Amount(600), dd.CurrentSupply)
}

func TestAssetIssueRejectsMarketIssuedAsset(t *testing.T) {
	bm := newBitassetMarket(t)
	issue := &AssetIssue{AssetID: bm.mia, Recipient: acctFromByte(1), Amount: 1_000}
	require.Error(t, Do(bm.ctx, issue))
}

func TestAssetFundAndClaimFeePool(t *testing.T) {
	bm := newBitassetMarket(t)
	payer := acctFromByte(1)
	bm.ledger.Credit(payer, bm.core, 5_000)

	fund := &AssetFundFeePool{Payer: payer, AssetID: bm.mia, Amount: 5_000}
	require.NoError(t, Do(bm.ctx, fund))
	require.Equal(t, calc.Amount(0), bm.ledger.Balance(payer, bm.core))

	mAsset := bm.ctx.Assets.Assets.Get(bm.mia)
	dd := bm.ctx.Assets.DynamicData.Get(mAsset.DynamicDataID)
	require.Equal(t, calc.Amount(5_000), dd.FeePool)

	claim := &AssetClaimPool{Issuer: account.AccountID{}, AssetID: bm.mia, Amount: 2_000}
	require.NoError(t, Do(bm.ctx, claim))
	require.Equal(t, calc.Amount(3_000), dd.FeePool)
	require.Equal(t, calc.Amount(2_000), bm.ledger.Balance(account.AccountID{}, bm.core))
}

func TestAssetClaimFeesFromOwnAccumulatedFees(t *testing.T) {
	bm := newBitassetMarket(t)
	coreAsset := bm.ctx.Assets.Assets.Get(bm.core)
	dd := bm.ctx.Assets.DynamicData.Get(coreAsset.DynamicDataID)
	dd.AccumulatedFees = 900

	claim := &AssetClaimFees{AssetID: bm.core, ContainerAssetID: bm.core, Amount: 900}
	require.NoError(t, Do(bm.ctx, claim))
	require.Equal(t, calc.Amount(0), dd.AccumulatedFees)
	require.Equal(t, calc.Amount(900), bm.ledger.Balance(account.AccountID{}, bm.core))
}

func TestAssetClaimFeesFromBackingAssetCollateralFees(t *testing.T) {
	bm := newBitassetMarket(t)
	mAsset := bm.ctx.Assets.Assets.Get(bm.mia)
	dd := bm.ctx.Assets.DynamicData.Get(mAsset.DynamicDataID)
	dd.AccumulatedCollateralFees = 250

	claim := &AssetClaimFees{AssetID: bm.mia, ContainerAssetID: bm.core, Amount: 250}
	require.NoError(t, Do(bm.ctx, claim))
	require.Equal(t, calc.Amount(0), dd.AccumulatedCollateralFees)
	require.Equal(t, calc.Amount(250), bm.ledger.Balance(account.AccountID{}, bm.core))
}

func TestAssetClaimFeesRejectsAContainerThatIsNotTheBackingAsset(t *testing.T) {
	bm := newBitassetMarket(t)
	// CORE has no bitasset data, so it has no backing asset to claim
	// collateral fees in at all.
	claim := &AssetClaimFees{AssetID: bm.core, ContainerAssetID: bm.mia, Amount: 1}
	require.Error(t, Do(bm.ctx, claim))
}
