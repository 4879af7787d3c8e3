// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package fees

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abitmore/revpop-core/dex/calc"
)

func TestMarketFeeSimpleTrade(t *testing.T) {
	// Scenario 1 of spec.md 8: 2% market fee, no referrer sharing.
	a := Asset{MarketFeePercent: 200} // 2%
	seller := Seller{}
	split, err := MarketFee(a, seller, 500, true, 2000)
	require.NoError(t, err)
	require.Equal(t, calc.Amount(10), split.Total)
}

func TestMarketFeeNetworkSplit(t *testing.T) {
	a := Asset{MarketFeePercent: 1000} // 10%
	split, err := MarketFee(a, Seller{}, 1000, true, 2000) // 20% network
	require.NoError(t, err)
	require.Equal(t, calc.Amount(100), split.Total)
	require.Equal(t, calc.Amount(20), split.Network)
	require.Equal(t, calc.Amount(80), split.Residue)
}

func TestMarketFeeMaxClamp(t *testing.T) {
	a := Asset{MarketFeePercent: 10_000, MaxMarketFee: 5}
	split, err := MarketFee(a, Seller{}, 1000, true, 0)
	require.NoError(t, err)
	require.Equal(t, calc.Amount(5), split.Total)
}

func TestMarketFeeZeroPercentNoFee(t *testing.T) {
	a := Asset{MarketFeePercent: 0}
	split, err := MarketFee(a, Seller{}, 1000, false, 2000)
	require.NoError(t, err)
	require.Equal(t, calc.Amount(0), split.Total)
}

func TestMarketFeeReferrerSplitCommutativity(t *testing.T) {
	a := Asset{MarketFeePercent: 1000, RewardPercent: 5000} // 10% fee, 50% reward
	seller := Seller{ReferrerRewardsPercentage: 3000}       // 30% of reward to referrer
	split, err := MarketFee(a, seller, 10_000, true, 2000)  // 20% network
	require.NoError(t, err)

	sum := split.Network + split.Referrer + split.Registrar + split.Residue
	require.Equal(t, split.Total, sum, "fee shares must sum exactly to the total fee")
}

func TestMarginCallFeeScalesWithMCFR(t *testing.T) {
	fee, err := MarginCallFee(10_000, 0) // MCFR=0
	require.NoError(t, err)
	require.Equal(t, calc.Amount(0), fee)

	fee, err = MarginCallFee(10_000, 50) // MCFR=50 (5%)
	require.NoError(t, err)
	require.Equal(t, calc.Amount(500), fee)
}

func TestForceSettleFee(t *testing.T) {
	fee, err := ForceSettleFee(1350, 100) // 1%
	require.NoError(t, err)
	require.Equal(t, calc.Amount(13), fee)
}
