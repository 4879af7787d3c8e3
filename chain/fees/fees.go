// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package fees implements the market-fee split and the collateral-
// denominated force-settle and margin-call fees of spec.md 4.5. It
// computes amounts and recipients only; crediting a balance or a vesting
// schedule is an external collaborator's responsibility (spec.md 1's
// "vesting" is explicitly out of scope), so every function here returns
// a Split the caller applies through its own account/vesting layer.
package fees

import (
	"github.com/abitmore/revpop-core/dex/account"
	"github.com/abitmore/revpop-core/dex/calc"
)

// Asset is the subset of asset.Options a fee computation needs, kept
// local to this package to avoid a dependency on chain/asset (fees is a
// leaf consumed by both chain/book and chain/evaluator).
type Asset struct {
	MarketFeePercent uint32 // basis points
	TakerFeePercent  *uint32
	MaxMarketFee     calc.Amount

	RewardPercent             uint32
	WhitelistMarketFeeSharing []account.AccountID
}

// Seller is the subset of account data a market-fee split needs.
type Seller struct {
	ID                         account.AccountID
	Registrar                  account.AccountID
	Referrer                   account.AccountID
	ReferrerRewardsPercentage  uint32 // basis points of the registrar/referrer reward split
}

// Split is the disposition of one market-fee computation: the total fee
// withheld from receives, and how it divides among the network
// (committee), the referrer, the registrar, and the issuing asset's own
// accumulated_fees residue.
type Split struct {
	Total     calc.Amount
	Network   calc.Amount
	Referrer  calc.Amount
	Registrar calc.Amount
	Residue   calc.Amount // added to the asset's accumulated_fees
}

// MarketFee computes the fee router of spec.md 4.5 for a fill of
// receives of the asset described by a, to seller, at the given network
// share (params.ChainParameters.MarketFeeNetworkPercent), where isTaker
// selects between TakerFeePercent (if set) and MarketFeePercent.
func MarketFee(a Asset, seller Seller, receives calc.Amount, isTaker bool, networkPercent uint32) (Split, error) {
	feePercent := a.MarketFeePercent
	if isTaker && a.TakerFeePercent != nil {
		feePercent = *a.TakerFeePercent
	}
	if feePercent == 0 {
		return Split{}, nil
	}

	fee, err := calc.Percent(receives, feePercent)
	if err != nil {
		return Split{}, err
	}
	if a.MaxMarketFee > 0 && fee > a.MaxMarketFee {
		fee = a.MaxMarketFee
	}
	if fee == 0 {
		return Split{}, nil
	}

	network, err := calc.Percent(fee, networkPercent)
	if err != nil {
		return Split{}, err
	}
	remaining := fee - network

	var referrerReward, registrarReward calc.Amount
	if a.RewardPercent > 0 && whitelistSharingOK(a.WhitelistMarketFeeSharing, seller.Registrar) {
		reward, err := calc.Percent(remaining, a.RewardPercent)
		if err != nil {
			return Split{}, err
		}
		referrerReward, err = calc.Percent(reward, seller.ReferrerRewardsPercentage)
		if err != nil {
			return Split{}, err
		}
		registrarReward = reward - referrerReward
	}

	residue := remaining - referrerReward - registrarReward
	return Split{
		Total:     fee,
		Network:   network,
		Referrer:  referrerReward,
		Registrar: registrarReward,
		Residue:   residue,
	}, nil
}

// whitelistSharingOK reports whether registrar is eligible for fee
// sharing: the list is empty/absent (everyone eligible) or registrar
// appears in it.
func whitelistSharingOK(whitelist []account.AccountID, registrar account.AccountID) bool {
	if len(whitelist) == 0 {
		return true
	}
	for _, id := range whitelist {
		if id == registrar {
			return true
		}
	}
	return false
}

// ForceSettleFee computes percent(receives, forceSettleFeePercent) in
// the collateral asset, accumulated on the settled MIA's dynamic data
// per spec.md 4.5's BSIP87 note.
func ForceSettleFee(receives calc.Amount, forceSettleFeePercent uint32) (calc.Amount, error) {
	return calc.Percent(receives, forceSettleFeePercent)
}

// MarginCallFee computes percent(limitReceives, MCFR) in the collateral
// asset: the extra collateral a margin call pays the issuer on top of
// what the matched counterparty receives (GLOSSARY "MCFR — basis points
// of collateral retained by the issuer on each margin-call fill"). MCFR
// is x1000, the same scale as MCR/ICR/MSSR.
func MarginCallFee(limitReceives calc.Amount, mcfr uint32) (calc.Amount, error) {
	return calc.Percent(limitReceives, mcfr*10)
}
