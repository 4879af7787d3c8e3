// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package asset

// Permission is a single bit in the issuer-permissions mask: a capability
// the issuer is allowed to exercise, independent of whether it is
// currently exercised (that's Flag).
type Permission uint16

// Flag is a single bit in the flags mask: a capability currently in
// effect. Flags ⊆ permissions ∪ ephemeral bits (asset.go's Options
// invariant).
type Flag = Permission

const (
	WhiteList          Permission = 1 << iota // transfer restricted to whitelisted accounts
	TransferRestricted                        // only issuer may initiate transfers
	OverrideAuthority                         // issuer may force a transfer
	DisableForceSettle
	GlobalSettle
	DisableConfidential
	WitnessFedAsset
	CommitteeFedAsset
	DisableIssuerPermissions // ephemeral: owner permanently gave up permission changes

	// The "owner may update ..." bits govern whether update_bitasset may
	// change the corresponding feed-median field (spec.md 4.3, 4.6).
	CommitteeFedMCRUpdate
	CommitteeFedICRUpdate
	CommitteeFedMSSRUpdate
)

// Has reports whether every bit in want is set in mask.
func Has(mask, want Permission) bool { return mask&want == want }

// Subset reports whether every bit set in sub is also set in super. It
// backs the asset_update rule that flags may only be a subset of
// currently held issuer permissions.
func Subset(sub, super Permission) bool { return sub&^super == 0 }
