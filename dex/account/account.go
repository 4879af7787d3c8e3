// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package account defines the account identifier referenced by assets and
// orders throughout the ledger core. Authority verification (public keys,
// signatures) belongs to the external collaborator that validates
// operations before they reach this core, so only the identifier survives
// here as a non-owning reference type.
package account

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/crypto/blake256"
)

// HashFunc is the hash function used to derive account IDs.
var HashFunc = blake256.Sum256

// HashSize is the length in bytes of an AccountID.
const HashSize = blake256.Size

// AccountID uniquely identifies an account. It is a non-owning reference;
// the account's balances, authority, and history live with the external
// collaborator that owns account state.
type AccountID [HashSize]byte

// NewID derives an account ID from the provided public key bytes.
func NewID(pk []byte) AccountID {
	h := HashFunc(pk)
	return HashFunc(h[:])
}

// String returns a hexadecimal representation of the AccountID.
func (aid AccountID) String() string {
	return hex.EncodeToString(aid[:])
}

// Value implements the sql/driver.Valuer interface.
func (aid AccountID) Value() (driver.Value, error) {
	return aid[:], nil
}

// Scan implements the sql.Scanner interface.
func (aid *AccountID) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		copy(aid[:], src)
		return nil
	}
	return fmt.Errorf("cannot convert %T to AccountID", src)
}

// IsZero reports whether aid is the zero value, used as a sentinel for "no
// account" in optional reference fields (e.g. an asset with no registrar).
func (aid AccountID) IsZero() bool {
	return aid == AccountID{}
}
