// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package encode provides the byte-encoding helpers used to build the
// canonical serializations that asset, order, and match IDs are hashed
// from. The wire format for transport between nodes is a concern of the
// transport layer, not this core (spec.md 6); these helpers only need to
// be stable and deterministic, not self-describing.
package encode

import (
	"encoding/binary"
)

// IntCoder is the ledger-wide integer byte-encoding order. It must be
// BigEndian so that length-prefixed encodings sort and compare the way
// the numeric values do.
var IntCoder = binary.BigEndian

// ByteFalse and ByteTrue are the canonical single-byte boolean encodings.
var (
	ByteFalse = []byte{0}
	ByteTrue  = []byte{1}
)

// Uint32Bytes converts the uint32 to a length-4, big-endian encoded byte
// slice.
func Uint32Bytes(i uint32) []byte {
	b := make([]byte, 4)
	IntCoder.PutUint32(b, i)
	return b
}

// BytesToUint32 converts a length-4, big-endian encoded byte slice to a
// uint32.
func BytesToUint32(b []byte) uint32 {
	return IntCoder.Uint32(b[:4])
}

// Uint64Bytes converts the uint64 to a length-8, big-endian encoded byte
// slice.
func Uint64Bytes(i uint64) []byte {
	b := make([]byte, 8)
	IntCoder.PutUint64(b, i)
	return b
}

// Int64Bytes converts the int64 to a length-8, big-endian encoded byte
// slice, preserving ordering for non-negative values.
func Int64Bytes(i int64) []byte {
	return Uint64Bytes(uint64(i))
}

// Bool returns the canonical single-byte encoding of a boolean.
func Bool(b bool) []byte {
	if b {
		return ByteTrue
	}
	return ByteFalse
}

// CopySlice makes a copy of the slice.
func CopySlice(b []byte) []byte {
	newB := make([]byte, len(b))
	copy(newB, b)
	return newB
}
