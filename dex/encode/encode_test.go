// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package encode

import "testing"

func TestUint32RoundTrip(t *testing.T) {
	want := uint32(0xdeadbeef)
	got := BytesToUint32(Uint32Bytes(want))
	if got != want {
		t.Errorf("round trip = %x, want %x", got, want)
	}
}

func TestUint64Bytes(t *testing.T) {
	b := Uint64Bytes(1)
	if len(b) != 8 || b[7] != 1 {
		t.Errorf("Uint64Bytes(1) = %v, want [0 0 0 0 0 0 0 1]", b)
	}
}

func TestCopySlice(t *testing.T) {
	orig := []byte{1, 2, 3}
	cp := CopySlice(orig)
	cp[0] = 0xff
	if orig[0] == 0xff {
		t.Error("CopySlice did not copy")
	}
}
