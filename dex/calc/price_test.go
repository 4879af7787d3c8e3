// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package calc

import "testing"

func TestMulFloorCeil(t *testing.T) {
	tests := []struct {
		name      string
		a         Amount
		p         Price
		wantFloor Amount
		wantCeil  Amount
	}{
		{"exact", 10, Price{Base: 1, Quote: 1}, 10, 10},
		{"round down", 1, Price{Base: 3, Quote: 1}, 0, 1},
		{"round down larger", 10, Price{Base: 3, Quote: 1}, 3, 4},
		{"three per x, dust", 1, Price{Base: 1, Quote: 3}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulFloor(tt.a, tt.p)
			if err != nil {
				t.Fatalf("MulFloor: %v", err)
			}
			if got != tt.wantFloor {
				t.Errorf("MulFloor(%v, %v) = %v, want %v", tt.a, tt.p, got, tt.wantFloor)
			}
			got, err = MulCeil(tt.a, tt.p)
			if err != nil {
				t.Fatalf("MulCeil: %v", err)
			}
			if got != tt.wantCeil {
				t.Errorf("MulCeil(%v, %v) = %v, want %v", tt.a, tt.p, got, tt.wantCeil)
			}
		})
	}
}

// TestFillEquivalenceCeilingLaw checks the law from spec.md 8: after a
// MulFloor followed by MulCeil round-trip at the same price, the result
// never exceeds the original amount.
func TestFillEquivalenceCeilingLaw(t *testing.T) {
	prices := []Price{
		{Base: 1, Quote: 1},
		{Base: 3, Quote: 1},
		{Base: 1, Quote: 3},
		{Base: 7, Quote: 11},
		{Base: 1000, Quote: 1},
	}
	amounts := []Amount{0, 1, 2, 3, 7, 100, 123456789}
	for _, p := range prices {
		for _, a := range amounts {
			quote, err := MulFloor(a, p)
			if err != nil {
				t.Fatalf("MulFloor(%v, %v): %v", a, p, err)
			}
			back, err := MulCeil(quote, p.Invert())
			if err != nil {
				t.Fatalf("MulCeil(%v, %v): %v", quote, p.Invert(), err)
			}
			if back > a {
				t.Errorf("ceiling law violated: MulCeil(MulFloor(%v, %v), inv) = %v > %v", a, p, back, a)
			}
		}
	}
}

func TestPercent(t *testing.T) {
	got, err := Percent(10_000, 200) // 2%
	if err != nil {
		t.Fatal(err)
	}
	if got != 200 {
		t.Errorf("Percent(10000, 200bp) = %v, want 200", got)
	}

	got, err = Percent(1, 5000) // 50% of 1 floors to 0
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("Percent(1, 5000bp) = %v, want 0", got)
	}
}

func TestPercentOverflow(t *testing.T) {
	_, err := Percent(MaxShareSupply, HundredPercent+1)
	if err == nil {
		t.Fatal("expected overflow error")
	}
}
