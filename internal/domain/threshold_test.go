package domain

import (
	"math"
	"testing"
)

func TestThresholdContains(t *testing.T) {
	band := Threshold{Lower: Float(20), Upper: Float(24)}
	upperOnly := Threshold{Upper: Float(1000)}
	lowerOnly := Threshold{Lower: Float(30)}

	cases := []struct {
		name string
		th   Threshold
		v    float64
		want bool
	}{
		{"inside band", band, 22, true},
		{"lower bound inclusive", band, 20, true},
		{"upper bound inclusive", band, 24, true},
		{"below band", band, 19.9, false},
		{"above band", band, 24.1, false},
		{"under cap", upperOnly, 999, true},
		{"over cap", upperOnly, 1001, false},
		{"above floor", lowerOnly, 35, true},
		{"below floor", lowerOnly, 25, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.th.Contains(tc.v); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.v, got, tc.want)
			}
		})
	}
}

func TestThresholdSeverity(t *testing.T) {
	band := Threshold{Lower: Float(20), Upper: Float(24)}

	if got := band.Severity(22); got != 0 {
		t.Errorf("compliant severity = %v, want 0", got)
	}
	// normalized by the band width (4 K)
	if got := band.Severity(26); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Severity(26) = %v, want 0.5", got)
	}
	if got := band.Severity(18); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Severity(18) = %v, want 0.5", got)
	}

	// unidirectional: normalized by the bound magnitude
	ceiling := Threshold{Upper: Float(1000)}
	if got := ceiling.Severity(1100); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("Severity(1100) = %v, want 0.1", got)
	}
}

func TestThresholdBounded(t *testing.T) {
	if (Threshold{}).Bounded() {
		t.Error("empty threshold must not be bounded")
	}
	if !(Threshold{Upper: Float(1)}).Bounded() {
		t.Error("upper-only threshold is bounded")
	}
}
