package comfort

import (
	"errors"
	"math"
	"testing"

	"github.com/bruadam/hvx-engine/internal/domain"
)

func TestRunningMeanOutdoorConstantHistory(t *testing.T) {
	history := []float64{20, 20, 20, 20, 20, 20, 20}

	trm, err := RunningMeanOutdoor(history, DefaultAlpha)
	if err != nil {
		t.Fatal(err)
	}
	if trm != 20 {
		t.Fatalf("T_rm of constant history = %v, want exactly 20", trm)
	}
}

func TestRunningMeanOutdoorWeighsRecentDays(t *testing.T) {
	history := []float64{10, 10, 10, 10, 10, 10, 20}

	trm, err := RunningMeanOutdoor(history, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	// the recent warm day pulls the mean above the plain average (11.43)
	if math.Abs(trm-12.5307) > 1e-3 {
		t.Errorf("T_rm = %v, want 12.5307", trm)
	}

	again, err := RunningMeanOutdoor(history, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if trm != again {
		t.Errorf("T_rm not deterministic: %v vs %v", trm, again)
	}
}

func TestRunningMeanOutdoorInsufficientHistory(t *testing.T) {
	if _, err := RunningMeanOutdoor([]float64{10, 11, 12}, 0.8); !errors.Is(err, domain.ErrInsufficientHistory) {
		t.Fatalf("err = %v, want ErrInsufficientHistory", err)
	}
}

func TestAdaptiveBand(t *testing.T) {
	cases := []struct {
		cat                  domain.Category
		wantLower, wantUpper float64
	}{
		{domain.CategoryI, 23.4, 27.4},
		{domain.CategoryII, 22.4, 28.4},
		{domain.CategoryIII, 21.4, 29.4},
		{domain.CategoryIV, 20.4, 30.4},
	}
	for _, tc := range cases {
		t.Run(tc.cat.String(), func(t *testing.T) {
			th, err := AdaptiveBand(20, tc.cat)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(*th.Lower-tc.wantLower) > 1e-9 || math.Abs(*th.Upper-tc.wantUpper) > 1e-9 {
				t.Errorf("band = [%v, %v], want [%v, %v]", *th.Lower, *th.Upper, tc.wantLower, tc.wantUpper)
			}
		})
	}
}

func TestAdaptiveBandValidityRange(t *testing.T) {
	for _, trm := range []float64{9.9, 30.1} {
		if _, err := AdaptiveBand(trm, domain.CategoryII); !errors.Is(err, ErrOutsideAdaptiveRange) {
			t.Errorf("T_rm %v: err = %v, want ErrOutsideAdaptiveRange", trm, err)
		}
	}
	// boundaries are part of the valid range
	for _, trm := range []float64{10, 30} {
		if _, err := AdaptiveBand(trm, domain.CategoryII); err != nil {
			t.Errorf("T_rm %v: unexpected error %v", trm, err)
		}
	}
}

func TestAdaptiveBandUnknownCategory(t *testing.T) {
	if _, err := AdaptiveBand(20, domain.CategoryNone); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}
