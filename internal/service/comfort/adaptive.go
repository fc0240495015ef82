package comfort

import (
	"errors"
	"fmt"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// ErrOutsideAdaptiveRange signals that the running-mean outdoor temperature
// is outside the validity range of the adaptive model. Callers fall back to
// fixed thresholds and must report that they did so.
var ErrOutsideAdaptiveRange = errors.New("running mean outside adaptive model validity range")

// Adaptive model constants. The comfort temperature tracks the outdoor
// running mean; the band half-width widens per category.
const (
	adaptiveSlope     = 0.33
	adaptiveIntercept = 18.8
	adaptiveTrmMin    = 10.0
	adaptiveTrmMax    = 30.0

	// DefaultAlpha is the running-mean decay constant.
	DefaultAlpha = 0.8
	// MinHistoryDays is the minimum outdoor-temperature history.
	MinHistoryDays = 7
)

var categoryDelta = map[domain.Category]float64{
	domain.CategoryI:   2,
	domain.CategoryII:  3,
	domain.CategoryIII: 4,
	domain.CategoryIV:  5,
}

// RunningMeanOutdoor computes the exponentially-weighted running mean of
// daily outdoor temperatures. dailyMeans is chronological; the most recent
// day carries weight 1, the day before alpha, and so on. Weights are
// normalized so a constant history yields exactly that constant.
// Requires at least MinHistoryDays values, else domain.ErrInsufficientHistory.
func RunningMeanOutdoor(dailyMeans []float64, alpha float64) (float64, error) {
	if len(dailyMeans) < MinHistoryDays {
		return 0, fmt.Errorf("running mean needs %d daily values, got %d: %w",
			MinHistoryDays, len(dailyMeans), domain.ErrInsufficientHistory)
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}

	var sum, weightSum float64
	weight := 1.0
	for i := len(dailyMeans) - 1; i >= 0; i-- {
		sum += weight * dailyMeans[i]
		weightSum += weight
		weight *= alpha
	}
	return sum / weightSum, nil
}

// AdaptiveBand returns the acceptable temperature band for a category given
// the outdoor running mean: T_comf = 0.33*T_rm + 18.8 +/- delta(category).
// Outside 10..30 degC the model does not apply and ErrOutsideAdaptiveRange
// is returned; the band is never silently clamped.
func AdaptiveBand(trm float64, cat domain.Category) (domain.Threshold, error) {
	delta, ok := categoryDelta[cat]
	if !ok {
		return domain.Threshold{}, fmt.Errorf("no adaptive delta for category %s: %w",
			cat, domain.ErrConfiguration)
	}
	if trm < adaptiveTrmMin || trm > adaptiveTrmMax {
		return domain.Threshold{}, fmt.Errorf("T_rm %.1f outside [%.0f, %.0f]: %w",
			trm, adaptiveTrmMin, adaptiveTrmMax, ErrOutsideAdaptiveRange)
	}

	comfortTemp := adaptiveSlope*trm + adaptiveIntercept
	return domain.Threshold{
		Lower:    domain.Float(comfortTemp - delta),
		Upper:    domain.Float(comfortTemp + delta),
		Unit:     "degC",
		Category: cat,
	}, nil
}
