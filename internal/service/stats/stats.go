// Package stats provides descriptive statistics and outlier detection over
// measurement series. It is the numerical foundation for all calculators.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// Summary holds descriptive statistics for a series' valid samples.
// Skewness and kurtosis are NaN when the sample is too small for them;
// missing statistics are never reported as zero.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess kurtosis
	CV       float64 `json:"cv"`       // coefficient of variation
}

// Describe computes a Summary over the valid samples of a series.
// Returns domain.ErrInsufficientData for an empty series.
func Describe(s *domain.Series) (Summary, error) {
	values := s.Values()
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("describe: %w", domain.ErrInsufficientData)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := stat.Mean(values, nil)
	variance := stat.Variance(values, nil)
	if len(values) == 1 {
		variance = 0
	}
	std := math.Sqrt(variance)

	cv := math.NaN()
	if mean != 0 {
		cv = std / mean
	}

	return Summary{
		Count:    len(values),
		Mean:     mean,
		StdDev:   std,
		Variance: variance,
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		Median:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Skewness: stat.Skew(values, nil),
		Kurtosis: stat.ExKurtosis(values, nil),
		CV:       cv,
	}, nil
}

// Percentile returns the p-th percentile (p in [0,1]) of the valid samples.
func Percentile(s *domain.Series, p float64) (float64, error) {
	values := s.Values()
	if len(values) == 0 {
		return 0, fmt.Errorf("percentile: %w", domain.ErrInsufficientData)
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("percentile %v out of [0,1]: %w", p, domain.ErrConfiguration)
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil), nil
}

// DefaultIQRMultiplier is the conventional Tukey fence multiplier.
const DefaultIQRMultiplier = 1.5

// Outliers flags samples outside [Q1 - m*IQR, Q3 + m*IQR] and returns their
// timestamps. The series itself is untouched; detection is non-destructive.
// A non-positive multiplier falls back to DefaultIQRMultiplier.
func Outliers(s *domain.Series, multiplier float64) ([]time.Time, error) {
	points := s.Valid()
	if len(points) < 4 {
		return nil, fmt.Errorf("outliers need at least 4 valid points, got %d: %w",
			len(points), domain.ErrInsufficientData)
	}
	if multiplier <= 0 {
		multiplier = DefaultIQRMultiplier
	}

	sorted := make([]float64, 0, len(points))
	for _, p := range points {
		sorted = append(sorted, p.Value)
	}
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	lo := q1 - multiplier*iqr
	hi := q3 + multiplier*iqr

	var flagged []time.Time
	for _, p := range points {
		if p.Value < lo || p.Value > hi {
			flagged = append(flagged, p.Time)
		}
	}
	return flagged, nil
}
