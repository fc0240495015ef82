// Package threshold implements the generic compliance check used by the
// category- and rating-based calculators.
package threshold

import (
	"fmt"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// Options tunes a threshold evaluation.
type Options struct {
	// RequiredRate is the compliance rate the check must reach to count as
	// compliant (default 0.95).
	RequiredRate float64
	// MinRunLength is the minimum number of consecutive violations that
	// counts as a sustained excursion (default 3).
	MinRunLength int
}

// DefaultOptions returns the standard evaluation options.
func DefaultOptions() Options {
	return Options{RequiredRate: 0.95, MinRunLength: 3}
}

// Violation is one sample outside the threshold bounds.
type Violation struct {
	Point    domain.Point `json:"point"`
	Severity float64      `json:"severity"` // normalized distance past the nearer bound
}

// Evaluation is the outcome of checking a series against a threshold.
type Evaluation struct {
	Rate        float64     `json:"rate"` // (points within bounds) / (valid points)
	ValidPoints int         `json:"valid_points"`
	Violations  []Violation `json:"violations,omitempty"`
	// SustainedRuns counts consecutive-violation runs of at least
	// MinRunLength, flagging sustained excursions rather than spikes.
	SustainedRuns int  `json:"sustained_runs"`
	Compliant     bool `json:"compliant"`
}

// Evaluate checks every valid sample of a series against a threshold.
// Returns domain.ErrNoValidData when the series has zero valid points; the
// caller decides whether that is fatal or reported as "insufficient data".
func Evaluate(s *domain.Series, th domain.Threshold, opts Options) (Evaluation, error) {
	if opts.RequiredRate <= 0 {
		opts.RequiredRate = 0.95
	}
	if opts.MinRunLength <= 0 {
		opts.MinRunLength = 3
	}

	valid := s.Valid()
	if len(valid) == 0 {
		return Evaluation{}, fmt.Errorf("threshold evaluation: %w", domain.ErrNoValidData)
	}

	eval := Evaluation{ValidPoints: len(valid)}
	within := 0
	run := 0
	for _, p := range valid {
		if th.Contains(p.Value) {
			within++
			if run >= opts.MinRunLength {
				eval.SustainedRuns++
			}
			run = 0
			continue
		}
		run++
		eval.Violations = append(eval.Violations, Violation{
			Point:    p,
			Severity: th.Severity(p.Value),
		})
	}
	if run >= opts.MinRunLength {
		eval.SustainedRuns++
	}

	eval.Rate = float64(within) / float64(len(valid))
	eval.Compliant = eval.Rate >= opts.RequiredRate
	return eval, nil
}
