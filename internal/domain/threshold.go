package domain

import "math"

// Threshold is an immutable compliance bound for one parameter. Either bound
// may be nil for a unidirectional threshold; the absent side is treated as
// unbounded.
type Threshold struct {
	Lower    *float64 `json:"lower,omitempty"`
	Upper    *float64 `json:"upper,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Category Category `json:"category,omitempty"`
}

// Float returns a pointer to v, for building threshold literals.
func Float(v float64) *float64 {
	return &v
}

// Bounded reports whether at least one bound is set.
func (t Threshold) Bounded() bool {
	return t.Lower != nil || t.Upper != nil
}

// Contains reports whether v lies within the bounds (inclusive).
func (t Threshold) Contains(v float64) bool {
	if t.Lower != nil && v < *t.Lower {
		return false
	}
	if t.Upper != nil && v > *t.Upper {
		return false
	}
	return true
}

// Severity returns the normalized distance past the nearer bound for a
// violating value, and zero for a compliant one. With both bounds present
// the distance is normalized by the band width; for a unidirectional
// threshold it is normalized by the bound magnitude (or 1 near zero).
func (t Threshold) Severity(v float64) float64 {
	if t.Contains(v) {
		return 0
	}
	var dist, scale float64
	switch {
	case t.Lower != nil && v < *t.Lower:
		dist = *t.Lower - v
		scale = t.scale(*t.Lower)
	case t.Upper != nil && v > *t.Upper:
		dist = v - *t.Upper
		scale = t.scale(*t.Upper)
	}
	return dist / scale
}

func (t Threshold) scale(bound float64) float64 {
	if t.Lower != nil && t.Upper != nil && *t.Upper > *t.Lower {
		return *t.Upper - *t.Lower
	}
	if abs := math.Abs(bound); abs >= 1 {
		return abs
	}
	return 1
}
