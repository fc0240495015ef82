package domain

import (
	"errors"
	"math"
	"sort"
	"time"
)

// Point is a single sample of a measured quantity. A NaN value marks a
// missing sample; gaps are never encoded as zero.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Missing reports whether the point carries no measurement.
func (p Point) Missing() bool {
	return math.IsNaN(p.Value)
}

// Series is an ordered measurement series for one physical quantity at one
// space. Timestamps are strictly increasing. The series is read-only after
// construction.
type Series struct {
	points []Point
}

// NewSeries validates ordering and returns an immutable series.
func NewSeries(points []Point) (*Series, error) {
	for i := 1; i < len(points); i++ {
		if !points[i].Time.After(points[i-1].Time) {
			return nil, errors.New("series timestamps must be strictly increasing")
		}
	}
	s := &Series{points: make([]Point, len(points))}
	copy(s.points, points)
	return s, nil
}

// Len returns the total number of samples, missing ones included.
func (s *Series) Len() int {
	return len(s.points)
}

// At returns the i-th sample.
func (s *Series) At(i int) Point {
	return s.points[i]
}

// Points returns a copy of all samples.
func (s *Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Valid returns the non-missing samples in order.
func (s *Series) Valid() []Point {
	out := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if !p.Missing() {
			out = append(out, p)
		}
	}
	return out
}

// Values returns the non-missing values in order.
func (s *Series) Values() []float64 {
	out := make([]float64, 0, len(s.points))
	for _, p := range s.points {
		if !p.Missing() {
			out = append(out, p.Value)
		}
	}
	return out
}

// Window returns the sub-series with from <= t < to.
func (s *Series) Window(from, to time.Time) *Series {
	out := make([]Point, 0)
	for _, p := range s.points {
		if !p.Time.Before(from) && p.Time.Before(to) {
			out = append(out, p)
		}
	}
	return &Series{points: out}
}

// NativeStep returns the most common interval between consecutive samples,
// or zero when the series has fewer than two samples.
func (s *Series) NativeStep() time.Duration {
	if len(s.points) < 2 {
		return 0
	}
	counts := make(map[time.Duration]int)
	for i := 1; i < len(s.points); i++ {
		counts[s.points[i].Time.Sub(s.points[i-1].Time)]++
	}
	var best time.Duration
	bestCount := 0
	for d, n := range counts {
		if n > bestCount || (n == bestCount && d < best) {
			best, bestCount = d, n
		}
	}
	return best
}

// DailyMean is the mean of one calendar day's valid samples.
type DailyMean struct {
	Date time.Time
	Mean float64
}

// DailyMeans groups valid samples by calendar day (in the samples' location)
// and returns per-day means in chronological order. Days without valid
// samples are omitted.
func (s *Series) DailyMeans() []DailyMean {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, p := range s.points {
		if p.Missing() {
			continue
		}
		day := time.Date(p.Time.Year(), p.Time.Month(), p.Time.Day(), 0, 0, 0, 0, p.Time.Location())
		sums[day] += p.Value
		counts[day]++
	}
	out := make([]DailyMean, 0, len(sums))
	for day, sum := range sums {
		out = append(out, DailyMean{Date: day, Mean: sum / float64(counts[day])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
