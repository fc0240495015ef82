package domain

import (
	"math"
	"testing"
	"time"
)

func mustSeries(t *testing.T, start time.Time, step time.Duration, values ...float64) *Series {
	t.Helper()
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Time: start.Add(time.Duration(i) * step), Value: v}
	}
	s, err := NewSeries(points)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func TestNewSeriesRejectsUnorderedTimestamps(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name   string
		points []Point
	}{
		{"duplicate", []Point{{Time: now, Value: 1}, {Time: now, Value: 2}}},
		{"decreasing", []Point{{Time: now, Value: 1}, {Time: now.Add(-time.Minute), Value: 2}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSeries(tc.points); err == nil {
				t.Fatal("expected an ordering error")
			}
		})
	}
}

func TestSeriesValidSkipsGaps(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := mustSeries(t, start, time.Hour, 1, math.NaN(), 3, math.NaN(), 5)

	if s.Len() != 5 {
		t.Fatalf("Len = %d, want 5", s.Len())
	}
	if got := s.Values(); len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 5 {
		t.Fatalf("Values = %v, want [1 3 5]", got)
	}
	if !s.At(1).Missing() {
		t.Error("At(1) should be missing")
	}
	if s.At(2).Missing() {
		t.Error("At(2) should not be missing")
	}
}

func TestSeriesWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := mustSeries(t, start, time.Hour, 0, 1, 2, 3, 4, 5)

	w := s.Window(start.Add(time.Hour), start.Add(4*time.Hour))
	if w.Len() != 3 {
		t.Fatalf("window length = %d, want 3", w.Len())
	}
	if w.At(0).Value != 1 || w.At(2).Value != 3 {
		t.Fatalf("window values = %v", w.Values())
	}
}

func TestNativeStepIsModalInterval(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []Point{
		{Time: start, Value: 1},
		{Time: start.Add(5 * time.Minute), Value: 2},
		{Time: start.Add(10 * time.Minute), Value: 3},
		// one irregular gap must not change the step
		{Time: start.Add(25 * time.Minute), Value: 4},
		{Time: start.Add(30 * time.Minute), Value: 5},
	}
	s, err := NewSeries(points)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.NativeStep(); got != 5*time.Minute {
		t.Fatalf("NativeStep = %v, want 5m", got)
	}

	short := mustSeries(t, start, time.Hour, 1)
	if got := short.NativeStep(); got != 0 {
		t.Fatalf("NativeStep of single point = %v, want 0", got)
	}
}

func TestDailyMeans(t *testing.T) {
	start := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	// day 1: 10 and 20, day 2: 30 and a gap
	s := mustSeries(t, start, 12*time.Hour, 10, 20, 30, math.NaN())

	means := s.DailyMeans()
	if len(means) != 2 {
		t.Fatalf("got %d days, want 2", len(means))
	}
	if means[0].Mean != 15 {
		t.Errorf("day 1 mean = %v, want 15", means[0].Mean)
	}
	if means[1].Mean != 30 {
		t.Errorf("day 2 mean = %v, want 30", means[1].Mean)
	}
	if !means[0].Date.Before(means[1].Date) {
		t.Error("daily means must be chronological")
	}
}
