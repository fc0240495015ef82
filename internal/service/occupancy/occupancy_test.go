package occupancy

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// officeDay builds a 5-minute CO2 series: a quiet baseline, a sharp rise
// when people arrive, a long elevated plateau and a decay after they leave.
func officeDay(t *testing.T) *domain.Series {
	t.Helper()
	var values []float64
	for i := 0; i < 12; i++ { // 08:00-08:55 empty
		values = append(values, 420)
	}
	for v := 520.0; v <= 1120; v += 100 { // arrival ramp
		values = append(values, v)
	}
	for i := 0; i < 24; i++ { // plateau
		values = append(values, 1120)
	}
	for v := 1020.0; v >= 420; v -= 100 { // departure decay
		values = append(values, v)
	}

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	points := make([]domain.Point, len(values))
	for i, v := range values {
		points[i] = domain.Point{Time: start.Add(time.Duration(i) * 5 * time.Minute), Value: v}
	}
	s, err := domain.NewSeries(points)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testRoom(volume float64) *domain.Space {
	space := domain.NewSpace("room-1", "Room 1", domain.SpaceTypeRoom)
	space.VolumeM3 = volume
	return space
}

func newEstimator() *Estimator {
	return NewEstimator(nil, zap.NewNop())
}

func TestAnalyzeDetectsOccupiedPeriod(t *testing.T) {
	pattern, err := newEstimator().Analyze(testRoom(150), officeDay(t), 2.0, "configured")
	if err != nil {
		t.Fatal(err)
	}

	// 31 of 50 samples fall in the rise+plateau window
	if math.Abs(pattern.Rate-0.62) > 1e-9 {
		t.Errorf("Rate = %v, want 0.62", pattern.Rate)
	}
	if pattern.HourlyRate[8] != 0 {
		t.Errorf("hour 8 (empty baseline) rate = %v, want 0", pattern.HourlyRate[8])
	}
	if pattern.HourlyRate[10] != 1 {
		t.Errorf("hour 10 (plateau) rate = %v, want 1", pattern.HourlyRate[10])
	}

	// plateau should be occupied even though its slope is flat
	flags := pattern.Flags
	if !flags[25].Occupied {
		t.Error("mid-plateau sample should be occupied")
	}
	if flags[0].Occupied || flags[len(flags)-1].Occupied {
		t.Error("baseline and tail samples should be unoccupied")
	}
}

func TestAnalyzeMassBalanceCounts(t *testing.T) {
	pattern, err := newEstimator().Analyze(testRoom(150), officeDay(t), 2.0, "configured")
	if err != nil {
		t.Fatal(err)
	}

	// N = ACH*V*(C_in-C_out)/1e6 / G = 2*150*720e-6 / 0.0187 = 11.55 -> 12
	if pattern.TypicalCount != 12 {
		t.Errorf("TypicalCount = %d, want 12", pattern.TypicalCount)
	}
	if pattern.PeakCount != 12 {
		t.Errorf("PeakCount = %d, want 12", pattern.PeakCount)
	}
	if pattern.Assumptions.ACHSource != "configured" {
		t.Errorf("ACHSource = %q, want configured", pattern.Assumptions.ACHSource)
	}
}

func TestAnalyzeWithoutVentilationRate(t *testing.T) {
	pattern, err := newEstimator().Analyze(testRoom(150), officeDay(t), 0, "estimated")
	if err != nil {
		t.Fatal(err)
	}
	if pattern.TypicalCount != 0 || pattern.PeakCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0 without a ventilation rate", pattern.TypicalCount, pattern.PeakCount)
	}
	if pattern.Assumptions.ACHSource != "unavailable" {
		t.Errorf("ACHSource = %q, want unavailable", pattern.Assumptions.ACHSource)
	}
	// detection itself still works
	if pattern.Rate == 0 {
		t.Error("occupancy detection should not depend on the ventilation rate")
	}
}

func TestAnalyzeZeroVolume(t *testing.T) {
	pattern, err := newEstimator().Analyze(testRoom(0), officeDay(t), 2.0, "configured")
	if err != nil {
		t.Fatal(err)
	}
	if pattern.TypicalCount != 0 {
		t.Errorf("TypicalCount = %d, want 0 without a room volume", pattern.TypicalCount)
	}
}

func TestAnalyzeInsufficientData(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	s, err := domain.NewSeries([]domain.Point{
		{Time: start, Value: 420},
		{Time: start.Add(5 * time.Minute), Value: 430},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newEstimator().Analyze(testRoom(150), s, 2.0, "configured"); !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestAnalyzeNilSeries(t *testing.T) {
	if _, err := newEstimator().Analyze(testRoom(150), nil, 2.0, "configured"); !errors.Is(err, domain.ErrNoValidData) {
		t.Fatalf("err = %v, want ErrNoValidData", err)
	}
}
