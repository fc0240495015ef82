// Package occupancy detects occupied periods from CO2 patterns and
// estimates occupant counts via a steady-state CO2 mass balance.
package occupancy

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// Config holds the occupancy estimator configuration.
type Config struct {
	OutdoorPPM        float64 // outdoor CO2 baseline
	ElevatedMarginPPM float64 // CO2 above outdoor+margin counts as elevated
	RisePPMPerMinute  float64 // slope above this implies occupant presence
	SmoothingWindow   int     // samples per slope estimate

	// GenerationM3PerHour is the CO2 generation rate per occupant. The
	// default 0.0187 m3/h corresponds to an adult at light activity.
	GenerationM3PerHour float64
}

// DefaultConfig returns the standard estimator configuration.
func DefaultConfig() *Config {
	return &Config{
		OutdoorPPM:          400,
		ElevatedMarginPPM:   150,
		RisePPMPerMinute:    2,
		SmoothingWindow:     3,
		GenerationM3PerHour: 0.0187,
	}
}

// Estimator classifies occupancy and solves the mass balance for counts.
type Estimator struct {
	cfg *Config
	log *zap.Logger
}

// NewEstimator creates an occupancy estimator.
func NewEstimator(cfg *Config, log *zap.Logger) *Estimator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Estimator{cfg: cfg, log: log}
}

// Analyze classifies every timestamp of the CO2 series as occupied or
// unoccupied and, when a ventilation rate is available, estimates typical
// and peak occupant counts. ach <= 0 means no usable ventilation rate; the
// counts stay zero and the assumptions record the source as "unavailable"
// rather than inventing a number.
func (e *Estimator) Analyze(space *domain.Space, co2 *domain.Series, ach float64, achSource string) (*domain.OccupancyPattern, error) {
	if co2 == nil {
		return nil, fmt.Errorf("occupancy: no CO2 series: %w", domain.ErrNoValidData)
	}
	points := co2.Valid()
	if len(points) < e.cfg.SmoothingWindow+1 {
		return nil, fmt.Errorf("occupancy needs at least %d valid points, got %d: %w",
			e.cfg.SmoothingWindow+1, len(points), domain.ErrInsufficientData)
	}

	flags := e.classify(points)

	pattern := &domain.OccupancyPattern{
		SpaceID: space.ID,
		Flags:   flags,
		Assumptions: domain.OccupancyAssumptions{
			GenerationM3PerHour: e.cfg.GenerationM3PerHour,
			OutdoorPPM:          e.cfg.OutdoorPPM,
			ACH:                 ach,
			ACHSource:           achSource,
		},
	}

	occupied := 0
	var hourOccupied, hourTotal [24]int
	var occupiedValues []float64
	for i, f := range flags {
		hourTotal[f.Time.Hour()]++
		if f.Occupied {
			occupied++
			hourOccupied[f.Time.Hour()]++
			occupiedValues = append(occupiedValues, points[i].Value)
		}
	}
	pattern.Rate = float64(occupied) / float64(len(flags))
	for h := 0; h < 24; h++ {
		if hourTotal[h] > 0 {
			pattern.HourlyRate[h] = float64(hourOccupied[h]) / float64(hourTotal[h])
		}
	}

	if ach <= 0 {
		pattern.Assumptions.ACHSource = "unavailable"
		return pattern, nil
	}
	if len(occupiedValues) > 0 {
		sort.Float64s(occupiedValues)
		typicalPPM := occupiedValues[len(occupiedValues)/2]
		peakPPM := occupiedValues[int(float64(len(occupiedValues)-1)*0.95)]
		pattern.TypicalCount = e.massBalanceCount(space.VolumeM3, ach, typicalPPM)
		pattern.PeakCount = e.massBalanceCount(space.VolumeM3, ach, peakPPM)
	}
	return pattern, nil
}

// classify walks the series with a windowed slope estimate. Presence starts
// when CO2 rises faster than ambient noise and persists while the level
// stays elevated without a sustained decay.
func (e *Estimator) classify(points []domain.Point) []domain.OccupancyFlag {
	flags := make([]domain.OccupancyFlag, len(points))
	elevated := e.cfg.OutdoorPPM + e.cfg.ElevatedMarginPPM
	occupied := false

	for i := range points {
		slope := e.slopeAt(points, i)
		switch {
		case slope > e.cfg.RisePPMPerMinute:
			occupied = true
		case slope < -e.cfg.RisePPMPerMinute, points[i].Value < elevated:
			occupied = false
		}
		flags[i] = domain.OccupancyFlag{Time: points[i].Time, Occupied: occupied}
	}
	return flags
}

// slopeAt returns the CO2 slope in ppm per minute over the smoothing
// window ending at index i.
func (e *Estimator) slopeAt(points []domain.Point, i int) float64 {
	j := i - e.cfg.SmoothingWindow
	if j < 0 {
		j = 0
	}
	if j == i {
		return 0
	}
	minutes := points[i].Time.Sub(points[j].Time).Minutes()
	if minutes <= 0 {
		return 0
	}
	return (points[i].Value - points[j].Value) / minutes
}

// massBalanceCount solves the steady-state balance
// N * G = ACH * V * (C_in - C_out) / 1e6 for N, clamped to >= 0 and
// rounded to the nearest whole person.
func (e *Estimator) massBalanceCount(volumeM3, ach, indoorPPM float64) int {
	if volumeM3 <= 0 || e.cfg.GenerationM3PerHour <= 0 {
		return 0
	}
	excess := indoorPPM - e.cfg.OutdoorPPM
	if excess <= 0 {
		return 0
	}
	removal := ach * volumeM3 * excess / 1e6 // m3/h of CO2
	n := removal / e.cfg.GenerationM3PerHour
	if n < 0 {
		return 0
	}
	return int(math.Round(n))
}
