// Package ventilation estimates air-change rates by fitting exponential
// decay models to CO2 release curves.
package ventilation

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// Config holds the ventilation estimator configuration.
type Config struct {
	OutdoorPPM         float64       // outdoor CO2 baseline
	NoiseTolerancePPM  float64       // rise tolerated inside a decay episode
	PlateauMarginPPM   float64       // closeness to baseline treated as plateau
	MinEpisodeDuration time.Duration // shortest usable episode
	MinEpisodePoints   int           // fewest samples per episode
	MinDropPPM         float64       // smallest start-to-end decline
	MinR2              float64       // episodes below are discarded as unreliable
}

// DefaultConfig returns the standard estimator configuration.
func DefaultConfig() *Config {
	return &Config{
		OutdoorPPM:         400,
		NoiseTolerancePPM:  10,
		PlateauMarginPPM:   50,
		MinEpisodeDuration: 30 * time.Minute,
		MinEpisodePoints:   5,
		MinDropPPM:         100,
		MinR2:              0.8,
	}
}

// Estimator fits CO2 decay episodes to C(t) = C_out + (C0-C_out)*e^(-k*t).
type Estimator struct {
	cfg *Config
	log *zap.Logger
}

// NewEstimator creates a ventilation estimator.
func NewEstimator(cfg *Config, log *zap.Logger) *Estimator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Estimator{cfg: cfg, log: log}
}

// Estimate detects decay episodes in a CO2 series, fits each one, discards
// fits below the minimum R2 and combines the rest into one R2-weighted ACH
// estimate. Zero qualifying episodes yields domain.ErrNoQualifyingEpisode
// ("no estimate"), never a crash.
func (e *Estimator) Estimate(spaceID string, co2 *domain.Series) (*domain.VentilationEstimate, error) {
	if co2 == nil {
		return nil, fmt.Errorf("ventilation: no CO2 series: %w", domain.ErrNoValidData)
	}

	episodes := e.detectEpisodes(co2.Valid())
	var fits []domain.DecayFit
	for _, ep := range episodes {
		fit, ok := e.fitEpisode(ep)
		if !ok {
			continue
		}
		if fit.R2 < e.cfg.MinR2 {
			e.log.Debug("decay episode discarded as unreliable",
				zap.String("space", spaceID),
				zap.Time("start", fit.Start),
				zap.Float64("r2", fit.R2),
			)
			continue
		}
		fits = append(fits, fit)
	}

	if len(fits) == 0 {
		return nil, fmt.Errorf("space %s: %w", spaceID, domain.ErrNoQualifyingEpisode)
	}

	var achSum, r2Sum float64
	for _, f := range fits {
		achSum += f.R2 * f.ACH
		r2Sum += f.R2
	}
	ach := achSum / r2Sum

	return &domain.VentilationEstimate{
		SpaceID:    spaceID,
		ACH:        ach,
		// mean R2 of the kept episodes
		Confidence: r2Sum / float64(len(fits)),
		Quality:    QualityBand(ach),
		Episodes:   fits,
	}, nil
}

// QualityBand maps an ACH estimate to a ventilation quality label.
func QualityBand(ach float64) domain.VentilationQuality {
	switch {
	case ach >= 6:
		return domain.VentilationExcellent
	case ach >= 4:
		return domain.VentilationGood
	case ach >= 2:
		return domain.VentilationFair
	default:
		return domain.VentilationPoor
	}
}

// detectEpisodes finds maximal runs where CO2 is monotonically
// non-increasing within the noise tolerance. A run ends when the value
// rises beyond the tolerance; trailing samples near the outdoor baseline
// (the plateau) are trimmed off. Runs shorter than the configured minimum
// duration, point count or total drop are dropped.
func (e *Estimator) detectEpisodes(points []domain.Point) [][]domain.Point {
	var episodes [][]domain.Point
	start := 0
	for i := 1; i <= len(points); i++ {
		if i < len(points) && points[i].Value <= points[i-1].Value+e.cfg.NoiseTolerancePPM {
			continue
		}
		if run := e.trimPlateau(points[start:i]); e.qualifies(run) {
			episodes = append(episodes, run)
		}
		start = i
	}
	return episodes
}

func (e *Estimator) trimPlateau(run []domain.Point) []domain.Point {
	floor := e.cfg.OutdoorPPM + e.cfg.PlateauMarginPPM
	end := len(run)
	for end > 0 && run[end-1].Value <= floor {
		end--
	}
	return run[:end]
}

func (e *Estimator) qualifies(run []domain.Point) bool {
	if len(run) < e.cfg.MinEpisodePoints {
		return false
	}
	duration := run[len(run)-1].Time.Sub(run[0].Time)
	if duration < e.cfg.MinEpisodeDuration {
		return false
	}
	return run[0].Value-run[len(run)-1].Value >= e.cfg.MinDropPPM
}

// fitEpisode fits ln(C - C_out) = ln(C0 - C_out) - k*t by least squares.
// k is in 1/s; the ACH conversion to 1/h is explicit (k * 3600).
func (e *Estimator) fitEpisode(run []domain.Point) (domain.DecayFit, bool) {
	xs := make([]float64, 0, len(run))
	ys := make([]float64, 0, len(run))
	for _, p := range run {
		excess := p.Value - e.cfg.OutdoorPPM
		if excess <= 0 {
			continue
		}
		xs = append(xs, p.Time.Sub(run[0].Time).Seconds())
		ys = append(ys, math.Log(excess))
	}
	if len(xs) < e.cfg.MinEpisodePoints {
		return domain.DecayFit{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	k := -beta
	if k <= 0 {
		return domain.DecayFit{}, false
	}
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)

	const secondsPerHour = 3600
	return domain.DecayFit{
		Start:      run[0].Time,
		End:        run[len(run)-1].Time,
		InitialPPM: math.Exp(alpha) + e.cfg.OutdoorPPM,
		OutdoorPPM: e.cfg.OutdoorPPM,
		K:          k,
		ACH:        k * secondsPerHour,
		R2:         r2,
	}, true
}
