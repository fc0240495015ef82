package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/adapter/cache"
	"github.com/bruadam/hvx-engine/internal/domain"
	"github.com/bruadam/hvx-engine/internal/service/analysis"
	"github.com/bruadam/hvx-engine/internal/service/comfort"
	"github.com/bruadam/hvx-engine/internal/service/occupancy"
	"github.com/bruadam/hvx-engine/internal/service/rating"
	"github.com/bruadam/hvx-engine/internal/service/thermal"
	"github.com/bruadam/hvx-engine/internal/service/ventilation"
	"github.com/bruadam/hvx-engine/pkg/config"
)

var qualityGroups = map[string]domain.QualityGroup{
	"thermal":            domain.GroupThermal,
	"acoustic":           domain.GroupAcoustic,
	"indoor_air_quality": domain.GroupAir,
	"luminous":           domain.GroupLuminous,
}

// buildOrchestrator resolves the threshold override chain once and maps
// the flat configuration onto the calculator services.
func buildOrchestrator(cfg *config.Config, logger *zap.Logger) (*analysis.Orchestrator, error) {
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	comfortCfg, err := buildComfortConfig(cfg, resolved)
	if err != nil {
		return nil, err
	}
	ratingTests, err := buildRatingTests(cfg, resolved)
	if err != nil {
		return nil, err
	}

	orchCfg := &analysis.Config{
		Calculators: analysis.Toggles{
			Comfort:     cfg.Engine.Calculators.Comfort,
			Rating:      cfg.Engine.Calculators.Rating,
			Ventilation: cfg.Engine.Calculators.Ventilation,
			Occupancy:   cfg.Engine.Calculators.Occupancy,
			Thermal:     cfg.Engine.Calculators.Thermal,
		},
		Workers:        cfg.Engine.Workers,
		RatingTests:    ratingTests,
		ConfiguredACH:  cfg.Occupancy.ConfiguredACH,
		Thermal:        buildThermalRun(cfg),
		MetricPolicies: metricPolicies(cfg),
		RatingPolicy:   domain.AggregationPolicy(cfg.Aggregation.Rating),
		CategoryPolicy: domain.AggregationPolicy(cfg.Aggregation.Category),
	}

	ratingCfg := rating.Config{
		PortfolioPolicy: domain.AggregationPolicy(cfg.Aggregation.PortfolioRating),
	}

	return analysis.NewOrchestrator(
		orchCfg,
		comfort.NewCalculator(comfortCfg, logger),
		rating.NewAggregator(ratingCfg, logger),
		ventilation.NewEstimator(buildVentilationConfig(cfg), logger),
		occupancy.NewEstimator(buildOccupancyConfig(cfg), logger),
		thermal.NewSimulator(buildThermalConfig(cfg), logger),
		cache.NewRunCache(logger),
		logger,
	), nil
}

func buildComfortConfig(cfg *config.Config, resolved config.ResolvedThresholds) (*comfort.Config, error) {
	out := comfort.DefaultConfig()
	if cfg.Comfort.Alpha > 0 {
		out.Alpha = cfg.Comfort.Alpha
	}
	if cfg.Comfort.RequiredRate > 0 {
		out.RequiredRate = cfg.Comfort.RequiredRate
	}
	if cfg.Comfort.MinRunLength > 0 {
		out.MinRunLength = cfg.Comfort.MinRunLength
	}
	for _, test := range cfg.Comfort.Tests {
		out.Tests = append(out.Tests, comfort.ParameterTest{
			Parameter:  test.Parameter,
			Quantity:   test.Quantity,
			Adaptive:   test.Adaptive,
			Thresholds: resolved[test.Parameter],
		})
	}
	return out, nil
}

// buildRatingTests derives the TAIL rating tests from the comfort tests
// that name a quality group. Compliance is measured against the resolved
// category II threshold, the standard design level.
func buildRatingTests(cfg *config.Config, resolved config.ResolvedThresholds) ([]analysis.RatingTest, error) {
	var out []analysis.RatingTest
	for _, test := range cfg.Comfort.Tests {
		if test.Group == "" {
			continue
		}
		group, ok := qualityGroups[test.Group]
		if !ok {
			return nil, fmt.Errorf("test %q references unknown quality group %q: %w",
				test.Parameter, test.Group, domain.ErrConfiguration)
		}
		th, ok := resolved[test.Parameter][domain.CategoryII]
		if !ok {
			return nil, fmt.Errorf("test %q has no category II threshold for rating: %w",
				test.Parameter, domain.ErrConfiguration)
		}
		out = append(out, analysis.RatingTest{
			Group:     group,
			Parameter: test.Parameter,
			Quantity:  test.Quantity,
			Threshold: th,
		})
	}
	return out, nil
}

func buildVentilationConfig(cfg *config.Config) *ventilation.Config {
	out := ventilation.DefaultConfig()
	v := cfg.Ventilation
	if v.OutdoorPPM > 0 {
		out.OutdoorPPM = v.OutdoorPPM
	}
	if v.NoiseTolerancePPM > 0 {
		out.NoiseTolerancePPM = v.NoiseTolerancePPM
	}
	if v.PlateauMarginPPM > 0 {
		out.PlateauMarginPPM = v.PlateauMarginPPM
	}
	if v.MinEpisodeMinutes > 0 {
		out.MinEpisodeDuration = time.Duration(v.MinEpisodeMinutes) * time.Minute
	}
	if v.MinEpisodePoints > 0 {
		out.MinEpisodePoints = v.MinEpisodePoints
	}
	if v.MinDropPPM > 0 {
		out.MinDropPPM = v.MinDropPPM
	}
	if v.MinR2 > 0 {
		out.MinR2 = v.MinR2
	}
	return out
}

func buildOccupancyConfig(cfg *config.Config) *occupancy.Config {
	out := occupancy.DefaultConfig()
	o := cfg.Occupancy
	if o.OutdoorPPM > 0 {
		out.OutdoorPPM = o.OutdoorPPM
	}
	if o.ElevatedMarginPPM > 0 {
		out.ElevatedMarginPPM = o.ElevatedMarginPPM
	}
	if o.RisePPMPerMinute > 0 {
		out.RisePPMPerMinute = o.RisePPMPerMinute
	}
	if o.SmoothingWindow > 0 {
		out.SmoothingWindow = o.SmoothingWindow
	}
	if o.GenerationM3PerHour > 0 {
		out.GenerationM3PerHour = o.GenerationM3PerHour
	}
	return out
}

func buildThermalConfig(cfg *config.Config) *thermal.Config {
	out := thermal.DefaultConfig()
	if cfg.Thermal.Order > 0 {
		out.Order = cfg.Thermal.Order
	}
	out.Resistances = cfg.Thermal.Resistances
	out.Capacitances = cfg.Thermal.Capacitances
	return out
}

func buildThermalRun(cfg *config.Config) analysis.ThermalRun {
	run := analysis.ThermalRun{Setpoint: cfg.Thermal.Setpoint}
	t := cfg.Thermal
	if t.EnvelopeAreaM2 > 0 && t.UValueWPerM2K > 0 && t.FloorAreaM2 > 0 && t.ThermalMassJPerM2K > 0 {
		run.Props = &thermal.BuildingProps{
			EnvelopeAreaM2:     t.EnvelopeAreaM2,
			UValueWPerM2K:      t.UValueWPerM2K,
			FloorAreaM2:        t.FloorAreaM2,
			ThermalMassJPerM2K: t.ThermalMassJPerM2K,
		}
	}
	return run
}

func metricPolicies(cfg *config.Config) map[string]domain.AggregationPolicy {
	if len(cfg.Aggregation.Metrics) == 0 {
		return nil
	}
	out := make(map[string]domain.AggregationPolicy, len(cfg.Aggregation.Metrics))
	for metric, policy := range cfg.Aggregation.Metrics {
		out[metric] = domain.AggregationPolicy(policy)
	}
	return out
}
