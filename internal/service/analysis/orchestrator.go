// Package analysis orchestrates the calculators over a spatial hierarchy
// and rolls per-space results up to floors, buildings and the portfolio.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bruadam/hvx-engine/internal/domain"
	"github.com/bruadam/hvx-engine/internal/observability/telemetry"
	"github.com/bruadam/hvx-engine/internal/ports"
	"github.com/bruadam/hvx-engine/internal/service/comfort"
	"github.com/bruadam/hvx-engine/internal/service/occupancy"
	"github.com/bruadam/hvx-engine/internal/service/rating"
	"github.com/bruadam/hvx-engine/internal/service/threshold"
	"github.com/bruadam/hvx-engine/internal/service/thermal"
	"github.com/bruadam/hvx-engine/internal/service/ventilation"
)

// Toggles enables calculators individually; not all calculators run on
// every space.
type Toggles struct {
	Comfort     bool
	Rating      bool
	Ventilation bool
	Occupancy   bool
	Thermal     bool
}

// RatingTest binds one parameter threshold to a TAIL quality group.
type RatingTest struct {
	Group     domain.QualityGroup
	Parameter string
	Quantity  string
	Threshold domain.Threshold
}

// ThermalRun carries the run-level thermal simulation inputs.
type ThermalRun struct {
	Setpoint *float64
	Props    *thermal.BuildingProps
}

// Config is the resolved orchestrator configuration for one run.
type Config struct {
	Calculators Toggles
	Workers     int

	RatingTests []RatingTest

	// ConfiguredACH, when positive, overrides the estimated ventilation
	// rate as the occupancy mass-balance input.
	ConfiguredACH float64

	Thermal ThermalRun

	// MetricPolicies overrides the aggregation policy per continuous
	// metric; the default is area-weighted mean.
	MetricPolicies map[string]domain.AggregationPolicy
	// RatingPolicy and CategoryPolicy reduce bands/categories upward;
	// the default for both is worst-case.
	RatingPolicy   domain.AggregationPolicy
	CategoryPolicy domain.AggregationPolicy
}

// DefaultConfig enables every calculator with conservative aggregation
// defaults.
func DefaultConfig() *Config {
	return &Config{
		Calculators:    Toggles{Comfort: true, Rating: true, Ventilation: true, Occupancy: true, Thermal: false},
		Workers:        4,
		RatingPolicy:   domain.PolicyWorstCase,
		CategoryPolicy: domain.PolicyWorstCase,
	}
}

// Orchestrator drives one analysis run through the state machine
// Configured -> Running -> Aggregating -> Completed | Failed.
type Orchestrator struct {
	cfg     *Config
	comfort *comfort.Calculator
	rating  *rating.Aggregator
	vent    *ventilation.Estimator
	occ     *occupancy.Estimator
	thermal *thermal.Simulator
	cache   ports.ResultCache
	log     *zap.Logger
}

// NewOrchestrator wires the calculators behind one orchestrator.
func NewOrchestrator(
	cfg *Config,
	comfortCalc *comfort.Calculator,
	ratingAgg *rating.Aggregator,
	ventEst *ventilation.Estimator,
	occEst *occupancy.Estimator,
	thermalSim *thermal.Simulator,
	cache ports.ResultCache,
	log *zap.Logger,
) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Orchestrator{
		cfg:     cfg,
		comfort: comfortCalc,
		rating:  ratingAgg,
		vent:    ventEst,
		occ:     occEst,
		thermal: thermalSim,
		cache:   cache,
		log:     log,
	}
}

// Run analyzes every leaf space in parallel, then aggregates bottom-up.
// Calculator failures are recorded per space and never abort the run;
// cancellation stops new space tasks and reports which spaces completed
// versus were skipped. Within one run no space is computed twice.
func (o *Orchestrator) Run(ctx context.Context, input *ports.AnalysisInput) (*domain.RunResult, error) {
	result := &domain.RunResult{
		RunID:      uuid.NewString(),
		State:      domain.RunConfigured,
		StartedAt:  time.Now(),
		Spaces:     make(map[string]*domain.SpaceResult),
		Aggregates: make(map[string]*domain.AggregatedResult),
	}
	if input == nil || len(input.Spaces) == 0 {
		result.State = domain.RunFailed
		return result, fmt.Errorf("run has no spaces: %w", domain.ErrConfiguration)
	}

	telemetry.RunsStarted.Inc()
	defer o.cache.DropRun(result.RunID)
	o.log.Info("analysis run starting",
		zap.String("run", result.RunID),
		zap.Int("spaces", len(input.Spaces)),
	)

	result.State = domain.RunRunning
	leaves := leafIDs(input.Spaces)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(o.cfg.Workers)

	for _, id := range leaves {
		// Cancellation gate: no new space task starts after the run is
		// cancelled. In-flight spaces finish; calculators are short and
		// CPU-bound.
		if ctx.Err() != nil {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		space := input.Spaces[id]
		g.Go(func() error {
			sr := o.analyzeSpace(ctx, result.RunID, space, input)
			mu.Lock()
			result.Spaces[space.ID] = sr
			result.Analyzed = append(result.Analyzed, space.ID)
			mu.Unlock()
			telemetry.SpacesAnalyzed.Inc()
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(result.Analyzed)
	sort.Strings(result.Skipped)

	result.State = domain.RunAggregating
	for _, root := range input.Roots {
		if err := o.aggregateNode(input, result, root); err != nil {
			result.State = domain.RunFailed
			result.CompletedAt = time.Now()
			telemetry.RunsCompleted.WithLabelValues(string(result.State)).Inc()
			return result, err
		}
	}

	result.State = domain.RunCompleted
	result.CompletedAt = time.Now()
	telemetry.RunsCompleted.WithLabelValues(string(result.State)).Inc()
	o.log.Info("analysis run completed",
		zap.String("run", result.RunID),
		zap.Int("analyzed", len(result.Analyzed)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// analyzeSpace runs the toggled calculators for one space, memoized per
// run so repeated hierarchy references never recompute.
func (o *Orchestrator) analyzeSpace(ctx context.Context, runID string, space *domain.Space, input *ports.AnalysisInput) *domain.SpaceResult {
	if cached, ok := o.cache.Get(runID, space.ID); ok {
		return cached
	}

	sr := &domain.SpaceResult{
		SpaceID:     space.ID,
		Calculators: make(map[domain.CalculatorName]domain.CalculatorStatus),
	}

	if o.cfg.Calculators.Comfort {
		o.timed(domain.CalculatorComfort, sr, func() error {
			res, err := o.comfort.EvaluateCategories(space, input.OutdoorDaily)
			if err != nil {
				return err
			}
			sr.Category = res
			return nil
		})
	}
	if o.cfg.Calculators.Rating {
		o.timed(domain.CalculatorRating, sr, func() error {
			res, err := o.rateSpace(space)
			if err != nil {
				return err
			}
			sr.Rating = res
			return nil
		})
	}
	if o.cfg.Calculators.Ventilation {
		o.timed(domain.CalculatorVentilation, sr, func() error {
			res, err := o.vent.Estimate(space.ID, space.Series(domain.QuantityCO2))
			if err != nil {
				return err
			}
			sr.Ventilation = res
			return nil
		})
	}
	if o.cfg.Calculators.Occupancy {
		o.timed(domain.CalculatorOccupancy, sr, func() error {
			ach, source := o.occupancyACH(sr)
			res, err := o.occ.Analyze(space, space.Series(domain.QuantityCO2), ach, source)
			if err != nil {
				return err
			}
			sr.Occupancy = res
			return nil
		})
	}
	if o.cfg.Calculators.Thermal {
		o.timed(domain.CalculatorThermal, sr, func() error {
			res, err := o.thermal.Simulate(thermal.Input{
				SpaceID:       space.ID,
				Outdoor:       input.Outdoor,
				InitialIndoor: initialIndoor(space, o.cfg.Thermal.Setpoint),
				Setpoint:      o.cfg.Thermal.Setpoint,
				Props:         o.cfg.Thermal.Props,
			})
			if err != nil {
				return err
			}
			sr.Thermal = res
			return nil
		})
	}

	o.cache.Put(runID, space.ID, sr)
	return sr
}

// timed runs one calculator, records its status and feeds the metrics.
func (o *Orchestrator) timed(name domain.CalculatorName, sr *domain.SpaceResult, fn func() error) {
	start := time.Now()
	err := fn()
	telemetry.CalculatorDuration.WithLabelValues(string(name)).Observe(time.Since(start).Seconds())

	status := domain.CalculatorStatus{Ran: true}
	if err != nil {
		status.Err = err.Error()
		telemetry.CalculatorFailures.WithLabelValues(string(name)).Inc()
		o.log.Warn("calculator failed",
			zap.String("space", sr.SpaceID),
			zap.String("calculator", string(name)),
			zap.Error(err),
		)
	}
	sr.Calculators[name] = status
}

// rateSpace evaluates the configured rating tests and reduces them to a
// TAIL rating.
func (o *Orchestrator) rateSpace(space *domain.Space) (*domain.RatingResult, error) {
	if len(o.cfg.RatingTests) == 0 {
		return nil, fmt.Errorf("no rating tests configured: %w", domain.ErrConfiguration)
	}
	compliance := make(map[domain.QualityGroup]map[string]float64)
	for _, test := range o.cfg.RatingTests {
		series := space.Series(test.Quantity)
		if series == nil {
			return nil, fmt.Errorf("rating test %s: no %q series: %w",
				test.Parameter, test.Quantity, domain.ErrNoValidData)
		}
		eval, err := threshold.Evaluate(series, test.Threshold, threshold.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("rating test %s: %w", test.Parameter, err)
		}
		if compliance[test.Group] == nil {
			compliance[test.Group] = make(map[string]float64)
		}
		compliance[test.Group][test.Parameter] = eval.Rate
	}
	return o.rating.RateSpace(space.ID, compliance)
}

// occupancyACH picks the mass-balance ventilation rate: an explicitly
// configured rate wins, otherwise this run's own estimate for the space.
func (o *Orchestrator) occupancyACH(sr *domain.SpaceResult) (float64, string) {
	if o.cfg.ConfiguredACH > 0 {
		return o.cfg.ConfiguredACH, "configured"
	}
	if sr.Ventilation != nil {
		return sr.Ventilation.ACH, "estimated"
	}
	return 0, "unavailable"
}

func initialIndoor(space *domain.Space, setpoint *float64) float64 {
	if ts := space.Series(domain.QuantityTemperature); ts != nil {
		if valid := ts.Valid(); len(valid) > 0 {
			return valid[0].Value
		}
	}
	if setpoint != nil {
		return *setpoint
	}
	return 20
}

// leafIDs returns the sorted IDs of spaces without children; only leaves
// carry measurement series and run calculators.
func leafIDs(spaces map[string]*domain.Space) []string {
	var out []string
	for id, s := range spaces {
		if len(s.Children) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
