// Package thermal simulates building thermal response with low-order
// resistance-capacitance network models (1R1C, 2R2C, 3R3C).
package thermal

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// BuildingProps are the static properties used to estimate RC parameters
// when measured ones are not supplied.
type BuildingProps struct {
	EnvelopeAreaM2     float64 // heat-loss surface area
	UValueWPerM2K      float64 // average envelope U-value
	FloorAreaM2        float64
	ThermalMassJPerM2K float64 // effective thermal mass per floor area
}

// Config holds the simulator configuration. When Resistances/Capacitances
// are empty they are estimated from building properties at simulation time
// and the result is flagged as estimated.
type Config struct {
	Order        int
	Resistances  []float64 // K/W, outermost stage first
	Capacitances []float64 // J/K, outermost stage first
}

// DefaultConfig returns a first-order configuration with no parameters;
// parameters then come from estimation.
func DefaultConfig() *Config {
	return &Config{Order: 1}
}

// Simulator integrates the RC network ODEs with an explicit Euler scheme
// at the input series' native time step.
type Simulator struct {
	cfg *Config
	log *zap.Logger
}

// NewSimulator creates a thermal simulator.
func NewSimulator(cfg *Config, log *zap.Logger) *Simulator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Simulator{cfg: cfg, log: log}
}

// Input carries one simulation's time series and boundary conditions.
// SolarGain and InternalGain are in W, aligned index-wise with Outdoor;
// nil means zero gain. With a Setpoint the indoor node is held there and
// the heating/cooling load required to do so is computed (positive =
// heating); without one the building floats freely.
type Input struct {
	SpaceID       string
	Outdoor       *domain.Series
	SolarGain     *domain.Series
	InternalGain  *domain.Series
	InitialIndoor float64
	Setpoint      *float64
	Props         *BuildingProps // used only when parameters are estimated
}

// EstimateParams derives approximate RC parameters from building
// properties using closed-form splits:
//
//	R_total = 1 / (U * A_envelope),  C_total = c_m * A_floor
//
// order 1: all in one stage; order 2: 70/30 resistance and 80/20
// capacitance between mass and air; order 3: 50/30/20 and 60/30/10.
// The result is always flagged Estimated.
func EstimateParams(props BuildingProps, order int) (domain.RCParams, error) {
	if props.EnvelopeAreaM2 <= 0 || props.UValueWPerM2K <= 0 ||
		props.FloorAreaM2 <= 0 || props.ThermalMassJPerM2K <= 0 {
		return domain.RCParams{}, fmt.Errorf("parameter estimation needs positive building properties: %w",
			domain.ErrConfiguration)
	}
	rTotal := 1 / (props.UValueWPerM2K * props.EnvelopeAreaM2)
	cTotal := props.ThermalMassJPerM2K * props.FloorAreaM2

	var rSplit, cSplit []float64
	switch order {
	case 1:
		rSplit, cSplit = []float64{1}, []float64{1}
	case 2:
		rSplit, cSplit = []float64{0.7, 0.3}, []float64{0.8, 0.2}
	case 3:
		rSplit, cSplit = []float64{0.5, 0.3, 0.2}, []float64{0.6, 0.3, 0.1}
	default:
		return domain.RCParams{}, fmt.Errorf("model order %d not in 1..3: %w", order, domain.ErrConfiguration)
	}

	params := domain.RCParams{Estimated: true}
	for i := 0; i < order; i++ {
		params.Resistances = append(params.Resistances, rTotal*rSplit[i])
		params.Capacitances = append(params.Capacitances, cTotal*cSplit[i])
	}
	return params, nil
}

// Simulate runs the network over the outdoor series. The time step is the
// outdoor series' native step and must not exceed the smallest nodal time
// constant; a violating configuration fails with ErrUnstableTimestep
// instead of silently diverging.
func (s *Simulator) Simulate(in Input) (*domain.ThermalModelState, error) {
	if in.Outdoor == nil || in.Outdoor.Len() < 2 {
		return nil, fmt.Errorf("thermal simulation needs an outdoor series with at least 2 points: %w",
			domain.ErrInsufficientData)
	}

	params, err := s.resolveParams(in)
	if err != nil {
		return nil, err
	}
	order := len(params.Resistances)

	dt := in.Outdoor.NativeStep().Seconds()
	if dt <= 0 {
		return nil, fmt.Errorf("outdoor series has no usable time step: %w", domain.ErrInsufficientData)
	}
	if tauMin := smallestNodalTau(params); dt > tauMin {
		return nil, fmt.Errorf("time step %.0fs exceeds smallest nodal time constant %.0fs: %w",
			dt, tauMin, domain.ErrUnstableTimestep)
	}

	outdoor := in.Outdoor.Points()
	temps := make([]float64, order)
	for i := range temps {
		temps[i] = in.InitialIndoor
	}

	state := &domain.ThermalModelState{
		SpaceID:     in.SpaceID,
		Order:       order,
		Params:      params,
		EffectiveUA: effectiveUA(params),
		Setpoint:    in.Setpoint,
	}
	for i := 0; i < order; i++ {
		state.TimeConstants = append(state.TimeConstants,
			time.Duration(params.Resistances[i]*params.Capacitances[i])*time.Second)
	}

	indoor := order - 1
	for i, p := range outdoor {
		if p.Missing() {
			// carry the previous outdoor value through gaps
			if i == 0 {
				return nil, fmt.Errorf("outdoor series starts with a gap: %w", domain.ErrNoValidData)
			}
			p.Value = outdoor[i-1].Value
			outdoor[i] = p
		}
		gain := gainAt(in.SolarGain, i) + gainAt(in.InternalGain, i)

		if in.Setpoint != nil {
			temps[indoor] = *in.Setpoint
			load := s.holdLoad(params, temps, p.Value, gain)
			state.Load = append(state.Load, domain.Point{Time: p.Time, Value: load})
		}
		state.Indoor = append(state.Indoor, domain.Point{Time: p.Time, Value: temps[indoor]})

		s.step(params, temps, p.Value, gain, dt, in.Setpoint)
	}
	return state, nil
}

func (s *Simulator) resolveParams(in Input) (domain.RCParams, error) {
	order := s.cfg.Order
	if order < 1 || order > 3 {
		return domain.RCParams{}, fmt.Errorf("model order %d not in 1..3: %w", order, domain.ErrConfiguration)
	}
	if len(s.cfg.Resistances) == 0 && len(s.cfg.Capacitances) == 0 {
		if in.Props == nil {
			return domain.RCParams{}, fmt.Errorf("no RC parameters and no building properties to estimate from: %w",
				domain.ErrConfiguration)
		}
		return EstimateParams(*in.Props, order)
	}
	if len(s.cfg.Resistances) != order || len(s.cfg.Capacitances) != order {
		return domain.RCParams{}, fmt.Errorf("order %d needs %d resistances and capacitances: %w",
			order, order, domain.ErrConfiguration)
	}
	for i := 0; i < order; i++ {
		if s.cfg.Resistances[i] <= 0 || s.cfg.Capacitances[i] <= 0 {
			return domain.RCParams{}, fmt.Errorf("RC parameters must be positive: %w", domain.ErrConfiguration)
		}
	}
	return domain.RCParams{
		Resistances:  append([]float64(nil), s.cfg.Resistances...),
		Capacitances: append([]float64(nil), s.cfg.Capacitances...),
	}, nil
}

// step advances every node one explicit Euler step. Node 0 faces outdoors
// through R[0]; the last node is the indoor air and receives the gains.
// With a setpoint the indoor node is clamped and not integrated.
func (s *Simulator) step(params domain.RCParams, temps []float64, outdoor, gain, dt float64, setpoint *float64) {
	n := len(temps)
	next := make([]float64, n)
	for i := 0; i < n; i++ {
		if setpoint != nil && i == n-1 {
			next[i] = *setpoint
			continue
		}
		prev := outdoor
		if i > 0 {
			prev = temps[i-1]
		}
		flow := (prev - temps[i]) / params.Resistances[i]
		if i+1 < n {
			flow += (temps[i+1] - temps[i]) / params.Resistances[i+1]
		}
		if i == n-1 {
			flow += gain
		}
		next[i] = temps[i] + dt*flow/params.Capacitances[i]
	}
	copy(temps, next)
}

// holdLoad is the HVAC heat input that keeps the indoor node at the
// setpoint for the current step: it cancels the conductive flow from the
// adjacent node and the free gains.
func (s *Simulator) holdLoad(params domain.RCParams, temps []float64, outdoor, gain float64) float64 {
	n := len(temps)
	prev := outdoor
	if n > 1 {
		prev = temps[n-2]
	}
	conductive := (prev - temps[n-1]) / params.Resistances[n-1]
	return -(conductive + gain)
}

func smallestNodalTau(params domain.RCParams) float64 {
	n := len(params.Resistances)
	tauMin := 0.0
	for i := 0; i < n; i++ {
		g := 1 / params.Resistances[i]
		if i+1 < n {
			g += 1 / params.Resistances[i+1]
		}
		tau := params.Capacitances[i] / g
		if i == 0 || tau < tauMin {
			tauMin = tau
		}
	}
	return tauMin
}

func effectiveUA(params domain.RCParams) float64 {
	var rTotal float64
	for _, r := range params.Resistances {
		rTotal += r
	}
	if rTotal <= 0 {
		return 0
	}
	return 1 / rTotal
}

func gainAt(s *domain.Series, i int) float64 {
	if s == nil || i >= s.Len() {
		return 0
	}
	p := s.At(i)
	if p.Missing() {
		return 0
	}
	return p.Value
}
