package domain

import "time"

// QualityGroup is a TAIL top-level quality group.
type QualityGroup string

const (
	GroupThermal  QualityGroup = "thermal"
	GroupAcoustic QualityGroup = "acoustic"
	GroupAir      QualityGroup = "indoor_air_quality"
	GroupLuminous QualityGroup = "luminous"
)

// CalculatorName identifies one calculator within a run configuration.
type CalculatorName string

const (
	CalculatorComfort     CalculatorName = "comfort"
	CalculatorRating      CalculatorName = "rating"
	CalculatorVentilation CalculatorName = "ventilation"
	CalculatorOccupancy   CalculatorName = "occupancy"
	CalculatorThermal     CalculatorName = "thermal"
)

// ThresholdSource records whether a comfort band came from the adaptive
// model or from the fixed fallback.
type ThresholdSource string

const (
	SourceFixed            ThresholdSource = "fixed"
	SourceAdaptive         ThresholdSource = "adaptive"
	SourceAdaptiveFallback ThresholdSource = "fixed_fallback"
)

// CategoryTestResult is one parameter test evaluated for one category.
type CategoryTestResult struct {
	Parameter      string          `json:"parameter"`
	Category       Category        `json:"category"`
	ComplianceRate float64         `json:"compliance_rate"`
	Violations     int             `json:"violations"`
	Passed         bool            `json:"passed"`
	Source         ThresholdSource `json:"source"`
}

// CategoryResult is the per-space outcome of category-based comfort
// evaluation. A space achieves a category only when every configured test
// for that category meets the required compliance rate; Achieved is the
// best (strictest) such category, or CategoryNone.
type CategoryResult struct {
	SpaceID  string               `json:"space_id"`
	Achieved Category             `json:"achieved"`
	Tests    []CategoryTestResult `json:"tests"`
}

// ParameterRating is one parameter's TAIL band within a quality group.
type ParameterRating struct {
	Parameter      string  `json:"parameter"`
	ComplianceRate float64 `json:"compliance_rate"`
	Band           Band    `json:"band"`
}

// GroupRating reduces a quality group's parameters to one band.
type GroupRating struct {
	Group      QualityGroup      `json:"group"`
	Band       Band              `json:"band"`
	Parameters []ParameterRating `json:"parameters"`
}

// RatingResult is a space's TAIL rating. Overall is the worst group band;
// a single badly-performing group caps the whole result.
type RatingResult struct {
	SpaceID string                       `json:"space_id"`
	Groups  map[QualityGroup]GroupRating `json:"groups"`
	Overall Band                         `json:"overall"`
}

// VentilationQuality bands an ACH estimate.
type VentilationQuality string

const (
	VentilationExcellent VentilationQuality = "excellent"
	VentilationGood      VentilationQuality = "good"
	VentilationFair      VentilationQuality = "fair"
	VentilationPoor      VentilationQuality = "poor"
)

// DecayFit is one fitted CO2 decay episode.
type DecayFit struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	InitialPPM float64   `json:"initial_ppm"`
	OutdoorPPM float64   `json:"outdoor_ppm"`
	K          float64   `json:"k_per_second"`
	ACH        float64   `json:"ach"`
	R2         float64   `json:"r2"`
}

// VentilationEstimate combines qualifying decay episodes into one
// R2-weighted air-change-rate estimate for a space.
type VentilationEstimate struct {
	SpaceID    string             `json:"space_id"`
	ACH        float64            `json:"ach"`
	Confidence float64            `json:"confidence"` // mean episode R2, in [0,1]
	Quality    VentilationQuality `json:"quality"`
	Episodes   []DecayFit         `json:"episodes"`
}

// OccupancyFlag classifies one timestamp as occupied or not.
type OccupancyFlag struct {
	Time     time.Time `json:"time"`
	Occupied bool      `json:"occupied"`
}

// OccupancyAssumptions records the inputs behind an occupant-count
// estimate; the estimate is only as good as these.
type OccupancyAssumptions struct {
	GenerationM3PerHour float64 `json:"generation_m3_per_hour"` // CO2 per occupant
	OutdoorPPM          float64 `json:"outdoor_ppm"`
	ACH                 float64 `json:"ach"`
	ACHSource           string  `json:"ach_source"` // "configured" or "estimated"
}

// OccupancyPattern is the per-space occupancy detection result.
type OccupancyPattern struct {
	SpaceID      string               `json:"space_id"`
	Flags        []OccupancyFlag      `json:"flags"`
	Rate         float64              `json:"rate"` // fraction of timestamps occupied
	HourlyRate   [24]float64          `json:"hourly_rate"`
	TypicalCount int                  `json:"typical_count"`
	PeakCount    int                  `json:"peak_count"`
	Assumptions  OccupancyAssumptions `json:"assumptions"`
}

// RCParams holds the resistances (K/W) and capacitances (J/K) of an RC
// network, outermost stage first. Estimated marks values derived from
// building properties rather than supplied ones.
type RCParams struct {
	Resistances  []float64 `json:"resistances"`
	Capacitances []float64 `json:"capacitances"`
	Estimated    bool      `json:"estimated"`
}

// ThermalModelState is the outcome of an RC network simulation.
type ThermalModelState struct {
	SpaceID       string          `json:"space_id"`
	Order         int             `json:"order"`
	Params        RCParams        `json:"params"`
	Indoor        []Point         `json:"indoor"`            // simulated indoor temperature
	Load          []Point         `json:"load,omitempty"`    // W, positive = heating
	EffectiveUA   float64         `json:"effective_ua"`      // W/K across the network
	TimeConstants []time.Duration `json:"time_constants"`    // R_i * C_i per stage
	Setpoint      *float64        `json:"setpoint,omitempty"`
}

// AggregatedMetric is one rolled-up continuous metric at a non-leaf node.
// Available is false when no child contributed a value; the value is then
// meaningless and must not be read as zero.
type AggregatedMetric struct {
	Value     float64           `json:"value"`
	Policy    AggregationPolicy `json:"policy"`
	Children  int               `json:"children"` // children that contributed
	Available bool              `json:"available"`
}

// AggregatedResult carries the combined results for a floor, building or
// portfolio node.
type AggregatedResult struct {
	NodeID   string                      `json:"node_id"`
	NodeType SpaceType                   `json:"node_type"`
	Metrics  map[string]AggregatedMetric `json:"metrics"`

	Category          Category          `json:"category"`
	CategoryAvailable bool              `json:"category_available"`
	Rating            Band              `json:"rating"`
	RatingAvailable   bool              `json:"rating_available"`
	RatingPolicy      AggregationPolicy `json:"rating_policy"`
}

// CalculatorStatus distinguishes "not computed" from a real measured
// failure: Ran false with an empty Err means the calculator was not
// configured for the space; Ran true with Err set means it ran and failed.
type CalculatorStatus struct {
	Ran bool   `json:"ran"`
	Err string `json:"err,omitempty"`
}

// SpaceResult bundles whichever calculator results succeeded for a space.
// Nil result pointers paired with Calculators entries make partial results
// a first-class outcome.
type SpaceResult struct {
	SpaceID     string                              `json:"space_id"`
	Category    *CategoryResult                     `json:"category,omitempty"`
	Rating      *RatingResult                       `json:"rating,omitempty"`
	Ventilation *VentilationEstimate                `json:"ventilation,omitempty"`
	Occupancy   *OccupancyPattern                   `json:"occupancy,omitempty"`
	Thermal     *ThermalModelState                  `json:"thermal,omitempty"`
	Calculators map[CalculatorName]CalculatorStatus `json:"calculators"`
}

// RunState is the orchestrator state machine.
type RunState string

const (
	RunConfigured  RunState = "configured"
	RunRunning     RunState = "running"
	RunAggregating RunState = "aggregating"
	RunCompleted   RunState = "completed"
	RunFailed      RunState = "failed"
)

// RunResult is the outcome of one analysis run. Spaces holds leaf results,
// Aggregates one entry per non-leaf hierarchy node.
type RunResult struct {
	RunID       string                       `json:"run_id"`
	State       RunState                     `json:"state"`
	StartedAt   time.Time                    `json:"started_at"`
	CompletedAt time.Time                    `json:"completed_at"`
	Spaces      map[string]*SpaceResult      `json:"spaces"`
	Aggregates  map[string]*AggregatedResult `json:"aggregates"`
	Analyzed    []string                     `json:"analyzed"`
	Skipped     []string                     `json:"skipped,omitempty"` // spaces not started due to cancellation
}
