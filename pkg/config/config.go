package config

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Prometheus  PrometheusConfig  `mapstructure:"prometheus"`
	Data        DataConfig        `mapstructure:"data"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Comfort     ComfortConfig     `mapstructure:"comfort"`
	Ventilation VentilationConfig `mapstructure:"ventilation"`
	Occupancy   OccupancyConfig   `mapstructure:"occupancy"`
	Thermal     ThermalConfig     `mapstructure:"thermal"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Thresholds  ThresholdsConfig  `mapstructure:"thresholds"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type EngineConfig struct {
	Workers     int               `mapstructure:"workers"`
	Calculators CalculatorToggles `mapstructure:"calculators"`

	// BuildingType and RoomType select the threshold override chain
	// resolved once at run start (room type > building type > default).
	BuildingType string `mapstructure:"building_type"`
	RoomType     string `mapstructure:"room_type"`
}

type CalculatorToggles struct {
	Comfort     bool `mapstructure:"comfort"`
	Rating      bool `mapstructure:"rating"`
	Ventilation bool `mapstructure:"ventilation"`
	Occupancy   bool `mapstructure:"occupancy"`
	Thermal     bool `mapstructure:"thermal"`
}

type ComfortConfig struct {
	Alpha        float64      `mapstructure:"alpha"`
	RequiredRate float64      `mapstructure:"required_rate"`
	MinRunLength int          `mapstructure:"min_run_length"`
	Tests        []TestConfig `mapstructure:"tests"`
}

// TestConfig declares one parameter test. Category thresholds come from the
// resolved threshold tables, never from hardcoded values.
type TestConfig struct {
	Parameter string `mapstructure:"parameter"`
	Quantity  string `mapstructure:"quantity"`
	Group     string `mapstructure:"group"` // TAIL quality group for rating
	Adaptive  bool   `mapstructure:"adaptive"`
}

type VentilationConfig struct {
	OutdoorPPM         float64 `mapstructure:"outdoor_ppm"`
	NoiseTolerancePPM  float64 `mapstructure:"noise_tolerance_ppm"`
	PlateauMarginPPM   float64 `mapstructure:"plateau_margin_ppm"`
	MinEpisodeMinutes  int     `mapstructure:"min_episode_minutes"`
	MinEpisodePoints   int     `mapstructure:"min_episode_points"`
	MinDropPPM         float64 `mapstructure:"min_drop_ppm"`
	MinR2              float64 `mapstructure:"min_r2"`
}

type OccupancyConfig struct {
	OutdoorPPM          float64 `mapstructure:"outdoor_ppm"`
	ElevatedMarginPPM   float64 `mapstructure:"elevated_margin_ppm"`
	RisePPMPerMinute    float64 `mapstructure:"rise_ppm_per_minute"`
	SmoothingWindow     int     `mapstructure:"smoothing_window"`
	GenerationM3PerHour float64 `mapstructure:"generation_m3_per_hour"`

	// ConfiguredACH supplies an external ventilation rate for the mass
	// balance; zero means "use this run's own estimate".
	ConfiguredACH float64 `mapstructure:"configured_ach"`
}

type ThermalConfig struct {
	Order        int       `mapstructure:"order"`
	Resistances  []float64 `mapstructure:"resistances"`
	Capacitances []float64 `mapstructure:"capacitances"`
	Setpoint     *float64  `mapstructure:"setpoint"`

	EnvelopeAreaM2     float64 `mapstructure:"envelope_area_m2"`
	UValueWPerM2K      float64 `mapstructure:"u_value_w_per_m2k"`
	FloorAreaM2        float64 `mapstructure:"floor_area_m2"`
	ThermalMassJPerM2K float64 `mapstructure:"thermal_mass_j_per_m2k"`
}

type AggregationConfig struct {
	// Metrics maps a continuous metric name to "mean" or "area_weighted".
	Metrics map[string]string `mapstructure:"metrics"`
	// Rating and Category accept "worst_case" or "average"; worst-case is
	// the conservative default for both.
	Rating   string `mapstructure:"rating"`
	Category string `mapstructure:"category"`
	// PortfolioRating must be chosen explicitly wherever portfolio-level
	// band reduction is used; there is no implicit default.
	PortfolioRating string `mapstructure:"portfolio_rating"`
}

// BoundConfig is one threshold's bounds; either side may be omitted for a
// unidirectional threshold.
type BoundConfig struct {
	Lower *float64 `mapstructure:"lower"`
	Upper *float64 `mapstructure:"upper"`
	Unit  string   `mapstructure:"unit"`
}

// CategoryBounds maps a category numeral ("I".."IV") to bounds.
type CategoryBounds map[string]BoundConfig

// ThresholdsConfig is the hierarchical threshold definition: room-type
// overrides beat building-type overrides beat defaults. The chain is
// resolved once per run into flat tables (see Resolve).
type ThresholdsConfig struct {
	Defaults      map[string]CategoryBounds            `mapstructure:"defaults"`
	BuildingTypes map[string]map[string]CategoryBounds `mapstructure:"building_types"`
	RoomTypes     map[string]map[string]CategoryBounds `mapstructure:"room_types"`
}
