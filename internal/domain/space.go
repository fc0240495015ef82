package domain

// SpaceType identifies a node's level in the spatial hierarchy.
type SpaceType string

const (
	SpaceTypeRoom      SpaceType = "room"
	SpaceTypeFloor     SpaceType = "floor"
	SpaceTypeBuilding  SpaceType = "building"
	SpaceTypePortfolio SpaceType = "portfolio"
)

// Quantity names for measurement series.
const (
	QuantityTemperature        = "temperature"
	QuantityOutdoorTemperature = "outdoor_temperature"
	QuantityCO2                = "co2"
	QuantityHumidity           = "humidity"
	QuantityIlluminance        = "illuminance"
	QuantityNoise              = "noise"
)

// Space is a pure data holder for one node of the spatial hierarchy. All
// computation lives in the calculator services; a Space never analyzes
// itself. Series and Children are read-only during an analysis run.
type Space struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         SpaceType `json:"type"`
	BuildingType string    `json:"building_type,omitempty"`
	RoomType     string    `json:"room_type,omitempty"`
	AreaM2       float64   `json:"area_m2"`
	VolumeM3     float64   `json:"volume_m3"`

	// Children holds child space IDs in a fixed order; aggregation
	// enumerates this slice, never completion order.
	Children []string `json:"children,omitempty"`

	series map[string]*Series
}

// NewSpace returns a space with an empty series map.
func NewSpace(id, name string, t SpaceType) *Space {
	return &Space{ID: id, Name: name, Type: t, series: make(map[string]*Series)}
}

// SetSeries attaches a measurement series for a quantity. Intended for the
// loading collaborator only; series are read-only once analysis starts.
func (s *Space) SetSeries(quantity string, series *Series) {
	if s.series == nil {
		s.series = make(map[string]*Series)
	}
	s.series[quantity] = series
}

// Series returns the series for a quantity, or nil when none is attached.
func (s *Space) Series(quantity string) *Series {
	return s.series[quantity]
}

// Quantities returns the quantity names with an attached series.
func (s *Space) Quantities() []string {
	out := make([]string, 0, len(s.series))
	for q := range s.series {
		out = append(out, q)
	}
	return out
}
