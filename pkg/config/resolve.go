package config

import (
	"fmt"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// ResolvedThresholds are flat per-parameter, per-category threshold tables
// produced once at run configuration time. Calculators read these and
// never walk the override chain again.
type ResolvedThresholds map[string]map[domain.Category]domain.Threshold

var categoryNumerals = map[string]domain.Category{
	"I": domain.CategoryI, "II": domain.CategoryII,
	"III": domain.CategoryIII, "IV": domain.CategoryIV,
}

// Resolve merges the threshold layers in strict priority order — room type
// over building type over defaults — for the selected types and validates
// that every configured test resolves to at least one category threshold.
// Unknown category numerals and tests with no thresholds anywhere in the
// chain fail with domain.ErrConfiguration.
func (c *Config) Resolve() (ResolvedThresholds, error) {
	resolved := make(ResolvedThresholds)

	layers := []map[string]CategoryBounds{c.Thresholds.Defaults}
	if bt := c.Engine.BuildingType; bt != "" {
		if layer, ok := c.Thresholds.BuildingTypes[bt]; ok {
			layers = append(layers, layer)
		}
	}
	if rt := c.Engine.RoomType; rt != "" {
		if layer, ok := c.Thresholds.RoomTypes[rt]; ok {
			layers = append(layers, layer)
		}
	}

	for _, layer := range layers {
		for parameter, byCategory := range layer {
			if resolved[parameter] == nil {
				resolved[parameter] = make(map[domain.Category]domain.Threshold)
			}
			for numeral, bounds := range byCategory {
				cat, ok := categoryNumerals[numeral]
				if !ok {
					return nil, fmt.Errorf("threshold for %q references unknown category %q: %w",
						parameter, numeral, domain.ErrConfiguration)
				}
				if bounds.Lower == nil && bounds.Upper == nil {
					return nil, fmt.Errorf("threshold for %q category %s has no bounds: %w",
						parameter, cat, domain.ErrConfiguration)
				}
				resolved[parameter][cat] = domain.Threshold{
					Lower:    bounds.Lower,
					Upper:    bounds.Upper,
					Unit:     bounds.Unit,
					Category: cat,
				}
			}
		}
	}

	for _, test := range c.Comfort.Tests {
		if len(resolved[test.Parameter]) == 0 {
			return nil, fmt.Errorf("test %q has no resolved thresholds: %w",
				test.Parameter, domain.ErrConfiguration)
		}
	}
	return resolved, nil
}
