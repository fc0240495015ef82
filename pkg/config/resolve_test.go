package config

import (
	"errors"
	"testing"

	"github.com/bruadam/hvx-engine/internal/domain"
)

func f(v float64) *float64 { return &v }

func layeredConfig() *Config {
	return &Config{
		Engine: EngineConfig{BuildingType: "office", RoomType: "meeting_room"},
		Comfort: ComfortConfig{Tests: []TestConfig{
			{Parameter: "operative_temperature", Quantity: "temperature"},
			{Parameter: "co2", Quantity: "co2"},
		}},
		Thresholds: ThresholdsConfig{
			Defaults: map[string]CategoryBounds{
				"operative_temperature": {
					"I":  {Lower: f(21), Upper: f(23)},
					"II": {Lower: f(20), Upper: f(24)},
				},
				"co2": {
					"II": {Upper: f(1000), Unit: "ppm"},
				},
			},
			BuildingTypes: map[string]map[string]CategoryBounds{
				"office": {
					"co2": {"II": {Upper: f(900), Unit: "ppm"}},
				},
			},
			RoomTypes: map[string]map[string]CategoryBounds{
				"meeting_room": {
					"co2": {"II": {Upper: f(800), Unit: "ppm"}},
				},
			},
		},
	}
}

func TestResolveOverrideChain(t *testing.T) {
	resolved, err := layeredConfig().Resolve()
	if err != nil {
		t.Fatal(err)
	}

	// room type beats building type beats defaults
	co2 := resolved["co2"][domain.CategoryII]
	if co2.Upper == nil || *co2.Upper != 800 {
		t.Errorf("co2 II upper = %v, want room-type override 800", co2.Upper)
	}

	// untouched defaults survive
	temp := resolved["operative_temperature"][domain.CategoryI]
	if temp.Lower == nil || *temp.Lower != 21 || *temp.Upper != 23 {
		t.Errorf("temperature I = %+v, want default [21, 23]", temp)
	}
	if temp.Category != domain.CategoryI {
		t.Errorf("category = %s, want I", temp.Category)
	}
}

func TestResolveBuildingTypeOnly(t *testing.T) {
	cfg := layeredConfig()
	cfg.Engine.RoomType = ""

	resolved, err := cfg.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	co2 := resolved["co2"][domain.CategoryII]
	if co2.Upper == nil || *co2.Upper != 900 {
		t.Errorf("co2 II upper = %v, want building-type override 900", co2.Upper)
	}
}

func TestResolveUnknownTypesFallBackToDefaults(t *testing.T) {
	cfg := layeredConfig()
	cfg.Engine.BuildingType = "warehouse"
	cfg.Engine.RoomType = "loading_dock"

	resolved, err := cfg.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	co2 := resolved["co2"][domain.CategoryII]
	if co2.Upper == nil || *co2.Upper != 1000 {
		t.Errorf("co2 II upper = %v, want default 1000", co2.Upper)
	}
}

func TestResolveUnknownCategoryNumeral(t *testing.T) {
	cfg := layeredConfig()
	cfg.Thresholds.Defaults["co2"]["V"] = BoundConfig{Upper: f(1200)}

	if _, err := cfg.Resolve(); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestResolveEmptyBounds(t *testing.T) {
	cfg := layeredConfig()
	cfg.Thresholds.Defaults["co2"]["II"] = BoundConfig{}

	if _, err := cfg.Resolve(); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestResolveTestWithoutThresholds(t *testing.T) {
	cfg := layeredConfig()
	cfg.Comfort.Tests = append(cfg.Comfort.Tests, TestConfig{Parameter: "noise", Quantity: "noise"})

	if _, err := cfg.Resolve(); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}
