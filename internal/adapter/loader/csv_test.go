package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "spaces.csv", `id,name,type,building_type,room_type,area_m2,volume_m3,parent
building-1,Main,building,office,,,,
room-1,Open Space,room,office,open_office,100,300,building-1
room-2,Meeting,room,office,meeting,50,150,building-1
`)
	writeFile(t, dir, "outdoor.csv", `timestamp,value
2026-03-01T00:00:00Z,8
2026-03-01T12:00:00Z,12
2026-03-02T00:00:00Z,9
2026-03-02T12:00:00Z,11
`)
	writeFile(t, dir, "room-1__temperature.csv", `timestamp,value
2026-03-01T00:00:00Z,21.5
2026-03-01T01:00:00Z,
2026-03-01T02:00:00Z,22.0
2026-03-01T03:00:00Z,22.5
`)
	writeFile(t, dir, "room-2__co2.csv", `timestamp,value
2026-03-01T00:00:00Z,450
2026-03-01T01:00:00Z,600
`)
	return dir
}

func TestLoad(t *testing.T) {
	l := NewCSVLoader(fixtureDir(t), zap.NewNop())

	input, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(input.Roots) != 1 || input.Roots[0] != "building-1" {
		t.Fatalf("Roots = %v, want [building-1]", input.Roots)
	}
	building := input.Spaces["building-1"]
	if len(building.Children) != 2 || building.Children[0] != "room-1" || building.Children[1] != "room-2" {
		t.Fatalf("children = %v, want file order [room-1 room-2]", building.Children)
	}

	room1 := input.Spaces["room-1"]
	if room1.AreaM2 != 100 || room1.VolumeM3 != 300 {
		t.Errorf("room-1 area/volume = %v/%v", room1.AreaM2, room1.VolumeM3)
	}
	if room1.RoomType != "open_office" {
		t.Errorf("room-1 room type = %q", room1.RoomType)
	}

	temps := room1.Series(domain.QuantityTemperature)
	if temps == nil {
		t.Fatal("room-1 temperature series not attached")
	}
	if temps.Len() != 4 {
		t.Fatalf("temperature Len = %d, want 4 (gap included)", temps.Len())
	}
	if !temps.At(1).Missing() {
		t.Error("blank value must load as a gap, never as zero")
	}
	if got := len(temps.Valid()); got != 3 {
		t.Errorf("valid points = %d, want 3", got)
	}

	if input.Spaces["room-2"].Series(domain.QuantityCO2) == nil {
		t.Error("room-2 co2 series not attached")
	}

	if input.Outdoor == nil {
		t.Fatal("outdoor series not loaded")
	}
	if len(input.OutdoorDaily) != 2 {
		t.Fatalf("OutdoorDaily = %v, want two daily means", input.OutdoorDaily)
	}
	if input.OutdoorDaily[0] != 10 || input.OutdoorDaily[1] != 10 {
		t.Errorf("OutdoorDaily = %v, want [10 10]", input.OutdoorDaily)
	}
}

func TestLoadWithoutOutdoorFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spaces.csv", `id,name,type,building_type,room_type,area_m2,volume_m3,parent
room-1,Solo,room,,,20,60,
`)

	input, err := NewCSVLoader(dir, zap.NewNop()).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if input.Outdoor != nil || len(input.OutdoorDaily) != 0 {
		t.Error("missing outdoor file should simply leave the outdoor series empty")
	}
}

func TestLoadUnknownParent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spaces.csv", `id,name,type,building_type,room_type,area_m2,volume_m3,parent
room-1,Orphan,room,,,20,60,missing
`)

	if _, err := NewCSVLoader(dir, zap.NewNop()).Load(context.Background()); err == nil {
		t.Fatal("expected an error for an unknown parent")
	}
}

func TestLoadSkipsSeriesForUnknownSpace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spaces.csv", `id,name,type,building_type,room_type,area_m2,volume_m3,parent
room-1,Solo,room,,,20,60,
`)
	writeFile(t, dir, "ghost__co2.csv", `timestamp,value
2026-03-01T00:00:00Z,450
`)

	if _, err := NewCSVLoader(dir, zap.NewNop()).Load(context.Background()); err != nil {
		t.Fatalf("unknown-space series must be skipped, got %v", err)
	}
}

func TestLoadMissingSpacesFile(t *testing.T) {
	if _, err := NewCSVLoader(t.TempDir(), zap.NewNop()).Load(context.Background()); err == nil {
		t.Fatal("expected an error without spaces.csv")
	}
}
