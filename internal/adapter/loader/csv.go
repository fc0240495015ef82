// Package loader reads measurement series and the spatial hierarchy from
// CSV files. It is the data-loading collaborator in front of the engine;
// the engine itself only sees the in-memory structures.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
	"github.com/bruadam/hvx-engine/internal/ports"
)

const (
	spacesFile  = "spaces.csv"
	outdoorFile = "outdoor.csv"
)

// CSVLoader implements ports.Loader over a directory of CSV files:
//
//	spaces.csv                          id,name,type,building_type,room_type,area_m2,volume_m3,parent
//	outdoor.csv                         timestamp,value (outdoor temperature)
//	<space id>__<quantity>.csv          timestamp,value; a blank value is a gap
type CSVLoader struct {
	dir string
	log *zap.Logger
}

// NewCSVLoader creates a loader rooted at dir.
func NewCSVLoader(dir string, log *zap.Logger) *CSVLoader {
	return &CSVLoader{dir: dir, log: log}
}

// Load reads the hierarchy, the outdoor series and every space series.
func (l *CSVLoader) Load(ctx context.Context) (*ports.AnalysisInput, error) {
	spaces, roots, err := l.loadSpaces()
	if err != nil {
		return nil, err
	}

	input := &ports.AnalysisInput{Spaces: spaces, Roots: roots}

	if outdoor, err := l.loadSeries(filepath.Join(l.dir, outdoorFile)); err == nil {
		input.Outdoor = outdoor
		for _, dm := range outdoor.DailyMeans() {
			input.OutdoorDaily = append(input.OutdoorDaily, dm.Mean)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := l.attachSeries(spaces); err != nil {
		return nil, err
	}

	l.log.Info("data loaded",
		zap.Int("spaces", len(spaces)),
		zap.Int("roots", len(roots)),
		zap.Int("outdoor_days", len(input.OutdoorDaily)),
	)
	return input, nil
}

func (l *CSVLoader) loadSpaces() (map[string]*domain.Space, []string, error) {
	records, err := readCSV(filepath.Join(l.dir, spacesFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", spacesFile, err)
	}

	spaces := make(map[string]*domain.Space)
	parents := make(map[string]string)
	var order []string
	for i, rec := range records {
		if i == 0 && rec[0] == "id" {
			continue // header
		}
		if len(rec) < 8 {
			return nil, nil, fmt.Errorf("%s line %d: expected 8 columns, got %d", spacesFile, i+1, len(rec))
		}
		space := domain.NewSpace(rec[0], rec[1], domain.SpaceType(rec[2]))
		space.BuildingType = rec[3]
		space.RoomType = rec[4]
		if space.AreaM2, err = parseOptionalFloat(rec[5]); err != nil {
			return nil, nil, fmt.Errorf("%s line %d: area: %w", spacesFile, i+1, err)
		}
		if space.VolumeM3, err = parseOptionalFloat(rec[6]); err != nil {
			return nil, nil, fmt.Errorf("%s line %d: volume: %w", spacesFile, i+1, err)
		}
		if rec[7] != "" {
			parents[space.ID] = rec[7]
		}
		spaces[space.ID] = space
		order = append(order, space.ID)
	}

	var roots []string
	for _, id := range order {
		parent, hasParent := parents[id]
		if !hasParent {
			roots = append(roots, id)
			continue
		}
		p, ok := spaces[parent]
		if !ok {
			return nil, nil, fmt.Errorf("space %q references unknown parent %q: %w",
				id, parent, domain.ErrConfiguration)
		}
		p.Children = append(p.Children, id)
	}
	return spaces, roots, nil
}

// attachSeries walks the data directory for "<space id>__<quantity>.csv"
// files and attaches each series to its space. Files for unknown spaces
// are skipped with a warning.
func (l *CSVLoader) attachSeries(spaces map[string]*domain.Space) error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read data dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") || !strings.Contains(name, "__") {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(name, ".csv"), "__", 2)
		space, ok := spaces[parts[0]]
		if !ok {
			l.log.Warn("series file for unknown space skipped", zap.String("file", name))
			continue
		}
		series, err := l.loadSeries(filepath.Join(l.dir, name))
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		space.SetSeries(parts[1], series)
	}
	return nil
}

func (l *CSVLoader) loadSeries(path string) (*domain.Series, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	var points []domain.Point
	for i, rec := range records {
		if i == 0 && rec[0] == "timestamp" {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: expected timestamp,value", i+1)
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		value := math.NaN() // blank value stays a gap, never zero
		if rec[1] != "" {
			if value, err = strconv.ParseFloat(rec[1], 64); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
		}
		points = append(points, domain.Point{Time: ts, Value: value})
	}
	return domain.NewSeries(points)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
