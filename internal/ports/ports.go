// Package ports defines the engine's boundary interfaces. The engine
// consumes and produces plain data structures; loading and reporting are
// external collaborators behind these contracts.
package ports

import (
	"context"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// AnalysisInput is everything a run needs: the spaces keyed by ID, the
// hierarchy roots (children are listed on each space), the shared outdoor
// temperature series and the chronological daily-mean outdoor history for
// adaptive comfort.
type AnalysisInput struct {
	Spaces       map[string]*domain.Space
	Roots        []string
	Outdoor      *domain.Series
	OutdoorDaily []float64
}

// Loader supplies measurement data and the spatial hierarchy at analysis
// start. Series are read-only afterwards.
type Loader interface {
	Load(ctx context.Context) (*AnalysisInput, error)
}

// ResultSink receives the completed run result for reporting.
type ResultSink interface {
	Publish(ctx context.Context, result *domain.RunResult) error
}

// ResultCache memoizes per-space results within a single run so the
// orchestrator never recomputes a space's calculators. Implementations
// hold no state across runs.
type ResultCache interface {
	Get(runID, spaceID string) (*domain.SpaceResult, bool)
	Put(runID, spaceID string, result *domain.SpaceResult)
	// DropRun releases a finished run's entries.
	DropRun(runID string)
}
