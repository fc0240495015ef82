package domain

import "errors"

// Calculator error taxonomy. The orchestrator records these per space and
// per calculator; they never abort a run for other spaces or calculators.
var (
	// ErrInsufficientData: too few valid points for a statistic.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoValidData: zero valid points for a threshold check.
	ErrNoValidData = errors.New("no valid data")

	// ErrInsufficientHistory: adaptive comfort is missing the required
	// outdoor-temperature history.
	ErrInsufficientHistory = errors.New("insufficient outdoor temperature history")

	// ErrUnstableTimestep: thermal simulation configuration violates the
	// stability bound of the RC network.
	ErrUnstableTimestep = errors.New("unstable simulation timestep")

	// ErrNoQualifyingEpisode: the ventilation estimator found no usable
	// CO2 decay episode.
	ErrNoQualifyingEpisode = errors.New("no qualifying decay episode")

	// ErrConfiguration: a referenced threshold, category or parameter is
	// not defined.
	ErrConfiguration = errors.New("invalid configuration")
)
