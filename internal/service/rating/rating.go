// Package rating maps parameter compliance to TAIL quality bands and
// reduces them to group and overall ratings.
package rating

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// Config holds the rating aggregator configuration. PortfolioPolicy chooses
// how many-space summaries reduce band sets; it has no implicit default and
// must be set explicitly where portfolio reduction is used.
type Config struct {
	PortfolioPolicy domain.AggregationPolicy
}

// Aggregator derives TAIL ratings from per-parameter compliance rates.
type Aggregator struct {
	cfg Config
	log *zap.Logger
}

// NewAggregator creates a rating aggregator.
func NewAggregator(cfg Config, log *zap.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, log: log}
}

// RateSpace classifies every parameter into a band and reduces them to
// group and overall ratings. Both reductions take the worst observed band:
// one badly-performing parameter or group caps the whole result.
// compliance maps quality group -> parameter -> compliance rate in [0,1].
func (a *Aggregator) RateSpace(spaceID string, compliance map[domain.QualityGroup]map[string]float64) (*domain.RatingResult, error) {
	if len(compliance) == 0 {
		return nil, fmt.Errorf("no compliance rates for space %s: %w", spaceID, domain.ErrNoValidData)
	}

	result := &domain.RatingResult{
		SpaceID: spaceID,
		Groups:  make(map[domain.QualityGroup]domain.GroupRating, len(compliance)),
	}

	var groupBands []domain.Band
	for group, params := range compliance {
		gr := domain.GroupRating{Group: group}

		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)

		var bands []domain.Band
		for _, name := range names {
			band := domain.BandFromCompliance(params[name])
			gr.Parameters = append(gr.Parameters, domain.ParameterRating{
				Parameter:      name,
				ComplianceRate: params[name],
				Band:           band,
			})
			bands = append(bands, band)
		}
		gr.Band = domain.WorstBand(bands...)
		result.Groups[group] = gr
		groupBands = append(groupBands, gr.Band)
	}

	result.Overall = domain.WorstBand(groupBands...)
	a.log.Debug("space rated",
		zap.String("space", spaceID),
		zap.String("overall", result.Overall.String()),
	)
	return result, nil
}

// ReduceBands reduces a set of band values under an explicit policy.
// PolicyWorstCase keeps the worst band; PolicyAverage takes the rounded
// mean so one poor outlier cannot dominate a large population. The policy
// is a required configuration choice, never inferred.
func (a *Aggregator) ReduceBands(bands []domain.Band, policy domain.AggregationPolicy) (domain.Band, error) {
	switch policy {
	case domain.PolicyWorstCase:
		return domain.WorstBand(bands...), nil
	case domain.PolicyAverage:
		return domain.AverageBand(bands...), nil
	case "":
		return domain.BandNone, fmt.Errorf("band aggregation policy not set: %w", domain.ErrConfiguration)
	default:
		return domain.BandNone, fmt.Errorf("band aggregation policy %q not supported: %w",
			policy, domain.ErrConfiguration)
	}
}

// PortfolioPolicy returns the configured portfolio reduction policy.
func (a *Aggregator) PortfolioPolicy() domain.AggregationPolicy {
	return a.cfg.PortfolioPolicy
}
