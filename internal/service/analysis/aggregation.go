package analysis

import (
	"fmt"

	"github.com/bruadam/hvx-engine/internal/domain"
	"github.com/bruadam/hvx-engine/internal/ports"
)

// Continuous metrics rolled up through the hierarchy.
const (
	MetricACH           = "ach"
	MetricOccupancyRate = "occupancy_rate"
)

// aggregateNode walks the hierarchy bottom-up. Children are combined in
// their fixed enumeration order, so the fan-in is deterministic regardless
// of completion order. A parent whose children contributed nothing for a
// metric gets an explicit unavailable marker, never a silent zero.
func (o *Orchestrator) aggregateNode(input *ports.AnalysisInput, result *domain.RunResult, nodeID string) error {
	space, ok := input.Spaces[nodeID]
	if !ok {
		return fmt.Errorf("hierarchy references unknown space %q: %w", nodeID, domain.ErrConfiguration)
	}
	if len(space.Children) == 0 {
		// Leaf results live in result.Spaces already.
		return nil
	}

	for _, child := range space.Children {
		if err := o.aggregateNode(input, result, child); err != nil {
			return err
		}
	}

	agg := &domain.AggregatedResult{
		NodeID:   nodeID,
		NodeType: space.Type,
		Metrics:  make(map[string]domain.AggregatedMetric),
	}

	for _, metric := range []string{MetricACH, MetricOccupancyRate} {
		combined, err := o.combineMetric(input, result, space, metric)
		if err != nil {
			return err
		}
		agg.Metrics[metric] = combined
	}

	o.combineCategories(result, space, agg)
	if err := o.combineRatings(result, space, agg); err != nil {
		return err
	}

	result.Aggregates[nodeID] = agg
	return nil
}

// combineMetric reduces one continuous metric over the node's children
// under the configured policy (area-weighted mean by default).
func (o *Orchestrator) combineMetric(input *ports.AnalysisInput, result *domain.RunResult, space *domain.Space, metric string) (domain.AggregatedMetric, error) {
	policy, err := o.metricPolicy(metric)
	if err != nil {
		return domain.AggregatedMetric{}, err
	}

	var sum, weightSum float64
	contributed := 0
	for _, childID := range space.Children {
		value, ok := o.metricValue(result, childID, metric)
		if !ok {
			continue
		}
		weight := 1.0
		if policy == domain.PolicyAreaWeighted {
			weight = nodeArea(input, childID)
			if weight <= 0 {
				weight = 1
			}
		}
		sum += value * weight
		weightSum += weight
		contributed++
	}

	out := domain.AggregatedMetric{Policy: policy, Children: contributed}
	if contributed == 0 || weightSum == 0 {
		return out, nil
	}
	out.Value = sum / weightSum
	out.Available = true
	return out, nil
}

// metricPolicy resolves the reduction policy for a continuous metric.
// Only mean and area-weighted apply to continuous values; anything else
// configured is rejected, never reinterpreted.
func (o *Orchestrator) metricPolicy(metric string) (domain.AggregationPolicy, error) {
	p, ok := o.cfg.MetricPolicies[metric]
	if !ok {
		return domain.PolicyAreaWeighted, nil
	}
	switch p {
	case domain.PolicyMean, domain.PolicyAreaWeighted:
		return p, nil
	default:
		return "", fmt.Errorf("metric %q aggregation policy %q not supported: %w",
			metric, p, domain.ErrConfiguration)
	}
}

// metricValue extracts a metric from a leaf result or a child aggregate.
func (o *Orchestrator) metricValue(result *domain.RunResult, childID, metric string) (float64, bool) {
	if agg, ok := result.Aggregates[childID]; ok {
		m, exists := agg.Metrics[metric]
		return m.Value, exists && m.Available
	}
	sr, ok := result.Spaces[childID]
	if !ok {
		return 0, false
	}
	switch metric {
	case MetricACH:
		if sr.Ventilation != nil {
			return sr.Ventilation.ACH, true
		}
	case MetricOccupancyRate:
		if sr.Occupancy != nil {
			return sr.Occupancy.Rate, true
		}
	}
	return 0, false
}

// combineCategories reduces children's achieved categories. Under the
// worst-case policy a contributing child with no achieved category pulls
// the parent to "none"; under the average policy unrated children are
// skipped.
func (o *Orchestrator) combineCategories(result *domain.RunResult, space *domain.Space, agg *domain.AggregatedResult) {
	policy := o.cfg.CategoryPolicy
	if policy == "" {
		policy = domain.PolicyWorstCase
	}

	var categories []domain.Category
	for _, childID := range space.Children {
		if childAgg, ok := result.Aggregates[childID]; ok {
			if childAgg.CategoryAvailable {
				categories = append(categories, childAgg.Category)
			}
			continue
		}
		if sr, ok := result.Spaces[childID]; ok && sr.Category != nil {
			categories = append(categories, sr.Category.Achieved)
		}
	}
	if len(categories) == 0 {
		agg.CategoryAvailable = false
		return
	}

	switch policy {
	case domain.PolicyAverage:
		sum, n := 0, 0
		for _, c := range categories {
			if c != domain.CategoryNone {
				sum += int(c)
				n++
			}
		}
		if n == 0 {
			agg.Category = domain.CategoryNone
		} else {
			agg.Category = domain.Category((sum + n/2) / n)
		}
	default: // worst case
		worst := domain.CategoryI
		for _, c := range categories {
			if c == domain.CategoryNone {
				worst = domain.CategoryNone
				break
			}
			if c > worst {
				worst = c
			}
		}
		agg.Category = worst
	}
	agg.CategoryAvailable = true
}

// combineRatings reduces children's overall TAIL bands under the
// configured policy.
func (o *Orchestrator) combineRatings(result *domain.RunResult, space *domain.Space, agg *domain.AggregatedResult) error {
	policy := o.cfg.RatingPolicy
	if policy == "" {
		policy = domain.PolicyWorstCase
	}
	agg.RatingPolicy = policy

	var bands []domain.Band
	for _, childID := range space.Children {
		if childAgg, ok := result.Aggregates[childID]; ok {
			if childAgg.RatingAvailable {
				bands = append(bands, childAgg.Rating)
			}
			continue
		}
		if sr, ok := result.Spaces[childID]; ok && sr.Rating != nil {
			bands = append(bands, sr.Rating.Overall)
		}
	}
	if len(bands) == 0 {
		agg.RatingAvailable = false
		return nil
	}

	band, err := o.rating.ReduceBands(bands, policy)
	if err != nil {
		return err
	}
	agg.Rating = band
	agg.RatingAvailable = true
	return nil
}

// nodeArea returns a node's floor area, falling back to the sum of its
// children's areas for nodes without one of their own.
func nodeArea(input *ports.AnalysisInput, nodeID string) float64 {
	space, ok := input.Spaces[nodeID]
	if !ok {
		return 0
	}
	if space.AreaM2 > 0 {
		return space.AreaM2
	}
	var sum float64
	for _, child := range space.Children {
		sum += nodeArea(input, child)
	}
	return sum
}
