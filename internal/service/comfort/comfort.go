// Package comfort evaluates category-based comfort (EN16798 style) with
// fixed or outdoor-adaptive temperature thresholds.
package comfort

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
	"github.com/bruadam/hvx-engine/internal/service/threshold"
)

// ParameterTest is one configured comfort test. Thresholds holds the fixed
// bounds per category; for an adaptive test they double as the fallback
// when the adaptive model does not apply.
type ParameterTest struct {
	Parameter  string
	Quantity   string
	Adaptive   bool
	Thresholds map[domain.Category]domain.Threshold
}

// Config holds the comfort calculator configuration, resolved from the
// hierarchical override chain before the run starts.
type Config struct {
	Alpha        float64 // running-mean decay constant
	RequiredRate float64 // compliance rate each test must reach
	MinRunLength int     // sustained-excursion run length
	Tests        []ParameterTest
}

// DefaultConfig returns a configuration with standard constants and no
// tests; tests come from the resolved run configuration.
func DefaultConfig() *Config {
	return &Config{
		Alpha:        DefaultAlpha,
		RequiredRate: 0.95,
		MinRunLength: 3,
	}
}

// Calculator evaluates category achievement for a space.
type Calculator struct {
	cfg *Config
	log *zap.Logger
}

// NewCalculator creates a comfort calculator.
func NewCalculator(cfg *Config, log *zap.Logger) *Calculator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Calculator{cfg: cfg, log: log}
}

// EvaluateCategories runs every configured test for categories I through IV
// and determines the best category the space achieves. outdoorDaily is the
// chronological daily-mean outdoor temperature history; it is only required
// when an adaptive test is configured.
//
// A space that passes no category is unrated, not an error. A configured
// test whose series is absent or empty is an error: "not computed" must
// never be reported as "non-compliant".
func (c *Calculator) EvaluateCategories(space *domain.Space, outdoorDaily []float64) (*domain.CategoryResult, error) {
	if len(c.cfg.Tests) == 0 {
		return nil, fmt.Errorf("no comfort tests configured: %w", domain.ErrConfiguration)
	}

	trm, trmErr := c.runningMean(outdoorDaily)

	result := &domain.CategoryResult{SpaceID: space.ID, Achieved: domain.CategoryNone}
	for _, cat := range domain.Categories {
		evaluated := 0
		allPassed := true
		for _, test := range c.cfg.Tests {
			tr, ok, err := c.evaluateTest(space, test, cat, trm, trmErr)
			if err != nil {
				return nil, fmt.Errorf("category %s, test %s: %w", cat, test.Parameter, err)
			}
			if !ok {
				// No threshold defined for this test at this category;
				// the test does not constrain it.
				continue
			}
			evaluated++
			result.Tests = append(result.Tests, tr)
			if !tr.Passed {
				allPassed = false
			}
		}
		// A category with no evaluable test cannot be achieved.
		if evaluated > 0 && allPassed && result.Achieved == domain.CategoryNone {
			result.Achieved = cat
		}
	}

	c.log.Debug("category evaluation finished",
		zap.String("space", space.ID),
		zap.String("achieved", result.Achieved.String()),
	)
	return result, nil
}

// runningMean computes T_rm once per evaluation; the error is deferred
// until an adaptive test actually needs the value.
func (c *Calculator) runningMean(outdoorDaily []float64) (float64, error) {
	if len(outdoorDaily) == 0 {
		return 0, domain.ErrInsufficientHistory
	}
	return RunningMeanOutdoor(outdoorDaily, c.cfg.Alpha)
}

// evaluateTest evaluates one test against one category. The second return
// is false when the test defines no threshold at this category and so does
// not constrain it.
func (c *Calculator) evaluateTest(space *domain.Space, test ParameterTest, cat domain.Category, trm float64, trmErr error) (domain.CategoryTestResult, bool, error) {
	series := space.Series(test.Quantity)
	if series == nil {
		return domain.CategoryTestResult{}, false, fmt.Errorf("no %q series: %w", test.Quantity, domain.ErrNoValidData)
	}

	th, source, ok, err := c.resolveThreshold(test, cat, trm, trmErr)
	if err != nil || !ok {
		return domain.CategoryTestResult{}, false, err
	}

	eval, err := threshold.Evaluate(series, th, threshold.Options{
		RequiredRate: c.cfg.RequiredRate,
		MinRunLength: c.cfg.MinRunLength,
	})
	if err != nil {
		return domain.CategoryTestResult{}, false, err
	}

	return domain.CategoryTestResult{
		Parameter:      test.Parameter,
		Category:       cat,
		ComplianceRate: eval.Rate,
		Violations:     len(eval.Violations),
		Passed:         eval.Compliant,
		Source:         source,
	}, true, nil
}

// resolveThreshold picks the adaptive band when the test is adaptive and
// the model applies, and otherwise the fixed threshold for the category.
// The fallback is reported through the returned source, never silently.
// A category with no threshold from either route resolves to ok=false.
func (c *Calculator) resolveThreshold(test ParameterTest, cat domain.Category, trm float64, trmErr error) (domain.Threshold, domain.ThresholdSource, bool, error) {
	fixed, haveFixed := test.Thresholds[cat]

	if !test.Adaptive {
		if !haveFixed {
			return domain.Threshold{}, "", false, nil
		}
		return fixed, domain.SourceFixed, true, nil
	}

	if trmErr != nil {
		// Adaptive test with no usable history is a hard error per the
		// running-mean contract.
		return domain.Threshold{}, "", false, trmErr
	}

	th, err := AdaptiveBand(trm, cat)
	if err == nil {
		return th, domain.SourceAdaptive, true, nil
	}
	if errors.Is(err, ErrOutsideAdaptiveRange) {
		if !haveFixed {
			return domain.Threshold{}, "", false, nil
		}
		c.log.Debug("adaptive model out of range, using fixed fallback",
			zap.Float64("trm", trm),
			zap.String("parameter", test.Parameter),
		)
		return fixed, domain.SourceAdaptiveFallback, true, nil
	}
	return domain.Threshold{}, "", false, err
}
