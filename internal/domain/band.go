package domain

import "math"

// Category is an EN16798-style comfort category: I (strictest) through IV.
// CategoryNone means the space achieved no category for a standard.
type Category int

const (
	CategoryNone Category = 0
	CategoryI    Category = 1
	CategoryII   Category = 2
	CategoryIII  Category = 3
	CategoryIV   Category = 4
)

var romanNumerals = map[int]string{1: "I", 2: "II", 3: "III", 4: "IV"}

func (c Category) String() string {
	if s, ok := romanNumerals[int(c)]; ok {
		return s
	}
	return "none"
}

// Categories lists the comfort categories from strictest to loosest.
var Categories = []Category{CategoryI, CategoryII, CategoryIII, CategoryIV}

// Band is a TAIL quality band: I (best) through IV (worst).
type Band int

const (
	BandNone Band = 0
	BandI    Band = 1
	BandII   Band = 2
	BandIII  Band = 3
	BandIV   Band = 4
)

func (b Band) String() string {
	if s, ok := romanNumerals[int(b)]; ok {
		return s
	}
	return "none"
}

// BandFromCompliance maps a compliance rate in [0,1] to a TAIL band:
// I >= 0.95, II >= 0.70, III >= 0.50, IV otherwise. Boundaries are exact.
func BandFromCompliance(rate float64) Band {
	switch {
	case rate >= 0.95:
		return BandI
	case rate >= 0.70:
		return BandII
	case rate >= 0.50:
		return BandIII
	default:
		return BandIV
	}
}

// WorstBand returns the highest-numbered (worst) band, ignoring BandNone.
func WorstBand(bands ...Band) Band {
	worst := BandNone
	for _, b := range bands {
		if b != BandNone && b > worst {
			worst = b
		}
	}
	return worst
}

// AverageBand returns the arithmetic-mean band rounded to the nearest whole
// band, ignoring BandNone entries. Used for portfolio-level summaries where
// a single outlier should not dominate a large population.
func AverageBand(bands ...Band) Band {
	sum, n := 0, 0
	for _, b := range bands {
		if b != BandNone {
			sum += int(b)
			n++
		}
	}
	if n == 0 {
		return BandNone
	}
	return Band(int(math.Round(float64(sum) / float64(n))))
}

// AggregationPolicy selects how children's values roll up into a parent node.
type AggregationPolicy string

const (
	PolicyMean         AggregationPolicy = "mean"
	PolicyAreaWeighted AggregationPolicy = "area_weighted"
	PolicyWorstCase    AggregationPolicy = "worst_case"
	// PolicyAverage applies to band/category metrics only.
	PolicyAverage AggregationPolicy = "average"
)
