package scoring

import (
	"math"

	"github.com/spigell/resume-evaluator/internal/records"
	"github.com/spigell/resume-evaluator/internal/rubric"
)

// Aggregate returns the weighted overall score rounded to two decimals.
// Categories missing from scores contribute zero; callers validate completeness first.
func Aggregate(catalog *rubric.Catalog, scores map[string]float64) float64 {
	total := 0.0
	for _, name := range catalog.Names() {
		weight, _ := catalog.Weight(name)
		total += scores[name] * weight / 100
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AssignTier maps an overall score onto its band. Lower bounds are inclusive.
func AssignTier(score float64) records.Tier {
	switch {
	case score >= 80:
		return records.TierTop
	case score >= 60:
		return records.TierBest
	case score >= 40:
		return records.TierModerate
	case score >= 20:
		return records.TierLow
	default:
		return records.TierVeryLow
	}
}
