package records

import (
	"fmt"
	"strings"
)

type ReviewStatus string

const (
	NotReviewed ReviewStatus = "NOT_REVIEWED"
	Reviewed    ReviewStatus = "REVIEWED"
)

type Tier string

const (
	TierTop      Tier = "TOP"
	TierBest     Tier = "BEST"
	TierModerate Tier = "MODERATE"
	TierLow      Tier = "LOW"
	TierVeryLow  Tier = "VERY_LOW"

	// TierAll is accepted by listings as "no tier filter"; it is never assigned.
	TierAll Tier = "ALL"
)

// Tiers lists assignable tiers from best to worst.
func Tiers() []Tier {
	return []Tier{TierTop, TierBest, TierModerate, TierLow, TierVeryLow}
}

// ParseTier accepts tier names case-insensitively, with spaces or dashes in place of underscores.
func ParseTier(value string) (Tier, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	if normalized == "" || Tier(normalized) == TierAll {
		return TierAll, nil
	}

	for _, tier := range Tiers() {
		if Tier(normalized) == tier {
			return tier, nil
		}
	}

	return "", fmt.Errorf("unknown tier %q", value)
}
