package ranking

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spigell/resume-evaluator/internal/records"
)

// DefaultTop is the listing size used when no limit is requested.
const DefaultTop = 5

const (
	TierName     = "tier"
	MinScoreName = "min_score"
	TopName      = "top"
)

type tierFilter struct {
	tier     records.Tier
	disabled bool
	reason   string
}

// NewTier keeps evaluations of a single tier. TierAll and the empty tier keep everything.
func NewTier(tier records.Tier) Filter {
	f := &tierFilter{tier: tier}
	if tier == "" || tier == records.TierAll {
		f.tier = records.TierAll
		f.Disable("all tiers requested")
	}
	return f
}

func (f *tierFilter) Name() string { return TierName }

func (f *tierFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *tierFilter) IsEnabled() bool { return !f.disabled }

func (f *tierFilter) Validate() error {
	tier, err := records.ParseTier(string(f.tier))
	if err != nil {
		return err
	}
	f.tier = tier
	return nil
}

func (f *tierFilter) Apply(_ context.Context, evaluations []records.Evaluation) ([]records.Evaluation, Step, error) {
	out, step := keep(evaluations, func(e records.Evaluation) bool { return e.Tier == f.tier })
	return out, step, nil
}

func (f *tierFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"tier": string(f.tier)},
	}
}

type minScoreFilter struct {
	min      float64
	disabled bool
	reason   string
}

// NewMinScore keeps evaluations whose overall score is at least min.
func NewMinScore(min float64) Filter {
	f := &minScoreFilter{min: min}
	if min == 0 {
		f.Disable("no minimum score")
	}
	return f
}

func (f *minScoreFilter) Name() string { return MinScoreName }

func (f *minScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minScoreFilter) Validate() error {
	if f.min < 0 || f.min > 100 {
		return fmt.Errorf("minimum score %.2f is outside 0-100", f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, evaluations []records.Evaluation) ([]records.Evaluation, Step, error) {
	out, step := keep(evaluations, func(e records.Evaluation) bool { return e.OverallScore >= f.min })
	return out, step, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.FormatFloat(f.min, 'f', 2, 64)},
	}
}

type topFilter struct {
	limit    int
	disabled bool
	reason   string
}

// NewTop sorts by overall score (highest first, earlier evaluation wins ties)
// and keeps the first limit rows. A zero limit means DefaultTop.
func NewTop(limit int) Filter {
	if limit == 0 {
		limit = DefaultTop
	}
	return &topFilter{limit: limit}
}

func (f *topFilter) Name() string { return TopName }

func (f *topFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *topFilter) IsEnabled() bool { return !f.disabled }

func (f *topFilter) Validate() error {
	if f.limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", f.limit)
	}
	return nil
}

func (f *topFilter) Apply(_ context.Context, evaluations []records.Evaluation) ([]records.Evaluation, Step, error) {
	out := append([]records.Evaluation(nil), evaluations...)
	rank(out)

	if len(out) > f.limit {
		out = out[:f.limit]
	}

	return out, Step{Initial: len(evaluations), Dropped: len(evaluations) - len(out), Left: len(out)}, nil
}

func (f *topFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"limit": strconv.Itoa(f.limit)},
	}
}

// rank orders evaluations by overall score, highest first. Earlier
// evaluations win ties.
func rank(evaluations []records.Evaluation) {
	sort.SliceStable(evaluations, func(i, j int) bool {
		if evaluations[i].OverallScore != evaluations[j].OverallScore {
			return evaluations[i].OverallScore > evaluations[j].OverallScore
		}
		return evaluations[i].EvaluatedAt.Before(evaluations[j].EvaluatedAt)
	})
}
