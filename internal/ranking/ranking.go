// Package ranking narrows stored evaluations down to the candidates worth
// looking at. Filters run in order and each one logs how many rows it dropped.
package ranking

import (
	"context"
	"fmt"

	"github.com/spigell/resume-evaluator/internal/records"

	"go.uber.org/zap"
)

// Filter represents a single step applied to a list of evaluations.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, evaluations []records.Evaluation) ([]records.Evaluation, Step, error)
}

// Step describes the result of executing a filter.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Options are the user facing knobs of the results listing.
type Options struct {
	Tier     records.Tier
	MinScore float64
	Top      int
	// All lists every remaining candidate instead of the top N.
	All bool
}

// Steps returns the standard pipeline: tier, then minimum score, then top N.
func Steps(opts Options) []Filter {
	steps := []Filter{
		NewTier(opts.Tier),
		NewMinScore(opts.MinScore),
		NewTop(opts.Top),
	}
	if opts.All {
		DisableByName(steps, TopName, "all candidates requested")
	}
	return steps
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled filter before applying any of them. The result
// is ranked by overall score and the input slice is never modified.
func Run(ctx context.Context, log *zap.Logger, steps []Filter, evaluations []records.Evaluation) ([]records.Evaluation, error) {
	if log == nil {
		log = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	current := append([]records.Evaluation(nil), evaluations...)
	rank(current)
	for _, step := range steps {
		if !step.IsEnabled() {
			log.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		log.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		current = next
	}

	return current, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func keep(evaluations []records.Evaluation, fn func(records.Evaluation) bool) ([]records.Evaluation, Step) {
	out := make([]records.Evaluation, 0, len(evaluations))
	for _, e := range evaluations {
		if fn(e) {
			out = append(out, e)
		}
	}
	return out, Step{Initial: len(evaluations), Dropped: len(evaluations) - len(out), Left: len(out)}
}
