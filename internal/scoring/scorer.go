// Package scoring evaluates a resume against a job description with the
// generator and turns per-category scores into an overall score and tier.
package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/resume-evaluator/internal/extraction"
	"github.com/spigell/resume-evaluator/internal/records"
	"github.com/spigell/resume-evaluator/internal/rubric"
)

type Outcome struct {
	RubricVersion        string
	CategoryScores       map[string]float64
	CategoryExplanations map[string]string
	OverallScore         float64
	Tier                 records.Tier
}

type Scorer struct {
	protocol *extraction.Protocol
	catalog  *rubric.Catalog
}

func NewScorer(protocol *extraction.Protocol, catalog *rubric.Catalog) *Scorer {
	if catalog == nil {
		catalog = rubric.Default()
	}
	return &Scorer{protocol: protocol, catalog: catalog}
}

func (s *Scorer) Catalog() *rubric.Catalog { return s.catalog }

// Score masks the resume, asks the generator for category scores and
// aggregates them. Incomplete or out-of-range output is retried once and
// then reported as a *extraction.FailedError.
func (s *Scorer) Score(ctx context.Context, jd *records.JobDescription, resume *records.Resume) (*Outcome, error) {
	if jd == nil {
		return nil, errors.New("job description is required")
	}
	if resume == nil {
		return nil, errors.New("resume is required")
	}

	prompt, err := BuildPrompt(s.catalog, jd, Mask(resume))
	if err != nil {
		return nil, err
	}

	var outcome *Outcome
	_, err = s.protocol.Run(ctx, extraction.StageScoring, prompt, func(doc map[string]any) error {
		parsed, err := s.parse(doc)
		if err != nil {
			return err
		}
		outcome = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.OverallScore = Aggregate(s.catalog, outcome.CategoryScores)
	outcome.Tier = AssignTier(outcome.OverallScore)

	return outcome, nil
}

// parse requires every rubric category; categories the rubric does not know are dropped.
func (s *Scorer) parse(doc map[string]any) (*Outcome, error) {
	outcome := &Outcome{
		RubricVersion:        s.catalog.Version(),
		CategoryScores:       make(map[string]float64, s.catalog.Len()),
		CategoryExplanations: make(map[string]string, s.catalog.Len()),
	}

	for _, name := range s.catalog.Names() {
		value, ok := doc[name]
		if !ok || value == nil {
			return nil, fmt.Errorf("missing category %q", name)
		}

		entry, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("category %q: expected an object", name)
		}

		score, ok := entry["score"].(float64)
		if !ok {
			return nil, fmt.Errorf("category %q: score must be a number", name)
		}
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("category %q: score %v out of range [0, 100]", name, score)
		}

		explanation := ""
		if raw, present := entry["explanation"]; present && raw != nil {
			text, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("category %q: explanation must be a string", name)
			}
			explanation = text
		}

		outcome.CategoryScores[name] = score
		outcome.CategoryExplanations[name] = explanation
	}

	return outcome, nil
}
