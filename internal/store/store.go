// Package store persists job descriptions, resumes, evaluations and file
// fingerprints.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/spigell/resume-evaluator/internal/guard"
	"github.com/spigell/resume-evaluator/internal/records"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyReviewed is returned by CompleteReview when the resume is no
	// longer NOT_REVIEWED. No evaluation is written in that case.
	ErrAlreadyReviewed = errors.New("resume already reviewed")
)

type Store interface {
	guard.Store

	SaveJobDescription(ctx context.Context, jd *records.JobDescription) error
	GetJobDescription(ctx context.Context, id string) (*records.JobDescription, error)
	ListJobDescriptions(ctx context.Context) ([]*records.JobDescription, error)

	SaveResume(ctx context.Context, resume *records.Resume) error
	GetResume(ctx context.Context, id string) (*records.Resume, error)
	ListResumes(ctx context.Context, jdID string) ([]*records.Resume, error)
	ListUnreviewedResumes(ctx context.Context, jdID string) ([]*records.Resume, error)

	// CompleteReview flips the resume from NOT_REVIEWED to REVIEWED and inserts
	// the evaluation atomically.
	CompleteReview(ctx context.Context, evaluation *records.Evaluation) error
	// ListEvaluations returns evaluations ordered by overall score, best first.
	ListEvaluations(ctx context.Context, jdID string) ([]*records.Evaluation, error)
}

func prepareJobDescription(jd *records.JobDescription, now time.Time) {
	if jd.ID == "" {
		jd.ID = uuid.NewString()
	}
	if jd.CreatedAt.IsZero() {
		jd.CreatedAt = now
	}
}

func prepareResume(resume *records.Resume, now time.Time) error {
	if strings.TrimSpace(resume.JDID) == "" {
		return errors.New("resume must reference a job description")
	}
	if resume.ID == "" {
		resume.ID = uuid.NewString()
	}
	if resume.CreatedAt.IsZero() {
		resume.CreatedAt = now
	}
	resume.Status = records.NotReviewed
	return nil
}

func prepareEvaluation(evaluation *records.Evaluation, now time.Time) error {
	if evaluation.ResumeID == "" || evaluation.JDID == "" {
		return errors.New("evaluation must reference a resume and a job description")
	}
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.EvaluatedAt.IsZero() {
		evaluation.EvaluatedAt = now
	}
	return nil
}

// sortEvaluations orders by overall score descending, then by evaluation time.
func sortEvaluations(evaluations []*records.Evaluation) {
	sort.SliceStable(evaluations, func(i, j int) bool {
		if evaluations[i].OverallScore != evaluations[j].OverallScore {
			return evaluations[i].OverallScore > evaluations[j].OverallScore
		}
		return evaluations[i].EvaluatedAt.Before(evaluations[j].EvaluatedAt)
	})
}
