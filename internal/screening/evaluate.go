package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spigell/resume-evaluator/internal/extraction"
	"github.com/spigell/resume-evaluator/internal/logger"
	"github.com/spigell/resume-evaluator/internal/queue"
	"github.com/spigell/resume-evaluator/internal/ranking"
	"github.com/spigell/resume-evaluator/internal/records"
	"github.com/spigell/resume-evaluator/internal/signals"
	"github.com/spigell/resume-evaluator/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Publisher hands evaluation jobs to workers.
type Publisher interface {
	Publish(ctx context.Context, job queue.Job) error
}

type Failure struct {
	ResumeID string
	FileName string
	Err      error
}

type Summary struct {
	Total           int
	Evaluated       int
	AlreadyReviewed int
	Failures        []Failure
}

// EvaluateResume scores one resume and stores the evaluation. It returns
// ErrAlreadyReviewed when the resume was reviewed before or while scoring.
func (s *Service) EvaluateResume(ctx context.Context, resumeID string) (*records.Evaluation, error) {
	resume, err := s.store.GetResume(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("get resume %s: %w", resumeID, err)
	}
	if resume.Status == records.Reviewed {
		return nil, ErrAlreadyReviewed
	}

	jd, err := s.store.GetJobDescription(ctx, resume.JDID)
	if err != nil {
		return nil, fmt.Errorf("get job description %s: %w", resume.JDID, err)
	}

	log := logger.WithPipeline(s.logger, string(extraction.StageScoring), jd.ID, resume.ID)

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	outcome, err := s.scorer.Score(ctx, jd, resume)
	if err != nil {
		return nil, fmt.Errorf("score resume %s: %w", resume.ID, err)
	}

	evaluation := &records.Evaluation{
		JDID:                 jd.ID,
		ResumeID:             resume.ID,
		CandidateName:        resume.Name(),
		RubricVersion:        outcome.RubricVersion,
		CategoryScores:       outcome.CategoryScores,
		CategoryExplanations: outcome.CategoryExplanations,
		OverallScore:         outcome.OverallScore,
		Tier:                 outcome.Tier,
		Model:                s.model,
	}

	if s.embedder != nil {
		evaluation.Signals = s.embeddingSignals(ctx, log, jd, resume)
	}

	if err := s.store.CompleteReview(ctx, evaluation); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			log.Info("resume reviewed concurrently, evaluation discarded")
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("store evaluation for resume %s: %w", resume.ID, err)
	}

	log.Info("resume evaluated",
		zap.Float64("overall_score", evaluation.OverallScore),
		zap.String("tier", string(evaluation.Tier)),
	)

	return evaluation, nil
}

// embeddingSignals returns nil when the embedder fails; the evaluation is stored without them.
func (s *Service) embeddingSignals(ctx context.Context, log *zap.Logger, jd *records.JobDescription, resume *records.Resume) map[string]float64 {
	if s.opts.SignalsTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SignalsTimeout)
		defer cancel()
	}

	computed, err := signals.Compute(ctx, s.embedder, jd, resume)
	if err != nil {
		log.Warn("embedding signals skipped", zap.Error(err))
		return nil
	}
	return computed
}

// EvaluatePending scores every unreviewed resume of a job description with
// bounded parallelism. A failed resume stays NOT_REVIEWED and is reported in
// the summary.
func (s *Service) EvaluatePending(ctx context.Context, jdID string) (Summary, error) {
	if _, err := s.store.GetJobDescription(ctx, jdID); err != nil {
		return Summary{}, fmt.Errorf("get job description %s: %w", jdID, err)
	}

	pending, err := s.store.ListUnreviewedResumes(ctx, jdID)
	if err != nil {
		return Summary{}, fmt.Errorf("list unreviewed resumes: %w", err)
	}

	summary := Summary{Total: len(pending)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for _, resume := range pending {
		g.Go(func() error {
			_, err := s.EvaluateResume(ctx, resume.ID)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				summary.Evaluated++
			case errors.Is(err, ErrAlreadyReviewed):
				summary.AlreadyReviewed++
			default:
				s.logger.Error("evaluation failed",
					zap.String(logger.FieldResume, resume.ID),
					zap.String(logger.FieldFile, resume.FileName),
					zap.Error(err),
				)
				summary.Failures = append(summary.Failures, Failure{ResumeID: resume.ID, FileName: resume.FileName, Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("evaluation run finished",
		zap.String(logger.FieldJD, jdID),
		zap.Int("total", summary.Total),
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("already_reviewed", summary.AlreadyReviewed),
		zap.Int("failed", len(summary.Failures)),
	)

	return summary, nil
}

// Enqueue publishes one job per unreviewed resume and returns how many were published.
func (s *Service) Enqueue(ctx context.Context, jdID string, publisher Publisher) (int, error) {
	pending, err := s.store.ListUnreviewedResumes(ctx, jdID)
	if err != nil {
		return 0, fmt.Errorf("list unreviewed resumes: %w", err)
	}

	for i, resume := range pending {
		if err := publisher.Publish(ctx, queue.Job{JDID: resume.JDID, ResumeID: resume.ID}); err != nil {
			return i, err
		}
	}

	s.logger.Info("evaluation jobs enqueued", zap.String(logger.FieldJD, jdID), zap.Int("jobs", len(pending)))
	return len(pending), nil
}

// HandleJob is the queue worker entry point. A resume that is already
// reviewed is acknowledged without scoring it again. A job naming a job
// description other than the resume's own is refused with queue.ErrInvalidJob.
func (s *Service) HandleJob(ctx context.Context, job queue.Job) error {
	resume, err := s.store.GetResume(ctx, job.ResumeID)
	if err != nil {
		return fmt.Errorf("get resume %s: %w", job.ResumeID, err)
	}
	if resume.JDID != job.JDID {
		s.logger.Warn("job names a different job description",
			zap.String(logger.FieldResume, job.ResumeID),
			zap.String("job_jd_id", job.JDID),
			zap.String("resume_jd_id", resume.JDID),
		)
		return fmt.Errorf("%w: resume %s belongs to job description %s, not %s", queue.ErrInvalidJob, resume.ID, resume.JDID, job.JDID)
	}

	_, err = s.EvaluateResume(ctx, job.ResumeID)
	if errors.Is(err, ErrAlreadyReviewed) {
		s.logger.Debug("job skipped, resume already reviewed", zap.String(logger.FieldResume, job.ResumeID))
		return nil
	}
	return err
}

// Results lists evaluations of a job description through the ranking filters.
func (s *Service) Results(ctx context.Context, jdID string, opts ranking.Options) ([]records.Evaluation, error) {
	return Results(ctx, s.store, s.logger, jdID, opts)
}

// Results works on the store alone, so listing needs no generator.
func Results(ctx context.Context, st store.Store, log *zap.Logger, jdID string, opts ranking.Options) ([]records.Evaluation, error) {
	if log == nil {
		log = zap.NewNop()
	}

	stored, err := st.ListEvaluations(ctx, jdID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}

	evaluations := make([]records.Evaluation, 0, len(stored))
	for _, e := range stored {
		evaluations = append(evaluations, *e)
	}

	steps := ranking.Steps(opts)
	for _, status := range ranking.Describe(steps) {
		log.Debug("ranking filter",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return ranking.Run(ctx, log.Named("ranking"), steps, evaluations)
}
