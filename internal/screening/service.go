// Package screening drives the whole flow: uploads go through the duplicate
// guard and extraction into the store, stored resumes are scored against
// their job description, and evaluations are listed for review.
package screening

import (
	"errors"
	"time"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/archive"
	"github.com/spigell/resume-evaluator/internal/extraction"
	"github.com/spigell/resume-evaluator/internal/guard"
	"github.com/spigell/resume-evaluator/internal/scoring"
	"github.com/spigell/resume-evaluator/internal/store"

	"go.uber.org/zap"
)

const DefaultConcurrency = 4

var ErrAlreadyReviewed = store.ErrAlreadyReviewed

type Deps struct {
	Store     store.Store
	Extractor *extraction.Extractor
	Scorer    *scoring.Scorer
	// Archive and Embedder are optional.
	Archive  archive.Archive
	Embedder ai.Embedder
	// Model is recorded on every evaluation.
	Model  string
	Logger *zap.Logger
}

type Options struct {
	// Concurrency bounds parallel extraction and scoring calls.
	Concurrency int
	// Timeout applies to a single evaluation. Zero disables it.
	Timeout time.Duration
	// SignalsTimeout bounds the embedding call of an evaluation.
	SignalsTimeout time.Duration
}

type Service struct {
	store     store.Store
	guard     *guard.Guard
	extractor *extraction.Extractor
	scorer    *scoring.Scorer
	archive   archive.Archive
	embedder  ai.Embedder
	model     string
	logger    *zap.Logger
	opts      Options
}

func New(deps Deps, opts Options) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("scorer is required")
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	return &Service{
		store:     deps.Store,
		guard:     guard.New(deps.Store, log.Named("guard")),
		extractor: deps.Extractor,
		scorer:    deps.Scorer,
		archive:   deps.Archive,
		embedder:  deps.Embedder,
		model:     deps.Model,
		logger:    log,
		opts:      opts,
	}, nil
}
