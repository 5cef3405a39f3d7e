package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/ai/gemini"
	"github.com/spigell/resume-evaluator/internal/ai/groq"
	"github.com/spigell/resume-evaluator/internal/archive"
	"github.com/spigell/resume-evaluator/internal/extraction"
	"github.com/spigell/resume-evaluator/internal/logger"
	"github.com/spigell/resume-evaluator/internal/rubric"
	"github.com/spigell/resume-evaluator/internal/scoring"
	"github.com/spigell/resume-evaluator/internal/screening"
	"github.com/spigell/resume-evaluator/internal/secrets"
	"github.com/spigell/resume-evaluator/internal/store"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is everything a command may need. Fields are filled on demand by the
// builders below.
type env struct {
	config *Config
	logger *zap.Logger
	db     *gorm.DB
	store  store.Store
}

// newEnv builds the logger and config. Failures here are fatal, the same as
// for any command setup.
func newEnv() *env {
	l, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	return &env{config: config, logger: l}
}

func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	e.logger.Sync()
}

func (e *env) openStore() (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}

	if strings.TrimSpace(e.config.Database.DSN) == "" {
		return nil, errors.New("database dsn is not configured (set database.dsn or DATABASE_DSN)")
	}

	db, err := store.Open(e.config.Database, e.logger.Named("db"))
	if err != nil {
		return nil, err
	}

	e.db = db
	e.store = store.NewPostgres(db)
	return e.store, nil
}

// newGenerator returns the configured text generator and, for Gemini with
// embeddings enabled, an embedder sharing its client.
func (e *env) newGenerator(ctx context.Context) (ai.Generator, ai.Embedder, error) {
	cfg := e.config.AI
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", ai.ProviderGemini:
		if cfg.Gemini == nil {
			cfg.Gemini = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
			Value: cfg.Gemini.APIKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		genLogger := logger.WithAI(e.logger, ai.ProviderGemini, cfg.Gemini.Model).
			With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, nil, err
		}

		if cfg.Embeddings == nil || !cfg.Embeddings.Enabled {
			return generator, nil, nil
		}
		return generator, generator.Embedder(cfg.Embeddings.Model), nil

	case ai.ProviderGroq:
		if cfg.Groq == nil {
			cfg.Groq = &GroqConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "groq api key",
			File:  cfg.Groq.APIKeyFile,
			Env:   "GROQ_API_KEY",
			Value: cfg.Groq.APIKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w (set ai.groq.api-key-file or GROQ_API_KEY_FILE)", err)
		}

		generator, err := groq.New(groq.Config{
			APIKey:     apiKey,
			BaseURL:    cfg.Groq.BaseURL,
			Model:      cfg.Groq.Model,
			MaxRetries: cfg.Groq.MaxRetries,
			Timeout:    cfg.Groq.Timeout,
		}, logger.WithAI(e.logger, ai.ProviderGroq, cfg.Groq.Model))
		if err != nil {
			return nil, nil, err
		}

		if cfg.Embeddings != nil && cfg.Embeddings.Enabled {
			e.logger.Warn("embedding signals are only available with gemini, skipping",
				zap.String(logger.FieldProvider, ai.ProviderGroq))
		}
		return generator, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func (e *env) newArchive(ctx context.Context) (archive.Archive, error) {
	cfg := e.config.Storage
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	connectionString, err := secrets.Load(secrets.Source{
		Name:  "storage connection string",
		File:  cfg.ConnectionStringFile,
		Env:   "AZURE_STORAGE_CONNECTION_STRING",
		Value: cfg.ConnectionString,
	})
	if err != nil {
		return nil, err
	}

	blobs, err := archive.NewAzure(connectionString, cfg.Container, e.logger.Named("archive"))
	if err != nil {
		return nil, err
	}
	if err := blobs.Ensure(ctx); err != nil {
		return nil, err
	}
	return blobs, nil
}

// newService wires the store, the generator and the optional archive into a
// screening service.
func (e *env) newService(ctx context.Context) (*screening.Service, error) {
	st, err := e.openStore()
	if err != nil {
		return nil, err
	}

	generator, embedder, err := e.newGenerator(ctx)
	if err != nil {
		return nil, fmt.Errorf("building ai generator: %w", err)
	}

	blobs, err := e.newArchive(ctx)
	if err != nil {
		return nil, fmt.Errorf("building upload archive: %w", err)
	}

	maxLogLength := 0
	if e.config.AI.Gemini != nil {
		maxLogLength = e.config.AI.Gemini.MaxLogLength
	}

	protocol := extraction.NewProtocol(generator, e.logger.Named("protocol"), maxLogLength)

	deps := screening.Deps{
		Store:     st,
		Extractor: extraction.NewExtractor(protocol),
		Scorer:    scoring.NewScorer(protocol, rubric.Default()),
		Model:     generator.Model(),
		Logger:    e.logger,
	}
	if embedder != nil {
		deps.Embedder = embedder
	}
	if blobs != nil {
		deps.Archive = blobs
	}

	opts := screening.Options{
		Concurrency: e.config.Evaluation.Concurrency,
		Timeout:     e.config.Evaluation.Timeout,
	}
	if e.config.AI.Embeddings != nil {
		opts.SignalsTimeout = e.config.AI.Embeddings.Timeout
	}

	return screening.New(deps, opts)
}
