package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/resume-evaluator/internal/ai"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultEmbeddingModel = "gemini-embedding-001"
	maxEmbeddingBatch     = 100
)

// Embedder produces text embeddings through the same client as the Generator.
type Embedder struct {
	models contentModels
	model  string
	logger *zap.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// Embedder returns an embedder sharing the generator's client.
func (g *Generator) Embedder(model string) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}

	return &Embedder{
		models: g.models,
		model:  model,
		logger: g.logger.With(zap.String("embedding_model", model)),
	}
}

func (e *Embedder) EmbedContent(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbeddingBatch {
		end := min(start+maxEmbeddingBatch, len(texts))
		batch := texts[start:end]

		contents := make([]*genai.Content, 0, len(batch))
		for _, text := range batch {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		resp, err := e.models.EmbedContent(ctx, e.model, contents, nil)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}

		values, err := embeddingValues(resp, len(batch))
		if err != nil {
			return nil, err
		}

		vectors = append(vectors, values...)
	}

	e.logger.Debug("gemini embeddings created", zap.Int("count", len(vectors)))

	return vectors, nil
}

func embeddingValues(resp *genai.EmbedContentResponse, expected int) ([][]float32, error) {
	if resp == nil {
		return nil, errors.New("gemini api returned empty embedding response")
	}

	if len(resp.Embeddings) != expected {
		return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", len(resp.Embeddings), expected)
	}

	values := make([][]float32, 0, expected)
	for i, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		for j, v := range embedding.Values {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return nil, fmt.Errorf("embedding %d: invalid value at index %d: %v", i, j, v)
			}
		}
		values = append(values, embedding.Values)
	}

	return values, nil
}
