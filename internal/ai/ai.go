package ai

import "context"

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Generator turns a prompt into free-form text. Output is untrusted: it may be
// malformed, wrapped in code fences or empty.
type Generator interface {
	// GenerateContent sends a single prompt. When deterministic is set the provider
	// runs at its minimum temperature so identical input yields stable output.
	GenerateContent(ctx context.Context, prompt string, deterministic bool) (string, error)
	Model() string
}

// Embedder maps texts to vectors, one per input text and in the same order.
type Embedder interface {
	EmbedContent(ctx context.Context, texts []string) ([][]float32, error)
}
