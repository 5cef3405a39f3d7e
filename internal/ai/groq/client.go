// Package groq talks to OpenAI-compatible chat completion endpoints (Groq by default).
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/logger"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	defaultTimeout = 2 * time.Minute
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// MaxRetries is the number of additional attempts for 429, 5xx and transport errors.
	MaxRetries int
	Timeout    time.Duration
}

// Generator sends prompts to the chat completions endpoint.
type Generator struct {
	http   *resty.Client
	model  string
	logger *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

func New(cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("groq api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(max(cfg.MaxRetries, 0)).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(20 * time.Second).
		AddRetryCondition(retryable)

	return &Generator{
		http:   client,
		model:  model,
		logger: logger.WithAI(log, ai.ProviderGroq, model),
	}, nil
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string, deterministic bool) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	body := chatRequest{
		Model:    g.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if deterministic {
		zero := 0.0
		body.Temperature = &zero
	}

	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	payload := resp.String()
	if resp.IsError() {
		message := gjson.Get(payload, "error.message").String()
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return "", fmt.Errorf("chat completion: status %d: %s", resp.StatusCode(), message)
	}

	content := strings.TrimSpace(gjson.Get(payload, "choices.0.message.content").String())
	if content == "" {
		return "", errors.New("groq api returned empty response")
	}

	g.logger.Debug("groq chat completion finished",
		zap.String("finish_reason", gjson.Get(payload, "choices.0.finish_reason").String()),
		zap.Int64("total_tokens", gjson.Get(payload, "usage.total_tokens").Int()),
	)

	return content, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
