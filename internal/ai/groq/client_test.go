package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc, retries int) *Generator {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := New(Config{APIKey: "secret", BaseURL: server.URL + "/", MaxRetries: retries}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.http.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)

	return g
}

func TestGenerateContentSendsDeterministicRequest(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"role\":\"Go\"}  "},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	}, 0)

	out, err := g.GenerateContent(context.Background(), "extract this", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != `{"role":"Go"}` {
		t.Fatalf("unexpected output %q", out)
	}

	if captured["model"] != DefaultModel {
		t.Fatalf("expected default model, got %v", captured["model"])
	}

	if temperature, ok := captured["temperature"].(float64); !ok || temperature != 0 {
		t.Fatalf("expected temperature 0, got %v", captured["temperature"])
	}

	messages, _ := captured["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected a single message, got %v", captured["messages"])
	}
	if msg, _ := messages[0].(map[string]any); msg["content"] != "extract this" || msg["role"] != "user" {
		t.Fatalf("unexpected message %v", msg)
	}
}

func TestGenerateContentOmitsTemperatureWhenNotDeterministic(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}, 0)

	if _, err := g.GenerateContent(context.Background(), "prompt", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := captured["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted, got %v", captured["temperature"])
	}
}

func TestGenerateContentRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"recovered"}}]}`))
	}, 2)

	out, err := g.GenerateContent(context.Background(), "prompt", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "recovered" || calls.Load() != 2 {
		t.Fatalf("expected recovery on second call, got %q after %d calls", out, calls.Load())
	}
}

func TestGenerateContentSurfacesAPIError(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}, 2)

	_, err := g.GenerateContent(context.Background(), "prompt", true)
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestGenerateContentRejectsEmptyChoice(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, 0)

	if _, err := g.GenerateContent(context.Background(), "prompt", true); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, zap.NewNop()); err == nil {
		t.Fatal("expected error without api key")
	}
}
