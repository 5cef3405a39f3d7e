package signals

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/spigell/resume-evaluator/internal/records"
)

type stubEmbedder struct {
	vectors map[string][]float32
	calls   [][]string
	err     error
}

func (s *stubEmbedder) EmbedContent(_ context.Context, texts []string) ([][]float32, error) {
	s.calls = append(s.calls, texts)
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, ok := s.vectors[text]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out = append(out, v)
	}
	return out, nil
}

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2}, b: []float64{1, 2}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "empty", a: nil, b: []float64{1}, want: 0},
		{name: "mismatched", a: []float64{1}, b: []float64{1, 0}, want: 0},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestComputeSignals(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"Go":       {1, 0, 0},
		"Golang":   {1, 0, 0},
		"SQL":      {0, 1, 0},
		"Docker":   {1, 1, 0},
		"Podman":   {1, 0, 0},
		"fintech":  {0, 1, 0},
		"payments": {1, 0, 0},
	}}

	jd := &records.JobDescription{
		MandatorySkills:  []string{"Go"},
		SupportingSkills: []string{"SQL"},
		Tools:            []string{"Docker"},
		DomainKnowledge:  []string{"fintech"},
	}
	resume := &records.Resume{
		SkillsWithContext: []records.SkillContext{{Skill: "Golang"}, {Skill: "SQL"}},
		ToolsWithContext:  []records.ToolContext{{Tool: "Podman"}},
		DomainExperience:  []string{"payments"},
	}

	got, err := Compute(context.Background(), embedder, jd, resume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]float64{
		Skills:     100,
		Tools:      70.71,
		Experience: 0,
		Projects:   0,
		Domain:     0,
	}
	for name, value := range want {
		if got[name] != value {
			t.Fatalf("%s: expected %v, got %v", name, value, got[name])
		}
	}

	if len(embedder.calls) != 1 {
		t.Fatalf("expected a single batched call, got %d", len(embedder.calls))
	}
	seen := map[string]bool{}
	for _, text := range embedder.calls[0] {
		if seen[text] {
			t.Fatalf("text %q embedded twice", text)
		}
		seen[text] = true
	}
}

func TestComputeWithoutTextSkipsEmbedder(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{}
	got, err := Compute(context.Background(), embedder, &records.JobDescription{}, &records.Resume{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embedder.calls) != 0 {
		t.Fatalf("expected no embedder call, got %d", len(embedder.calls))
	}
	if len(got) != 5 {
		t.Fatalf("expected all five signals, got %v", got)
	}
}

func TestComputePropagatesEmbedderError(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{err: errors.New("quota")}
	jd := &records.JobDescription{Tools: []string{"Go"}}
	if _, err := Compute(context.Background(), embedder, jd, &records.Resume{}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Compute(context.Background(), nil, jd, &records.Resume{}); err == nil {
		t.Fatal("expected error for missing embedder")
	}
}
