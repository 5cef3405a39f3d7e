// Package signals computes embedding similarity between a job description
// and a resume. The values are auxiliary and never affect the overall score.
package signals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/records"
)

const (
	Skills     = "skills_similarity"
	Tools      = "tools_similarity"
	Experience = "experience_similarity"
	Projects   = "project_similarity"
	Domain     = "domain_similarity"
)

type pair struct {
	name   string
	jd     []string
	resume []string
}

func pairs(jd *records.JobDescription, resume *records.Resume) []pair {
	resumeSkills := make([]string, 0, len(resume.SkillsWithContext))
	for _, s := range resume.SkillsWithContext {
		resumeSkills = append(resumeSkills, s.Skill)
	}

	resumeTools := make([]string, 0, len(resume.ToolsWithContext))
	for _, t := range resume.ToolsWithContext {
		resumeTools = append(resumeTools, t.Tool)
	}

	projectDescriptions := make([]string, 0, len(resume.Projects))
	for _, p := range resume.Projects {
		projectDescriptions = append(projectDescriptions, p.Description)
	}

	return []pair{
		{name: Skills, jd: jd.Skills(), resume: resumeSkills},
		{name: Tools, jd: jd.Tools, resume: resumeTools},
		{name: Experience, jd: jd.Responsibilities, resume: resume.CareerProgression},
		{name: Projects, jd: jd.Responsibilities, resume: projectDescriptions},
		{name: Domain, jd: jd.DomainKnowledge, resume: resume.DomainExperience},
	}
}

// Compute returns every signal as cosine similarity of averaged embeddings
// scaled to 0-100 and rounded to two decimals. A side with no text scores 0.
// All distinct texts are embedded in a single call.
func Compute(ctx context.Context, embedder ai.Embedder, jd *records.JobDescription, resume *records.Resume) (map[string]float64, error) {
	if embedder == nil {
		return nil, errors.New("embedder is not configured")
	}
	if jd == nil || resume == nil {
		return nil, errors.New("job description and resume are required")
	}

	ps := pairs(jd, resume)

	index := map[string]int{}
	var texts []string
	for _, p := range ps {
		for _, text := range append(append([]string(nil), p.jd...), p.resume...) {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if _, ok := index[text]; !ok {
				index[text] = len(texts)
				texts = append(texts, text)
			}
		}
	}

	vectors := map[string][]float32{}
	if len(texts) > 0 {
		embedded, err := embedder.EmbedContent(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed texts: %w", err)
		}
		if len(embedded) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(texts))
		}
		for text, i := range index {
			vectors[text] = embedded[i]
		}
	}

	out := make(map[string]float64, len(ps))
	for _, p := range ps {
		similarity := Cosine(average(p.jd, vectors), average(p.resume, vectors))
		out[p.name] = math.Round(similarity*100*100) / 100
	}

	return out, nil
}

func average(texts []string, vectors map[string][]float32) []float64 {
	var (
		sum   []float64
		count int
	)
	for _, text := range texts {
		vector, ok := vectors[strings.TrimSpace(text)]
		if !ok {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(vector))
		}
		if len(vector) != len(sum) {
			continue
		}
		for i, v := range vector {
			sum[i] += float64(v)
		}
		count++
	}

	if count == 0 {
		return nil
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}

// Cosine returns 0 for empty, mismatched or zero-length vectors.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
