package scoring

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/spigell/resume-evaluator/internal/records"
	"github.com/spigell/resume-evaluator/internal/rubric"
	"github.com/spigell/resume-evaluator/internal/schema"
)

//go:embed prompt.md
var promptTemplate string

// Contract describes the expected scoring output: one object per category.
func Contract(catalog *rubric.Catalog) schema.Contract {
	fields := make([]schema.Field, 0, catalog.Len())
	for _, name := range catalog.Names() {
		fields = append(fields, schema.Field{
			Name: name,
			Kind: schema.Object,
			Fields: []schema.Field{
				{Name: "score", Kind: schema.Number, Hint: "(0-100)"},
				{Name: "explanation", Kind: schema.String},
			},
		})
	}

	return schema.Contract{Name: "evaluation", Subject: "Evaluation", Fields: fields}
}

// BuildPrompt never receives weights; the generator scores categories independently.
func BuildPrompt(catalog *rubric.Catalog, jd *records.JobDescription, resume records.MaskedResume) (string, error) {
	jdJSON, err := json.MarshalIndent(jd, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job description: %w", err)
	}

	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume: %w", err)
	}

	var categories strings.Builder
	for i, name := range catalog.Names() {
		categories.WriteString(strconv.Itoa(i+1) + ". " + name + "\n")
	}

	return strings.NewReplacer(
		"{{CATEGORIES}}", strings.TrimRight(categories.String(), "\n"),
		"{{SCHEMA}}", Contract(catalog).Render(),
		"{{JOB_DESCRIPTION}}", string(jdJSON),
		"{{RESUME}}", string(resumeJSON),
	).Replace(promptTemplate), nil
}
