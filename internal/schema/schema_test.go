package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderProducesValidOrderedTemplate(t *testing.T) {
	t.Parallel()

	for _, contract := range []Contract{JobDescription(), Resume()} {
		t.Run(contract.Name, func(t *testing.T) {
			t.Parallel()

			rendered := contract.Render()

			var decoded map[string]any
			if err := json.Unmarshal([]byte(rendered), &decoded); err != nil {
				t.Fatalf("rendered template is not valid JSON: %v\n%s", err, rendered)
			}

			if len(decoded) != len(contract.Fields) {
				t.Fatalf("expected %d fields, got %d", len(contract.Fields), len(decoded))
			}

			last := -1
			for _, f := range contract.Fields {
				name := f.Name
				idx := strings.Index(rendered, `"`+name+`"`)
				if idx < 0 {
					t.Fatalf("field %q missing from template", name)
				}
				if idx < last {
					t.Fatalf("field %q rendered out of order", name)
				}
				last = idx
			}
		})
	}
}

func TestRenderDescribesNestedFields(t *testing.T) {
	t.Parallel()

	var decoded map[string]any
	if err := json.Unmarshal([]byte(Resume().Render()), &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	projects, ok := decoded["projects"].([]any)
	if !ok || len(projects) != 1 {
		t.Fatalf("expected projects to render as a single-element list, got %v", decoded["projects"])
	}

	project, _ := projects[0].(map[string]any)
	if project["description"] != "string" {
		t.Fatalf("unexpected project description template %v", project["description"])
	}

	if decoded["candidate_name"] != "string or null" {
		t.Fatalf("unexpected candidate_name template %v", decoded["candidate_name"])
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "all empty", doc: `{"candidate_name":null,"titles_with_dates":[],"projects":[]}`},
		{name: "no fields", doc: `{}`},
		{name: "extra fields", doc: `{"email":"a@b.c","hobbies":["chess"]}`},
		{name: "full", doc: `{"candidate_name":"Ann","total_experience_years":4.5,"projects":[{"name":"x","description":"y","technologies":["go"]}]}`},
		{name: "null list item member", doc: `{"titles_with_dates":[{"title":"Dev","start_date":null}]}`},
		{name: "list as string", doc: `{"career_progression":"junior to senior"}`, wantErr: true},
		{name: "number as string", doc: `{"total_experience_years":"five"}`, wantErr: true},
		{name: "object item as string", doc: `{"projects":["resume-evaluator"]}`, wantErr: true},
		{name: "nested list as object", doc: `{"projects":[{"technologies":{"go":true}}]}`, wantErr: true},
		{name: "string as boolean", doc: `{"location":true}`, wantErr: true},
	}

	contract := Resume()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var doc map[string]any
			if err := json.Unmarshal([]byte(tt.doc), &doc); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}

			err := contract.Check(doc)
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckExperienceRequiredAcceptsStringOrNumber(t *testing.T) {
	t.Parallel()

	contract := JobDescription()
	for _, value := range []any{"3-5 years", float64(4), nil} {
		if err := contract.Check(map[string]any{"experience_required": value}); err != nil {
			t.Fatalf("unexpected error for %v: %v", value, err)
		}
	}

	if err := contract.Check(map[string]any{"experience_required": []any{"3"}}); err == nil {
		t.Fatal("expected error for list value")
	}
}

func TestCheckErrorNamesPath(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"projects": []any{map[string]any{"name": float64(1)}},
	}

	err := Resume().Check(doc)
	if err == nil || !strings.Contains(err.Error(), "projects[0].name") {
		t.Fatalf("expected path in error, got %v", err)
	}
}
