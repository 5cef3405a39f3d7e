package records

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustDoc(t *testing.T, raw string) map[string]any {
	t.Helper()

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return doc
}

func TestDecodeJobDescription(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `{
		"role": "Backend Engineer",
		"location": null,
		"experience_required": 5,
		"mandatory_skills": ["Go", "PostgreSQL"],
		"supporting_skills": ["Kubernetes"],
		"tools": [],
		"unexpected": "ignored"
	}`)

	jd, err := Decode[JobDescription](doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if jd.Role != "Backend Engineer" {
		t.Fatalf("unexpected role %q", jd.Role)
	}
	if jd.Location != nil {
		t.Fatalf("expected nil location, got %q", *jd.Location)
	}
	if jd.ExperienceRequired == nil || !jd.ExperienceRequired.IsNumber() || jd.ExperienceRequired.String() != "5" {
		t.Fatalf("expected numeric experience_required 5, got %v", jd.ExperienceRequired)
	}
	if got := jd.Skills(); len(got) != 3 || got[0] != "Go" || got[2] != "Kubernetes" {
		t.Fatalf("unexpected skills %v", got)
	}
	if jd.ID != "" {
		t.Fatalf("metadata must not be decoded, got id %q", jd.ID)
	}
}

func TestDecodeResumePreservesAbsence(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `{
		"candidate_name": null,
		"total_experience_years": null,
		"titles_with_dates": [],
		"projects": [{"name": "ranker", "description": "ranks things", "technologies": ["go"]}]
	}`)

	resume, err := Decode[Resume](doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resume.CandidateName != nil || resume.TotalExperienceYears != nil {
		t.Fatalf("expected nulls to stay unset, got %+v", resume)
	}
	if resume.Name() != "" {
		t.Fatalf("expected empty name, got %q", resume.Name())
	}
	if len(resume.Projects) != 1 || resume.Projects[0].Technologies[0] != "go" {
		t.Fatalf("unexpected projects %+v", resume.Projects)
	}
	if resume.CareerProgression != nil {
		t.Fatalf("missing list must stay nil, got %v", resume.CareerProgression)
	}
}

func TestDecodeRejectsIncompatibleValues(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `{"total_experience_years": "several"}`)
	if _, err := Decode[Resume](doc); err == nil {
		t.Fatal("expected error for non-numeric experience")
	}
}

func TestJSONOmitsMetadata(t *testing.T) {
	t.Parallel()

	name := "Ann"
	out, err := json.Marshal(Resume{ID: "r1", JDID: "jd1", FileName: "ann.pdf", CandidateName: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := mustDoc(t, string(out))
	for _, key := range []string{"ID", "JDID", "FileName", "Status"} {
		if _, ok := doc[key]; ok {
			t.Fatalf("metadata %q leaked into JSON", key)
		}
	}
	if doc["candidate_name"] != "Ann" {
		t.Fatalf("unexpected candidate_name %v", doc["candidate_name"])
	}
}

func TestParseTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Tier
		wantErr bool
	}{
		{input: "TOP", want: TierTop},
		{input: "best", want: TierBest},
		{input: "very low", want: TierVeryLow},
		{input: "very-low", want: TierVeryLow},
		{input: "", want: TierAll},
		{input: "all", want: TierAll},
		{input: "excellent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTier(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestExperienceKeepsJSONKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		want     string
		isNumber bool
	}{
		{name: "number", raw: `{"experience_required": 5}`, want: `5`, isNumber: true},
		{name: "fraction", raw: `{"experience_required": 2.5}`, want: `2.5`, isNumber: true},
		{name: "numeric string", raw: `{"experience_required": "5"}`, want: `"5"`},
		{name: "text", raw: `{"experience_required": "3+ years"}`, want: `"3+ years"`},
		{name: "null", raw: `{"experience_required": null}`, want: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jd, err := Decode[JobDescription](mustDoc(t, tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if jd.ExperienceRequired != nil && jd.ExperienceRequired.IsNumber() != tt.isNumber {
				t.Fatalf("expected number=%v, got %v", tt.isNumber, jd.ExperienceRequired.IsNumber())
			}

			out, err := json.Marshal(jd)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(out), `"experience_required":`+tt.want) {
				t.Fatalf("expected experience_required %s in %s", tt.want, out)
			}

			var back JobDescription
			if err := json.Unmarshal(out, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			again, _ := json.Marshal(back)
			if string(again) != string(out) {
				t.Fatalf("round trip changed the record: %s != %s", again, out)
			}
		})
	}
}

func TestDecodeRejectsNonScalarExperience(t *testing.T) {
	t.Parallel()

	if _, err := Decode[JobDescription](mustDoc(t, `{"experience_required": true}`)); err == nil {
		t.Fatal("expected error for boolean experience_required")
	}
}
