package rubric

import "testing"

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	catalog := Default()

	if catalog.Version() != "v1" {
		t.Fatalf("unexpected version %q", catalog.Version())
	}

	want := []string{
		"Professional Presence",
		"Experience & Seniority",
		"Impact & Results",
		"Skills Credibility & Domain Knowledge",
		"Tools & Technology",
		"Projects & Ownership",
		"Resume Quality",
	}

	names := catalog.Names()
	if len(names) != len(want) || catalog.Len() != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("category %d: expected %q, got %q", i, want[i], names[i])
		}
	}

	if w, ok := catalog.Weight("Skills Credibility & Domain Knowledge"); !ok || w != 25 {
		t.Fatalf("unexpected weight %v", w)
	}
	if _, ok := catalog.Weight("Culture Fit"); ok {
		t.Fatal("unknown category must not have a weight")
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	t.Parallel()

	catalog := Default()
	categories := catalog.Categories()
	categories[0].Weight = 99

	if w, _ := catalog.Weight(categories[0].Name); w != 5 {
		t.Fatalf("catalog mutated through returned slice, weight now %v", w)
	}
	if catalog.Categories()[0].Weight != 5 {
		t.Fatal("catalog order slice mutated")
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		version    string
		categories []Category
	}{
		{name: "no version", version: "", categories: []Category{{Name: "A", Weight: 100}}},
		{name: "empty", version: "v2"},
		{name: "blank name", version: "v2", categories: []Category{{Name: " ", Weight: 100}}},
		{name: "duplicate", version: "v2", categories: []Category{{Name: "A", Weight: 50}, {Name: "A", Weight: 50}}},
		{name: "zero weight", version: "v2", categories: []Category{{Name: "A", Weight: 100}, {Name: "B", Weight: 0}}},
		{name: "sum below 100", version: "v2", categories: []Category{{Name: "A", Weight: 40}, {Name: "B", Weight: 50}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := New(tt.version, tt.categories); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := New("v2", []Category{{Name: "A", Weight: 10}, {Name: "B", Weight: 90}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
