package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	t.Setenv("TEST_SECRET_VALUE", " from-env ")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{
			name:   "file wins",
			src:    Source{Name: "api key", File: file, Env: "TEST_SECRET_VALUE", Value: "inline"},
			expect: "from-file",
		},
		{
			name:   "env before inline",
			src:    Source{Name: "api key", Env: "TEST_SECRET_VALUE", Value: "inline"},
			expect: "from-env",
		},
		{
			name:   "inline fallback",
			src:    Source{Name: "api key", Env: "TEST_SECRET_UNSET", Value: " inline "},
			expect: "inline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("   "), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	if _, err := Load(Source{Name: "gemini api key", File: empty}); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}

	if _, err := Load(Source{Name: "gemini api key", File: filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("expected error for missing file")
	}

	if _, err := Load(Source{}); err == nil || err.Error() != "secret is not configured" {
		t.Fatalf("expected not configured error, got %v", err)
	}
}
