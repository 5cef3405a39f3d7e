package archive

import (
	"errors"
	"testing"

	"github.com/spigell/resume-evaluator/internal/guard"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role guard.Role
		jdID string
		file string
		want string
	}{
		{name: "job description", role: guard.RoleJobDescription, file: "jd.pdf", want: "jd/global/abc/jd.pdf"},
		{name: "resume", role: guard.RoleResume, jdID: "jd-1", file: "cv.docx", want: "resume/jd-1/abc/cv.docx"},
		{name: "strips directories", role: guard.RoleResume, jdID: "jd-1", file: "../../etc/passwd", want: "resume/jd-1/abc/passwd"},
		{name: "windows path", role: guard.RoleResume, jdID: "jd-1", file: `C:\cvs\jane.pdf`, want: "resume/jd-1/abc/jane.pdf"},
		{name: "empty name", role: guard.RoleJobDescription, file: "", want: "jd/global/abc/upload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Key(tt.role, tt.jdID, "abc", tt.file)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if err := validateKey(got); err != nil {
				t.Fatalf("generated key must be valid: %v", err)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	if err := validateKey(""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if err := validateKey("a/../b"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := validateKey("/abs"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestNewAzureRequiresConnectionString(t *testing.T) {
	t.Parallel()

	if _, err := NewAzure(" ", "", nil); err == nil {
		t.Fatal("expected error")
	}
}
