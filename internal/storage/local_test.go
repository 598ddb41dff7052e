package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	path, err := s.Save(context.Background(), "resume.pdf", []byte("pdf bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "resume.pdf" {
		t.Fatalf("saved path = %q", path)
	}

	rc, err := s.Open(context.Background(), "resume.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "pdf bytes" {
		t.Fatalf("contents = %q", data)
	}
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	path, err := s.Save(context.Background(), "../../outside.txt", []byte("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("file escaped storage dir: %q", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "outside.txt")); err != nil {
		t.Fatalf("sanitized file missing: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	if _, err := s.Open(context.Background(), "nope.pdf"); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
	if _, err := s.Open(context.Background(), ".."); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist for dot-dot", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"resume.pdf", "resume.pdf"},
		{"my resume.pdf", "my_resume.pdf"},
		{"../../etc/passwd", "passwd"},
		{`c:\uploads\cv.txt`, "cv.txt"},
		{".hidden", "hidden"},
		{"..", ""},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAllowedResumeFile(t *testing.T) {
	for _, name := range []string{"a.pdf", "a.txt", "A.PDF", "long.name.TXT"} {
		if !AllowedResumeFile(name) {
			t.Errorf("AllowedResumeFile(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"a.doc", "a.exe", "pdf", "a", ""} {
		if AllowedResumeFile(name) {
			t.Errorf("AllowedResumeFile(%q) = true, want false", name)
		}
	}
}
