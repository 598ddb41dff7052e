package textextract

import (
	"bytes"
	"strings"
	"testing"
)

func TestExtractTXT(t *testing.T) {
	body := "Alice Example\nSenior Engineer\n"
	for _, fileType := range []string{".txt", "txt", "text/plain", ".TXT"} {
		got, err := Extract(bytes.NewReader([]byte(body)), int64(len(body)), fileType)
		if err != nil {
			t.Fatalf("Extract(%q): %v", fileType, err)
		}
		if got.Content != body {
			t.Fatalf("content = %q, want %q", got.Content, body)
		}
		if got.Pages != 1 {
			t.Fatalf("pages = %d, want 1", got.Pages)
		}
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := Extract(bytes.NewReader([]byte("x")), 1, ".docx")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("err = %v, want unsupported type", err)
	}
}

func TestExtractMalformedPDF(t *testing.T) {
	junk := []byte("this is not a pdf")
	if _, err := Extract(bytes.NewReader(junk), int64(len(junk)), ".pdf"); err == nil {
		t.Fatal("expected error for malformed PDF")
	}
}
