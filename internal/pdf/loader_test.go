package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/layout"
	"github.com/a3tai/pdf-formmap/internal/pdf/pdftest"
)

func TestLoader_Load(t *testing.T) {
	source, target := pdftest.WriteFormPair(t, t.TempDir())
	loader := NewLoader(1024*1024, nil)

	raw, err := loader.Load(target)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("expected 1 page, got %d", len(raw))
	}
	if raw[0].Width != 612 || raw[0].Height != 792 {
		t.Errorf("unexpected page size %.0fx%.0f", raw[0].Width, raw[0].Height)
	}
	if len(raw[0].Fields) != 3 {
		t.Errorf("expected 3 fields, got %d", len(raw[0].Fields))
	}

	doc, err := loader.LoadDocument(source, layout.DefaultIndexOptions())
	if err != nil {
		t.Fatalf("LoadDocument() failed: %v", err)
	}

	var texts []string
	for _, b := range doc.Page(1).Blocks {
		texts = append(texts, b.Text)
	}
	got := strings.Join(texts, " ")
	if got != "Name JANE DOE Address 12 HIGH STREET" {
		t.Errorf("unexpected reading order: %q", got)
	}

	name := doc.Page(1).Blocks[0]
	if name.Rect.Y0 < 79 || name.Rect.Y1 > 93 {
		t.Errorf("expected Name block near y 80..92, got %v", name.Rect)
	}
}

func TestLoader_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pdf")
	if err := os.WriteFile(garbage, []byte("this is not a pdf document"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.pdf")},
		{"not a PDF", garbage},
		{"wrong extension", filepath.Join(dir, "notes.txt")},
	}

	loader := NewLoader(1024*1024, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(tt.path)
			if !errors.Is(err, maperrors.ErrOpen) {
				t.Errorf("expected open error, got %v", err)
			}
		})
	}
}
