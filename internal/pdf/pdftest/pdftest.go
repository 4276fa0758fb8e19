// Package pdftest writes small real PDF documents for tests: one page of
// Helvetica text plus optional AcroForm text fields.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Text is a line of Helvetica text placed at a baseline position
type Text struct {
	X, Y float64
	Size float64
	Text string
}

// Field is a text widget with a rectangle in PDF user space
type Field struct {
	Name               string
	LLX, LLY, URX, URY float64
}

// WritePDF writes a single page 612x792 PDF with the given text and
// text field widgets, computing the xref table offsets.
func WritePDF(t testing.TB, dir, name string, texts []Text, fields []Field) string {
	t.Helper()

	var content strings.Builder
	for _, tx := range texts {
		fmt.Fprintf(&content, "BT /F1 %g Tf %g %g Td (%s) Tj ET\n", tx.Size, tx.X, tx.Y, tx.Text)
	}

	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))

	var annots, fieldRefs []string
	objects := []string{
		"", // catalog, filled below
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"", // page, filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding " +
			"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}
	for _, f := range fields {
		num := len(objects) + 1
		ref := fmt.Sprintf("%d 0 R", num)
		annots = append(annots, ref)
		fieldRefs = append(fieldRefs, ref)
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Annot /Subtype /Widget /FT /Tx /T (%s) /Rect [%g %g %g %g] /P 3 0 R /F 4 >>",
			f.Name, f.LLX, f.LLY, f.URX, f.URY))
	}

	objects[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	if len(fieldRefs) > 0 {
		objects[0] = fmt.Sprintf("<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [%s] >> >>",
			strings.Join(fieldRefs, " "))
	}
	page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R"
	if len(annots) > 0 {
		page += " /Annots [" + strings.Join(annots, " ") + "]"
	}
	objects[2] = page + " >>"

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// WriteFormPair writes a filled source document and the blank form it was
// produced from, sharing the same layout
func WriteFormPair(t testing.TB, dir string) (source, target string) {
	t.Helper()

	labels := []Text{
		{X: 72, Y: 700, Size: 12, Text: "Name"},
		{X: 72, Y: 600, Size: 12, Text: "Address"},
	}
	filled := append(append([]Text{}, labels...),
		Text{X: 150, Y: 700, Size: 12, Text: "JANE DOE"},
		Text{X: 150, Y: 600, Size: 12, Text: "12 HIGH STREET"},
	)
	fields := []Field{
		{Name: "Name", LLX: 145, LLY: 695, URX: 345, URY: 715},
		{Name: "Address", LLX: 145, LLY: 595, URX: 345, URY: 615},
		{Name: "Employer", LLX: 145, LLY: 495, URX: 345, URY: 515},
	}

	source = WritePDF(t, dir, "filled.pdf", filled, nil)
	target = WritePDF(t, dir, "blank.pdf", labels, fields)
	return source, target
}
