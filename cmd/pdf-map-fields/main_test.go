package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/pdf-formmap/internal/mapping"
	"github.com/a3tai/pdf-formmap/internal/pdf/pdftest"
)

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"a.pdf", "b.pdf"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("expected usage, got: %s", stderr.String())
	}
}

func TestRun_InvalidFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--format", "xml", "a.pdf", "b.pdf", "c.json"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"--version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "pdf-map-fields ") {
		t.Errorf("unexpected version output: %s", stdout.String())
	}
}

func TestRun_MissingSource(t *testing.T) {
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		filepath.Join(dir, "filled.pdf"),
		filepath.Join(dir, "blank.pdf"),
		filepath.Join(dir, "out.json"),
	}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "OPEN_ERROR") {
		t.Errorf("expected open error, got: %s", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no summary on failure, got: %s", stdout.String())
	}
}

func TestRun_CalibrationFailure(t *testing.T) {
	dir := t.TempDir()
	_, target := pdftest.WriteFormPair(t, dir)
	source := pdftest.WritePDF(t, dir, "letter.pdf", []pdftest.Text{
		{X: 72, Y: 700, Size: 12, Text: "Name"},
		{X: 72, Y: 650, Size: 12, Text: "Dear customer"},
	}, nil)
	outputPath := filepath.Join(dir, "out.json")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{source, target, outputPath}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "CALIBRATION_ERROR") {
		t.Errorf("expected calibration error, got: %s", stderr.String())
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Errorf("no mapping should be written on calibration failure, stat: %v", err)
	}
}

func TestRun_PartialCoverage(t *testing.T) {
	dir := t.TempDir()
	source, target := pdftest.WriteFormPair(t, dir)
	outputPath := filepath.Join(dir, "out.json")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--workers", "2", source, target, outputPath}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, stderr.String())
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read mapping: %v", err)
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		t.Fatalf("mapping is not a flat JSON object: %v", err)
	}
	want := map[string]string{"Name": "JANE DOE", "Address": "12 HIGH STREET", "Employer": ""}
	for k, v := range want {
		got, ok := values[k]
		if !ok || got != v {
			t.Errorf("field %s: expected %q, got %q (present %v)", k, v, got, ok)
		}
	}

	if !strings.Contains(stdout.String(), "Mapped 2/3 fields (66.7% coverage") {
		t.Errorf("expected reduced coverage summary, got:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Employer") {
		t.Errorf("expected Employer listed as unmatched, got:\n%s", stdout.String())
	}
}

func TestPrintSummary(t *testing.T) {
	res := &mapping.Result{
		Transform: mapping.Identity(),
		Fields: []mapping.FieldResult{
			{Name: "Name", Value: "JANE DOE", Confidence: mapping.ConfidencePrimary, TargetPage: 1},
			{Name: "Employer", Confidence: mapping.ConfidenceUnmatched, TargetPage: 2, Tried: []int{2, 3, 1}},
		},
		Stats: mapping.Stats{TotalFields: 2, MatchedFields: 1, PrimaryFields: 1, CoverageRatio: 0.5},
	}

	var buf bytes.Buffer
	printSummary(&buf, res, "out.json", "")
	out := buf.String()

	for _, want := range []string{
		"Mapped 1/2 fields (50.0% coverage, 1 on the projected page)",
		"Employer (page 2, searched [2 3 1])",
		"Mapping written to out.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Audit") {
		t.Errorf("unexpected audit line:\n%s", out)
	}
}
