package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/pdf-formmap/internal/pdf/pdftest"
)

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"letter.pdf", "letter_extracted.json"},
		{"/data/scan.v2.PDF", "/data/scan.v2_extracted.json"},
		{"noext", "noext_extracted.json"},
	}

	for _, tt := range tests {
		if got := defaultOutputPath(tt.in); got != tt.want {
			t.Errorf("defaultOutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"too many arguments", []string{"a.pdf", "b.json", "c.json"}},
		{"unknown flag", []string{"--format", "flat", "a.pdf"}},
		{"invalid line overlap", []string{"--line-overlap", "2", "a.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != 2 {
				t.Errorf("expected exit code 2, got %d (%s)", code, stderr.String())
			}
		})
	}
}

func TestRun_MissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "missing.pdf")}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "OPEN_ERROR") {
		t.Errorf("expected open error, got: %s", stderr.String())
	}
}

func TestRun_DefaultOutput(t *testing.T) {
	dir := t.TempDir()
	source, _ := pdftest.WriteFormPair(t, dir)

	var stdout, stderr bytes.Buffer
	if code := run([]string{source}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Extracted 2 lines from 1 pages") {
		t.Errorf("unexpected summary: %s", stdout.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "filled_extracted.json"))
	if err != nil {
		t.Fatalf("expected default output file: %v", err)
	}
	var got struct {
		Metadata struct {
			FileName       string `json:"file_name"`
			ExtractionMode string `json:"extraction_mode"`
		} `json:"metadata"`
		Pages []struct {
			PageNumber int      `json:"page_number"`
			Lines      []string `json:"lines"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Metadata.FileName != "filled.pdf" || got.Metadata.ExtractionMode != "flat" {
		t.Errorf("unexpected metadata %+v", got.Metadata)
	}
	if len(got.Pages) != 1 || strings.Join(got.Pages[0].Lines, "|") != "Name JANE DOE|Address 12 HIGH STREET" {
		t.Errorf("unexpected pages %+v", got.Pages)
	}
}
