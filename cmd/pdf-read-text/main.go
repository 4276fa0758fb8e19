// Command pdf-read-text extracts the text of a PDF line by line, in the
// same reading order the field mapper uses, and writes it as JSON.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/a3tai/pdf-formmap/internal/config"
	"github.com/a3tai/pdf-formmap/internal/layout"
	"github.com/a3tai/pdf-formmap/internal/output"
	"github.com/a3tai/pdf-formmap/internal/pdf"
)

var version = "dev" // This will be set by build flags

const name = "pdf-read-text"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, positional, err := config.Load(config.AppReadText, name, args)
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		fmt.Fprintf(stdout, "%s %s\n", name, version)
		return 0
	case errors.Is(err, pflag.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if len(positional) < 1 || len(positional) > 2 {
		fmt.Fprintf(stderr, "Usage: %s [options] <input_pdf> [output_json]\n", name)
		return 2
	}
	inputPath := positional[0]
	outputPath := defaultOutputPath(inputPath)
	if len(positional) == 2 {
		outputPath = positional[1]
	}

	loader := pdf.NewLoader(cfg.MaxFileSize, cfg.NewLogger(stderr))
	doc, err := loader.LoadDocument(inputPath, layout.IndexOptions{LineOverlap: cfg.Engine.LineOverlap})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	text := output.Text(doc)
	if err := output.WriteTextFile(outputPath, text); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	lines := 0
	for _, p := range text.Pages {
		lines += p.LineCount
	}
	fmt.Fprintf(stdout, "Extracted %d lines from %d pages. Saved to: %s\n",
		lines, text.Metadata.TotalPages, outputPath)
	return 0
}

// defaultOutputPath places the extraction next to the input
func defaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_extracted.json"
}
