// Command pdf-fill-form fills a blank PDF form from a JSON mapping, or with
// --scan writes a blank JSON template of the form's fields.
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
	"github.com/a3tai/pdf-formmap/internal/output"
	"github.com/a3tai/pdf-formmap/internal/pdf"
)

var version = "dev" // This will be set by build flags

const name = "pdf-fill-form"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, positional, err := config.Load(config.AppFillForm, name, args)
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

	filler := pdf.NewFormFiller(cfg.MaxFileSize)

	if cfg.Scan {
		if len(positional) != 2 {
			fmt.Fprintf(stderr, "Usage: %s --scan <input_pdf> <output_json>\n", name)
			return 2
		}
		return scan(filler, positional[0], positional[1], stdout, stderr)
	}

	if len(positional) < 2 || len(positional) > 3 {
		fmt.Fprintf(stderr, "Usage: %s [options] <mapping_json> <template_pdf> [output_pdf]\n", name)
		return 2
	}
	mappingPath, templatePath := positional[0], positional[1]
	outputPath := defaultOutputPath(templatePath)
	if len(positional) == 3 {
		outputPath = positional[2]
	}

	values, err := output.ReadMappingFile(mappingPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	res, err := filler.Fill(templatePath, values, outputPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Filled %d of %d fields. Saved to: %s\n",
		res.Filled, res.Filled+len(res.Missing), res.Output)
	if len(res.Unknown) > 0 {
		fmt.Fprintf(stdout, "Ignored values with no matching field: %s\n", strings.Join(res.Unknown, ", "))
	}
	return 0
}

func scan(filler *pdf.FormFiller, pdfPath, jsonPath string, stdout, stderr io.Writer) int {
	widgets, err := filler.ScanFields(pdfPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	names := make([]string, len(widgets))
	for i, w := range widgets {
		names[i] = w.Name
	}
	if err := output.WriteTemplateFile(jsonPath, names); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Found %d fields. Template saved to: %s\n", len(names), jsonPath)
	return 0
}

// defaultOutputPath places the filled copy next to the template
func defaultOutputPath(templatePath string) string {
	ext := filepath.Ext(templatePath)
	return strings.TrimSuffix(templatePath, ext) + "_filled.pdf"
}
