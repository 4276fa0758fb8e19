// Command pdf-map-fields reads the text of a filled PDF at the positions of
// a blank form's fields and writes the values as JSON keyed by field name.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/a3tai/pdf-formmap/internal/config"
	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/mapping"
	"github.com/a3tai/pdf-formmap/internal/output"
	"github.com/a3tai/pdf-formmap/internal/pdf"
)

var version = "dev" // This will be set by build flags

const name = "pdf-map-fields"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, positional, err := config.Load(config.AppMapFields, name, args)
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

	if len(positional) != 3 {
		fmt.Fprintf(stderr, "Usage: %s [options] <source_pdf> <target_pdf> <output_json>\n", name)
		return 2
	}
	sourcePath, targetPath, outputPath := positional[0], positional[1], positional[2]

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger := cfg.NewLogger(stderr)
	opts := cfg.MappingOptions()
	opts.Logger = logger

	loader := pdf.NewLoader(cfg.MaxFileSize, logger)
	res, err := mapping.NewMapper(loader, opts).MapFiles(ctx, sourcePath, targetPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if maperrors.TypeOf(err) == maperrors.ErrorTypeCalibration {
			fmt.Fprintf(stderr, "The documents need at least %d keywords printed on page 1 of both; use --anchors to choose them.\n",
				mapping.MinAnchorPairs)
		}
		return 1
	}

	if err := output.WriteMappingFile(outputPath, res, format); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if cfg.AuditPath != "" {
		if err := output.WriteAuditFile(cfg.AuditPath, res, res.Source); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	printSummary(stdout, res, outputPath, cfg.AuditPath)
	return 0
}

// printSummary reports coverage and the fields that could not be filled
func printSummary(w io.Writer, res *mapping.Result, outputPath, auditPath string) {
	fmt.Fprintf(w, "Transform: %s\n", res.Transform)
	fmt.Fprintf(w, "Mapped %d/%d fields (%.1f%% coverage, %d on the projected page)\n",
		res.Stats.MatchedFields, res.Stats.TotalFields, res.Stats.CoverageRatio*100, res.Stats.PrimaryFields)

	if unmatched := res.Unmatched(); len(unmatched) > 0 {
		fmt.Fprintf(w, "Unmatched fields:\n")
		for _, f := range unmatched {
			fmt.Fprintf(w, "  %s (page %d, searched %v)\n", f.Name, f.TargetPage, f.Tried)
		}
	}

	fmt.Fprintf(w, "Mapping written to %s\n", outputPath)
	if auditPath != "" {
		fmt.Fprintf(w, "Audit written to %s\n", auditPath)
	}
}
