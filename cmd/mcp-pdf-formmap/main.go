package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/a3tai/pdf-formmap/internal/config"
	"github.com/a3tai/pdf-formmap/internal/mcp"
	"github.com/a3tai/pdf-formmap/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging returns the server logger. Stdout carries the MCP protocol,
// so logs go to stderr and only when debug is enabled.
func setupLogging(cfg *config.Config, stderr io.Writer) *slog.Logger {
	if !cfg.IsDebug() {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.NewLogger(stderr)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, _, err := config.Load(config.AppServer, "mcp-pdf-formmap", args)
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion(stdout)
		return 0
	case errors.Is(err, pflag.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if err := cfg.EnsureDirectory(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	logger := setupLogging(cfg, stderr)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}
	logger.Debug("starting with configuration", "config", cfg.String())

	opts := cfg.MappingOptions()
	opts.Logger = logger
	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create PDF service: %v\n", err)
		return 1
	}

	server, err := mcp.NewServer(cfg, pdfService, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create MCP server: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// In stdio mode the parent process controls our lifecycle
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP PDF Form Mapper\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
