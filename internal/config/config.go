package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/layout"
	"github.com/a3tai/pdf-formmap/internal/mapping"
)

const (
	// Mode constants
	ModeStdio = "stdio"

	// Output formats
	FormatFlat     = "flat"
	FormatDetailed = "detailed"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultVersion     = "1.0.0"
	DefaultServerName  = "mcp-pdf-formmap"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "FORMMAP"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// App selects which command's flags are registered
type App int

const (
	AppMapFields App = iota
	AppFillForm
	AppReadText
	AppServer
)

// ErrVersionRequested is returned by Load when --version is present
var ErrVersionRequested = errors.New("version requested")

// Engine holds the tunable thresholds of the mapping engine
type Engine struct {
	WideFieldWidth  float64
	WideRightExtend float64
	NarrowMargin    float64
	OverlapFraction float64
	LineOverlap     float64
	AnchorEpsilon   float64
	MinAnchorLength int
	Anchors         []string
	Workers         int
}

// Config holds all configuration for the field mapper commands
type Config struct {
	// Server configuration
	Mode string

	// PDF configuration
	PDFDirectory string
	MaxFileSize  int64 // Maximum PDF file size in bytes

	// Output configuration
	Format    string
	AuditPath string
	Scan      bool

	Engine Engine

	// Application configuration
	ConfigFile string
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio,
		PDFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		Format:       FormatFlat,
		Engine: Engine{
			WideFieldWidth:  mapping.DefaultWideFieldWidth,
			WideRightExtend: mapping.DefaultWideRightExtend,
			NarrowMargin:    mapping.DefaultNarrowMargin,
			OverlapFraction: mapping.DefaultOverlapFraction,
			LineOverlap:     layout.DefaultLineOverlap,
			AnchorEpsilon:   mapping.DefaultAnchorEpsilon,
			MinAnchorLength: mapping.DefaultMinAnchorLength,
			Workers:         runtime.NumCPU(),
		},
		Version:    DefaultVersion,
		ServerName: DefaultServerName,
		LogLevel:   DefaultLogLevel,
	}
}

// Load resolves configuration for app from defaults, an optional config
// file, FORMMAP_* environment variables and args, in increasing order of
// precedence. It returns the remaining positional arguments.
func Load(app App, name string, args []string) (*Config, []string, error) {
	cfg := DefaultConfig()

	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return nil, nil, ErrVersionRequested
		}
	}

	v := viper.New()
	setupViperEnvironment(v, cfg)

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	defineCommandLineFlags(fs, app, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs, app, name)

	if err := fs.Parse(args); err != nil {
		return nil, nil, maperrors.Wrap(maperrors.ErrorTypeConfiguration, "flags", "", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, maperrors.Wrap(maperrors.ErrorTypeConfiguration, "read config", file, err)
		}
	}

	populateConfigFromViper(v, cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, fs.Args(), nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("format", cfg.Format)
	v.SetDefault("audit", cfg.AuditPath)
	v.SetDefault("scan", cfg.Scan)
	v.SetDefault("config", "")
	v.SetDefault("wide_field_width", cfg.Engine.WideFieldWidth)
	v.SetDefault("wide_right_extend", cfg.Engine.WideRightExtend)
	v.SetDefault("narrow_margin", cfg.Engine.NarrowMargin)
	v.SetDefault("overlap_fraction", cfg.Engine.OverlapFraction)
	v.SetDefault("line_overlap", cfg.Engine.LineOverlap)
	v.SetDefault("anchor_epsilon", cfg.Engine.AnchorEpsilon)
	v.SetDefault("min_anchor_length", cfg.Engine.MinAnchorLength)
	v.SetDefault("anchors", "")
	v.SetDefault("workers", cfg.Engine.Workers)
}

// flagKeys maps flag names to viper keys
var flagKeys = map[string]string{
	"mode":              "mode",
	"dir":               "dir",
	"loglevel":          "loglevel",
	"maxfilesize":       "maxfilesize",
	"config":            "config",
	"format":            "format",
	"audit":             "audit",
	"scan":              "scan",
	"wide-field-width":  "wide_field_width",
	"wide-right-extend": "wide_right_extend",
	"narrow-margin":     "narrow_margin",
	"overlap-fraction":  "overlap_fraction",
	"line-overlap":      "line_overlap",
	"anchor-epsilon":    "anchor_epsilon",
	"min-anchor-length": "min_anchor_length",
	"anchors":           "anchors",
	"workers":           "workers",
}

// defineCommandLineFlags sets up the flags of app
func defineCommandLineFlags(fs *pflag.FlagSet, app App, cfg *Config) {
	fs.String("config", "", "Configuration file (yaml, json or toml)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")

	switch app {
	case AppFillForm:
		fs.Bool("scan", cfg.Scan, "Scan the PDF and write a blank JSON template instead of filling")
		return
	case AppReadText:
		fs.Float64("line-overlap", cfg.Engine.LineOverlap, "Vertical overlap above which blocks share a line")
		return
	case AppServer:
		fs.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O")
		fs.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	case AppMapFields:
		fs.String("format", cfg.Format, "Output format: 'flat' mapping or 'detailed' report")
		fs.String("audit", cfg.AuditPath, "Write a per-field audit workbook (.xlsx) to this path")
	}

	e := cfg.Engine
	fs.Float64("wide-field-width", e.WideFieldWidth, "Fields wider than this are treated as paragraphs")
	fs.Float64("wide-right-extend", e.WideRightExtend, "Fraction of a wide field's width added on the right")
	fs.Float64("narrow-margin", e.NarrowMargin, "Margin added around narrow fields")
	fs.Float64("overlap-fraction", e.OverlapFraction, "Share of a text block that must fall inside the clip")
	fs.Float64("line-overlap", e.LineOverlap, "Vertical overlap above which blocks share a line")
	fs.Float64("anchor-epsilon", e.AnchorEpsilon, "Minimum anchor separation used for scale estimation")
	fs.Int("min-anchor-length", e.MinAnchorLength, "Minimum length of an anchor keyword")
	fs.StringSlice("anchors", nil, "Restrict calibration to these anchor keywords (comma separated)")
	fs.Int("workers", e.Workers, "Number of fields mapped concurrently")
}

// bindFlagsToViper binds every defined flag to its viper key
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = v.BindPFlag(key, f)
		}
	})
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, app App, name string) {
	fs.Usage = func() {
		printUsage(os.Stderr, fs, app, name)
	}
}

func printUsage(w io.Writer, fs *pflag.FlagSet, app App, name string) {
	switch app {
	case AppMapFields:
		fmt.Fprintf(w, "Usage: %s [options] <source_pdf> <target_pdf> <output_json>\n", name)
		fmt.Fprintf(w, "\nMaps the text of a filled source PDF onto the fields of a blank target form\n\n")
	case AppFillForm:
		fmt.Fprintf(w, "Usage: %s [options] <mapping_json> <template_pdf> [output_pdf]\n", name)
		fmt.Fprintf(w, "       %s --scan <pdf> <output_json>\n", name)
		fmt.Fprintf(w, "\nFills a blank PDF form from a JSON mapping\n\n")
	case AppReadText:
		fmt.Fprintf(w, "Usage: %s [options] <input_pdf> [output_json]\n", name)
		fmt.Fprintf(w, "\nExtracts the text of a PDF line by line in reading order\n\n")
	case AppServer:
		fmt.Fprintf(w, "Usage of %s:\n", name)
		fmt.Fprintf(w, "\nMCP PDF Form Mapper - A Model Context Protocol server for mapping and filling PDF forms\n\n")
	}
	fmt.Fprintf(w, "Options:\n")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintf(w, "\nEnvironment Variables:\n")
	fmt.Fprintf(w, "  %s_<KEY>  overrides any option, e.g. %s_LOGLEVEL, %s_WIDE_FIELD_WIDTH\n",
		EnvPrefix, EnvPrefix, EnvPrefix)
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = strings.ToLower(v.GetString("loglevel"))
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.ConfigFile = v.GetString("config")
	cfg.Format = strings.ToLower(v.GetString("format"))
	cfg.AuditPath = v.GetString("audit")
	cfg.Scan = v.GetBool("scan")

	cfg.Engine.WideFieldWidth = v.GetFloat64("wide_field_width")
	cfg.Engine.WideRightExtend = v.GetFloat64("wide_right_extend")
	cfg.Engine.NarrowMargin = v.GetFloat64("narrow_margin")
	cfg.Engine.OverlapFraction = v.GetFloat64("overlap_fraction")
	cfg.Engine.LineOverlap = v.GetFloat64("line_overlap")
	cfg.Engine.AnchorEpsilon = v.GetFloat64("anchor_epsilon")
	cfg.Engine.MinAnchorLength = v.GetInt("min_anchor_length")
	cfg.Engine.Anchors = stringList(v.Get("anchors"))
	cfg.Engine.Workers = v.GetInt("workers")
}

// stringList reads a list that may come from a flag, a config file array
// or a comma separated environment variable.
func stringList(raw any) []string {
	var items []string
	switch t := raw.(type) {
	case string:
		items = strings.Split(t, ",")
	case []string:
		items = t
	case []any:
		for _, item := range t {
			items = append(items, fmt.Sprint(item))
		}
	}

	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return maperrors.Newf(maperrors.ErrorTypeConfiguration, "validate", format, args...)
	}

	if c.Mode != ModeStdio {
		return invalid("mode must be 'stdio'")
	}

	if c.PDFDirectory == "" {
		return invalid("PDF directory cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return invalid("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return invalid("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.Format != FormatFlat && c.Format != FormatDetailed {
		return invalid("invalid format: %s (must be one of: flat, detailed)", c.Format)
	}

	e := c.Engine
	switch {
	case e.WideFieldWidth <= 0:
		return invalid("wide_field_width must be positive, got %g", e.WideFieldWidth)
	case e.WideRightExtend < 0:
		return invalid("wide_right_extend cannot be negative, got %g", e.WideRightExtend)
	case e.NarrowMargin < 0:
		return invalid("narrow_margin cannot be negative, got %g", e.NarrowMargin)
	case e.OverlapFraction < 0 || e.OverlapFraction >= 1:
		return invalid("overlap_fraction must be in [0,1), got %g", e.OverlapFraction)
	case e.LineOverlap <= 0 || e.LineOverlap > 1:
		return invalid("line_overlap must be in (0,1], got %g", e.LineOverlap)
	case e.AnchorEpsilon <= 0:
		return invalid("anchor_epsilon must be positive, got %g", e.AnchorEpsilon)
	case e.MinAnchorLength < 0:
		return invalid("min_anchor_length cannot be negative, got %d", e.MinAnchorLength)
	case e.Workers < 1:
		return invalid("workers must be at least 1, got %d", e.Workers)
	}

	return nil
}

// EnsureDirectory creates the PDF directory when it does not exist yet
func (c *Config) EnsureDirectory() error {
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}
	return nil
}

// MappingOptions converts the engine settings into mapper options
func (c *Config) MappingOptions() mapping.Options {
	opts := mapping.DefaultOptions()
	opts.Index.LineOverlap = c.Engine.LineOverlap
	opts.Calibration = mapping.CalibrationOptions{
		Epsilon:          c.Engine.AnchorEpsilon,
		MinKeywordLength: c.Engine.MinAnchorLength,
		Keywords:         c.Engine.Anchors,
	}
	opts.Clip = mapping.ClipOptions{
		WideFieldWidth:  c.Engine.WideFieldWidth,
		WideRightExtend: c.Engine.WideRightExtend,
		NarrowMargin:    c.Engine.NarrowMargin,
		OverlapFraction: c.Engine.OverlapFraction,
	}
	opts.Workers = c.Engine.Workers
	return opts
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, Format: %s, Workers: %d}",
		c.Mode, c.PDFDirectory, c.LogLevel, c.MaxFileSize, c.Format, c.Engine.Workers)
}
