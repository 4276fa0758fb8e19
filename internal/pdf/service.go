package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/a3tai/pdf-formmap/internal/descriptions"
	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/mapping"
	"github.com/a3tai/pdf-formmap/internal/output"
	"github.com/a3tai/pdf-formmap/internal/pdf/security"
)

// Service exposes the mapping, filling and scanning operations with every
// path confined to the configured directory
type Service struct {
	maxFileSize   int64
	loader        *Loader
	validator     *Validator
	filler        *FormFiller
	search        *Search
	pathValidator *security.PathValidator
	mapOptions    mapping.Options
	logger        *slog.Logger
}

// NewService creates a new PDF service with all components
func NewService(maxFileSize int64, configuredDirectory string, opts mapping.Options) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		maxFileSize:   maxFileSize,
		loader:        NewLoader(maxFileSize, logger),
		validator:     NewValidator(maxFileSize),
		filler:        NewFormFiller(maxFileSize),
		search:        NewSearch(5, 100, 3*time.Second), // max 5 levels, 100 files, 3 second limit
		pathValidator: pathValidator,
		mapOptions:    opts,
		logger:        logger,
	}, nil
}

// MapFields maps the text of the source PDF onto the fields of the target
// form. The mapping is written to OutputPath and the audit workbook to
// AuditPath when they are set.
func (s *Service) MapFields(ctx context.Context, req PDFMapFieldsRequest) (*PDFMapFieldsResult, error) {
	source, err := s.pathValidator.Resolve(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	target, err := s.pathValidator.Resolve(req.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	format, err := output.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	var outputPath, auditPath string
	if req.OutputPath != "" {
		if outputPath, err = s.pathValidator.ResolveOutput(req.OutputPath); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}
	if req.AuditPath != "" {
		if auditPath, err = s.pathValidator.ResolveOutput(req.AuditPath); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}

	res, err := mapping.NewMapper(s.loader, s.mapOptions).MapFiles(ctx, source, target)
	if err != nil {
		return nil, err
	}

	if outputPath != "" {
		if err := output.WriteMappingFile(outputPath, res, format); err != nil {
			return nil, err
		}
	}
	if auditPath != "" {
		if err := output.WriteAuditFile(auditPath, res, res.Source); err != nil {
			return nil, err
		}
	}

	result := &PDFMapFieldsResult{
		RunID:      res.RunID,
		Format:     string(format),
		Mapping:    output.Mapping(res),
		Unmatched:  []string{},
		Stats:      res.Stats,
		Transform:  res.Transform,
		OutputPath: outputPath,
		AuditPath:  auditPath,
	}
	for _, f := range res.Unmatched() {
		result.Unmatched = append(result.Unmatched, f.Name)
	}
	if format == output.FormatDetailed {
		result.Fields = res.Fields
		result.Anchors = res.Anchors
	}
	return result, nil
}

// FillForm fills the template form with values from MappingPath, or from
// the inline Values when no mapping file is given
func (s *Service) FillForm(req PDFFillFormRequest) (*PDFFillFormResult, error) {
	template, err := s.pathValidator.Resolve(req.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if req.OutputPath == "" {
		return nil, maperrors.New(maperrors.ErrorTypeConfiguration, "fill", "output path is required")
	}
	outputPath, err := s.pathValidator.ResolveOutput(req.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	values := req.Values
	if req.MappingPath != "" {
		mappingPath, err := s.pathValidator.Resolve(req.MappingPath)
		if err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
		if values, err = output.ReadMappingFile(mappingPath); err != nil {
			return nil, err
		}
	}
	if len(values) == 0 {
		return nil, maperrors.New(maperrors.ErrorTypeConfiguration, "fill", "no values to fill: provide mapping_path or values")
	}

	res, err := s.filler.Fill(template, values, outputPath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("filled form", "template", template, "output", outputPath,
		"filled", res.Filled, "missing", len(res.Missing), "unknown", len(res.Unknown))

	return &PDFFillFormResult{
		FillResult: *res,
		Total:      res.Filled + len(res.Missing),
	}, nil
}

// ScanFields lists the fields of a form and optionally writes a blank
// JSON template for it
func (s *Service) ScanFields(req PDFScanFieldsRequest) (*PDFScanFieldsResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	widgets, err := s.filler.ScanFields(path)
	if err != nil {
		return nil, err
	}

	result := &PDFScanFieldsResult{
		Path:       path,
		Fields:     widgets,
		TotalCount: len(widgets),
	}
	if result.Fields == nil {
		result.Fields = []Widget{}
	}

	if req.TemplatePath != "" {
		templatePath, err := s.pathValidator.ResolveOutput(req.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
		names := make([]string, len(widgets))
		for i, w := range widgets {
			names[i] = w.Name
		}
		if err := output.WriteTemplateFile(templatePath, names); err != nil {
			return nil, err
		}
		result.TemplatePath = templatePath
	}
	return result, nil
}

// ReadText extracts the lines of every page in reading order, plus the
// current form field values, and optionally writes them to OutputPath
func (s *Service) ReadText(req PDFReadTextRequest) (*PDFReadTextResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	var outputPath string
	if req.OutputPath != "" {
		if outputPath, err = s.pathValidator.ResolveOutput(req.OutputPath); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}

	doc, err := s.loader.LoadDocument(path, s.mapOptions.Index)
	if err != nil {
		return nil, err
	}
	text := output.Text(doc)

	if outputPath != "" {
		if err := output.WriteTextFile(outputPath, text); err != nil {
			return nil, err
		}
	}
	return &PDFReadTextResult{TextDocument: *text, OutputPath: outputPath}, nil
}

// ValidateFile reports whether a file passes the checks done before a PDF
// is opened. A failed check is a result, not an error.
func (s *Service) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	result := &PDFValidateFileResult{Path: path, Valid: s.validator.IsValidPDF(path)}
	if result.Valid {
		result.Message = "File is a valid PDF"
	} else {
		result.Message = s.validator.ValidateFile(path).Error()
	}
	return result, nil
}

// SearchDirectory searches for PDF files in a directory below the
// configured one
func (s *Service) SearchDirectory(ctx context.Context, req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	dir := req.Directory
	if dir == "" {
		dir = s.pathValidator.Root()
	}
	dir, err := s.pathValidator.Resolve(dir)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.search.SearchDirectory(ctx, dir, req.Query)
}

// ServerInfo describes the server, its tools and the PDFs it can reach
func (s *Service) ServerInfo(ctx context.Context, serverName, version string) (*PDFServerInfoResult, error) {
	result := &PDFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  s.pathValidator.Root(),
		MaxFileSize:       s.maxFileSize,
		AvailableTools:    availableTools(),
		DirectoryContents: []FileInfo{},
		UsageGuidance:     usageGuidance,
	}

	files, err := s.search.SearchDirectory(ctx, s.pathValidator.Root(), "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// A missing directory still yields server info
		s.logger.Warn("cannot list configured directory", "dir", s.pathValidator.Root(), "error", err)
		return result, nil
	}
	result.DirectoryContents = files.Files
	return result, nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// GetConfiguredDirectory returns the directory all paths are confined to
func (s *Service) GetConfiguredDirectory() string {
	return s.pathValidator.Root()
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "pdf_map_fields",
			Description: descriptions.GetToolDescription("pdf_map_fields"),
			Parameters:  "source_path, target_path (required); output_path, format (flat|detailed), audit_path (optional)",
		},
		{
			Name:        "pdf_fill_form",
			Description: descriptions.GetToolDescription("pdf_fill_form"),
			Parameters:  "template_path, output_path (required); mapping_path or values (one required)",
		},
		{
			Name:        "pdf_scan_fields",
			Description: descriptions.GetToolDescription("pdf_scan_fields"),
			Parameters:  "path (required); template_path (optional)",
		},
		{
			Name:        "pdf_read_text",
			Description: descriptions.GetToolDescription("pdf_read_text"),
			Parameters:  "path (required); output_path (optional)",
		},
		{
			Name:        "pdf_validate_file",
			Description: descriptions.GetToolDescription("pdf_validate_file"),
			Parameters:  "path (required)",
		},
		{
			Name:        "pdf_search_directory",
			Description: descriptions.GetToolDescription("pdf_search_directory"),
			Parameters:  "directory, query (optional)",
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Parameters:  "none",
		},
	}
}

const usageGuidance = `Typical workflow:
1. pdf_search_directory to find the filled document and the blank form
2. pdf_validate_file on each, then pdf_scan_fields on the blank form to see its field names
3. pdf_map_fields with the filled document as source and the blank form as target
4. pdf_fill_form with the mapping to produce a filled copy of the form

pdf_read_text shows the plain text of a document line by line, which helps when choosing anchor keywords.

Paths are relative to the default directory. Fields reported as unmatched have an empty value; format "detailed" shows the pages that were searched for each field.`
