package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdf-formmap/internal/config"
	"github.com/a3tai/pdf-formmap/internal/descriptions"
	"github.com/a3tai/pdf-formmap/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pdfMapFieldsTool := mcp.NewTool(
		"pdf_map_fields",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_map_fields")),
		mcp.WithString("source_path",
			mcp.Required(),
			mcp.Description("Filled PDF the values are read from"),
		),
		mcp.WithString("target_path",
			mcp.Required(),
			mcp.Description("Blank fillable PDF whose fields are mapped"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional path for the mapping JSON file"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: flat mapping or detailed report"),
			mcp.Enum("flat", "detailed"),
		),
		mcp.WithString("audit_path",
			mcp.Description("Optional path for an .xlsx audit workbook"),
		),
	)
	s.mcpServer.AddTool(pdfMapFieldsTool, s.handlePDFMapFields)

	pdfFillFormTool := mcp.NewTool(
		"pdf_fill_form",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_fill_form")),
		mcp.WithString("template_path",
			mcp.Required(),
			mcp.Description("Blank fillable PDF"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Where the filled PDF is written"),
		),
		mcp.WithString("mapping_path",
			mcp.Description("JSON mapping file, flat or as written by pdf_map_fields"),
		),
		mcp.WithObject("values",
			mcp.Description("Inline field values, used when mapping_path is not given"),
		),
	)
	s.mcpServer.AddTool(pdfFillFormTool, s.handlePDFFillForm)

	pdfScanFieldsTool := mcp.NewTool(
		"pdf_scan_fields",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_scan_fields")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("PDF form to scan"),
		),
		mcp.WithString("template_path",
			mcp.Description("Optional path for a blank JSON template"),
		),
	)
	s.mcpServer.AddTool(pdfScanFieldsTool, s.handlePDFScanFields)

	pdfReadTextTool := mcp.NewTool(
		"pdf_read_text",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_read_text")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("PDF to extract"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional path for the extracted JSON"),
		),
	)
	s.mcpServer.AddTool(pdfReadTextTool, s.handlePDFReadText)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file to validate"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfSearchDirectoryTool := mcp.NewTool(
		"pdf_search_directory",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_search_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive file name filter"),
		),
	)
	s.mcpServer.AddTool(pdfSearchDirectoryTool, s.handlePDFSearchDirectory)

	pdfServerInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	)
	s.mcpServer.AddTool(pdfServerInfoTool, s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFMapFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := request.RequireString("target_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFMapFieldsRequest{
		SourcePath: source,
		TargetPath: target,
		OutputPath: request.GetString("output_path", ""),
		Format:     request.GetString("format", s.config.Format),
		AuditPath:  request.GetString("audit_path", ""),
	}

	result, err := s.pdfService.MapFields(ctx, req)
	if err != nil {
		s.logger.Warn("field mapping failed", "source", source, "target", target, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.jsonResult(formatMapSummary(result), result)
}

func (s *Server) handlePDFFillForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	template, err := request.RequireString("template_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := request.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFFillFormRequest{
		TemplatePath: template,
		OutputPath:   outputPath,
		MappingPath:  request.GetString("mapping_path", ""),
	}
	if raw, ok := request.GetArguments()["values"].(map[string]any); ok {
		req.Values = make(map[string]string, len(raw))
		for k, v := range raw {
			if v == nil {
				continue
			}
			req.Values[k] = fmt.Sprint(v)
		}
	}

	result, err := s.pdfService.FillForm(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := fmt.Sprintf("Filled %d of %d fields into %s", result.Filled, result.Total, result.Output)
	if len(result.Unknown) > 0 {
		summary += fmt.Sprintf("\nIgnored %d value(s) with no matching field: %s",
			len(result.Unknown), strings.Join(result.Unknown, ", "))
	}
	return s.jsonResult(summary, result)
}

func (s *Server) handlePDFScanFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ScanFields(pdf.PDFScanFieldsRequest{
		Path:         path,
		TemplatePath: request.GetString("template_path", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := fmt.Sprintf("Found %d form field(s) in %s", result.TotalCount, result.Path)
	if result.TemplatePath != "" {
		summary += fmt.Sprintf("\nTemplate written to %s", result.TemplatePath)
	}
	return s.jsonResult(summary, result)
}

func (s *Server) handlePDFReadText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ReadText(pdf.PDFReadTextRequest{
		Path:       path,
		OutputPath: request.GetString("output_path", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := fmt.Sprintf("Extracted %d page(s) from %s", result.Metadata.TotalPages, result.Metadata.FilePath)
	if result.OutputPath != "" {
		summary += fmt.Sprintf("\nText written to %s", result.OutputPath)
	}
	return s.jsonResult(summary, result)
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("✅ %s is a valid PDF", result.Path)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("❌ %s is not a valid PDF: %s", result.Path, result.Message)), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	req := pdf.PDFSearchDirectoryRequest{
		Directory: request.GetString("directory", ""),
		Query:     request.GetString("query", ""),
	}

	result, err := s.pdfService.SearchDirectory(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = formatSearchResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(ctx, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfo(result)), nil
}

// jsonResult returns the summary line followed by the indented JSON result
func (s *Server) jsonResult(summary string, v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(summary + "\n\n" + string(data)), nil
}

func formatMapSummary(result *pdf.PDFMapFieldsResult) string {
	text := fmt.Sprintf("Mapped %d of %d fields (coverage %.1f%%)",
		result.Stats.MatchedFields, result.Stats.TotalFields, result.Stats.CoverageRatio*100)
	if len(result.Unmatched) > 0 {
		text += fmt.Sprintf("\nUnmatched: %s", strings.Join(result.Unmatched, ", "))
	}
	if result.OutputPath != "" {
		text += fmt.Sprintf("\nMapping written to %s", result.OutputPath)
	}
	if result.AuditPath != "" {
		text += fmt.Sprintf("\nAudit written to %s", result.AuditPath)
	}
	return text
}

func formatSearchResult(result *pdf.PDFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in %s", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf(" matching '%s'", result.SearchQuery)
	}
	text += ":\n\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n\n", file.ModifiedTime)
	}
	if result.Truncated {
		text += "Results truncated, narrow the search with a query or directory.\n"
	}

	return text
}

func formatServerInfo(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run serves MCP over stdio until the client disconnects
func (s *Server) Run(_ context.Context) error {
	s.logger.Info("starting PDF form mapping MCP server",
		"mode", s.config.Mode, "dir", s.config.PDFDirectory)

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
