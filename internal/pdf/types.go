package pdf

import (
	"github.com/a3tai/pdf-formmap/internal/mapping"
	"github.com/a3tai/pdf-formmap/internal/output"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// PDFMapFieldsRequest asks for the text of a filled source PDF to be mapped
// onto the fields of a blank target form
type PDFMapFieldsRequest struct {
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
	OutputPath string `json:"output_path,omitempty"`
	Format     string `json:"format,omitempty"`
	AuditPath  string `json:"audit_path,omitempty"`
}

// PDFFillFormRequest fills a blank form from a mapping file or inline values
type PDFFillFormRequest struct {
	TemplatePath string            `json:"template_path"`
	OutputPath   string            `json:"output_path"`
	MappingPath  string            `json:"mapping_path,omitempty"`
	Values       map[string]string `json:"values,omitempty"`
}

// PDFScanFieldsRequest lists the fields of a form
type PDFScanFieldsRequest struct {
	Path         string `json:"path"`
	TemplatePath string `json:"template_path,omitempty"`
}

// PDFSearchDirectoryRequest represents a request to search for PDF files in a directory
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query,omitempty"`
}

// PDFReadTextRequest extracts the plain text of a PDF page by page
type PDFReadTextRequest struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
}

// PDFValidateFileRequest checks whether a file can be opened as a PDF
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct {
	// No parameters needed for server info
}

// Result Types

// PDFMapFieldsResult is the outcome of a mapping run
type PDFMapFieldsResult struct {
	RunID      string                  `json:"run_id"`
	Format     string                  `json:"format"`
	Mapping    output.OrderedMap       `json:"mapping"`
	Fields     []mapping.FieldResult   `json:"fields,omitempty"`
	Unmatched  []string                `json:"unmatched"`
	Stats      mapping.Stats           `json:"stats"`
	Transform  mapping.AffineTransform `json:"transform"`
	Anchors    []mapping.AnchorPair    `json:"anchors,omitempty"`
	OutputPath string                  `json:"output_path,omitempty"`
	AuditPath  string                  `json:"audit_path,omitempty"`
}

// PDFFillFormResult reports a completed fill
type PDFFillFormResult struct {
	FillResult
	Total int `json:"total_fields"`
}

// PDFScanFieldsResult lists the widgets of a form
type PDFScanFieldsResult struct {
	Path         string   `json:"path"`
	Fields       []Widget `json:"fields"`
	TotalCount   int      `json:"total_count"`
	TemplatePath string   `json:"template_path,omitempty"`
}

// PDFSearchDirectoryResult represents the result of searching for PDFs
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
	Truncated   bool       `json:"truncated,omitempty"`
}

// PDFReadTextResult is the reading-order text of every page
type PDFReadTextResult struct {
	output.TextDocument
	OutputPath string `json:"output_path,omitempty"`
}

// PDFValidateFileResult reports whether a file passes the pre-open checks
type PDFValidateFileResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}
