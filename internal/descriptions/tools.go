package descriptions

import "sort"

// Tool descriptions shown to MCP clients, with practical examples

const (
	PDFMapFieldsDescription = `Transfer the text of a filled PDF onto the fields of a blank PDF form with a similar layout.

**When to use:** You have a filled document (for example a completed application) and the blank fillable form it was produced from, and need the values keyed by the form's field names.

**How it works:** Keywords printed on both documents ("Name", "Date of birth") are used as anchors to estimate the scale and offset between the two layouts. Each form field is projected onto the filled document and the text found there is read back. When nothing is found on the field's own page, the following pages and then the previous page are tried.

**Examples:**
• Migrate a completed form: "Map filled-application.pdf onto blank-application.pdf and save mapping.json"
• Review extraction quality: "Map with format detailed and an audit workbook to see which fields were not found"

**Common workflows:**
1. Form migration: pdf_map_fields → review unmatched fields → pdf_fill_form
2. Template check: pdf_scan_fields on the blank form → pdf_map_fields

**Result:** field values in form order, per-field confidence (primary, fallback, unmatched) and the coverage ratio. Unmatched fields are reported with an empty value rather than failing the run.`

	PDFFillFormDescription = `Fill a blank PDF form from a JSON mapping of field names to values.

**When to use:** After pdf_map_fields, or with any JSON object whose keys are form field names.

**Input formats:** A flat object ({"Name": "Jane"}), the detailed report written by pdf_map_fields, or nested JSON with a "form_fields" object. Checkbox values such as "yes", "true", "x" or "1" tick the box.

**Examples:**
• Complete a form: "Fill blank-application.pdf with mapping.json into filled-copy.pdf"
• Round trip: "Map old.pdf onto new-form.pdf, then fill new-form.pdf with the result"

**Result:** the output path plus the fields that were filled, left empty, or named in the mapping but absent from the form.`

	PDFScanFieldsDescription = `List the fillable fields of a PDF form and optionally write a blank JSON template.

**When to use:** Before filling a form by hand, or to check which field names pdf_map_fields will produce.

**Examples:**
• Inspect a form: "Which fields does blank-application.pdf have?"
• Create a template: "Scan blank-application.pdf and write template.json"

**Result:** fields in page and declaration order with their type and rectangle in top-left page coordinates.`

	PDFReadTextDescription = `Extract the plain text of a PDF page by page, in reading order.

**When to use:** To see what a filled document says before mapping it, or to pick anchor keywords that appear on both documents.

**Examples:**
• "Show me the text of filled-application.pdf"
• "Extract filled-application.pdf to filled-application_extracted.json"

**Result:** file metadata and, for each page, its lines top to bottom with fragments of one line joined by spaces. Pages with form fields also list the current field values.`

	PDFValidateFileDescription = `Check whether a file is a PDF the server can open.

**When to use:** Before mapping or filling, to catch missing, empty, oversized or non-PDF files early.

**Result:** the resolved path, whether it is valid, and the reason when it is not.`

	PDFSearchDirectoryDescription = `Find PDF files in the configured directory.

**When to use:** To locate the filled and blank documents before mapping.

**Examples:**
• "List all PDFs in the forms directory"
• "Find PDFs whose name contains application"`

	PDFServerInfoDescription = `Get server information, available tools and the PDFs in the configured directory.

**When to use:** At the start of a session to learn which directory is served and which tools exist.

**Result:** server name, version, directory, file size limit, tool list and the PDFs found.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_map_fields":       PDFMapFieldsDescription,
	"pdf_fill_form":        PDFFillFormDescription,
	"pdf_scan_fields":      PDFScanFieldsDescription,
	"pdf_read_text":        PDFReadTextDescription,
	"pdf_validate_file":    PDFValidateFileDescription,
	"pdf_search_directory": PDFSearchDirectoryDescription,
	"pdf_server_info":      PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns all tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
