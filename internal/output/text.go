package output

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/a3tai/pdf-formmap/internal/layout"
	"github.com/a3tai/pdf-formmap/internal/mapping"
)

// ExtractionModeFlat names the plain line-by-line extraction
const ExtractionModeFlat = "flat"

// TextMetadata describes the document a text extraction came from
type TextMetadata struct {
	FileName       string `json:"file_name"`
	FilePath       string `json:"file_path"`
	TotalPages     int    `json:"total_pages"`
	ExtractionMode string `json:"extraction_mode"`
}

// PageText is the reading-order text of one page. FormFields holds the
// current widget values and is omitted for pages without fields.
type PageText struct {
	PageNumber int        `json:"page_number"`
	LineCount  int        `json:"line_count"`
	Lines      []string   `json:"lines"`
	FormFields OrderedMap `json:"form_fields,omitempty"`
}

// TextDocument is a plain extraction of every page of a PDF
type TextDocument struct {
	Metadata TextMetadata `json:"metadata"`
	Pages    []PageText   `json:"pages"`
}

// Text extracts the lines of every page of doc in reading order
func Text(doc *layout.Document) *TextDocument {
	td := &TextDocument{
		Metadata: TextMetadata{
			FileName:       filepath.Base(doc.Path),
			FilePath:       doc.Path,
			TotalPages:     doc.PageCount(),
			ExtractionMode: ExtractionModeFlat,
		},
		Pages: make([]PageText, 0, doc.PageCount()),
	}

	for _, page := range doc.Pages {
		pt := PageText{PageNumber: page.Number, Lines: []string{}}
		if len(page.Blocks) > 0 {
			pt.Lines = strings.Split(mapping.JoinBlocks(page.Blocks), "\n")
		}
		pt.LineCount = len(pt.Lines)
		for _, f := range page.Fields {
			pt.FormFields = append(pt.FormFields, Entry{Key: f.Name, Value: f.Value})
		}
		td.Pages = append(td.Pages, pt)
	}
	return td
}

// WriteText writes td as indented JSON
func WriteText(w io.Writer, td *TextDocument) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(td)
}

// WriteTextFile writes td to path, creating parent directories as needed
func WriteTextFile(path string, td *TextDocument) error {
	var buf bytes.Buffer
	if err := WriteText(&buf, td); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
