package mapping

import (
	"strings"

	"github.com/a3tai/pdf-formmap/internal/layout"
)

// Confidence tells how a field value was found
type Confidence string

const (
	ConfidencePrimary   Confidence = "primary"
	ConfidenceFallback  Confidence = "fallback"
	ConfidenceUnmatched Confidence = "unmatched"
)

// SearchOffsets is the page order tried relative to the candidate page
var SearchOffsets = []int{0, 1, 2, 3, -1}

// SearchResult is the outcome of a cross-page search for one field
type SearchResult struct {
	Value      string
	Confidence Confidence
	// SourcePage is the page the value came from, 0 when unmatched
	SourcePage int
	// Tried lists the pages examined, in order
	Tried []int
}

// CrossPageSearcher retries extraction on neighbouring pages when the
// candidate page yields nothing.
type CrossPageSearcher struct {
	extractor *ClipExtractor
	offsets   []int
}

// NewCrossPageSearcher creates a searcher using the standard offset order
func NewCrossPageSearcher(extractor *ClipExtractor) *CrossPageSearcher {
	return &CrossPageSearcher{extractor: extractor, offsets: SearchOffsets}
}

// Search looks for text inside r starting at the candidate page
func (s *CrossPageSearcher) Search(doc *layout.Document, candidate int, r layout.Rect, wide bool) SearchResult {
	result := SearchResult{Confidence: ConfidenceUnmatched}

	for _, off := range s.offsets {
		page := doc.Page(candidate + off)
		if page == nil {
			continue
		}
		result.Tried = append(result.Tried, page.Number)

		text := CleanValue(s.extractor.Extract(page, r, wide))
		if text == "" {
			continue
		}

		result.Value = text
		result.SourcePage = page.Number
		result.Confidence = ConfidenceFallback
		if off == 0 {
			result.Confidence = ConfidencePrimary
		}
		return result
	}
	return result
}

// CleanValue strips leading colon artifacts left from label text and trims
func CleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":")
	return strings.TrimSpace(s)
}
