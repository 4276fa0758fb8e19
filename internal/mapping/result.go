package mapping

import (
	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/layout"
)

// FieldResult records how one target field was resolved
type FieldResult struct {
	Name       string      `json:"name"`
	Type       string      `json:"type,omitempty"`
	Index      int         `json:"index"`
	TargetPage int         `json:"target_page"`
	TargetRect layout.Rect `json:"target_rect"`
	SourceRect layout.Rect `json:"source_rect"`
	// CandidatePage is the source page tried first
	CandidatePage int `json:"candidate_page"`
	// SourcePage is the page the value came from, 0 when unmatched
	SourcePage int        `json:"source_page_used"`
	Confidence Confidence `json:"confidence"`
	Value      string     `json:"value"`
	Tried      []int      `json:"pages_tried,omitempty"`
}

// Matched reports whether a non-empty value was found
func (f FieldResult) Matched() bool {
	return f.Confidence != ConfidenceUnmatched
}

// Err describes why an unmatched field has no value. It is nil for matched
// fields and is never returned from a run.
func (f FieldResult) Err() error {
	if f.Matched() {
		return nil
	}
	return maperrors.Newf(maperrors.ErrorTypeExtractionUnmatched, "extract",
		"field %s: no text found on pages %v", f.Name, f.Tried)
}

// Stats summarizes a run
type Stats struct {
	TotalFields   int     `json:"total_fields"`
	MatchedFields int     `json:"matched_fields"`
	PrimaryFields int     `json:"primary_fields"`
	CoverageRatio float64 `json:"coverage_ratio"`
}

// Result is the outcome of a completed run. Fields are in target
// declaration order.
type Result struct {
	RunID       string          `json:"run_id"`
	SourcePath  string          `json:"source"`
	TargetPath  string          `json:"target"`
	SourcePages int             `json:"source_pages"`
	TargetPages int             `json:"target_pages"`
	Transform   AffineTransform `json:"transform"`
	Anchors     []AnchorPair    `json:"anchors"`
	Fields      []FieldResult   `json:"fields"`
	Stats       Stats           `json:"stats"`

	// Source is the indexed source document, kept for diagnostics
	Source *layout.Document `json:"-"`
}

// Value returns the mapped value of the named field
func (r *Result) Value(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Unmatched returns the fields for which no text was found
func (r *Result) Unmatched() []FieldResult {
	var out []FieldResult
	for _, f := range r.Fields {
		if !f.Matched() {
			out = append(out, f)
		}
	}
	return out
}

// Coverage returns matched/total, or 0 when there is nothing to match
func Coverage(matched, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

func computeStats(fields []FieldResult) Stats {
	s := Stats{TotalFields: len(fields)}
	for _, f := range fields {
		if f.Matched() {
			s.MatchedFields++
		}
		if f.Confidence == ConfidencePrimary {
			s.PrimaryFields++
		}
	}
	s.CoverageRatio = Coverage(s.MatchedFields, s.TotalFields)
	return s
}
