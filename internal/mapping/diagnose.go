package mapping

import (
	"github.com/a3tai/pdf-formmap/internal/layout"
)

// DefaultDiagnoseRadius is how far around a mapped rect nearby text is listed
const DefaultDiagnoseRadius = 50.0

// NearbyText is the text found around a field's mapped rect on one page
type NearbyText struct {
	Page   int                `json:"page"`
	Clip   layout.Rect        `json:"clip"`
	Blocks []layout.TextBlock `json:"blocks"`
}

// Diagnose lists the text surrounding a field's source rect on every page
// the search examined, so unmatched fields can be inspected by hand.
func Diagnose(source *layout.Document, f FieldResult, radius float64) []NearbyText {
	if radius <= 0 {
		radius = DefaultDiagnoseRadius
	}

	var out []NearbyText
	for _, n := range f.Tried {
		page := source.Page(n)
		if page == nil {
			continue
		}
		clip := f.SourceRect.Expand(radius).Clamp(page.Width, page.Height)
		out = append(out, NearbyText{
			Page:   n,
			Clip:   clip,
			Blocks: page.Query(clip),
		})
	}
	return out
}
