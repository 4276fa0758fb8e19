package mapping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-formmap/internal/layout"
)

func textRun(text string, x0, y0, x1, y1 float64) layout.TextRun {
	return layout.TextRun{Rect: layout.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}, Text: text}
}

func buildDoc(t *testing.T, pages ...layout.RawPage) *layout.Document {
	t.Helper()
	for i := range pages {
		pages[i].Number = i + 1
		if pages[i].Width == 0 {
			pages[i].Width = 612
		}
		if pages[i].Height == 0 {
			pages[i].Height = 792
		}
	}
	doc, err := layout.Build("test.pdf", pages, layout.DefaultIndexOptions())
	require.NoError(t, err)
	return doc
}
