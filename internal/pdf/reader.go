package pdf

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/pdf-formmap/internal/layout"
)

// Glyph grouping thresholds, as fractions of the font size
const (
	baselineTolerance = 0.3
	wordGapFraction   = 0.15
	defaultFontSize   = 10.0
)

// PageText holds the positioned words of one page in PDF user space
// (origin bottom-left) before conversion to layout coordinates.
type PageText struct {
	Number int
	Words  []Word
}

// Word is a run of adjacent glyphs sharing a baseline
type Word struct {
	Text     string
	X0, X1   float64
	Baseline float64
	FontSize float64
}

// Reader extracts positioned text from PDF files with ledongthuc/pdf.
// Size and type checks happen in the Validator before a file reaches it.
type Reader struct{}

// NewReader creates a new PDF text reader
func NewReader() *Reader {
	return &Reader{}
}

// ReadText returns the words of every page. Pages whose content stream
// cannot be decoded come back empty rather than failing the document.
func (r *Reader) ReadText(path string) ([]PageText, error) {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pages := make([]PageText, 0, pdfReader.NumPage())
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		pages = append(pages, PageText{
			Number: pageNum,
			Words:  r.pageWords(pdfReader, pageNum),
		})
	}
	return pages, nil
}

// pageWords groups the glyphs of a page into words
func (r *Reader) pageWords(pdfReader *pdf.Reader, pageNum int) (words []Word) {
	defer func() {
		// Content decoding panics on some malformed streams
		if recover() != nil {
			words = nil
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return nil
	}
	return GroupGlyphs(page.Content().Text)
}

// GroupGlyphs merges glyphs into words: glyphs are bucketed into rows by
// baseline, sorted left to right, and split at whitespace or at gaps wider
// than a fraction of the font size.
func GroupGlyphs(glyphs []pdf.Text) []Word {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]pdf.Text
	for _, g := range sorted {
		n := len(rows)
		if n > 0 {
			ref := rows[n-1][0]
			if math.Abs(ref.Y-g.Y) <= baselineTolerance*fontSize(ref) {
				rows[n-1] = append(rows[n-1], g)
				continue
			}
		}
		rows = append(rows, []pdf.Text{g})
	}

	var words []Word
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var cur *Word
		var sb strings.Builder
		flush := func() {
			if cur != nil {
				cur.Text = strings.TrimSpace(sb.String())
				if cur.Text != "" {
					words = append(words, *cur)
				}
			}
			cur = nil
			sb.Reset()
		}

		for _, g := range row {
			if strings.TrimSpace(g.S) == "" {
				flush()
				continue
			}
			size := fontSize(g)
			if cur != nil && g.X-cur.X1 > wordGapFraction*size {
				flush()
			}
			if cur == nil {
				cur = &Word{X0: g.X, X1: g.X + g.W, Baseline: g.Y, FontSize: size}
			}
			sb.WriteString(g.S)
			if end := g.X + g.W; end > cur.X1 {
				cur.X1 = end
			}
			if size > cur.FontSize {
				cur.FontSize = size
			}
		}
		flush()
	}
	return words
}

// Runs converts words to layout runs in top-left page space given the
// page's media box lower-left corner and top edge.
func (p PageText) Runs(box MediaBox) []layout.TextRun {
	runs := make([]layout.TextRun, 0, len(p.Words))
	for _, w := range p.Words {
		runs = append(runs, layout.TextRun{
			Rect: layout.NewRect(
				w.X0-box.LLX,
				box.URY-(w.Baseline+w.FontSize),
				w.X1-box.LLX,
				box.URY-w.Baseline,
			),
			Text: w.Text,
		})
	}
	return runs
}

func fontSize(g pdf.Text) float64 {
	if g.FontSize > 0 {
		return g.FontSize
	}
	return defaultFontSize
}
