// Package layout builds the read-only page model the field mapper works on:
// text blocks in a deterministic reading order, indexed for region queries,
// and the form fields declared on each page.
package layout

import (
	"sort"

	"github.com/tidwall/rtree"
)

// TextRun is one raw text run reported by the PDF access layer
type TextRun struct {
	Rect Rect
	Text string
}

// RawField is one form widget reported by the PDF access layer
type RawField struct {
	Name  string
	Rect  Rect
	Type  string
	Value string
}

// RawPage is the unprocessed extraction data for a single page
type RawPage struct {
	Number int
	Width  float64
	Height float64
	Runs   []TextRun
	Fields []RawField
}

// TextBlock is a positioned piece of text on a page. Blocks are immutable
// once the index is built.
type TextBlock struct {
	Rect       Rect   `json:"rect"`
	Text       string `json:"text"`
	PageNumber int    `json:"page"`
	Line       int    `json:"line"`
	Order      int    `json:"order"`
}

// FormField is a fillable widget on the target document
type FormField struct {
	Name       string `json:"name"`
	Rect       Rect   `json:"rect"`
	Type       string `json:"type"`
	Value      string `json:"value,omitempty"`
	PageNumber int    `json:"page"`
	Index      int    `json:"index"`
}

// Page holds the ordered blocks and fields of a single page
type Page struct {
	Number int
	Width  float64
	Height float64
	Blocks []TextBlock
	Fields []FormField

	lineHeight float64
	tree       rtree.RTreeG[int]
}

// Bounds returns the page rectangle
func (p *Page) Bounds() Rect {
	return Rect{X0: 0, Y0: 0, X1: p.Width, Y1: p.Height}
}

// LineHeight returns the median block height on the page, or 0 for a page
// without text.
func (p *Page) LineHeight() float64 {
	return p.lineHeight
}

// Query returns every block whose rectangle intersects r, in reading order
func (p *Page) Query(r Rect) []TextBlock {
	var hits []int
	p.tree.Search(
		[2]float64{r.X0, r.Y0},
		[2]float64{r.X1, r.Y1},
		func(_, _ [2]float64, idx int) bool {
			hits = append(hits, idx)
			return true
		},
	)
	if len(hits) == 0 {
		return nil
	}

	// Block indices are reading-order positions
	sort.Ints(hits)
	blocks := make([]TextBlock, len(hits))
	for i, idx := range hits {
		blocks[i] = p.Blocks[idx]
	}
	return blocks
}

// Document is an ordered sequence of pages built once at load time
type Document struct {
	Path  string
	Pages []*Page
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns the 1-based page n, or nil when n is out of range
func (d *Document) Page(n int) *Page {
	if n < 1 || n > len(d.Pages) {
		return nil
	}
	return d.Pages[n-1]
}

// Fields returns every form field in page-ascending then declaration order
func (d *Document) Fields() []FormField {
	var fields []FormField
	for _, p := range d.Pages {
		fields = append(fields, p.Fields...)
	}
	return fields
}
