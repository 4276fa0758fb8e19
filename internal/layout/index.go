package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
)

// DefaultLineOverlap is the vertical overlap (relative to the shorter span)
// above which two blocks are read as the same line.
const DefaultLineOverlap = 0.5

// IndexOptions tunes model building
type IndexOptions struct {
	// LineOverlap is the same-line threshold in (0,1]
	LineOverlap float64
}

// DefaultIndexOptions returns the standard reading-order settings
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{LineOverlap: DefaultLineOverlap}
}

// Build turns raw per-page extraction data into a Document.
// Pages are ordered by their raw number and renumbered from 1. Blocks are
// put in reading order (top to bottom, left to right within a line).
// Duplicate field names keep their first declaration.
func Build(path string, raw []RawPage, opts IndexOptions) (*Document, error) {
	if len(raw) == 0 {
		return nil, &maperrors.MappingError{
			Type:    maperrors.ErrorTypeParse,
			Op:      "build",
			Path:    path,
			Message: "document has no pages",
		}
	}
	if opts.LineOverlap <= 0 || opts.LineOverlap > 1 {
		opts.LineOverlap = DefaultLineOverlap
	}

	pages := make([]RawPage, len(raw))
	copy(pages, raw)
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Number < pages[j].Number
	})

	doc := &Document{Path: path, Pages: make([]*Page, 0, len(pages))}
	seen := make(map[string]bool)
	fieldIndex := 0

	for i, rp := range pages {
		// Numbers are positional so Document.Page stays consistent
		number := i + 1
		if rp.Width <= 0 || rp.Height <= 0 {
			return nil, &maperrors.MappingError{
				Type:    maperrors.ErrorTypeParse,
				Op:      "build",
				Path:    path,
				Message: fmt.Sprintf("page %d has invalid dimensions %.1fx%.1f", number, rp.Width, rp.Height),
			}
		}

		page := &Page{
			Number: number,
			Width:  rp.Width,
			Height: rp.Height,
		}
		page.Blocks = orderBlocks(rp.Runs, number, opts.LineOverlap)
		for idx, b := range page.Blocks {
			page.tree.Insert(
				[2]float64{b.Rect.X0, b.Rect.Y0},
				[2]float64{b.Rect.X1, b.Rect.Y1},
				idx,
			)
		}
		page.lineHeight = medianHeight(page.Blocks)

		for _, rf := range rp.Fields {
			name := strings.TrimSpace(rf.Name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			page.Fields = append(page.Fields, FormField{
				Name:       name,
				Rect:       rf.Rect.Normalize(),
				Type:       rf.Type,
				Value:      rf.Value,
				PageNumber: number,
				Index:      fieldIndex,
			})
			fieldIndex++
		}

		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}

type line struct {
	span   Rect
	blocks []TextBlock
}

// orderBlocks applies the reading-order rule: sort by vertical position,
// merge blocks whose vertical spans overlap by more than the threshold into
// one line, then sort each line left to right.
func orderBlocks(runs []TextRun, pageNumber int, overlap float64) []TextBlock {
	blocks := make([]TextBlock, 0, len(runs))
	for _, run := range runs {
		text := strings.TrimSpace(run.Text)
		if text == "" {
			continue
		}
		blocks = append(blocks, TextBlock{
			Rect:       run.Rect.Normalize(),
			Text:       text,
			PageNumber: pageNumber,
		})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return lessTopLeft(blocks[i], blocks[j])
	})

	var lines []*line
	for _, b := range blocks {
		var best *line
		bestOverlap := 0.0
		for _, l := range lines {
			ov := verticalOverlap(l.span, b.Rect)
			if ov > overlap && ov > bestOverlap {
				best, bestOverlap = l, ov
			}
		}
		if best == nil {
			lines = append(lines, &line{span: b.Rect, blocks: []TextBlock{b}})
			continue
		}
		best.blocks = append(best.blocks, b)
		best.span = Rect{X0: best.span.X0, Y0: math.Min(best.span.Y0, b.Rect.Y0), X1: best.span.X1, Y1: math.Max(best.span.Y1, b.Rect.Y1)}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].span.Y0 != lines[j].span.Y0 {
			return lines[i].span.Y0 < lines[j].span.Y0
		}
		return lines[i].span.Y1 < lines[j].span.Y1
	})

	ordered := make([]TextBlock, 0, len(blocks))
	for li, l := range lines {
		sort.SliceStable(l.blocks, func(i, j int) bool {
			a, b := l.blocks[i], l.blocks[j]
			if a.Rect.X0 != b.Rect.X0 {
				return a.Rect.X0 < b.Rect.X0
			}
			if a.Rect.X1 != b.Rect.X1 {
				return a.Rect.X1 < b.Rect.X1
			}
			return a.Text < b.Text
		})
		for _, b := range l.blocks {
			b.Line = li
			b.Order = len(ordered)
			ordered = append(ordered, b)
		}
	}
	return ordered
}

func lessTopLeft(a, b TextBlock) bool {
	if a.Rect.Y0 != b.Rect.Y0 {
		return a.Rect.Y0 < b.Rect.Y0
	}
	if a.Rect.X0 != b.Rect.X0 {
		return a.Rect.X0 < b.Rect.X0
	}
	if a.Rect.Y1 != b.Rect.Y1 {
		return a.Rect.Y1 < b.Rect.Y1
	}
	if a.Rect.X1 != b.Rect.X1 {
		return a.Rect.X1 < b.Rect.X1
	}
	return a.Text < b.Text
}

func medianHeight(blocks []TextBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}
	heights := make([]float64, len(blocks))
	for i, b := range blocks {
		heights[i] = b.Rect.Height()
	}
	sort.Float64s(heights)
	mid := len(heights) / 2
	if len(heights)%2 == 0 {
		return (heights[mid-1] + heights[mid]) / 2
	}
	return heights[mid]
}
