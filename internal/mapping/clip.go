package mapping

import (
	"strings"

	"github.com/a3tai/pdf-formmap/internal/layout"
)

// Clip defaults
const (
	DefaultWideFieldWidth  = 200.0
	DefaultWideRightExtend = 0.75
	DefaultNarrowMargin    = 3.0
	DefaultOverlapFraction = 0.5
)

// ClipOptions controls how a mapped field rectangle becomes a clip region
type ClipOptions struct {
	// WideFieldWidth separates paragraph-like fields from single values
	WideFieldWidth float64
	// WideRightExtend is the fraction of a wide field's width added on the right
	WideRightExtend float64
	// NarrowMargin is added on every side of a narrow field
	NarrowMargin float64
	// OverlapFraction is the share of a block's own area that must fall
	// inside the clip region for the block to be collected.
	OverlapFraction float64
}

// DefaultClipOptions returns the standard clip settings
func DefaultClipOptions() ClipOptions {
	return ClipOptions{
		WideFieldWidth:  DefaultWideFieldWidth,
		WideRightExtend: DefaultWideRightExtend,
		NarrowMargin:    DefaultNarrowMargin,
		OverlapFraction: DefaultOverlapFraction,
	}
}

// ClipExtractor pulls the text of a page region
type ClipExtractor struct {
	opts ClipOptions
}

// NewClipExtractor creates an extractor with the given options
func NewClipExtractor(opts ClipOptions) *ClipExtractor {
	return &ClipExtractor{opts: opts}
}

// IsWide reports whether r is treated as a paragraph-like field
func (c *ClipExtractor) IsWide(r layout.Rect) bool {
	return r.Width() > c.opts.WideFieldWidth
}

// ClipRect returns the region searched on page for the field rectangle r.
// wide comes from the field as declared on the target, since the mapped
// rectangle's width depends on the calibration scale.
func (c *ClipExtractor) ClipRect(page *layout.Page, r layout.Rect, wide bool) layout.Rect {
	r = r.Normalize()

	if wide {
		lineHeight := page.LineHeight()
		if lineHeight <= 0 {
			lineHeight = r.Height()
		}
		clip := layout.Rect{
			X0: r.X0,
			Y0: r.Y0,
			X1: r.X1 + c.opts.WideRightExtend*r.Width(),
			Y1: r.Y1 + lineHeight,
		}
		if clip.X1 > page.Width {
			clip.X1 = page.Width
		}
		if clip.Y1 > page.Height {
			clip.Y1 = page.Height
		}
		return clip
	}

	return r.Expand(c.opts.NarrowMargin).Clamp(page.Width, page.Height)
}

// Blocks returns the blocks collected for r, in reading order
func (c *ClipExtractor) Blocks(page *layout.Page, r layout.Rect, wide bool) []layout.TextBlock {
	if page == nil {
		return nil
	}
	clip := c.ClipRect(page, r, wide)

	var blocks []layout.TextBlock
	for _, b := range page.Query(clip) {
		if clip.CoverageOf(b.Rect) > c.opts.OverlapFraction {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Extract returns the text inside r on page. Fragments of one line are
// joined with a space, lines with a newline. An empty string means nothing
// was found.
func (c *ClipExtractor) Extract(page *layout.Page, r layout.Rect, wide bool) string {
	return JoinBlocks(c.Blocks(page, r, wide))
}

// JoinBlocks concatenates reading-ordered blocks
func JoinBlocks(blocks []layout.TextBlock) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			if b.Line == blocks[i-1].Line {
				sb.WriteByte(' ')
			} else {
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(strings.TrimSpace(b.Text))
	}
	return sb.String()
}
