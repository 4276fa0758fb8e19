package layout

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in top-left-origin page space:
// X grows to the right, Y grows downwards.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewRect creates a rectangle from two corners, ordering them so X0<=X1 and Y0<=Y1
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Normalize returns r with its corners ordered
func (r Rect) Normalize() Rect {
	return NewRect(r.X0, r.Y0, r.X1, r.Y1)
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Area returns the rectangle area
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// IsEmpty returns true if the rectangle has no area
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Intersects checks if two rectangles overlap or touch
func (r Rect) Intersects(other Rect) bool {
	return !(r.X1 < other.X0 ||
		r.X0 > other.X1 ||
		r.Y1 < other.Y0 ||
		r.Y0 > other.Y1)
}

// Intersection returns the overlapping region, or the zero Rect
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}
	return Rect{
		X0: math.Max(r.X0, other.X0),
		Y0: math.Max(r.Y0, other.Y0),
		X1: math.Min(r.X1, other.X1),
		Y1: math.Min(r.Y1, other.Y1),
	}
}

// Union returns the smallest rectangle containing both
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// Expand grows the rectangle by margin on all sides
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X0: r.X0 - margin,
		Y0: r.Y0 - margin,
		X1: r.X1 + margin,
		Y1: r.Y1 + margin,
	}
}

// Clamp limits the rectangle to [0,width]x[0,height]
func (r Rect) Clamp(width, height float64) Rect {
	return Rect{
		X0: clamp(r.X0, 0, width),
		Y0: clamp(r.Y0, 0, height),
		X1: clamp(r.X1, 0, width),
		Y1: clamp(r.Y1, 0, height),
	}
}

// CoverageOf returns the fraction of other's area that lies inside r.
// Degenerate (zero-area) rectangles count as covered when they touch r.
func (r Rect) CoverageOf(other Rect) float64 {
	if !r.Intersects(other) {
		return 0
	}
	area := other.Area()
	if area <= 0 {
		return 1
	}
	return r.Intersection(other).Area() / area
}

// String renders the rectangle the way diagnostics print it
func (r Rect) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f, %.1f)", r.X0, r.Y0, r.X1, r.Y1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// verticalOverlap returns the overlap of two vertical spans relative to the
// shorter one, in [0,1].
func verticalOverlap(a, b Rect) float64 {
	overlap := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
	shorter := math.Min(a.Height(), b.Height())
	if shorter <= 0 {
		// Zero-height spans share a line only when they sit inside the other span
		if overlap >= 0 {
			return 1
		}
		return 0
	}
	if overlap <= 0 {
		return 0
	}
	return overlap / shorter
}
