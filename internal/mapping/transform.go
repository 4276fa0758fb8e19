// Package mapping implements the spatial field-mapping engine: keyword
// calibration between a filled source document and a blank target form,
// coordinate mapping, clipped text extraction and cross-page fallback.
package mapping

import (
	"fmt"
	"math"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/layout"
)

// AffineTransform maps source coordinates to target coordinates:
// target = scale*source + offset, independently per axis.
// It is computed once per document pair and never mutated.
type AffineTransform struct {
	ScaleX  float64 `json:"scale_x"`
	ScaleY  float64 `json:"scale_y"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Identity returns the transform that leaves coordinates unchanged
func Identity() AffineTransform {
	return AffineTransform{ScaleX: 1, ScaleY: 1}
}

// Validate checks the positive-scale invariant
func (t AffineTransform) Validate() error {
	if !(t.ScaleX > 0) || !(t.ScaleY > 0) || math.IsInf(t.ScaleX, 0) || math.IsInf(t.ScaleY, 0) {
		return maperrors.Newf(maperrors.ErrorTypeCalibration, "transform",
			"scale must be positive and finite, got (%g, %g)", t.ScaleX, t.ScaleY)
	}
	if math.IsNaN(t.OffsetX) || math.IsNaN(t.OffsetY) || math.IsInf(t.OffsetX, 0) || math.IsInf(t.OffsetY, 0) {
		return maperrors.Newf(maperrors.ErrorTypeCalibration, "transform",
			"offset must be finite, got (%g, %g)", t.OffsetX, t.OffsetY)
	}
	return nil
}

// ToTarget applies the forward transform to both corners of r
func (t AffineTransform) ToTarget(r layout.Rect) layout.Rect {
	return layout.NewRect(
		r.X0*t.ScaleX+t.OffsetX,
		r.Y0*t.ScaleY+t.OffsetY,
		r.X1*t.ScaleX+t.OffsetX,
		r.Y1*t.ScaleY+t.OffsetY,
	)
}

// ToSource applies the inverse transform to both corners of r
func (t AffineTransform) ToSource(r layout.Rect) layout.Rect {
	return layout.NewRect(
		(r.X0-t.OffsetX)/t.ScaleX,
		(r.Y0-t.OffsetY)/t.ScaleY,
		(r.X1-t.OffsetX)/t.ScaleX,
		(r.Y1-t.OffsetY)/t.ScaleY,
	)
}

func (t AffineTransform) String() string {
	return fmt.Sprintf("scale=(%.4f, %.4f) offset=(%.2f, %.2f)", t.ScaleX, t.ScaleY, t.OffsetX, t.OffsetY)
}
