package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Basics(t *testing.T) {
	r := NewRect(100, 40, 10, 20)
	assert.Equal(t, Rect{X0: 10, Y0: 20, X1: 100, Y1: 40}, r)
	assert.Equal(t, 90.0, r.Width())
	assert.Equal(t, 20.0, r.Height())
	assert.Equal(t, 1800.0, r.Area())
	assert.False(t, r.IsEmpty())
	assert.True(t, Rect{X0: 5, Y0: 5, X1: 5, Y1: 10}.IsEmpty())
	assert.Equal(t, "(10.0, 20.0, 100.0, 40.0)", r.String())
}

func TestRect_IntersectionAndCoverage(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}
	b := Rect{X0: 5, Y0: 5, X1: 15, Y1: 15}
	far := Rect{X0: 20, Y0: 20, X1: 30, Y1: 30}

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(far))
	assert.Equal(t, Rect{X0: 5, Y0: 5, X1: 10, Y1: 10}, a.Intersection(b))
	assert.Equal(t, Rect{}, a.Intersection(far))
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 15, Y1: 15}, a.Union(b))

	assert.InDelta(t, 0.25, a.CoverageOf(b), 1e-9)
	assert.Equal(t, 0.0, a.CoverageOf(far))
	assert.Equal(t, 1.0, a.CoverageOf(Rect{X0: 1, Y0: 1, X1: 2, Y1: 2}))
	assert.Equal(t, 1.0, a.CoverageOf(Rect{X0: 3, Y0: 3, X1: 3, Y1: 3}))
}

func TestRect_ExpandClamp(t *testing.T) {
	r := Rect{X0: 2, Y0: 2, X1: 98, Y1: 98}.Expand(5)
	assert.Equal(t, Rect{X0: -3, Y0: -3, X1: 103, Y1: 103}, r)
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 100, Y1: 100}, r.Clamp(100, 100))
}

func TestVerticalOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"same span", Rect{Y0: 0, Y1: 10}, Rect{Y0: 0, Y1: 10}, 1},
		{"half", Rect{Y0: 0, Y1: 10}, Rect{Y0: 5, Y1: 15}, 0.5},
		{"disjoint", Rect{Y0: 0, Y1: 10}, Rect{Y0: 20, Y1: 30}, 0},
		{"shorter inside", Rect{Y0: 0, Y1: 20}, Rect{Y0: 5, Y1: 10}, 1},
		{"zero height touching", Rect{Y0: 0, Y1: 10}, Rect{Y0: 5, Y1: 5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, verticalOverlap(tt.a, tt.b), 1e-9)
		})
	}
}
