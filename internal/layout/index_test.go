package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
)

func run(text string, x0, y0, x1, y1 float64) TextRun {
	return TextRun{Rect: Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}, Text: text}
}

func texts(blocks []TextBlock) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text
	}
	return out
}

func TestBuild_ReadingOrder(t *testing.T) {
	raw := []RawPage{{
		Number: 1,
		Width:  612,
		Height: 792,
		Runs: []TextRun{
			run("World", 60, 10, 100, 22),
			run("Second", 10, 40, 60, 52),
			run("Hello", 10, 11, 50, 23),
			run("line", 70, 41, 100, 53),
		},
	}}

	doc, err := Build("form.pdf", raw, DefaultIndexOptions())
	require.NoError(t, err)
	require.Equal(t, 1, doc.PageCount())

	page := doc.Page(1)
	require.NotNil(t, page)
	assert.Equal(t, []string{"Hello", "World", "Second", "line"}, texts(page.Blocks))

	assert.Equal(t, 0, page.Blocks[0].Line)
	assert.Equal(t, 0, page.Blocks[1].Line)
	assert.Equal(t, 1, page.Blocks[2].Line)
	for i, b := range page.Blocks {
		assert.Equal(t, i, b.Order)
		assert.Equal(t, 1, b.PageNumber)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	runs := []TextRun{
		run("b", 30, 10, 40, 20),
		run("a", 10, 10, 20, 20),
		run("c", 10, 30, 20, 40),
	}
	reversed := []TextRun{runs[2], runs[1], runs[0]}

	d1, err := Build("x.pdf", []RawPage{{Number: 1, Width: 100, Height: 100, Runs: runs}}, DefaultIndexOptions())
	require.NoError(t, err)
	d2, err := Build("x.pdf", []RawPage{{Number: 1, Width: 100, Height: 100, Runs: reversed}}, DefaultIndexOptions())
	require.NoError(t, err)

	assert.Equal(t, d1.Page(1).Blocks, d2.Page(1).Blocks)
}

func TestBuild_DropsEmptyRuns(t *testing.T) {
	raw := []RawPage{{
		Number: 1, Width: 100, Height: 100,
		Runs: []TextRun{run("  ", 0, 0, 10, 10), run(" kept ", 10, 10, 30, 20)},
	}}

	doc, err := Build("x.pdf", raw, DefaultIndexOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, texts(doc.Page(1).Blocks))
}

func TestBuild_EmptyTextPageIsValid(t *testing.T) {
	doc, err := Build("scan.pdf", []RawPage{{Number: 1, Width: 612, Height: 792}}, DefaultIndexOptions())
	require.NoError(t, err)

	page := doc.Page(1)
	assert.Empty(t, page.Blocks)
	assert.Zero(t, page.LineHeight())
	assert.Nil(t, page.Query(page.Bounds()))
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build("none.pdf", nil, DefaultIndexOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, maperrors.ErrParse)

	_, err = Build("bad.pdf", []RawPage{{Number: 1, Width: 0, Height: 792}}, DefaultIndexOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, maperrors.ErrParse)
	assert.Contains(t, err.Error(), "invalid dimensions")
}

func TestBuild_Fields(t *testing.T) {
	raw := []RawPage{
		{
			Number: 2, Width: 612, Height: 792,
			Fields: []RawField{{Name: "Signature", Rect: Rect{X0: 10, Y0: 10, X1: 100, Y1: 30}}},
		},
		{
			Number: 1, Width: 612, Height: 792,
			Fields: []RawField{
				{Name: "Name", Rect: Rect{X0: 100, Y0: 40, X1: 10, Y1: 20}, Type: "text"},
				{Name: "Name", Rect: Rect{X0: 0, Y0: 0, X1: 1, Y1: 1}},
				{Name: "DOB", Rect: Rect{X0: 10, Y0: 60, X1: 100, Y1: 80}},
			},
		},
	}

	doc, err := Build("target.pdf", raw, DefaultIndexOptions())
	require.NoError(t, err)

	fields := doc.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "Name", fields[0].Name)
	assert.Equal(t, Rect{X0: 10, Y0: 20, X1: 100, Y1: 40}, fields[0].Rect)
	assert.Equal(t, 1, fields[0].PageNumber)
	assert.Equal(t, "DOB", fields[1].Name)
	assert.Equal(t, "Signature", fields[2].Name)
	assert.Equal(t, 2, fields[2].PageNumber)

	for i, f := range fields {
		assert.Equal(t, i, f.Index)
	}
}

func TestPage_Query(t *testing.T) {
	raw := []RawPage{{
		Number: 1, Width: 200, Height: 200,
		Runs: []TextRun{
			run("top", 10, 10, 50, 20),
			run("middle", 10, 100, 60, 110),
			run("right", 150, 100, 190, 110),
		},
	}}

	doc, err := Build("q.pdf", raw, DefaultIndexOptions())
	require.NoError(t, err)
	page := doc.Page(1)

	hits := page.Query(Rect{X0: 0, Y0: 90, X1: 200, Y1: 120})
	assert.Equal(t, []string{"middle", "right"}, texts(hits))

	assert.Empty(t, page.Query(Rect{X0: 80, Y0: 30, X1: 120, Y1: 60}))
	assert.Len(t, page.Query(page.Bounds()), 3)
	assert.InDelta(t, 10.0, page.LineHeight(), 1e-9)
}

func TestDocument_PageOutOfRange(t *testing.T) {
	doc, err := Build("x.pdf", []RawPage{{Number: 1, Width: 10, Height: 10}}, DefaultIndexOptions())
	require.NoError(t, err)

	assert.Nil(t, doc.Page(0))
	assert.Nil(t, doc.Page(2))
}
