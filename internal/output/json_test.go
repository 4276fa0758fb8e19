package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/mapping"
)

func sampleResult() *mapping.Result {
	fields := []mapping.FieldResult{
		{Name: "Zip", Index: 0, TargetPage: 1, SourcePage: 1, Confidence: mapping.ConfidencePrimary, Value: "90210"},
		{Name: "Address", Index: 1, TargetPage: 1, SourcePage: 2, Confidence: mapping.ConfidenceFallback, Value: "1 <Main> & Co"},
		{Name: "Employer", Index: 2, TargetPage: 2, Confidence: mapping.ConfidenceUnmatched, Tried: []int{2, 3, 1}},
	}
	return &mapping.Result{
		RunID:      "run-1",
		SourcePath: "source.pdf",
		TargetPath: "target.pdf",
		Transform:  mapping.AffineTransform{ScaleX: 0.9, ScaleY: 0.9, OffsetX: 5, OffsetY: 5},
		Fields:     fields,
		Stats:      mapping.Stats{TotalFields: 3, MatchedFields: 2, PrimaryFields: 1, CoverageRatio: 2.0 / 3.0},
	}
}

func TestWriteMapping_FlatKeepsDeclarationOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMapping(&buf, sampleResult(), FormatFlat))

	want := "{\n  \"Zip\": \"90210\",\n  \"Address\": \"1 <Main> & Co\",\n  \"Employer\": \"\"\n}\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteMapping_Detailed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMapping(&buf, sampleResult(), FormatDetailed))

	var doc struct {
		RunID   string            `json:"run_id"`
		Mapping map[string]string `json:"mapping"`
		Fields  []struct {
			Name       string `json:"name"`
			Confidence string `json:"confidence"`
			SourcePage int    `json:"source_page_used"`
		} `json:"fields"`
		Stats struct {
			CoverageRatio float64 `json:"coverage_ratio"`
			TotalFields   int     `json:"total_fields"`
		} `json:"stats"`
		Transform struct {
			ScaleX float64 `json:"scale_x"`
		} `json:"transform"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "90210", doc.Mapping["Zip"])
	require.Len(t, doc.Fields, 3)
	assert.Equal(t, "fallback", doc.Fields[1].Confidence)
	assert.Equal(t, 2, doc.Fields[1].SourcePage)
	assert.Equal(t, "unmatched", doc.Fields[2].Confidence)
	assert.InDelta(t, 0.6667, doc.Stats.CoverageRatio, 1e-4)
	assert.Equal(t, 3, doc.Stats.TotalFields)
	assert.Equal(t, 0.9, doc.Transform.ScaleX)
}

func TestWriteMapping_UnknownFormat(t *testing.T) {
	err := WriteMapping(&bytes.Buffer{}, sampleResult(), Format("yaml"))
	assert.ErrorIs(t, err, maperrors.ErrConfiguration)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatFlat, f)

	f, err = ParseFormat("detailed")
	require.NoError(t, err)
	assert.Equal(t, FormatDetailed, f)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, maperrors.ErrConfiguration)
}

func TestWriteMappingFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, WriteMappingFile(path, sampleResult(), FormatFlat))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Zip": "90210"`)
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, []string{"Name", "Date of birth"}))
	assert.Equal(t, "{\n  \"Name\": \"\",\n  \"Date of birth\": \"\"\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteTemplate(&buf, nil))
	assert.Equal(t, "{}\n", buf.String())
}
