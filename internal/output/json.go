// Package output serializes mapping runs and reads mapping files back:
// ordered JSON artifacts, blank templates, and the audit workbook.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/mapping"
)

// Format selects the shape of the mapping artifact
type Format string

const (
	// FormatFlat writes {"field": "value", ...} in declaration order
	FormatFlat Format = "flat"
	// FormatDetailed adds per-field metadata, stats and the transform
	FormatDetailed Format = "detailed"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatFlat, FormatDetailed:
		return Format(s), nil
	case "":
		return FormatFlat, nil
	default:
		return "", maperrors.Newf(maperrors.ErrorTypeConfiguration, "format",
			"unknown output format %q (want %q or %q)", s, FormatFlat, FormatDetailed)
	}
}

// Entry is one key/value pair of an OrderedMap
type Entry struct {
	Key   string
	Value string
}

// OrderedMap is a JSON object that keeps its insertion order
type OrderedMap []Entry

// MarshalJSON writes the entries in order without HTML escaping
func (m OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, e.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, e.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// Mapping returns the field/value pairs of a run in declaration order.
// Unmatched fields carry an empty value.
func Mapping(res *mapping.Result) OrderedMap {
	m := make(OrderedMap, 0, len(res.Fields))
	for _, f := range res.Fields {
		m = append(m, Entry{Key: f.Name, Value: f.Value})
	}
	return m
}

type detailedDocument struct {
	RunID     string                  `json:"run_id"`
	Source    string                  `json:"source"`
	Target    string                  `json:"target"`
	Mapping   OrderedMap              `json:"mapping"`
	Fields    []mapping.FieldResult   `json:"fields"`
	Stats     mapping.Stats           `json:"stats"`
	Transform mapping.AffineTransform `json:"transform"`
	Anchors   []mapping.AnchorPair    `json:"anchors"`
}

// WriteMapping encodes the run result in the requested format
func WriteMapping(w io.Writer, res *mapping.Result, format Format) error {
	var v any
	switch format {
	case FormatDetailed:
		v = detailedDocument{
			RunID:     res.RunID,
			Source:    res.SourcePath,
			Target:    res.TargetPath,
			Mapping:   Mapping(res),
			Fields:    res.Fields,
			Stats:     res.Stats,
			Transform: res.Transform,
			Anchors:   res.Anchors,
		}
	case FormatFlat, "":
		v = Mapping(res)
	default:
		return maperrors.Newf(maperrors.ErrorTypeConfiguration, "write", "unknown output format %q", format)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteMappingFile writes the run result to path, creating parent
// directories as needed.
func WriteMappingFile(path string, res *mapping.Result, format Format) error {
	var buf bytes.Buffer
	if err := WriteMapping(&buf, res, format); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// WriteTemplate writes a blank {"field": ""} object for the given names
func WriteTemplate(w io.Writer, names []string) error {
	m := make(OrderedMap, 0, len(names))
	for _, n := range names {
		m = append(m, Entry{Key: n})
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// WriteTemplateFile writes a blank template to path
func WriteTemplateFile(path string, names []string) error {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf, names); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
