package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
)

// mappingSchema accepts any JSON object; the blocks the flattener treats
// specially must hold scalar values.
const mappingSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "scalars": {
      "type": "object",
      "additionalProperties": {"type": ["string", "number", "boolean", "null"]}
    }
  },
  "properties": {
    "form_fields": {"$ref": "#/definitions/scalars"},
    "mapping": {"$ref": "#/definitions/scalars"}
  }
}`

var compiledMappingSchema = mustCompileSchema("mapping.json", mappingSchema)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// ReadMappingFile loads and flattens a mapping file from disk
func ReadMappingFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "read mapping", path, err)
	}
	values, err := ParseMapping(data)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeParse, "read mapping", path, err)
	}
	return values, nil
}

// ParseMapping validates a mapping document and flattens it to field
// values. A detailed run artifact contributes its "mapping" block only;
// any other object is flattened recursively.
func ParseMapping(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiledMappingSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("mapping does not match schema: %w", err)
	}

	obj := doc.(map[string]any)
	out := make(map[string]string)
	if m, ok := obj["mapping"].(map[string]any); ok {
		for k, v := range m {
			if s, ok := scalarString(v); ok {
				out[k] = s
			}
		}
		return out, nil
	}

	Flatten(obj, out)
	return out, nil
}

// Flatten collects field values from nested JSON:
//   - "form_fields" objects contribute their scalar entries
//   - {"subheading"|"heading": label, "content": [first, ...]} contributes
//     label (trailing colon removed) = first, unless already set
//   - any other scalar leaf contributes key = value
//
// Keys are visited in sorted order so repeated names resolve the same way
// on every run.
func Flatten(v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		if ff, ok := t["form_fields"].(map[string]any); ok {
			for _, k := range sortedKeys(ff) {
				if s, ok := scalarString(ff[k]); ok {
					out[k] = s
				}
			}
		}

		label, _ := t["subheading"].(string)
		if label == "" {
			label, _ = t["heading"].(string)
		}
		if content, ok := t["content"].([]any); ok && label != "" && len(content) > 0 {
			key := strings.TrimRight(strings.TrimSpace(label), ":")
			if _, exists := out[key]; !exists {
				if s, ok := scalarString(content[0]); ok {
					out[key] = s
				}
			}
		}

		for _, k := range sortedKeys(t) {
			switch child := t[k].(type) {
			case map[string]any:
				Flatten(child, out)
			case []any:
				for _, item := range child {
					if m, ok := item.(map[string]any); ok {
						Flatten(m, out)
					}
				}
			default:
				if s, ok := scalarString(child); ok {
					out[k] = s
				}
			}
		}
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				Flatten(m, out)
			}
		}
	}
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
