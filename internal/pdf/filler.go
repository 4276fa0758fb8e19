package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
)

// FillResult reports what a fill run changed
type FillResult struct {
	Template string `json:"template"`
	Output   string `json:"output"`
	Filled   int    `json:"filled"`
	// Missing lists form fields that had no value in the mapping
	Missing []string `json:"missing,omitempty"`
	// Unknown lists mapping keys that match no form field
	Unknown []string `json:"unknown,omitempty"`
}

// pdfcpu form JSON, as consumed by api.FillForm
type formGroup struct {
	TextFields  []textField  `json:"textfield,omitempty"`
	CheckBoxes  []checkBox   `json:"checkbox,omitempty"`
	RadioGroups []radioGroup `json:"radiobuttongroup,omitempty"`
	ComboBoxes  []comboBox   `json:"combobox,omitempty"`
	ListBoxes   []listBox    `json:"listbox,omitempty"`
}

type formFile struct {
	Forms []formGroup `json:"forms"`
}

type textField struct {
	Pages []int  `json:"pages"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type checkBox struct {
	Pages []int  `json:"pages"`
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

type radioGroup struct {
	Pages []int  `json:"pages"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type comboBox struct {
	Pages []int  `json:"pages"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type listBox struct {
	Pages  []int    `json:"pages"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// FormFiller writes field values into a blank PDF form with pdfcpu
type FormFiller struct {
	forms     *FormReader
	validator *Validator
}

// NewFormFiller creates a new form filler
func NewFormFiller(maxFileSize int64) *FormFiller {
	return &FormFiller{
		forms:     NewFormReader(),
		validator: NewValidator(maxFileSize),
	}
}

// ScanFields returns the widget names of a PDF in page then declaration
// order, without duplicates.
func (ff *FormFiller) ScanFields(path string) ([]Widget, error) {
	if err := ff.validator.ValidateFile(path); err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "scan", path, err)
	}
	pages, err := ff.forms.ReadForms(path)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "scan", path, err)
	}

	seen := make(map[string]bool)
	var widgets []Widget
	for _, p := range pages {
		for _, w := range p.Widgets {
			if seen[w.Name] {
				continue
			}
			seen[w.Name] = true
			w.Page = p.Number
			widgets = append(widgets, w)
		}
	}
	return widgets, nil
}

// Fill writes values into the form fields of templatePath and saves the
// result to outputPath.
func (ff *FormFiller) Fill(templatePath string, values map[string]string, outputPath string) (*FillResult, error) {
	if err := ff.validator.ValidateFile(templatePath); err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "fill", templatePath, err)
	}
	pages, err := ff.forms.ReadForms(templatePath)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "fill", templatePath, err)
	}

	result := &FillResult{Template: templatePath, Output: outputPath}
	form, known := buildFormJSON(pages, values, result)

	for name := range values {
		if !known[name] {
			result.Unknown = append(result.Unknown, name)
		}
	}
	sort.Strings(result.Unknown)

	payload, err := json.Marshal(formFile{Forms: []formGroup{form}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode form data: %w", err)
	}

	in, err := os.Open(templatePath)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "fill", templatePath, err)
	}
	defer in.Close()

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var out bytes.Buffer
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.FillForm(in, bytes.NewReader(payload), &out, conf); err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}

	if err := os.WriteFile(outputPath, out.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	return result, nil
}

// buildFormJSON groups the values by pdfcpu field kind. Widgets sharing a
// name (radio buttons, repeated fields) are merged into one entry.
func buildFormJSON(pages []PageForm, values map[string]string, result *FillResult) (formGroup, map[string]bool) {
	var form formGroup
	known := make(map[string]bool)

	for _, p := range pages {
		for _, w := range p.Widgets {
			if known[w.Name] {
				continue
			}
			known[w.Name] = true

			value, ok := values[w.Name]
			if !ok || strings.TrimSpace(value) == "" {
				result.Missing = append(result.Missing, w.Name)
				continue
			}

			pageNrs := []int{p.Number}
			switch w.Type {
			case FieldTypeCheckbox:
				form.CheckBoxes = append(form.CheckBoxes, checkBox{Pages: pageNrs, Name: w.Name, Value: IsChecked(value)})
			case FieldTypeRadio:
				form.RadioGroups = append(form.RadioGroups, radioGroup{Pages: pageNrs, Name: w.Name, Value: value})
			case FieldTypeChoice:
				form.ComboBoxes = append(form.ComboBoxes, comboBox{Pages: pageNrs, Name: w.Name, Value: value})
			case FieldTypeList:
				form.ListBoxes = append(form.ListBoxes, listBox{Pages: pageNrs, Name: w.Name, Values: []string{value}})
			case FieldTypeButton, FieldTypeSignature:
				result.Missing = append(result.Missing, w.Name)
				continue
			default:
				form.TextFields = append(form.TextFields, textField{Pages: pageNrs, Name: w.Name, Value: value})
			}
			result.Filled++
		}
	}
	return form, known
}

// IsChecked interprets a mapped value for a checkbox
func IsChecked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "x", "yes", "y", "true", "on", "1", "checked", "✓", "✔":
		return true
	}
	return false
}
