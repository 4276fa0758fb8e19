package pdf

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/pdf-formmap/internal/pdf/pdftest"
)

func TestMediaBox(t *testing.T) {
	box := MediaBox{LLX: 0, LLY: 0, URX: 612, URY: 792}

	if box.Width() != 612 || box.Height() != 792 {
		t.Fatalf("unexpected size %.0fx%.0f", box.Width(), box.Height())
	}

	// Widget from y=695 to y=715 sits 77..97 below the top edge
	r := box.ToLayout(145, 695, 345, 715)
	if r.X0 != 145 || r.Y0 != 77 || r.X1 != 345 || r.Y1 != 97 {
		t.Errorf("unexpected layout rect %v", r)
	}

	// Inverted corners are normalized
	r = box.ToLayout(345, 715, 145, 695)
	if r.X0 != 145 || r.Y0 != 77 {
		t.Errorf("expected normalized rect, got %v", r)
	}
}

func TestMediaBox_Offset(t *testing.T) {
	box := MediaBox{LLX: 20, LLY: 30, URX: 632, URY: 822}

	r := box.ToLayout(20, 802, 120, 822)
	if r.X0 != 0 || r.Y0 != 0 || r.X1 != 100 || r.Y1 != 20 {
		t.Errorf("unexpected layout rect %v", r)
	}
}

func TestFormReader_ReadForms(t *testing.T) {
	_, target := pdftest.WriteFormPair(t, t.TempDir())

	pages, err := NewFormReader().ReadForms(target)
	if err != nil {
		t.Fatalf("ReadForms() failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	page := pages[0]
	if page.Number != 1 || page.Box.Width() != 612 || page.Box.Height() != 792 {
		t.Errorf("unexpected page %d with box %+v", page.Number, page.Box)
	}

	want := []string{"Name", "Address", "Employer"}
	if len(page.Widgets) != len(want) {
		t.Fatalf("expected %d widgets, got %d", len(want), len(page.Widgets))
	}
	for i, w := range page.Widgets {
		if w.Name != want[i] {
			t.Errorf("widget %d: expected %s, got %s", i, want[i], w.Name)
		}
		if w.Type != FieldTypeText {
			t.Errorf("widget %s: expected text type, got %s", w.Name, w.Type)
		}
	}

	r := page.Widgets[0].Rect
	if r.X0 != 145 || r.Y0 != 77 || r.X1 != 345 || r.Y1 != 97 {
		t.Errorf("unexpected Name rect %v", r)
	}
}

func TestFormReader_ReadFormsNoWidgets(t *testing.T) {
	source, _ := pdftest.WriteFormPair(t, t.TempDir())

	pages, err := NewFormReader().ReadForms(source)
	if err != nil {
		t.Fatalf("ReadForms() failed: %v", err)
	}
	if len(pages) != 1 || len(pages[0].Widgets) != 0 {
		t.Errorf("expected one page without widgets, got %+v", pages)
	}
}

func TestFormReader_ReadFormsMissingFile(t *testing.T) {
	if _, err := NewFormReader().ReadForms("/non/existent/form.pdf"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormReader_FieldValue(t *testing.T) {
	version := model.V17
	ctx := &model.Context{XRefTable: &model.XRefTable{HeaderVersion: &version}}
	fr := NewFormReader()

	tests := []struct {
		name string
		dict types.Dict
		want string
	}{
		{"string value", types.Dict{"V": types.StringLiteral("Jane Doe")}, "Jane Doe"},
		{"checkbox state name", types.Dict{"V": types.Name("Yes")}, "Yes"},
		{"inherited from parent", types.Dict{"Parent": types.Dict{"V": types.Name("Off")}}, "Off"},
		{"no value", types.Dict{"T": types.StringLiteral("Name")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fr.fieldValue(ctx, tt.dict); got != tt.want {
				t.Errorf("fieldValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
