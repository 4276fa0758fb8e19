package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/pdf-formmap/internal/layout"
)

// Form field type tags
const (
	FieldTypeText      = "text"
	FieldTypeCheckbox  = "checkbox"
	FieldTypeRadio     = "radio"
	FieldTypeButton    = "button"
	FieldTypeChoice    = "choice"
	FieldTypeList      = "list"
	FieldTypeSignature = "signature"
	FieldTypeUnknown   = "unknown"
)

// MediaBox is a page's visible area in PDF user space
type MediaBox struct {
	LLX, LLY, URX, URY float64
}

// Width returns the box width
func (b MediaBox) Width() float64 { return b.URX - b.LLX }

// Height returns the box height
func (b MediaBox) Height() float64 { return b.URY - b.LLY }

// ToLayout converts a PDF user-space rectangle to top-left page space
func (b MediaBox) ToLayout(llx, lly, urx, ury float64) layout.Rect {
	return layout.NewRect(llx-b.LLX, b.URY-ury, urx-b.LLX, b.URY-lly)
}

// Widget is one form widget annotation found on a page
type Widget struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value string      `json:"value,omitempty"`
	Page  int         `json:"page"`
	Rect  layout.Rect `json:"rect"`
}

// PageForm holds the media box and widgets of one page
type PageForm struct {
	Number  int
	Box     MediaBox
	Widgets []Widget
}

// FormReader reads page geometry and form widgets with pdfcpu
type FormReader struct{}

// NewFormReader creates a new form reader
func NewFormReader() *FormReader {
	return &FormReader{}
}

// ReadForms returns every page's media box and its widgets in annotation
// order, which is the page's field declaration order.
func (fr *FormReader) ReadForms(path string) ([]PageForm, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	pages := make([]PageForm, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageDict, _, inherited, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", pageNr, err)
		}

		pf := PageForm{Number: pageNr}
		if inherited != nil && inherited.MediaBox != nil {
			mb := inherited.MediaBox
			pf.Box = MediaBox{LLX: mb.LL.X, LLY: mb.LL.Y, URX: mb.UR.X, URY: mb.UR.Y}
		}
		if pageDict != nil {
			pf.Widgets = fr.pageWidgets(ctx, pageDict, pf.Box)
		}
		pages = append(pages, pf)
	}
	return pages, nil
}

// pageWidgets walks the page's Annots array for widget annotations
func (fr *FormReader) pageWidgets(ctx *model.Context, pageDict types.Dict, box MediaBox) []Widget {
	annotsObj, found := pageDict.Find("Annots")
	if !found {
		return nil
	}
	annots, err := ctx.DereferenceArray(annotsObj)
	if err != nil {
		return nil
	}

	var widgets []Widget
	for _, obj := range annots {
		annot, err := ctx.DereferenceDict(obj)
		if err != nil || annot == nil {
			continue
		}
		subtype, found := annot.Find("Subtype")
		if !found {
			continue
		}
		if name, err := ctx.DereferenceName(subtype, model.V10, nil); err != nil || name != "Widget" {
			continue
		}

		name := fr.fieldName(ctx, annot)
		if name == "" {
			continue
		}
		rect, ok := fr.widgetRect(ctx, annot, box)
		if !ok {
			continue
		}

		widgets = append(widgets, Widget{
			Name:  name,
			Type:  fr.fieldType(ctx, annot),
			Value: fr.fieldValue(ctx, annot),
			Rect:  rect,
		})
	}
	return widgets
}

// fieldName builds the fully qualified field name from the T entries of the
// widget and its parents.
func (fr *FormReader) fieldName(ctx *model.Context, dict types.Dict) string {
	var parts []string
	for depth := 0; dict != nil && depth < 32; depth++ {
		if obj, found := dict.Find("T"); found {
			if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil && s != "" {
				parts = append([]string{s}, parts...)
			}
		}
		parentObj, found := dict.Find("Parent")
		if !found {
			break
		}
		parent, err := ctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		dict = parent
	}
	return strings.Join(parts, ".")
}

// fieldType determines the field type from the (possibly inherited) FT entry
func (fr *FormReader) fieldType(ctx *model.Context, dict types.Dict) string {
	ftObj, found := dict.Find("FT")
	if !found {
		if parentObj, found := dict.Find("Parent"); found {
			if parent, err := ctx.DereferenceDict(parentObj); err == nil && parent != nil {
				return fr.fieldType(ctx, parent)
			}
		}
		return FieldTypeUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return FieldTypeUnknown
	}

	switch ftName {
	case "Btn":
		flags := fr.fieldFlags(ctx, dict)
		if flags&(1<<15) != 0 {
			return FieldTypeRadio
		}
		if flags&(1<<16) != 0 {
			return FieldTypeButton
		}
		return FieldTypeCheckbox
	case "Tx":
		return FieldTypeText
	case "Ch":
		if fr.fieldFlags(ctx, dict)&(1<<17) != 0 {
			return FieldTypeChoice
		}
		return FieldTypeList
	case "Sig":
		return FieldTypeSignature
	default:
		return FieldTypeUnknown
	}
}

func (fr *FormReader) fieldFlags(ctx *model.Context, dict types.Dict) int {
	if obj, found := dict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(obj); err == nil && flags != nil {
			return int(*flags)
		}
	}
	return 0
}

// fieldValue returns the V entry of the widget or its parent as a string
func (fr *FormReader) fieldValue(ctx *model.Context, dict types.Dict) string {
	obj, found := dict.Find("V")
	if !found {
		if parentObj, ok := dict.Find("Parent"); ok {
			if parent, err := ctx.DereferenceDict(parentObj); err == nil && parent != nil {
				obj, found = parent.Find("V")
			}
		}
	}
	if !found {
		return ""
	}
	if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return s
	}
	if name, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
		return string(name)
	}
	return ""
}

// widgetRect reads the annotation Rect and converts it to page space
func (fr *FormReader) widgetRect(ctx *model.Context, annot types.Dict, box MediaBox) (layout.Rect, bool) {
	rectObj, found := annot.Find("Rect")
	if !found {
		return layout.Rect{}, false
	}
	arr, err := ctx.DereferenceArray(rectObj)
	if err != nil || len(arr) != 4 {
		return layout.Rect{}, false
	}

	coords := make([]float64, 4)
	for i, c := range arr {
		f, err := ctx.DereferenceNumber(c)
		if err != nil {
			return layout.Rect{}, false
		}
		coords[i] = f
	}
	return box.ToLayout(coords[0], coords[1], coords[2], coords[3]), true
}
