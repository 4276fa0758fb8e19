package pdf

import (
	"log/slog"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/layout"
)

// Loader reads a PDF into raw per-page data for the layout model:
// words from ledongthuc/pdf, page geometry and widgets from pdfcpu.
type Loader struct {
	validator *Validator
	text      *Reader
	forms     *FormReader
	logger    *slog.Logger
}

// NewLoader creates a loader enforcing the given file size limit
func NewLoader(maxFileSize int64, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		validator: NewValidator(maxFileSize),
		text:      NewReader(),
		forms:     NewFormReader(),
		logger:    logger,
	}
}

// Load implements mapping.Loader. Missing, oversized or undecodable files
// fail with an open error.
func (l *Loader) Load(path string) ([]layout.RawPage, error) {
	if err := l.validator.ValidateFile(path); err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "open", path, err)
	}

	forms, err := l.forms.ReadForms(path)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "open", path, err)
	}
	text, err := l.text.ReadText(path)
	if err != nil {
		return nil, maperrors.Wrap(maperrors.ErrorTypeOpen, "open", path, err)
	}
	if len(text) != len(forms) {
		l.logger.Warn("page count differs between readers",
			"path", path, "forms", len(forms), "text", len(text))
	}

	pages := make([]layout.RawPage, 0, len(forms))
	widgets := 0
	for i, pf := range forms {
		rp := layout.RawPage{
			Number: pf.Number,
			Width:  pf.Box.Width(),
			Height: pf.Box.Height(),
		}
		if i < len(text) {
			rp.Runs = text[i].Runs(pf.Box)
		}
		for _, w := range pf.Widgets {
			rp.Fields = append(rp.Fields, layout.RawField{
				Name:  w.Name,
				Rect:  w.Rect,
				Type:  w.Type,
				Value: w.Value,
			})
		}
		widgets += len(pf.Widgets)
		pages = append(pages, rp)
	}

	l.logger.Debug("loaded PDF", "path", path, "pages", len(pages), "widgets", widgets)
	return pages, nil
}

// LoadDocument loads and indexes a PDF in one step
func (l *Loader) LoadDocument(path string, opts layout.IndexOptions) (*layout.Document, error) {
	raw, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	return layout.Build(path, raw, opts)
}
