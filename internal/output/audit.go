package output

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/pdf-formmap/internal/layout"
	"github.com/a3tai/pdf-formmap/internal/mapping"
)

// Audit sheet names
const (
	SheetFields      = "Fields"
	SheetUnmatched   = "Unmatched"
	SheetCalibration = "Calibration"
)

// BuildAudit returns a workbook describing a run: one row per field, the
// nearby source text of each unmatched field on every page searched, and
// the calibration anchors.
func BuildAudit(res *mapping.Result, source *layout.Document, radius float64) (*excelize.File, error) {
	f := excelize.NewFile()

	// NewFile starts with "Sheet1"; rename it so the field sheet is first
	if err := f.SetSheetName("Sheet1", SheetFields); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetUnmatched, SheetCalibration} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	w := &sheetWriter{f: f}
	w.row(SheetFields, 1, "Field", "Type", "Target Page", "Target Rect", "Source Rect",
		"Candidate Page", "Source Page", "Confidence", "Value")
	for i, fr := range res.Fields {
		w.row(SheetFields, i+2,
			fr.Name, fr.Type, fr.TargetPage, fr.TargetRect.String(), fr.SourceRect.String(),
			fr.CandidatePage, fr.SourcePage, string(fr.Confidence), fr.Value)
	}

	w.row(SheetUnmatched, 1, "Field", "Page", "Clip", "Nearby Text")
	row := 2
	for _, fr := range res.Unmatched() {
		nearby := mapping.Diagnose(source, fr, radius)
		if len(nearby) == 0 {
			w.row(SheetUnmatched, row, fr.Name, "", "", "")
			row++
			continue
		}
		for _, n := range nearby {
			w.row(SheetUnmatched, row, fr.Name, n.Page, n.Clip.String(), describeBlocks(n.Blocks))
			row++
		}
	}

	w.row(SheetCalibration, 1, "Parameter", "Value")
	w.row(SheetCalibration, 2, "run_id", res.RunID)
	w.row(SheetCalibration, 3, "scale_x", res.Transform.ScaleX)
	w.row(SheetCalibration, 4, "scale_y", res.Transform.ScaleY)
	w.row(SheetCalibration, 5, "offset_x", res.Transform.OffsetX)
	w.row(SheetCalibration, 6, "offset_y", res.Transform.OffsetY)
	w.row(SheetCalibration, 7, "coverage_ratio", res.Stats.CoverageRatio)
	w.row(SheetCalibration, 9, "Anchor", "Source Rect", "Target Rect", "Mapped Rect")
	for i, a := range res.Anchors {
		w.row(SheetCalibration, 10+i,
			a.Keyword, a.SourceRect.String(), a.TargetRect.String(), res.Transform.ToTarget(a.SourceRect).String())
	}

	w.colWidth(SheetFields, "A", "B", 24)
	w.colWidth(SheetFields, "D", "E", 30)
	w.colWidth(SheetFields, "I", "I", 60)
	w.colWidth(SheetUnmatched, "A", "A", 24)
	w.colWidth(SheetUnmatched, "C", "C", 30)
	w.colWidth(SheetUnmatched, "D", "D", 80)
	w.colWidth(SheetCalibration, "A", "D", 30)

	if w.err != nil {
		f.Close()
		return nil, w.err
	}

	idx, _ := f.GetSheetIndex(SheetFields)
	f.SetActiveSheet(idx)
	return f, nil
}

// WriteAuditFile builds the audit workbook and saves it to path
func WriteAuditFile(path string, res *mapping.Result, source *layout.Document) error {
	f, err := BuildAudit(res, source, mapping.DefaultDiagnoseRadius)
	if err != nil {
		return fmt.Errorf("xlsx build: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// sheetWriter keeps the first excelize error so a run of writes can be
// checked once
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	for i, v := range values {
		if w.err != nil {
			return
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			w.err = fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
	}
}

func (w *sheetWriter) colWidth(sheet, startCol, endCol string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(sheet, startCol, endCol, width)
}

func describeBlocks(blocks []layout.TextBlock) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, fmt.Sprintf("%s %q", b.Rect.String(), b.Text))
	}
	return strings.Join(lines, "\n")
}
