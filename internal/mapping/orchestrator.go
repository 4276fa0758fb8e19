package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/layout"
)

// State is a run's position in its lifecycle
type State string

const (
	StateLoading     State = "loading"
	StateCalibrating State = "calibrating"
	StateMapping     State = "mapping"
	StateComplete    State = "complete"
	StateFailed      State = "failed"
)

// Loader supplies raw per-page extraction data for a PDF file
type Loader interface {
	Load(path string) ([]layout.RawPage, error)
}

// Options configures a Mapper
type Options struct {
	Index       layout.IndexOptions
	Calibration CalibrationOptions
	Clip        ClipOptions
	// Workers bounds the per-field fan-out; values below 1 use NumCPU
	Workers int
	Logger  *slog.Logger
	// OnStateChange is called on every state transition
	OnStateChange func(State)
}

// DefaultOptions returns the standard engine settings
func DefaultOptions() Options {
	return Options{
		Index:       layout.DefaultIndexOptions(),
		Calibration: DefaultCalibrationOptions(),
		Clip:        DefaultClipOptions(),
		Workers:     runtime.NumCPU(),
	}
}

// Mapper runs the field-mapping pipeline for a source/target pair
type Mapper struct {
	loader   Loader
	opts     Options
	logger   *slog.Logger
	searcher *CrossPageSearcher
}

// NewMapper creates a mapper reading documents through loader
func NewMapper(loader Loader, opts Options) *Mapper {
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mapper{
		loader:   loader,
		opts:     opts,
		logger:   logger,
		searcher: NewCrossPageSearcher(NewClipExtractor(opts.Clip)),
	}
}

// MapFiles loads both documents and maps every target field.
// Open and parse failures abort before calibration.
func (m *Mapper) MapFiles(ctx context.Context, sourcePath, targetPath string) (*Result, error) {
	m.setState(StateLoading)

	source, err := m.load(sourcePath)
	if err != nil {
		m.setState(StateFailed)
		return nil, err
	}
	target, err := m.load(targetPath)
	if err != nil {
		m.setState(StateFailed)
		return nil, err
	}

	return m.mapDocuments(ctx, source, target)
}

// Map maps every field of target onto source for already built documents
func (m *Mapper) Map(ctx context.Context, source, target *layout.Document) (*Result, error) {
	m.setState(StateLoading)
	return m.mapDocuments(ctx, source, target)
}

func (m *Mapper) load(path string) (*layout.Document, error) {
	raw, err := m.loader.Load(path)
	if err != nil {
		if maperrors.TypeOf(err) == maperrors.ErrorTypeUnknown {
			err = maperrors.Wrap(maperrors.ErrorTypeOpen, "open", path, err)
		}
		return nil, err
	}
	return layout.Build(path, raw, m.opts.Index)
}

func (m *Mapper) mapDocuments(ctx context.Context, source, target *layout.Document) (*Result, error) {
	runID := uuid.NewString()
	logger := m.logger.With("run_id", runID)
	start := time.Now()

	logger.Info("starting field mapping",
		"source", source.Path, "source_pages", source.PageCount(),
		"target", target.Path, "target_pages", target.PageCount())

	m.setState(StateCalibrating)
	transform, anchors, err := Calibrate(source.Page(1), target.Page(1), m.opts.Calibration)
	if err != nil {
		m.setState(StateFailed)
		logger.Error("calibration failed", "anchors", len(anchors), "error", err)
		return nil, err
	}
	logger.Info("calibrated", "anchors", len(anchors), "transform", transform.String())

	m.setState(StateMapping)
	fields := target.Fields()
	results := make([]FieldResult, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, field := range fields {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.resolve(source, transform, field)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.setState(StateFailed)
		return nil, fmt.Errorf("field mapping interrupted: %w", err)
	}

	for _, r := range results {
		if !r.Matched() {
			logger.Debug("field unmatched", "error", r.Err(),
				"source_rect", r.SourceRect.String())
		}
	}

	result := &Result{
		RunID:       runID,
		SourcePath:  source.Path,
		TargetPath:  target.Path,
		SourcePages: source.PageCount(),
		TargetPages: target.PageCount(),
		Transform:   transform,
		Anchors:     anchors,
		Fields:      results,
		Stats:       computeStats(results),
		Source:      source,
	}

	m.setState(StateComplete)
	logger.Info("field mapping complete",
		"matched", result.Stats.MatchedFields,
		"total", result.Stats.TotalFields,
		"coverage", result.Stats.CoverageRatio,
		"duration", time.Since(start))

	return result, nil
}

// resolve maps a single field. It reads only shared immutable state.
func (m *Mapper) resolve(source *layout.Document, t AffineTransform, field layout.FormField) FieldResult {
	sourceRect := t.ToSource(field.Rect)
	candidate := clampPage(field.PageNumber, source.PageCount())
	wide := m.searcher.extractor.IsWide(field.Rect)
	found := m.searcher.Search(source, candidate, sourceRect, wide)

	return FieldResult{
		Name:          field.Name,
		Type:          field.Type,
		Index:         field.Index,
		TargetPage:    field.PageNumber,
		TargetRect:    field.Rect,
		SourceRect:    sourceRect,
		CandidatePage: candidate,
		SourcePage:    found.SourcePage,
		Confidence:    found.Confidence,
		Value:         found.Value,
		Tried:         found.Tried,
	}
}

func (m *Mapper) setState(s State) {
	if m.opts.OnStateChange != nil {
		m.opts.OnStateChange(s)
	}
}

func clampPage(n, count int) int {
	if n < 1 {
		return 1
	}
	if n > count {
		return count
	}
	return n
}
