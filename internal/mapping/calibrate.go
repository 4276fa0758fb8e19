package mapping

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	maperrors "github.com/a3tai/pdf-formmap/internal/errors"
	"github.com/a3tai/pdf-formmap/internal/layout"
)

// Calibration defaults
const (
	DefaultAnchorEpsilon   = 1.0
	DefaultMinAnchorLength = 3
	MinAnchorPairs         = 2
)

// AnchorPair is a keyword found on page 1 of both documents together with
// its rectangle in each coordinate space.
type AnchorPair struct {
	Keyword    string      `json:"keyword"`
	SourceRect layout.Rect `json:"source_rect"`
	TargetRect layout.Rect `json:"target_rect"`
}

// CalibrationOptions tunes anchor discovery and scale estimation
type CalibrationOptions struct {
	// Epsilon is the minimum source separation for a pair to contribute
	// to an axis scale.
	Epsilon float64
	// MinKeywordLength drops short, ambiguous anchors (normalized runes).
	MinKeywordLength int
	// Keywords restricts anchors to this list when non-empty
	Keywords []string
}

// DefaultCalibrationOptions returns the standard calibration settings
func DefaultCalibrationOptions() CalibrationOptions {
	return CalibrationOptions{
		Epsilon:          DefaultAnchorEpsilon,
		MinKeywordLength: DefaultMinAnchorLength,
	}
}

// NormalizeKeyword reduces block text to its anchor-matching key:
// NFKC, case folded, whitespace collapsed, trailing colons dropped.
func NormalizeKeyword(text string) string {
	s := norm.NFKC.String(text)
	s = cases.Fold().String(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, ":")
	return strings.TrimSpace(s)
}

// FindAnchors returns the keywords present in both block sets, in source
// reading order. Only the first occurrence of a keyword on each side is used.
//
// Without an allow-list every block is a candidate. Allow-list entries may
// be phrases: they match runs of consecutive blocks on one line, and the
// anchor rect is the union of the run.
func FindAnchors(source, target []layout.TextBlock, opts CalibrationOptions) []AnchorPair {
	var allowed map[string]bool
	maxWords := 1
	if len(opts.Keywords) > 0 {
		allowed = make(map[string]bool, len(opts.Keywords))
		for _, k := range opts.Keywords {
			key := NormalizeKeyword(k)
			if key == "" {
				continue
			}
			allowed[key] = true
			if n := len(strings.Fields(key)); n > maxWords {
				maxWords = n
			}
		}
	}

	accept := func(key string) bool {
		if key == "" || utf8.RuneCountInString(key) < opts.MinKeywordLength {
			return false
		}
		return allowed == nil || allowed[key]
	}

	targets := make(map[string]layout.Rect)
	for _, c := range anchorCandidates(target, maxWords) {
		if !accept(c.key) {
			continue
		}
		if _, ok := targets[c.key]; !ok {
			targets[c.key] = c.rect
		}
	}

	var pairs []AnchorPair
	used := make(map[string]bool)
	for _, c := range anchorCandidates(source, maxWords) {
		if used[c.key] || !accept(c.key) {
			continue
		}
		tr, ok := targets[c.key]
		if !ok {
			continue
		}
		used[c.key] = true
		pairs = append(pairs, AnchorPair{
			Keyword:    c.text,
			SourceRect: c.rect,
			TargetRect: tr,
		})
	}
	return pairs
}

type anchorCandidate struct {
	key  string
	text string
	rect layout.Rect
}

// anchorCandidates lists every run of up to maxWords consecutive blocks
// sharing a line, ordered by first block then run length.
func anchorCandidates(blocks []layout.TextBlock, maxWords int) []anchorCandidate {
	var out []anchorCandidate
	for i := range blocks {
		parts := make([]string, 0, maxWords)
		rect := blocks[i].Rect
		for j := i; j < len(blocks) && j-i < maxWords; j++ {
			if blocks[j].Line != blocks[i].Line {
				break
			}
			parts = append(parts, strings.TrimSpace(blocks[j].Text))
			if j > i {
				rect = rect.Union(blocks[j].Rect)
			}
			text := strings.Join(parts, " ")
			out = append(out, anchorCandidate{key: NormalizeKeyword(text), text: text, rect: rect})
		}
	}
	return out
}

// Calibrate derives the source-to-target transform from the anchors shared
// by the two first pages.
func Calibrate(source, target *layout.Page, opts CalibrationOptions) (AffineTransform, []AnchorPair, error) {
	if source == nil || target == nil {
		return AffineTransform{}, nil, maperrors.New(maperrors.ErrorTypeCalibration, "calibrate", "missing first page")
	}
	pairs := FindAnchors(source.Blocks, target.Blocks, opts)
	t, err := FromAnchors(pairs, opts.Epsilon)
	if err != nil {
		return AffineTransform{}, pairs, err
	}
	return t, pairs, nil
}

// FromAnchors fits scale and offset per axis.
//
// Scale is the separation-weighted mean of Δtarget/Δsource over every anchor
// pair whose source separation reaches epsilon, so the widest baseline
// dominates. An axis with no usable pair falls back to the mean extent ratio
// of the anchors. Offsets are averaged over all anchors.
func FromAnchors(pairs []AnchorPair, epsilon float64) (AffineTransform, error) {
	if len(pairs) < MinAnchorPairs {
		return AffineTransform{}, maperrors.Newf(maperrors.ErrorTypeCalibration, "calibrate",
			"found %d shared anchor keyword(s) on page 1, need at least %d", len(pairs), MinAnchorPairs)
	}
	if epsilon <= 0 {
		epsilon = DefaultAnchorEpsilon
	}

	sx, ok := axisScale(pairs, epsilon,
		func(r layout.Rect) float64 { return r.X0 },
		func(r layout.Rect) float64 { return r.Width() })
	if !ok {
		return AffineTransform{}, maperrors.New(maperrors.ErrorTypeCalibration, "calibrate",
			"anchors are degenerate on the horizontal axis")
	}
	sy, ok := axisScale(pairs, epsilon,
		func(r layout.Rect) float64 { return r.Y0 },
		func(r layout.Rect) float64 { return r.Height() })
	if !ok {
		return AffineTransform{}, maperrors.New(maperrors.ErrorTypeCalibration, "calibrate",
			"anchors are degenerate on the vertical axis")
	}

	var dx, dy float64
	for _, p := range pairs {
		dx += p.TargetRect.X0 - sx*p.SourceRect.X0
		dy += p.TargetRect.Y0 - sy*p.SourceRect.Y0
	}
	n := float64(len(pairs))

	t := AffineTransform{ScaleX: sx, ScaleY: sy, OffsetX: dx / n, OffsetY: dy / n}
	if err := t.Validate(); err != nil {
		return AffineTransform{}, err
	}
	return t, nil
}

func axisScale(pairs []AnchorPair, epsilon float64, pos, extent func(layout.Rect) float64) (float64, bool) {
	// Σ|Δs|·(Δt/Δs) / Σ|Δs| reduces to Σ sign(Δs)·Δt / Σ|Δs|
	var num, den float64
	for i := 0; i < len(pairs); i++ {
		for j := i + 1; j < len(pairs); j++ {
			ds := pos(pairs[j].SourceRect) - pos(pairs[i].SourceRect)
			if math.Abs(ds) < epsilon {
				continue
			}
			dt := pos(pairs[j].TargetRect) - pos(pairs[i].TargetRect)
			if ds < 0 {
				ds, dt = -ds, -dt
			}
			num += dt
			den += ds
		}
	}
	if den > 0 {
		s := num / den
		return s, s > 0
	}

	// Anchors stacked on this axis
	var sum float64
	var count int
	for _, p := range pairs {
		se := extent(p.SourceRect)
		if se < epsilon {
			continue
		}
		sum += extent(p.TargetRect) / se
		count++
	}
	if count == 0 {
		return 0, false
	}
	s := sum / float64(count)
	return s, s > 0
}
