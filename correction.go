package fidelity

import (
	"math"
	"regexp"
	"strconv"
)

// Hint is one abstract adjustment directive. The set of variants is
// closed: ApplyCorrections switches over it exhaustively, so adding a
// variant without teaching the applier about it fails at compile review,
// not in production.
type Hint interface {
	isHint()
}

// AdjustPadding nudges per-side padding, in pixels.
type AdjustPadding struct {
	Top, Right, Bottom, Left float64
}

// AdjustGap nudges the gap between siblings, in pixels.
type AdjustGap struct {
	Delta float64
}

// AdjustSize nudges element dimensions, in pixels.
type AdjustSize struct {
	DeltaW, DeltaH float64
}

// AdjustColor replaces the value of the selected color property.
type AdjustColor struct {
	Selector string
	Value    Color
}

// AdjustFontSize nudges font size, in pixels.
type AdjustFontSize struct {
	Delta float64
}

// AdjustBorderRadius nudges corner rounding, in pixels.
type AdjustBorderRadius struct {
	Delta float64
}

func (AdjustPadding) isHint()      {}
func (AdjustGap) isHint()          {}
func (AdjustSize) isHint()         {}
func (AdjustColor) isHint()        {}
func (AdjustFontSize) isHint()     {}
func (AdjustBorderRadius) isHint() {}

// Correction heuristics. Scores at or above the cutoff produce no hints;
// region ratios above the thresholds steer the hint kinds.
const (
	correctionCutoff   = 0.99
	edgeHintThreshold  = 0.10
	asymmetryThreshold = 0.15
	paddingScale       = 16 // px of padding per full edge-band ratio
	gapStep            = 4
	sizeStep           = 8
	fontStep           = 1
	radiusStep         = 2
)

// SuggestCorrections turns a pixel score and its diff regions into an
// ordered sequence of adjustment directives. A lower score yields more
// concurrent hints; edge-concentrated diffs steer toward padding,
// quadrant asymmetry toward alignment, strip asymmetry toward
// section-level restyling.
//
// Suggestions carry only what the regions reveal; color corrections need
// per-node metrics the caller holds, so AdjustColor is never fabricated
// here.
func SuggestCorrections(score float64, regions DiffRegions) []Hint {
	if score >= correctionCutoff {
		return nil
	}

	var hints []Hint

	e := regions.Edges
	if e.Top > edgeHintThreshold || e.Bottom > edgeHintThreshold ||
		e.Left > edgeHintThreshold || e.Right > edgeHintThreshold {
		hints = append(hints, AdjustPadding{
			Top:    paddingDelta(e.Top),
			Right:  paddingDelta(e.Right),
			Bottom: paddingDelta(e.Bottom),
			Left:   paddingDelta(e.Left),
		})
	}

	q := regions.Quadrants
	left := (q.TopLeft + q.BottomLeft) / 2
	right := (q.TopRight + q.BottomRight) / 2
	if math.Abs(left-right) > asymmetryThreshold {
		delta := float64(gapStep)
		if right > left {
			delta = -delta
		}
		hints = append(hints, AdjustGap{Delta: delta})
	}
	top := (q.TopLeft + q.TopRight) / 2
	bottom := (q.BottomLeft + q.BottomRight) / 2
	if math.Abs(top-bottom) > asymmetryThreshold {
		delta := float64(sizeStep)
		if top > bottom {
			delta = -delta
		}
		hints = append(hints, AdjustSize{DeltaH: delta})
	}

	s := regions.Strips
	outer := (s.Top + s.Bottom) / 2
	if math.Abs(s.Middle-outer) > asymmetryThreshold {
		delta := float64(fontStep)
		if s.Middle < outer {
			delta = -delta
		}
		hints = append(hints, AdjustFontSize{Delta: delta})
	}

	// Diffs spread evenly across quadrants while the edge bands stay
	// quiet point at corner geometry.
	if quadrantsModerate(q) && edgesQuiet(e) {
		hints = append(hints, AdjustBorderRadius{Delta: radiusStep})
	}

	if n := maxHintsFor(score); len(hints) > n {
		hints = hints[:n]
	}
	logger().Debug("suggested corrections", "score", score, "hints", len(hints))
	return hints
}

func paddingDelta(ratio float64) float64 {
	if ratio <= edgeHintThreshold {
		return 0
	}
	return math.Round(ratio * paddingScale)
}

func quadrantsModerate(q QuadrantRatios) bool {
	for _, r := range []float64{q.TopLeft, q.TopRight, q.BottomLeft, q.BottomRight} {
		if r < 0.05 || r > 0.35 {
			return false
		}
	}
	return true
}

func edgesQuiet(e EdgeRatios) bool {
	return e.Top <= edgeHintThreshold && e.Bottom <= edgeHintThreshold &&
		e.Left <= edgeHintThreshold && e.Right <= edgeHintThreshold
}

// maxHintsFor caps concurrent hints: near-target sessions get one careful
// nudge, badly diverged ones get the full set.
func maxHintsFor(score float64) int {
	switch {
	case score >= 0.95:
		return 1
	case score >= 0.90:
		return 2
	case score >= 0.80:
		return 3
	case score >= 0.60:
		return 4
	default:
		return 6
	}
}

// ApplyCorrections rewrites a textual styling representation according to
// the hints, in order. Each rewrite locates the first occurrence of its
// property and adjusts the numeric magnitude by the hint's delta, leaving
// everything else untouched. Property matching is exact: "padding" never
// touches "padding-top". Zero-magnitude hints are no-ops.
func ApplyCorrections(hints []Hint, styled string) string {
	for _, h := range hints {
		switch hint := h.(type) {
		case AdjustPadding:
			styled = applyPadding(styled, hint)
		case AdjustGap:
			styled, _ = adjustProperty(styled, "gap", hint.Delta)
		case AdjustSize:
			styled, _ = adjustProperty(styled, "width", hint.DeltaW)
			styled, _ = adjustProperty(styled, "height", hint.DeltaH)
		case AdjustColor:
			styled = replaceProperty(styled, hint.Selector, hint.Value.CSS())
		case AdjustFontSize:
			styled, _ = adjustProperty(styled, "font-size", hint.Delta)
		case AdjustBorderRadius:
			styled, _ = adjustProperty(styled, "border-radius", hint.Delta)
		}
	}
	return styled
}

// applyPadding prefers the longhand side properties; when none are
// present it falls back to the shorthand, nudged by the top delta.
func applyPadding(styled string, hint AdjustPadding) string {
	matched := false
	sides := []struct {
		prop  string
		delta float64
	}{
		{"padding-top", hint.Top},
		{"padding-right", hint.Right},
		{"padding-bottom", hint.Bottom},
		{"padding-left", hint.Left},
	}
	for _, s := range sides {
		var ok bool
		styled, ok = adjustProperty(styled, s.prop, s.delta)
		matched = matched || ok
	}
	if !matched {
		styled, _ = adjustProperty(styled, "padding", hint.Top)
	}
	return styled
}

// numericProp matches `prop: <number>` where prop is not part of a longer
// hyphenated name. Group layout: prefix, separator, number.
func numericProp(prop string) *regexp.Regexp {
	return regexp.MustCompile(`(^|[^-\w])` + regexp.QuoteMeta(prop) + `(\s*:\s*)(-?\d+(?:\.\d+)?)`)
}

// valueProp matches `prop: <anything up to ; } or newline>`.
func valueProp(prop string) *regexp.Regexp {
	return regexp.MustCompile(`(^|[^-\w])` + regexp.QuoteMeta(prop) + `(\s*:\s*)([^;}\n]+)`)
}

// adjustProperty adds delta to the first numeric occurrence of prop.
// Reports whether the property was found. Zero deltas leave the text
// untouched but still report presence.
func adjustProperty(styled, prop string, delta float64) (string, bool) {
	loc := numericProp(prop).FindStringSubmatchIndex(styled)
	if loc == nil {
		return styled, false
	}
	if delta == 0 {
		return styled, true
	}
	numStart, numEnd := loc[6], loc[7]
	old, err := strconv.ParseFloat(styled[numStart:numEnd], 64)
	if err != nil {
		return styled, false
	}
	return styled[:numStart] + trimFloat(old+delta) + styled[numEnd:], true
}

// replaceProperty swaps the first value of prop for the given replacement.
func replaceProperty(styled, prop, value string) string {
	loc := valueProp(prop).FindStringSubmatchIndex(styled)
	if loc == nil {
		return styled
	}
	valStart, valEnd := loc[6], loc[7]
	return styled[:valStart] + value + styled[valEnd:]
}

// trimFloat formats a float without trailing zeros.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
