package fidelity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestCorrectionsNearPerfect(t *testing.T) {
	regions := DiffRegions{Edges: EdgeRatios{Top: 0.4}}
	assert.Nil(t, SuggestCorrections(0.99, regions))
	assert.Nil(t, SuggestCorrections(0.995, regions))
}

func TestSuggestCorrectionsEdgePadding(t *testing.T) {
	regions := DiffRegions{Edges: EdgeRatios{Top: 0.5, Left: 0.25}}
	hints := SuggestCorrections(0.90, regions)
	require.NotEmpty(t, hints)

	pad, ok := hints[0].(AdjustPadding)
	require.True(t, ok, "edge-band diffs suggest padding first")
	assert.InDelta(t, 8, pad.Top, 1e-9) // 0.5·16
	assert.InDelta(t, 4, pad.Left, 1e-9)
	assert.Zero(t, pad.Bottom, "quiet edges get no delta")
	assert.Zero(t, pad.Right)
}

func TestSuggestCorrectionsAsymmetry(t *testing.T) {
	t.Run("horizontal", func(t *testing.T) {
		regions := DiffRegions{Quadrants: QuadrantRatios{TopRight: 0.5, BottomRight: 0.5}}
		hints := SuggestCorrections(0.70, regions)
		var gap *AdjustGap
		for _, h := range hints {
			if g, ok := h.(AdjustGap); ok {
				gap = &g
			}
		}
		require.NotNil(t, gap)
		assert.Negative(t, gap.Delta, "heavier right side shrinks the gap")
	})

	t.Run("vertical", func(t *testing.T) {
		regions := DiffRegions{Quadrants: QuadrantRatios{TopLeft: 0.5, TopRight: 0.5}}
		hints := SuggestCorrections(0.70, regions)
		var size *AdjustSize
		for _, h := range hints {
			if s, ok := h.(AdjustSize); ok {
				size = &s
			}
		}
		require.NotNil(t, size)
		assert.Negative(t, size.DeltaH)
	})
}

func TestSuggestCorrectionsStrips(t *testing.T) {
	regions := DiffRegions{Strips: StripRatios{Top: 0.4, Bottom: 0.4}}
	hints := SuggestCorrections(0.70, regions)
	var font *AdjustFontSize
	for _, h := range hints {
		if f, ok := h.(AdjustFontSize); ok {
			font = &f
		}
	}
	require.NotNil(t, font)
	assert.Negative(t, font.Delta, "quiet middle strip shrinks the font")
}

func TestSuggestCorrectionsBorderRadius(t *testing.T) {
	regions := DiffRegions{
		Quadrants: QuadrantRatios{TopLeft: 0.1, TopRight: 0.1, BottomLeft: 0.1, BottomRight: 0.1},
	}
	hints := SuggestCorrections(0.85, regions)
	require.NotEmpty(t, hints)
	_, ok := hints[0].(AdjustBorderRadius)
	assert.True(t, ok, "even quadrant spread with quiet edges points at corners")
}

func TestSuggestCorrectionsScoreCapsHints(t *testing.T) {
	// Regions dirty enough to trigger several hint kinds at once.
	regions := DiffRegions{
		Edges:     EdgeRatios{Top: 0.5, Bottom: 0.5, Left: 0.5, Right: 0.5},
		Quadrants: QuadrantRatios{TopLeft: 0.6, BottomLeft: 0.6},
		Strips:    StripRatios{Middle: 0.6},
	}
	high := SuggestCorrections(0.96, regions)
	mid := SuggestCorrections(0.85, regions)
	low := SuggestCorrections(0.40, regions)

	assert.Len(t, high, 1, "near-target sessions get one careful nudge")
	assert.LessOrEqual(t, len(mid), 3)
	assert.Greater(t, len(low), len(high))
}

func TestApplyCorrectionsPadding(t *testing.T) {
	styled := ".card { padding-top: 12px; padding-left: 4px; margin: 0; }"
	got := ApplyCorrections([]Hint{AdjustPadding{Top: 4, Left: -2}}, styled)
	assert.Contains(t, got, "padding-top: 16px")
	assert.Contains(t, got, "padding-left: 2px")
	assert.Contains(t, got, "margin: 0", "unrelated properties untouched")
}

func TestApplyCorrectionsShorthandFallback(t *testing.T) {
	styled := ".card { padding: 8px; }"
	got := ApplyCorrections([]Hint{AdjustPadding{Top: 4, Bottom: 2}}, styled)
	assert.Contains(t, got, "padding: 12px", "shorthand nudged by the top delta")
}

func TestApplyCorrectionsPropertyIsolation(t *testing.T) {
	// "padding" must not rewrite the longhand "padding-top" value.
	styled := ".a { padding-top: 10px; } .b { padding: 6px; }"
	got := ApplyCorrections([]Hint{AdjustGap{Delta: 0}, AdjustPadding{Top: 2}}, styled)
	assert.Contains(t, got, "padding-top: 12px")
	assert.Contains(t, got, "padding: 6px")
}

func TestApplyCorrectionsZeroDelta(t *testing.T) {
	styled := ".row { gap: 8px; width: 100px; }"
	got := ApplyCorrections([]Hint{AdjustGap{}, AdjustSize{}}, styled)
	assert.Equal(t, styled, got)
}

func TestApplyCorrectionsMissingProperty(t *testing.T) {
	styled := ".row { color: red; }"
	got := ApplyCorrections([]Hint{AdjustGap{Delta: 4}, AdjustFontSize{Delta: 1}}, styled)
	assert.Equal(t, styled, got, "absent properties leave the text unchanged")
}

func TestApplyCorrectionsFirstOccurrenceOnly(t *testing.T) {
	styled := ".a { gap: 4px; } .b { gap: 4px; }"
	got := ApplyCorrections([]Hint{AdjustGap{Delta: 4}}, styled)
	assert.Equal(t, ".a { gap: 8px; } .b { gap: 4px; }", got)
}

func TestApplyCorrectionsColor(t *testing.T) {
	styled := ".btn { background-color: #ff0000; border: none; }"
	got := ApplyCorrections([]Hint{
		AdjustColor{Selector: "background-color", Value: RGB(0, 0, 1)},
	}, styled)
	assert.Contains(t, got, "background-color: rgba(0, 0, 255, 1)")
	assert.Contains(t, got, "border: none")
}

func TestApplyCorrectionsSizeAndRadius(t *testing.T) {
	styled := "div { width: 100px; height: 50px; border-radius: 4px; }"
	got := ApplyCorrections([]Hint{
		AdjustSize{DeltaW: -8, DeltaH: 8},
		AdjustBorderRadius{Delta: 2},
	}, styled)
	assert.Contains(t, got, "width: 92px")
	assert.Contains(t, got, "height: 58px")
	assert.Contains(t, got, "border-radius: 6px")
}

func TestApplyCorrectionsFractionalValues(t *testing.T) {
	styled := "p { font-size: 14.5px; }"
	got := ApplyCorrections([]Hint{AdjustFontSize{Delta: 1}}, styled)
	assert.Contains(t, got, "font-size: 15.5px")
}
