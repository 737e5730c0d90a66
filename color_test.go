package fidelity

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Verify at compile time that Color implements color.Color.
var _ color.Color = Color{}

func TestHex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Color
	}{
		{"short rgb", "#f00", Color{R: 1, G: 0, B: 0, A: 1}},
		{"short rgba", "#f008", Color{R: 1, G: 0, B: 0, A: 136.0 / 255}},
		{"long rgb", "#336699", Color{R: 0x33 / 255.0, G: 0x66 / 255.0, B: 0x99 / 255.0, A: 1}},
		{"long rgba", "#33669980", Color{R: 0x33 / 255.0, G: 0x66 / 255.0, B: 0x99 / 255.0, A: 128.0 / 255}},
		{"no hash", "336699", Color{R: 0x33 / 255.0, G: 0x66 / 255.0, B: 0x99 / 255.0, A: 1}},
		{"invalid length", "#12345", Color{R: 0, G: 0, B: 0, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hex(tt.in)
			assert.InDelta(t, tt.want.R, got.R, 1e-9)
			assert.InDelta(t, tt.want.G, got.G, 1e-9)
			assert.InDelta(t, tt.want.B, got.B, 1e-9)
			assert.InDelta(t, tt.want.A, got.A, 1e-9)
		})
	}
}

func TestFromColorRoundTrip(t *testing.T) {
	orig := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	c := FromColor(orig)
	back := c.Color().(color.NRGBA)
	assert.Equal(t, orig, back)
}

func TestColorCSS(t *testing.T) {
	assert.Equal(t, "rgba(255, 0, 0, 1)", RGB(1, 0, 0).CSS())
	assert.Equal(t, "rgba(0, 0, 0, 0.5)", Color{A: 0.5}.CSS())
}
