package fidelity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoUIdentical(t *testing.T) {
	boxes := []Box{
		{0, 0, 100, 100},
		{10, 20, 30, 40},
		{-5, -5, 10, 10},
	}
	for _, b := range boxes {
		assert.InDelta(t, 1, IoU(b, b), 1e-9)
		assert.InDelta(t, 1, GIoU(b, b), 1e-9)
		assert.InDelta(t, 1, DIoU(b, b), 1e-9)
	}
}

func TestIoUDisjoint(t *testing.T) {
	a := Box{0, 0, 50, 50}
	b := Box{100, 100, 50, 50}
	assert.Zero(t, IoU(a, b))
	assert.Less(t, GIoU(a, b), 0.0)
}

func TestIoUPartialOverlap(t *testing.T) {
	a := Box{0, 0, 10, 10}
	b := Box{5, 0, 10, 10}
	// Intersection 50, union 150.
	assert.InDelta(t, 50.0/150.0, IoU(a, b), 1e-9)
}

func TestIoUZeroArea(t *testing.T) {
	zero := Box{0, 0, 0, 0}
	assert.Zero(t, IoU(zero, zero))
	assert.Zero(t, GIoU(zero, Box{0, 0, 0, 0}))
	assert.Zero(t, IoU(zero, Box{5, 5, 0, 10}))
}

func TestDIoUPenalizesCenterOffset(t *testing.T) {
	a := Box{0, 0, 10, 10}
	shifted := Box{5, 5, 10, 10}
	assert.Less(t, DIoU(a, shifted), IoU(a, shifted))
}

func TestGIoUToSimilarity(t *testing.T) {
	tests := []struct {
		name string
		g    float64
		want float64
	}{
		{"identical", 1, 100},
		{"neutral", 0, 50},
		{"fully disjoint", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, GIoUToSimilarity(tt.g), 1e-9)
			assert.InDelta(t, tt.want, DIoUToSimilarity(tt.g), 1e-9)
		})
	}
}

func TestBoxCenterArea(t *testing.T) {
	b := Box{10, 20, 30, 40}
	cx, cy := b.Center()
	assert.InDelta(t, 25, cx, 1e-9)
	assert.InDelta(t, 40, cy, 1e-9)
	assert.InDelta(t, 1200, b.Area(), 1e-9)
	assert.Zero(t, Box{0, 0, -5, 10}.Area())
}
