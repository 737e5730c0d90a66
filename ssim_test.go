package fidelity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSSIMIdentical(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"large", 64, 48},
		{"square", 32, 32},
		{"below window size", 8, 8},
		{"single row", 40, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := gradientPixmap(tt.w, tt.h)
			assert.InDelta(t, 1, SSIM(pm, pm), 1e-9)
		})
	}
}

func TestSSIMDistinct(t *testing.T) {
	a := gradientPixmap(48, 48)
	b := NewPixmap(48, 48)
	b.Fill(White)
	got := SSIM(a, b)
	assert.Less(t, got, 0.9)
	assert.GreaterOrEqual(t, got, -1.0)
}

func TestSSIMOrderIndependent(t *testing.T) {
	a := gradientPixmap(48, 48)
	b := NewPixmap(48, 48)
	b.Fill(RGB(0.5, 0.5, 0.5))
	assert.InDelta(t, SSIM(a, b), SSIM(b, a), 1e-9)
}

func TestSSIMCropsToSharedMinimum(t *testing.T) {
	// The overlapping 40×40 region is identical, so after the mandatory
	// top-left crop the score is exactly 1.
	a := gradientPixmap(40, 40)
	b := gradientPixmap(60, 50).Crop(40, 40)
	bigger := gradientPixmap(60, 50)
	assert.Equal(t, a.Data(), b.Data())
	assert.InDelta(t, 1, SSIM(a, bigger), 1e-9)
}

func TestSSIMEmpty(t *testing.T) {
	assert.Zero(t, SSIM(NewPixmap(0, 0), NewPixmap(0, 0)))
}

func TestSSIMAntiCorrelated(t *testing.T) {
	// Inverted gradients anti-correlate every window, driving the
	// contrast-structure term and the score below zero.
	tests := []struct {
		name string
		n    int
	}{
		{"windowed", 16},
		{"global fallback", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewPixmap(tt.n, tt.n)
			b := NewPixmap(tt.n, tt.n)
			for y := 0; y < tt.n; y++ {
				for x := 0; x < tt.n; x++ {
					v := float64(x) / float64(tt.n-1)
					a.SetPixel(x, y, RGB(v, v, v))
					b.SetPixel(x, y, RGB(1-v, 1-v, 1-v))
				}
			}
			got := SSIM(a, b)
			assert.Less(t, got, 0.0)
			assert.GreaterOrEqual(t, got, -1.0)
		})
	}
}

func TestMSE(t *testing.T) {
	pm := gradientPixmap(20, 20)
	assert.Zero(t, MSE(pm, pm))

	// Uniform 10-step offset on every pixel: squared error 100.
	a := NewPixmap(10, 10)
	b := NewPixmap(10, 10)
	b.Fill(RGB(10.0/255, 10.0/255, 10.0/255))
	assert.InDelta(t, 100, MSE(a, b), 1e-6)

	// Dimension mismatches crop to the shared minimum first.
	assert.Zero(t, MSE(gradientPixmap(30, 20), gradientPixmap(20, 30)))
}

func TestPSNR(t *testing.T) {
	pm := gradientPixmap(20, 20)
	assert.InDelta(t, 100, PSNR(pm, pm), 1e-9, "zero error reports the cap")

	black := NewPixmap(10, 10)
	white := NewPixmap(10, 10)
	white.Fill(White)
	assert.InDelta(t, 0, PSNR(black, white), 1e-6, "maximal error is 0 dB")

	near := NewPixmap(10, 10)
	near.Fill(RGB(10.0/255, 10.0/255, 10.0/255))
	assert.InDelta(t, 28.13, PSNR(black, near), 0.01)
}

func TestMSSSIMIdentical(t *testing.T) {
	pm := gradientPixmap(96, 96)
	assert.InDelta(t, 1, MSSSIM(pm, pm), 1e-9)
}

func TestMSSSIMSmallImageFallsBack(t *testing.T) {
	// Below the window size at the base scale MS-SSIM degrades to global
	// statistics, still 1 for identical inputs.
	pm := gradientPixmap(6, 6)
	assert.InDelta(t, 1, MSSSIM(pm, pm), 1e-9)
}

func TestMSSSIMDistinct(t *testing.T) {
	a := gradientPixmap(96, 96)
	b := NewPixmap(96, 96)
	b.Fill(Black)
	assert.Less(t, MSSSIM(a, b), 0.9)
	assert.GreaterOrEqual(t, MSSSIM(a, b), 0.0)
}

func TestGaussianWindowNormalized(t *testing.T) {
	sum := 0.0
	for _, v := range ssimKernel {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-12)
	assert.Len(t, ssimKernel, ssimWindowSize*ssimWindowSize)
	// Center weight dominates.
	center := ssimKernel[(ssimWindowSize/2)*ssimWindowSize+ssimWindowSize/2]
	assert.Greater(t, center, ssimKernel[0])
}

func TestDownsampleGray(t *testing.T) {
	// 4×2 plane of distinct values; 2×2 box averages.
	src := []float64{
		10, 20, 30, 40,
		50, 60, 70, 80,
	}
	dst, w, h := downsampleGray(src, 4, 2)
	assert.Equal(t, 2, w)
	assert.Equal(t, 1, h)
	assert.InDelta(t, 35, dst[0], 1e-9) // (10+20+50+60)/4
	assert.InDelta(t, 55, dst[1], 1e-9) // (30+40+70+80)/4
}
