package fidelity

import (
	"errors"
	"image"
)

// Defaults for ImageComparer.
const (
	// DefaultDiffTolerance is the per-channel tolerance below which two
	// pixels count as equal in the diff mask. Absorbs sub-perceptual
	// anti-aliasing noise; identical buffers always yield zero ratios.
	DefaultDiffTolerance = 8
)

// ErrNilImage is returned when a required image input is entirely absent.
var ErrNilImage = errors.New("fidelity: image input is nil")

// ImageResult is the outcome of one pixel-level comparison.
type ImageResult struct {
	// SSIM is the authoritative windowed structural similarity in (−1, 1].
	SSIM float64
	// MSSSIM is the multi-scale score in [0, 1]; zero when disabled.
	MSSSIM float64
	// PSNR (decibels, capped at 100 for a zero-error pair) and MSE are
	// secondary distortion metrics carried for report parity; they never
	// influence convergence decisions.
	PSNR float64
	MSE  float64
	// Regions localizes the divergence.
	Regions DiffRegions
	// Width and Height are the compared dimensions after cropping and
	// any configured downscale.
	Width, Height int
}

// ImageComparer runs SSIM, MS-SSIM, and region-diff analysis over raster
// pairs. It is stateless after construction and safe for concurrent use.
//
// A Compare call is CPU-bound and long-running on large buffers
// (O(width×height×121) per SSIM pass, times five shrinking passes for
// MS-SSIM); callers embedding it in a responsive service should offload
// it, e.g. via CompareAll.
type ImageComparer struct {
	tolerance  uint8
	maxDim     int
	multiScale bool
}

// ImageOption configures an ImageComparer during creation.
type ImageOption func(*ImageComparer)

// WithDiffTolerance sets the per-channel tolerance for the diff mask.
func WithDiffTolerance(t uint8) ImageOption {
	return func(c *ImageComparer) {
		c.tolerance = t
	}
}

// WithMaxDimension downscales inputs whose larger side exceeds n pixels
// before comparison. 0 (the default) disables downscaling. This is a
// speed/precision trade the caller opts into; scores from different
// max-dimension settings are not comparable to each other.
func WithMaxDimension(n int) ImageOption {
	return func(c *ImageComparer) {
		c.maxDim = n
	}
}

// WithMultiScale enables or disables the MS-SSIM pass. Enabled by default.
func WithMultiScale(enabled bool) ImageOption {
	return func(c *ImageComparer) {
		c.multiScale = enabled
	}
}

// NewImageComparer creates an image comparer.
func NewImageComparer(opts ...ImageOption) *ImageComparer {
	c := &ImageComparer{
		tolerance:  DefaultDiffTolerance,
		multiScale: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare scores a candidate render against a target design raster.
// Dimension mismatches are resolved by cropping both images to the shared
// minimum, top-left aligned; a nil input is the only error case.
func (c *ImageComparer) Compare(candidate, target image.Image) (ImageResult, error) {
	if candidate == nil || target == nil {
		return ImageResult{}, ErrNilImage
	}
	return c.ComparePixmaps(FromImage(candidate), FromImage(target))
}

// ComparePixmaps is Compare for callers already holding pixmaps.
func (c *ImageComparer) ComparePixmaps(a, b *Pixmap) (ImageResult, error) {
	if a == nil || b == nil {
		return ImageResult{}, ErrNilImage
	}

	a = c.downscale(a)
	b = c.downscale(b)
	a, b = sharedCrop(a, b)
	w, h := a.Width(), a.Height()

	res := ImageResult{Width: w, Height: h}
	if w == 0 || h == 0 {
		return res, nil
	}

	res.SSIM = SSIM(a, b)
	if c.multiScale {
		res.MSSSIM = MSSSIM(a, b)
	}
	res.MSE = MSE(a, b)
	res.PSNR = psnrFromMSE(res.MSE)
	mask := DiffMask(a, b, c.tolerance)
	res.Regions = AnalyzeRegions(mask, w, h)

	logger().Debug("image comparison",
		"ssim", res.SSIM, "msssim", res.MSSSIM, "width", w, "height", h)
	return res, nil
}

// downscale shrinks p so its larger side fits maxDim, preserving aspect.
func (c *ImageComparer) downscale(p *Pixmap) *Pixmap {
	if c.maxDim <= 0 {
		return p
	}
	longest := max(p.Width(), p.Height())
	if longest <= c.maxDim {
		return p
	}
	scale := float64(c.maxDim) / float64(longest)
	w := max(1, int(float64(p.Width())*scale))
	h := max(1, int(float64(p.Height())*scale))
	return p.Scaled(w, h)
}
