package fidelity

import "math"

// SSIM constants from Wang et al. 2004, for an 8-bit dynamic range.
// These values are pinned by every externally reported baseline score;
// do not adjust them.
const (
	ssimWindowSize = 11
	ssimSigma      = 1.5
	ssimC1         = (0.01 * 255) * (0.01 * 255)
	ssimC2         = (0.03 * 255) * (0.03 * 255)
)

// msSSIMWeights are the published five-scale exponents (Wang et al. 2003).
var msSSIMWeights = [5]float64{0.0448, 0.2856, 0.3001, 0.2363, 0.1333}

// ssimKernel is the normalized 11×11 Gaussian window, σ=1.5, flattened
// row-major. Built once; the window is tiny and shared read-only.
var ssimKernel = gaussianWindow(ssimWindowSize, ssimSigma)

// gaussianWindow builds a normalized 2D Gaussian kernel of the given odd
// size, flattened row-major.
func gaussianWindow(size int, sigma float64) []float64 {
	kernel := make([]float64, size*size)
	half := size / 2
	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			v := math.Exp(-float64(dx*dx+dy*dy) / twoSigmaSq)
			kernel[(dy+half)*size+(dx+half)] = v
			sum += v
		}
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// SSIM returns the structural similarity of two pixmaps in (−1, 1],
// 1 for identical images; anti-correlated inputs drive the
// contrast-structure term, and with it the score, below zero. Differing
// dimensions are cropped to the shared minimum, top-left aligned, before
// any pixel computation. Images smaller than the 11×11 window fall back
// to global statistics.
//
// This is the authoritative pixel score; cheaper proxies such as the
// perceptual-hash prescreen never override it.
func SSIM(a, b *Pixmap) float64 {
	a, b = sharedCrop(a, b)
	w, h := a.Width(), a.Height()
	if w == 0 || h == 0 {
		return 0
	}
	gx, gy := a.Grayscale(), b.Grayscale()
	if s, _, _, ok := ssimWindowed(gx, gy, w, h); ok {
		return s
	}
	return ssimGlobal(gx, gy)
}

// MSSSIM returns the multi-scale structural similarity of two pixmaps in
// [0, 1]. Contrast and structure are measured across five 2× box-downsampled
// scales (luminance only at the coarsest) and combined by a weighted
// geometric mean with the published exponents. Scales below the window
// size stop the descent early.
func MSSSIM(a, b *Pixmap) float64 {
	a, b = sharedCrop(a, b)
	w, h := a.Width(), a.Height()
	if w == 0 || h == 0 {
		return 0
	}
	gx, gy := a.Grayscale(), b.Grayscale()
	return msSSIMGray(gx, gy, w, h)
}

// ssimWindowed slides the Gaussian window over both grayscale planes
// (excluding the half-window border) and returns the mean SSIM, mean
// luminance term, and mean contrast-structure term over all windows.
// ok is false when the image is smaller than the window.
func ssimWindowed(x, y []float64, w, h int) (meanSSIM, meanL, meanCS float64, ok bool) {
	if w < ssimWindowSize || h < ssimWindowSize {
		return 0, 0, 0, false
	}
	half := ssimWindowSize / 2

	var sumSSIM, sumL, sumCS float64
	windows := 0

	for cy := half; cy < h-half; cy++ {
		for cx := half; cx < w-half; cx++ {
			// Single-pass weighted sums over the window.
			var mx, my, mxx, myy, mxy float64
			k := 0
			for dy := -half; dy <= half; dy++ {
				row := (cy + dy) * w
				for dx := -half; dx <= half; dx++ {
					wgt := ssimKernel[k]
					k++
					px := x[row+cx+dx]
					py := y[row+cx+dx]
					mx += wgt * px
					my += wgt * py
					mxx += wgt * px * px
					myy += wgt * py * py
					mxy += wgt * px * py
				}
			}
			varX := mxx - mx*mx
			varY := myy - my*my
			cov := mxy - mx*my

			l := (2*mx*my + ssimC1) / (mx*mx + my*my + ssimC1)
			cs := (2*cov + ssimC2) / (varX + varY + ssimC2)

			sumSSIM += l * cs
			sumL += l
			sumCS += cs
			windows++
		}
	}
	if windows == 0 {
		return 0, 0, 0, false
	}
	n := float64(windows)
	return sumSSIM / n, sumL / n, sumCS / n, true
}

// ssimGlobal computes SSIM from whole-image statistics, the defined
// fallback for images below the window size.
func ssimGlobal(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n

	var varX, varY, cov float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		varX += dx * dx
		varY += dy * dy
		cov += dx * dy
	}
	varX /= n
	varY /= n
	cov /= n

	return ((2*mx*my + ssimC1) * (2*cov + ssimC2)) /
		((mx*mx + my*my + ssimC1) * (varX + varY + ssimC2))
}

// psnrCap is the PSNR reported for a zero-error pair, keeping the value
// finite in reports instead of +Inf.
const psnrCap = 100.0

// MSE returns the mean squared error between the BT.601 grayscale planes
// of two pixmaps, over the shared top-left region. Identical images
// yield 0; black vs white yields 255².
func MSE(a, b *Pixmap) float64 {
	a, b = sharedCrop(a, b)
	if a.Width() == 0 || a.Height() == 0 {
		return 0
	}
	return mseGray(a.Grayscale(), b.Grayscale())
}

// PSNR returns the peak signal-to-noise ratio of two pixmaps in decibels
// for an 8-bit dynamic range: 10·log10(255²/MSE), capped at 100 dB.
func PSNR(a, b *Pixmap) float64 {
	return psnrFromMSE(MSE(a, b))
}

func psnrFromMSE(mse float64) float64 {
	if mse <= 0 {
		return psnrCap
	}
	return math.Min(10*math.Log10(255*255/mse), psnrCap)
}

func mseGray(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return sum / n
}

// msSSIMGray combines contrast-structure terms across up to five scales,
// applying the luminance term only at the coarsest scale reached.
func msSSIMGray(x, y []float64, w, h int) float64 {
	overall := 1.0
	for scale := 0; scale < len(msSSIMWeights); scale++ {
		_, l, cs, ok := ssimWindowed(x, y, w, h)
		if !ok {
			if scale == 0 {
				// Too small for even one windowed pass.
				return ssimGlobal(x, y)
			}
			break
		}

		last := scale == len(msSSIMWeights)-1
		nextFits := !last && w/2 >= ssimWindowSize && h/2 >= ssimWindowSize
		if last || !nextFits {
			overall *= math.Pow(math.Max(l, 0), msSSIMWeights[scale]) *
				math.Pow(math.Max(cs, 0), msSSIMWeights[scale])
			return overall
		}

		overall *= math.Pow(math.Max(cs, 0), msSSIMWeights[scale])
		nx, nw, nh := downsampleGray(x, w, h)
		ny, _, _ := downsampleGray(y, w, h)
		x, y, w, h = nx, ny, nw, nh
	}
	return overall
}

// downsampleGray halves a grayscale plane with a 2×2 box filter. Odd
// trailing rows and columns are dropped.
func downsampleGray(src []float64, w, h int) ([]float64, int, int) {
	dw := max(1, w/2)
	dh := max(1, h/2)
	dst := make([]float64, dw*dh)
	for dy := 0; dy < dh; dy++ {
		sy := min(dy*2, h-1)
		sy1 := min(sy+1, h-1)
		for dx := 0; dx < dw; dx++ {
			sx := min(dx*2, w-1)
			sx1 := min(sx+1, w-1)
			dst[dy*dw+dx] = (src[sy*w+sx] + src[sy*w+sx1] +
				src[sy1*w+sx] + src[sy1*w+sx1]) / 4
		}
	}
	return dst, dw, dh
}
