package fidelity

// QuadrantRatios holds the differing-pixel fraction of each image quadrant.
type QuadrantRatios struct {
	TopLeft, TopRight, BottomLeft, BottomRight float64
}

// StripRatios holds the differing-pixel fraction of three horizontal strips.
type StripRatios struct {
	Top, Middle, Bottom float64
}

// EdgeRatios holds the differing-pixel fraction of four edge bands.
type EdgeRatios struct {
	Top, Bottom, Left, Right float64
}

// DiffRegions localizes where two images diverge. Every ratio is in
// [0, 1]: the fraction of pixels inside that region whose channels differ
// beyond the comparer's tolerance. Regions attribute divergence only; the
// scalar SSIM score is computed independently.
type DiffRegions struct {
	Quadrants QuadrantRatios
	Strips    StripRatios
	Edges     EdgeRatios
}

// DiffMask marks every pixel whose RGBA channels differ by more than
// tolerance between the two pixmaps. Both pixmaps must share dimensions;
// callers crop first (the comparer does).
func DiffMask(a, b *Pixmap, tolerance uint8) []bool {
	w, h := a.Width(), a.Height()
	mask := make([]bool, w*h)
	da, db := a.Data(), b.Data()
	tol := int(tolerance)
	for i := range mask {
		j := i * 4
		if absInt(int(da[j])-int(db[j])) > tol ||
			absInt(int(da[j+1])-int(db[j+1])) > tol ||
			absInt(int(da[j+2])-int(db[j+2])) > tol ||
			absInt(int(da[j+3])-int(db[j+3])) > tol {
			mask[i] = true
		}
	}
	return mask
}

// AnalyzeRegions computes quadrant, strip, and edge-band diff ratios from
// a pixel-diff mask. The edge band width is min(20px, 10% of the smaller
// dimension).
func AnalyzeRegions(mask []bool, w, h int) DiffRegions {
	var out DiffRegions
	if w <= 0 || h <= 0 || len(mask) != w*h {
		return out
	}

	midX, midY := w/2, h/2
	out.Quadrants = QuadrantRatios{
		TopLeft:     maskRatio(mask, w, 0, 0, midX, midY),
		TopRight:    maskRatio(mask, w, midX, 0, w, midY),
		BottomLeft:  maskRatio(mask, w, 0, midY, midX, h),
		BottomRight: maskRatio(mask, w, midX, midY, w, h),
	}

	t1, t2 := h/3, 2*h/3
	out.Strips = StripRatios{
		Top:    maskRatio(mask, w, 0, 0, w, t1),
		Middle: maskRatio(mask, w, 0, t1, w, t2),
		Bottom: maskRatio(mask, w, 0, t2, w, h),
	}

	band := min(20, min(w, h)/10)
	if band < 1 {
		band = 1
	}
	out.Edges = EdgeRatios{
		Top:    maskRatio(mask, w, 0, 0, w, band),
		Bottom: maskRatio(mask, w, 0, h-band, w, h),
		Left:   maskRatio(mask, w, 0, 0, band, h),
		Right:  maskRatio(mask, w, w-band, 0, w, h),
	}
	return out
}

// maskRatio returns the fraction of set mask bits inside [x0,x1)×[y0,y1).
func maskRatio(mask []bool, w, x0, y0, x1, y1 int) float64 {
	total := (x1 - x0) * (y1 - y0)
	if total <= 0 {
		return 0
	}
	diff := 0
	for y := y0; y < y1; y++ {
		row := y * w
		for x := x0; x < x1; x++ {
			if mask[row+x] {
				diff++
			}
		}
	}
	return float64(diff) / float64(total)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
