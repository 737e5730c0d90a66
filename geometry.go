package fidelity

import "math"

// Box is an axis-aligned bounding box in top-left origin coordinates.
type Box struct {
	X, Y, W, H float64
}

// Area returns the box area. Negative extents count as zero.
func (b Box) Area() float64 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// Center returns the box center point.
func (b Box) Center() (cx, cy float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// intersection returns the overlap area of two boxes, 0 when disjoint.
func intersection(a, b Box) float64 {
	x0 := math.Max(a.X, b.X)
	y0 := math.Max(a.Y, b.Y)
	x1 := math.Min(a.X+a.W, b.X+b.W)
	y1 := math.Min(a.Y+a.H, b.Y+b.H)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	return (x1 - x0) * (y1 - y0)
}

// enclosing returns the smallest box containing both a and b.
func enclosing(a, b Box) Box {
	x0 := math.Min(a.X, b.X)
	y0 := math.Min(a.Y, b.Y)
	x1 := math.Max(a.X+a.W, b.X+b.W)
	y1 := math.Max(a.Y+a.H, b.Y+b.H)
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// IoU returns intersection over union for two boxes: 1 for identical
// boxes, 0 for disjoint boxes or a zero-area union.
func IoU(a, b Box) float64 {
	inter := intersection(a, b)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// GIoU returns the generalized IoU:
//
//	iou − (enclosing_area − union_area)/enclosing_area
//
// Range (−1, 1]; negative for disjoint boxes, 1 for identical boxes.
func GIoU(a, b Box) float64 {
	inter := intersection(a, b)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	enc := enclosing(a, b).Area()
	iou := inter / union
	if enc <= 0 {
		return iou
	}
	return iou - (enc-union)/enc
}

// DIoU returns the distance IoU:
//
//	iou − center_distance²/enclosing_diagonal²
//
// It penalizes center offset even under partial overlap.
func DIoU(a, b Box) float64 {
	inter := intersection(a, b)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	iou := inter / union

	acx, acy := a.Center()
	bcx, bcy := b.Center()
	centerSq := (acx-bcx)*(acx-bcx) + (acy-bcy)*(acy-bcy)

	enc := enclosing(a, b)
	diagSq := enc.W*enc.W + enc.H*enc.H
	if diagSq <= 0 {
		return iou
	}
	return iou - centerSq/diagSq
}

// GIoUToSimilarity maps a GIoU in (−1, 1] onto [0, 100]: 50·(g+1).
func GIoUToSimilarity(g float64) float64 {
	return clamp01((g+1)/2) * 100
}

// DIoUToSimilarity maps a DIoU onto [0, 100], analogous to GIoUToSimilarity.
func DIoUToSimilarity(d float64) float64 {
	return clamp01((d+1)/2) * 100
}
