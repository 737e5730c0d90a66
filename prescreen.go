package fidelity

import (
	"image"

	"github.com/corona10/goimagehash"
)

// DefaultPrescreenDistance is the Hamming distance at or below which two
// perceptual hashes count as the same frame.
const DefaultPrescreenDistance = 3

// Prescreen is a per-session change detector over successive renders. It
// hashes each frame perceptually and reports whether the frame moved
// relative to the last observed one, letting the session skip re-scoring
// a render that did not change.
//
// The hash is a cheap proxy for change detection only; it never replaces
// SSIM as the pixel score. One Prescreen belongs to one session; it is
// not safe for concurrent use.
type Prescreen struct {
	maxDistance int
	last        *goimagehash.ImageHash
}

// NewPrescreen creates a prescreen. Non-positive maxDistance falls back
// to DefaultPrescreenDistance.
func NewPrescreen(maxDistance int) *Prescreen {
	if maxDistance <= 0 {
		maxDistance = DefaultPrescreenDistance
	}
	return &Prescreen{maxDistance: maxDistance}
}

// Changed reports whether img differs perceptibly from the previously
// observed frame. The first observation always reports changed. Hashing
// failures report changed so a broken hash can never suppress scoring.
func (p *Prescreen) Changed(img image.Image) (bool, error) {
	if img == nil {
		return false, ErrNilImage
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return true, err
	}
	if p.last == nil {
		p.last = hash
		return true, nil
	}
	dist, err := p.last.Distance(hash)
	if err != nil {
		p.last = hash
		return true, err
	}
	if dist <= p.maxDistance {
		logger().Debug("prescreen: frame unchanged", "distance", dist)
		return false, nil
	}
	p.last = hash
	return true, nil
}

// Reset forgets the last observed frame.
func (p *Prescreen) Reset() {
	p.last = nil
}
