// Package fidelity measures how closely a generated UI implementation
// matches a target design, and drives an iterative correction loop until
// the match converges or an iteration budget runs out.
//
// # Overview
//
// fidelity is a pure computation library: it renders nothing, fetches
// nothing, and persists nothing. An upstream generator produces a candidate
// implementation from a design tree, an external renderer rasterizes it,
// and this package judges the result across four axes:
//
//   - color: CIEDE2000 and OKLab distances over solid fills
//   - geometry: IoU/GIoU/DIoU over bounding boxes
//   - structure: tree-edit distance over abstract node trees
//   - pixels: SSIM and MS-SSIM over raster buffers, with localized
//     diff-region attribution (quadrants, strips, edge bands)
//
// # Quick Start
//
//	import "github.com/visualkit/fidelity"
//
//	cmp := fidelity.NewImageComparer()
//	res, err := cmp.Compare(candidateImg, targetImg)
//	if err != nil { ... }
//	fmt.Println(res.SSIM, res.Regions.Edges)
//
//	det, err := fidelity.NewDetector(fidelity.WithTarget(0.95))
//	verdict := det.Check(res.SSIM, 1)
//	if verdict.ShouldStop { ... }
//
// # Architecture
//
// The metric engines (color, geometry, structure, pixels) are pure and
// synchronous; distinct sessions may call them concurrently without
// locking. Detector and Session own explicit per-session mutable state and
// are the only stateful types. SSIM is CPU-bound and long-running on large
// buffers; CompareAll offers a bounded worker pool for callers comparing
// many pairs, and embedders in responsive services should treat a single
// Compare as a blocking operation.
//
// # Coordinate System
//
// Raster buffers and boxes use standard computer graphics coordinates:
// origin (0,0) at top-left, X increases right, Y increases down.
package fidelity

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
