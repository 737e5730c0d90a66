package fidelity

import (
	"context"
	"fmt"
	"image"
)

// Renderer rasterizes a styled-text representation at the given viewport
// dimensions. Implementations live outside this package (a headless
// browser, a native renderer); they must be deterministic enough for
// convergence over repeated renders to be meaningful.
type Renderer interface {
	Render(ctx context.Context, styled string, width, height int) (image.Image, error)
}

// IterationRecord captures one pass of the correction loop.
type IterationRecord struct {
	Iteration int
	Score     float64
	MSSSIM    float64
	Regions   DiffRegions
	Hints     int
	// Skipped marks iterations whose render was perceptually identical
	// to the previous one, so pixel scoring was not repeated.
	Skipped bool
	Verdict Verdict
}

// Report is the outcome of a fidelity session.
type Report struct {
	SessionID  string
	BestScore  float64
	BestStyled string
	// Achieved is true when the session stopped because the score was
	// good enough (target reached, or text ceiling on a text-heavy UI).
	Achieved   bool
	StopReason StopReason
	Iterations []IterationRecord
}

// Session drives the compare→correct→re-render loop for one candidate
// against one target until the detector stops it. It owns per-session
// mutable state; construct one per verification run and do not share it
// across goroutines.
type Session struct {
	renderer  Renderer
	comparer  *ImageComparer
	detector  *Detector
	prescreen *Prescreen
	width     int
	height    int
	density   float64
	hasTree   bool
}

// SessionOption configures a Session during creation.
type SessionOption func(*Session)

// WithComparer substitutes a configured image comparer.
func WithComparer(c *ImageComparer) SessionOption {
	return func(s *Session) { s.comparer = c }
}

// WithDetector substitutes a configured convergence detector.
func WithDetector(d *Detector) SessionOption {
	return func(s *Session) { s.detector = d }
}

// WithViewport fixes the render viewport. Defaults to the target image
// dimensions.
func WithViewport(width, height int) SessionOption {
	return func(s *Session) {
		s.width = width
		s.height = height
	}
}

// WithTargetTree supplies the target design tree, enabling the
// text-density ceiling in the detector.
func WithTargetTree(root *Node) SessionOption {
	return func(s *Session) {
		s.density = TextDensity(root)
		s.hasTree = root != nil
	}
}

// NewSession creates a fidelity session around an external renderer.
func NewSession(renderer Renderer, opts ...SessionOption) (*Session, error) {
	if renderer == nil {
		return nil, fmt.Errorf("fidelity: renderer must not be nil")
	}
	s := &Session{
		renderer:  renderer,
		prescreen: NewPrescreen(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.comparer == nil {
		s.comparer = NewImageComparer()
	}
	if s.detector == nil {
		d, err := NewDetector()
		if err != nil {
			return nil, err
		}
		s.detector = d
	}
	return s, nil
}

// Run iterates render→compare→correct until the detector stops, starting
// from the given styled text. The returned report carries the best styled
// text seen, even when the session stops without reaching the target.
// Render failures abort the run with the partial report.
func (s *Session) Run(ctx context.Context, styled string, target image.Image) (Report, error) {
	report := Report{SessionID: s.detector.ID()}
	if target == nil {
		return report, ErrNilImage
	}

	targetPM := FromImage(target)
	width, height := s.width, s.height
	if width <= 0 || height <= 0 {
		width, height = targetPM.Width(), targetPM.Height()
	}

	var lastResult ImageResult
	scored := false

	for iteration := 1; ; iteration++ {
		img, err := s.renderer.Render(ctx, styled, width, height)
		if err != nil {
			return report, fmt.Errorf("fidelity: render iteration %d: %w", iteration, err)
		}

		rec := IterationRecord{Iteration: iteration}

		changed, err := s.prescreen.Changed(img)
		if err != nil {
			logger().Warn("prescreen failed, scoring anyway", "error", err)
		}
		if changed || !scored {
			lastResult, err = s.comparer.ComparePixmaps(FromImage(img), targetPM)
			if err != nil {
				return report, err
			}
			scored = true
		} else {
			rec.Skipped = true
		}

		rec.Score = lastResult.SSIM
		rec.MSSSIM = lastResult.MSSSIM
		rec.Regions = lastResult.Regions

		if s.hasTree {
			rec.Verdict = s.detector.CheckText(rec.Score, iteration, s.density)
		} else {
			rec.Verdict = s.detector.Check(rec.Score, iteration)
		}

		if rec.Score > report.BestScore || report.BestStyled == "" {
			report.BestScore = rec.Score
			report.BestStyled = styled
		}

		if rec.Verdict.ShouldStop {
			report.Iterations = append(report.Iterations, rec)
			report.StopReason = rec.Verdict.Reason
			report.Achieved = rec.Verdict.Reason == ReasonTargetReached ||
				rec.Verdict.Reason == ReasonTextCeiling
			logger().Info("session stopped",
				"session", report.SessionID,
				"reason", rec.Verdict.Reason.String(),
				"best", report.BestScore,
				"iterations", iteration)
			return report, nil
		}

		hints := SuggestCorrections(rec.Score, lastResult.Regions)
		rec.Hints = len(hints)
		report.Iterations = append(report.Iterations, rec)
		styled = ApplyCorrections(hints, styled)
	}
}

// Summary renders the detector's view of the session.
func (s *Session) Summary() string {
	return s.detector.Summary()
}
