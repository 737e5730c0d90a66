package fidelity

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// StopReason explains a convergence verdict.
type StopReason int

const (
	// ReasonContinue means no stop condition fired.
	ReasonContinue StopReason = iota
	// ReasonTextCeiling means the score cleared the configured ceiling on
	// a text-heavy UI. Text rendering has a perceptual accuracy ceiling
	// below 100%, so pushing further wastes iterations.
	ReasonTextCeiling
	// ReasonTargetReached means the score reached the target.
	ReasonTargetReached
	// ReasonMaxIterations means the iteration budget is exhausted.
	ReasonMaxIterations
	// ReasonRegression flags a drop beyond epsilon since the previous
	// iteration. It never stops the session: a transient overshoot from
	// one correction is common and must be allowed to recover.
	ReasonRegression
	// ReasonPlateau means every improvement across the patience window
	// stayed below the relative threshold.
	ReasonPlateau
)

// String returns the reason name.
func (r StopReason) String() string {
	switch r {
	case ReasonContinue:
		return "continue"
	case ReasonTextCeiling:
		return "text_ceiling"
	case ReasonTargetReached:
		return "target_reached"
	case ReasonMaxIterations:
		return "max_iterations"
	case ReasonRegression:
		return "regression"
	case ReasonPlateau:
		return "plateau"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// Verdict is the outcome of one convergence check.
type Verdict struct {
	ShouldStop bool
	Reason     StopReason
}

// Observation is one recorded iteration of a convergence session.
type Observation struct {
	Iteration   int
	Score       float64
	TextDensity float64
	HasDensity  bool
}

// Detector defaults.
const (
	DefaultTarget            = 0.95
	DefaultMaxIterations     = 10
	DefaultPlateauPatience   = 3
	DefaultPlateauThreshold  = 0.01
	DefaultRegressionEpsilon = 0.01
	DefaultTextDensityMin    = 0.5
)

// Detector is a stateful early-stop controller over one verification
// session's score history. Construct one per session; distinct sessions
// never share state. A single Detector is not safe for concurrent
// mutation without external synchronization.
type Detector struct {
	id string

	target            float64
	maxIterations     int
	plateauPatience   int
	plateauThreshold  float64
	regressionEpsilon float64
	textCeiling       float64 // 0 disables the text ceiling
	textDensityMin    float64

	history    []Observation
	best       float64
	hasBest    bool
	plateauRun int
}

// DetectorOption configures a Detector during creation.
type DetectorOption func(*Detector)

// WithTarget sets the score at which the session succeeds.
func WithTarget(target float64) DetectorOption {
	return func(d *Detector) { d.target = target }
}

// WithMaxIterations caps the number of iterations.
func WithMaxIterations(n int) DetectorOption {
	return func(d *Detector) { d.maxIterations = n }
}

// WithPlateau sets the plateau window: the session stops after patience
// consecutive iterations whose relative improvement stays below threshold.
func WithPlateau(patience int, threshold float64) DetectorOption {
	return func(d *Detector) {
		d.plateauPatience = patience
		d.plateauThreshold = threshold
	}
}

// WithRegressionEpsilon sets the drop size that flags a regression.
func WithRegressionEpsilon(eps float64) DetectorOption {
	return func(d *Detector) { d.regressionEpsilon = eps }
}

// WithTextCeiling stops the session once score reaches ceiling while the
// observed text density is at least densityMin. A ceiling of 0 disables
// the check.
func WithTextCeiling(ceiling, densityMin float64) DetectorOption {
	return func(d *Detector) {
		d.textCeiling = ceiling
		d.textDensityMin = densityMin
	}
}

// NewDetector creates a convergence detector. Configuration is validated
// here, never inside Check.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	d := &Detector{
		id:                uuid.NewString(),
		target:            DefaultTarget,
		maxIterations:     DefaultMaxIterations,
		plateauPatience:   DefaultPlateauPatience,
		plateauThreshold:  DefaultPlateauThreshold,
		regressionEpsilon: DefaultRegressionEpsilon,
		textDensityMin:    DefaultTextDensityMin,
	}
	for _, opt := range opts {
		opt(d)
	}

	switch {
	case d.target <= 0 || d.target > 1:
		return nil, fmt.Errorf("fidelity: target score %v outside (0, 1]", d.target)
	case d.maxIterations <= 0:
		return nil, fmt.Errorf("fidelity: max iterations %d must be positive", d.maxIterations)
	case d.plateauPatience < 1:
		return nil, fmt.Errorf("fidelity: plateau patience %d must be at least 1", d.plateauPatience)
	case d.plateauThreshold < 0:
		return nil, errors.New("fidelity: plateau threshold must not be negative")
	case d.regressionEpsilon < 0:
		return nil, errors.New("fidelity: regression epsilon must not be negative")
	case d.textCeiling < 0 || d.textCeiling > 1:
		return nil, fmt.Errorf("fidelity: text ceiling %v outside [0, 1]", d.textCeiling)
	case d.textDensityMin < 0 || d.textDensityMin > 1:
		return nil, fmt.Errorf("fidelity: text density minimum %v outside [0, 1]", d.textDensityMin)
	}

	logger().Info("convergence session started",
		"session", d.id, "target", d.target, "max_iterations", d.maxIterations)
	return d, nil
}

// ID returns the session identifier.
func (d *Detector) ID() string {
	return d.id
}

// Check records one iteration's score and decides whether to stop.
func (d *Detector) Check(score float64, iteration int) Verdict {
	return d.check(Observation{Iteration: iteration, Score: score})
}

// CheckText is Check with the iteration's observed text density, enabling
// the text-ceiling stop.
func (d *Detector) CheckText(score float64, iteration int, textDensity float64) Verdict {
	return d.check(Observation{
		Iteration:   iteration,
		Score:       score,
		TextDensity: textDensity,
		HasDensity:  true,
	})
}

// check evaluates the stop conditions in fixed priority order:
// text ceiling, target, iteration cap, regression (flag only), plateau.
func (d *Detector) check(obs Observation) Verdict {
	if math.IsNaN(obs.Score) || math.IsInf(obs.Score, 0) || obs.Iteration < 0 {
		// Skip the malformed observation; the session itself survives.
		logger().Warn("skipping malformed observation",
			"session", d.id, "iteration", obs.Iteration, "score", obs.Score)
		return Verdict{Reason: ReasonContinue}
	}

	var prev float64
	hasPrev := len(d.history) > 0
	if hasPrev {
		prev = d.history[len(d.history)-1].Score
	}

	d.history = append(d.history, obs)
	if !d.hasBest || obs.Score > d.best {
		d.best = obs.Score
		d.hasBest = true
	}

	if hasPrev {
		// Relative improvement; a drop also counts as below-threshold.
		rel := (obs.Score - prev) / math.Max(math.Abs(prev), 1e-12)
		if rel < d.plateauThreshold {
			d.plateauRun++
		} else {
			d.plateauRun = 0
		}
	}

	verdict := func(stop bool, reason StopReason) Verdict {
		logger().Debug("convergence check",
			"session", d.id, "iteration", obs.Iteration, "score", obs.Score,
			"reason", reason.String(), "stop", stop)
		return Verdict{ShouldStop: stop, Reason: reason}
	}

	if d.textCeiling > 0 && obs.HasDensity &&
		obs.TextDensity >= d.textDensityMin && obs.Score >= d.textCeiling {
		return verdict(true, ReasonTextCeiling)
	}
	if obs.Score >= d.target {
		return verdict(true, ReasonTargetReached)
	}
	if obs.Iteration >= d.maxIterations {
		return verdict(true, ReasonMaxIterations)
	}
	if hasPrev && prev-obs.Score > d.regressionEpsilon {
		return verdict(false, ReasonRegression)
	}
	if d.plateauRun >= d.plateauPatience {
		return verdict(true, ReasonPlateau)
	}
	return verdict(false, ReasonContinue)
}

// Reset clears the history, best score, and plateau counter while
// preserving the configuration.
func (d *Detector) Reset() {
	d.history = nil
	d.best = 0
	d.hasBest = false
	d.plateauRun = 0
	logger().Info("convergence session reset", "session", d.id)
}

// Best returns the best score recorded so far.
func (d *Detector) Best() (float64, bool) {
	return d.best, d.hasBest
}

// History returns a copy of the recorded observations.
func (d *Detector) History() []Observation {
	out := make([]Observation, len(d.history))
	copy(out, d.history)
	return out
}

// Summary renders the session state. It always succeeds, reporting
// best-effort state even when individual observations were skipped.
func (d *Detector) Summary() string {
	if len(d.history) == 0 {
		return fmt.Sprintf("session %s: no iterations recorded", d.id)
	}
	return fmt.Sprintf("session %s: %d iterations, best score %.4f",
		d.id, len(d.history), d.best)
}
