package fidelity

import "fmt"

// Metrics is the per-node-pair similarity report. Every *Similarity field
// is a percentage in [0, 100], monotone decreasing in the corresponding
// distance.
type Metrics struct {
	ColorDeltaE         float64
	ColorSimilarity     float64
	LayoutIoU           float64
	LayoutSimilarity    float64
	StructureTED        int
	StructureSimilarity float64
	OverallSimilarity   float64
}

// String renders the metrics for log lines and reports.
func (m Metrics) String() string {
	return fmt.Sprintf("color %.1f%% (ΔE %.2f), layout %.1f%% (IoU %.2f), structure %.1f%% (TED %d), overall %.1f%%",
		m.ColorSimilarity, m.ColorDeltaE,
		m.LayoutSimilarity, m.LayoutIoU,
		m.StructureSimilarity, m.StructureTED,
		m.OverallSimilarity)
}

// Default aggregate weights.
const (
	defaultColorWeight     = 0.30
	defaultLayoutWeight    = 0.35
	defaultStructureWeight = 0.35
)

// Scorer combines the color, geometry, and structure engines into one
// composite score per node pair. Construct one per verification session;
// a Scorer holds no mutable state and is safe for concurrent use, but
// keeping it session-scoped keeps weight configuration from leaking
// across sessions.
type Scorer struct {
	colorWeight     float64
	layoutWeight    float64
	structureWeight float64
}

// ScorerOption configures a Scorer during creation.
type ScorerOption func(*Scorer)

// WithWeights sets the relative weight of each similarity dimension.
// Weights are normalized internally; non-positive totals are rejected by
// NewScorer falling back to the defaults.
func WithWeights(color, layout, structure float64) ScorerOption {
	return func(s *Scorer) {
		if color < 0 || layout < 0 || structure < 0 || color+layout+structure <= 0 {
			return
		}
		s.colorWeight = color
		s.layoutWeight = layout
		s.structureWeight = structure
	}
}

// NewScorer creates an aggregate similarity scorer.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		colorWeight:     defaultColorWeight,
		layoutWeight:    defaultLayoutWeight,
		structureWeight: defaultStructureWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeSimilarity scores a candidate node against a target node across
// color, layout, and structure. A dimension absent on both sides counts
// as full similarity, never a penalty; a dimension present on exactly one
// side scores 0 for that dimension. Identical nodes score 100 overall.
func (s *Scorer) ComputeSimilarity(candidate, target *Node) Metrics {
	var m Metrics

	// Color: first solid fill on each side.
	ca, okA := candidate.FirstSolidFill()
	cb, okB := target.FirstSolidFill()
	switch {
	case okA && okB:
		m.ColorDeltaE = CIEDE2000(ca.Lab(), cb.Lab())
		m.ColorSimilarity = DeltaEToSimilarity(m.ColorDeltaE)
	case !okA && !okB:
		m.ColorSimilarity = 100
	default:
		m.ColorSimilarity = 0
	}

	// Layout: bounding boxes.
	switch {
	case candidate != nil && target != nil && candidate.Box != nil && target.Box != nil:
		m.LayoutIoU = IoU(*candidate.Box, *target.Box)
		m.LayoutSimilarity = GIoUToSimilarity(GIoU(*candidate.Box, *target.Box))
	case (candidate == nil || candidate.Box == nil) && (target == nil || target.Box == nil):
		m.LayoutSimilarity = 100
	default:
		m.LayoutSimilarity = 0
	}

	// Structure: positional tree edit distance.
	m.StructureTED = TreeEditDistance(candidate, target)
	maxTED := max(CountNodes(candidate), CountNodes(target))
	m.StructureSimilarity = TEDToSimilarity(m.StructureTED, maxTED)

	total := s.colorWeight + s.layoutWeight + s.structureWeight
	m.OverallSimilarity = (s.colorWeight*m.ColorSimilarity +
		s.layoutWeight*m.LayoutSimilarity +
		s.structureWeight*m.StructureSimilarity) / total

	return m
}
