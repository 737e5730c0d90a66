package fidelity

// PaintKind discriminates the fill kinds a design node can carry.
type PaintKind int

const (
	// PaintSolid is a flat color fill.
	PaintSolid PaintKind = iota
	// PaintGradient is any gradient fill.
	PaintGradient
	// PaintImage is an image fill.
	PaintImage
)

// Paint is one fill on a node. Only solid paints carry a meaningful Color.
type Paint struct {
	Kind  PaintKind
	Color Color
}

// Node is one element of an abstract design or implementation tree. The
// package consumes trees but never owns or mutates them. Child order
// matters: structural comparison aligns children by position.
type Node struct {
	ID       string
	Type     string
	Fills    []Paint
	Box      *Box
	Children []*Node
}

// TextNodeType is the type tag text leaves carry in design trees.
const TextNodeType = "TEXT"

// FirstSolidFill returns the node's first solid fill, if any.
func (n *Node) FirstSolidFill() (Color, bool) {
	if n == nil {
		return Color{}, false
	}
	for _, p := range n.Fills {
		if p.Kind == PaintSolid {
			return p.Color, true
		}
	}
	return Color{}, false
}

// CountNodes returns the number of nodes in the tree rooted at n.
func CountNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += CountNodes(c)
	}
	return count
}

// TextDensity returns the fraction of nodes in the tree whose type is
// TextNodeType, in [0, 1]. Text-heavy trees hit a rendering accuracy
// ceiling below 100%, which the convergence detector accounts for.
func TextDensity(n *Node) float64 {
	total := CountNodes(n)
	if total == 0 {
		return 0
	}
	return float64(countTextNodes(n)) / float64(total)
}

func countTextNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 0
	if n.Type == TextNodeType {
		count = 1
	}
	for _, c := range n.Children {
		count += countTextNodes(c)
	}
	return count
}

// TreeEditDistance returns the edit distance between two trees.
//
// A root type mismatch costs 1 regardless of subtree size: a type change
// implies a full re-implementation of that element, so deeper comparison
// adds no signal. Otherwise children are aligned pairwise by position,
// child distances sum recursively, and each unmatched child costs 1.
// Positional alignment is enough here because candidate and target trees
// are structurally similar by construction.
func TreeEditDistance(a, b *Node) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil || b == nil:
		return 1
	}
	if a.Type != b.Type {
		return 1
	}

	dist := 0
	na, nb := len(a.Children), len(b.Children)
	shared := min(na, nb)
	for i := 0; i < shared; i++ {
		dist += TreeEditDistance(a.Children[i], b.Children[i])
	}
	if na > nb {
		dist += na - nb
	} else {
		dist += nb - na
	}
	return dist
}

// TEDToSimilarity maps a tree edit distance onto [0, 100] given the
// maximum possible distance: 100·(1−d/max), clamped. A non-positive max
// means there is nothing to differ, so similarity is 100.
func TEDToSimilarity(d, max int) float64 {
	if max <= 0 {
		return 100
	}
	return clamp01(1-float64(d)/float64(max)) * 100
}
