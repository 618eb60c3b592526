package quadpix

import (
	"fmt"
	"math"
)

// Operation is a per-channel rule for combining two colors.
type Operation string

const (
	OpBlend    Operation = "blend"
	OpAdd      Operation = "add"
	OpMultiply Operation = "multiply"
	OpScreen   Operation = "screen"
)

// Overlay combines two trees of identical geometry region by region.
// Where both sides are leaves the colors combine directly; where
// either side is internal the region is re-split into the standard
// quadrants and both sides descend together, a leaf acting as a
// uniform color across the finer quadrants the other side imposes.
// The output is therefore at least as fine as the finer input and no
// detail is discarded. The result is a brand-new tree; neither input
// is touched, and no re-merge pass runs (see Compact).
//
// Alpha weights colorA for OpBlend and is ignored by the other rules.
func Overlay(a, b *Tree, op Operation, alpha float64) (*Tree, error) {
	if a == nil || a.Root == nil || b == nil || b.Root == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidInput)
	}
	switch op {
	case OpBlend, OpAdd, OpMultiply, OpScreen:
	default:
		return nil, fmt.Errorf("%w: unknown overlay operation %q", ErrInvalidArgument, op)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: alpha %g outside [0, 1]", ErrInvalidArgument, alpha)
	}
	if a.W != b.W || a.H != b.H {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.W, a.H, b.W, b.H)
	}
	if a.C != b.C {
		return nil, fmt.Errorf("%w: %d channels vs %d", ErrDimensionMismatch, a.C, b.C)
	}
	whole := Region{X: 0, Y: 0, W: a.W, H: a.H}
	root := overlayRegion(a.Root, b.Root, whole, op, alpha)
	return &Tree{Root: root, W: a.W, H: a.H, C: a.C, Threshold: a.Threshold}, nil
}

func overlayRegion(a, b *Node, r Region, op Operation, alpha float64) *Node {
	a = descend(a, r)
	b = descend(b, r)
	if a.Leaf && b.Leaf {
		return newLeaf(r, combine(a.Color, b.Color, op, alpha))
	}
	if r.Area() == 1 {
		return newLeaf(r, combine(colorAt(a, r.X, r.Y), colorAt(b, r.X, r.Y), op, alpha))
	}
	// internal nodes with non-canonical bounds (mirrored odd splits)
	// can straddle a strip this thin; Split keeps halving it along the
	// long axis, leaving the off-axis quadrants empty, until the pixels
	// resolve
	n := &Node{Region: r}
	for i, q := range r.Split() {
		if q.Area() == 0 {
			n.Kids[i] = newLeaf(q, nil)
			continue
		}
		n.Kids[i] = overlayRegion(a, b, q, op, alpha)
	}
	return n
}

// descend walks into the deepest node whose region still contains r
// entirely, so both sides of the overlay stay aligned on r no matter
// how differently the two trees subdivide.
func descend(n *Node, r Region) *Node {
	for !n.Leaf {
		next := n
		for _, kid := range n.Kids {
			if kid.Region.Contains(r) {
				next = kid
				break
			}
		}
		if next == n {
			return n
		}
		n = next
	}
	return n
}

// colorAt resolves the representative color covering pixel (x, y).
func colorAt(n *Node, x, y int) []uint8 {
	for !n.Leaf {
		for _, kid := range n.Kids {
			q := kid.Region
			if x >= q.X && x < q.X+q.W && y >= q.Y && y < q.Y+q.H {
				n = kid
				break
			}
		}
	}
	return n.Color
}

func combine(ca, cb []uint8, op Operation, alpha float64) []uint8 {
	out := make([]uint8, len(ca))
	for i := range ca {
		a, b := int(ca[i]), int(cb[i])
		var v int
		switch op {
		case OpBlend:
			v = int(math.Round(alpha*float64(a) + (1-alpha)*float64(b)))
		case OpAdd:
			v = a + b
		case OpMultiply:
			v = a * b / MaxSample
		case OpScreen:
			v = MaxSample - (MaxSample-a)*(MaxSample-b)/MaxSample
		}
		if v < 0 {
			v = 0
		}
		if v > MaxSample {
			v = MaxSample
		}
		out[i] = uint8(v)
	}
	return out
}

// Compact re-runs the builder's homogeneity test bottom-up, collapsing
// internal nodes whose four children are leaves within the tree's
// threshold of their area-weighted mean. Overlay results keep the
// combination granularity by default; Compact is the optional second
// pass for callers that want coarser output, and returns a new tree.
func Compact(t *Tree) *Tree {
	if t == nil || t.Root == nil {
		return t
	}
	return &Tree{
		Root:      compactNode(t.Root, t.Threshold),
		W:         t.W,
		H:         t.H,
		C:         t.C,
		Threshold: t.Threshold,
	}
}

func compactNode(n *Node, threshold int) *Node {
	if n.Leaf {
		return newLeaf(n.Region, n.Color)
	}
	out := &Node{Region: n.Region}
	allLeaves := true
	for i, kid := range n.Kids {
		out.Kids[i] = compactNode(kid, threshold)
		allLeaves = allLeaves && out.Kids[i].Leaf
	}
	if !allLeaves {
		return out
	}

	channels := len(out.Kids[NW].Color)
	sums := make([]int, channels)
	for _, kid := range out.Kids {
		area := kid.Region.Area()
		if area == 0 {
			continue
		}
		for c := 0; c < channels; c++ {
			sums[c] += int(kid.Color[c]) * area
		}
	}
	area := n.Region.Area()
	mean := make([]uint8, channels)
	for c := range sums {
		mean[c] = uint8((2*sums[c] + area) / (2 * area))
	}

	for _, kid := range out.Kids {
		if kid.Region.Area() == 0 {
			continue
		}
		for c := 0; c < channels; c++ {
			d := int(kid.Color[c]) - int(mean[c])
			if d < 0 {
				d = -d
			}
			if d > threshold {
				return out
			}
		}
	}
	return newLeaf(n.Region, mean)
}
