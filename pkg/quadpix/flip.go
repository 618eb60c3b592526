package quadpix

import "fmt"

// Direction selects a mirror axis for Flip.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Flip mirrors a tree without touching pixels: children swap across
// the axis (NW<->NE and SW<->SE for horizontal, NW<->SW and NE<->SE
// for vertical) and every node's bounds are recomputed in the mirrored
// coordinate space. Leaf colors are unchanged; a uniform region flips
// to itself. Flipping twice restores the original tree exactly, and
// node counts, leaf counts and compression ratio never change.
func Flip(t *Tree, dir Direction) (*Tree, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidInput)
	}
	if dir != Horizontal && dir != Vertical {
		return nil, fmt.Errorf("%w: unknown flip direction %q", ErrInvalidArgument, dir)
	}
	return &Tree{
		Root:      flipNode(t.Root, t.W, t.H, dir),
		W:         t.W,
		H:         t.H,
		C:         t.C,
		Threshold: t.Threshold,
	}, nil
}

func flipNode(n *Node, w, h int, dir Direction) *Node {
	r := n.Region
	if dir == Horizontal {
		r.X = w - r.X - r.W
	} else {
		r.Y = h - r.Y - r.H
	}
	if n.Leaf {
		return newLeaf(r, n.Color)
	}
	out := &Node{Region: r}
	if dir == Horizontal {
		out.Kids[NW] = flipNode(n.Kids[NE], w, h, dir)
		out.Kids[NE] = flipNode(n.Kids[NW], w, h, dir)
		out.Kids[SW] = flipNode(n.Kids[SE], w, h, dir)
		out.Kids[SE] = flipNode(n.Kids[SW], w, h, dir)
	} else {
		out.Kids[NW] = flipNode(n.Kids[SW], w, h, dir)
		out.Kids[NE] = flipNode(n.Kids[SE], w, h, dir)
		out.Kids[SW] = flipNode(n.Kids[NW], w, h, dir)
		out.Kids[SE] = flipNode(n.Kids[NE], w, h, dir)
	}
	return out
}
