package quadpix

import "fmt"

// Reconstruct writes the tree's colors back into a flat buffer of the
// tree's recorded geometry: every leaf fills its region, internal
// nodes just recurse. Reconstruction inverts construction exactly only
// when no threshold-driven merging occurred; otherwise it reproduces
// the compressed approximation.
func Reconstruct(t *Tree) (*PixelBuffer, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidInput)
	}
	buf := NewPixelBuffer(t.W, t.H, t.C)
	fillRegion(t.Root, buf)
	return buf, nil
}

func fillRegion(n *Node, buf *PixelBuffer) {
	if !n.Leaf {
		for _, kid := range n.Kids {
			fillRegion(kid, buf)
		}
		return
	}
	r := n.Region
	for y := r.Y; y < r.Y+r.H; y++ {
		off := (y*buf.W + r.X) * buf.C
		for x := 0; x < r.W; x++ {
			copy(buf.Samples[off:off+buf.C], n.Color)
			off += buf.C
		}
	}
}
