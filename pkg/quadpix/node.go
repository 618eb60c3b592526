package quadpix

// Node is one region of a quadtree. A node is either a leaf carrying a
// representative color (one sample per channel) or an internal node
// whose four children tile its region exactly. Children are owned
// exclusively by their parent; trees share no nodes.
type Node struct {
	Region Region
	Leaf   bool
	Color  []uint8  // leaf only: representative color, len == C
	Kids   [4]*Node // internal only: NW, NE, SW, SE
}

// Tree is a built quadtree together with the source buffer geometry
// and the threshold it was built with.
type Tree struct {
	Root      *Node
	W, H, C   int
	Threshold int
}

func newLeaf(r Region, color []uint8) *Node {
	c := make([]uint8, len(color))
	copy(c, color)
	return &Node{Region: r, Leaf: true, Color: c}
}

// clone deep-copies a subtree so the result owns its nodes outright.
func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	if n.Leaf {
		return newLeaf(n.Region, n.Color)
	}
	out := &Node{Region: n.Region}
	for i, kid := range n.Kids {
		out.Kids[i] = kid.clone()
	}
	return out
}
