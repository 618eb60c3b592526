package quadpix

import "fmt"

// Stats describes the structure of a built tree. Operation and Alpha
// are populated only for overlay results.
type Stats struct {
	NodeCount        int     `json:"node_count"`
	LeafCount        int     `json:"leaf_count"`
	MaxDepth         int     `json:"max_depth"`
	CompressionRatio float64 `json:"compression_ratio"`
	Threshold        int     `json:"threshold"`
	Operation        string  `json:"operation,omitempty"`
	Alpha            float64 `json:"alpha,omitempty"`
}

// Analyze walks the tree and reports node/leaf counts, maximum depth
// (root = 0) and the compression ratio: the fraction of per-pixel
// nodes avoided versus a maximally subdivided tree of the same image,
// 1 - node_count/(W*H). The tree is not modified.
func Analyze(t *Tree) (Stats, error) {
	if t == nil || t.Root == nil {
		return Stats{}, fmt.Errorf("%w: nil tree", ErrInvalidInput)
	}
	var s Stats
	s.Threshold = t.Threshold
	countNodes(t.Root, 0, &s)
	s.CompressionRatio = 1 - float64(s.NodeCount)/float64(t.W*t.H)
	if s.CompressionRatio < 0 {
		// internal nodes can push the count past W*H on noisy images;
		// the ratio floors at zero rather than going negative
		s.CompressionRatio = 0
	}
	return s, nil
}

func countNodes(n *Node, depth int, s *Stats) {
	s.NodeCount++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	if n.Leaf {
		s.LeafCount++
		return
	}
	for _, kid := range n.Kids {
		countNodes(kid, depth+1, s)
	}
}
