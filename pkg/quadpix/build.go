package quadpix

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Threshold bounds accepted from callers. 0 is additionally allowed
// and merges only regions that are already exactly uniform.
const (
	MinThreshold = 0
	MaxThreshold = 50
)

// forkDepth limits how far BuildParallel forks before falling back to
// the sequential builder: depth 2 means at most 16 concurrent subtrees.
const forkDepth = 2

// Build constructs a quadtree over the whole buffer. A region becomes
// a leaf when every sample lies within threshold of the region's mean
// color on every channel, or when the region is no longer splittable
// (width or height 1). A 1x1 region always stores its exact pixel, so
// encoding is lossless at minimum granularity. Identical inputs yield
// bit-for-bit identical trees.
func Build(buf *PixelBuffer, threshold int) (*Tree, error) {
	if err := validateBuild(buf, threshold); err != nil {
		return nil, err
	}
	root := buildRegion(buf, Region{X: 0, Y: 0, W: buf.W, H: buf.H}, threshold)
	return &Tree{Root: root, W: buf.W, H: buf.H, C: buf.C, Threshold: threshold}, nil
}

// BuildParallel is Build with fork-join over quadrants near the root.
// The four subtrees at a split are independent, so they are built as
// parallel tasks and joined before the parent is assembled. The result
// is identical to Build on the same input.
func BuildParallel(buf *PixelBuffer, threshold int) (*Tree, error) {
	if err := validateBuild(buf, threshold); err != nil {
		return nil, err
	}
	root := buildForked(buf, Region{X: 0, Y: 0, W: buf.W, H: buf.H}, threshold, forkDepth)
	return &Tree{Root: root, W: buf.W, H: buf.H, C: buf.C, Threshold: threshold}, nil
}

func validateBuild(buf *PixelBuffer, threshold int) error {
	if buf == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}
	if buf.W <= 0 || buf.H <= 0 || buf.C <= 0 {
		return fmt.Errorf("%w: degenerate buffer %dx%dx%d", ErrInvalidInput, buf.W, buf.H, buf.C)
	}
	if len(buf.Samples) != buf.W*buf.H*buf.C {
		return fmt.Errorf("%w: buffer holds %d samples, geometry needs %d",
			ErrInvalidInput, len(buf.Samples), buf.W*buf.H*buf.C)
	}
	if threshold < MinThreshold || threshold > MaxThreshold {
		return fmt.Errorf("%w: threshold %d outside [%d, %d]",
			ErrInvalidInput, threshold, MinThreshold, MaxThreshold)
	}
	return nil
}

func buildRegion(buf *PixelBuffer, r Region, threshold int) *Node {
	mean := meanColor(buf, r)
	if !r.Splittable() || homogeneous(buf, r, mean, threshold) {
		return newLeaf(r, mean)
	}
	n := &Node{Region: r}
	for i, q := range r.Split() {
		n.Kids[i] = buildRegion(buf, q, threshold)
	}
	return n
}

func buildForked(buf *PixelBuffer, r Region, threshold, depth int) *Node {
	mean := meanColor(buf, r)
	if !r.Splittable() || homogeneous(buf, r, mean, threshold) {
		return newLeaf(r, mean)
	}
	n := &Node{Region: r}
	if depth <= 0 {
		for i, q := range r.Split() {
			n.Kids[i] = buildRegion(buf, q, threshold)
		}
		return n
	}
	var g errgroup.Group
	for i, q := range r.Split() {
		g.Go(func() error {
			n.Kids[i] = buildForked(buf, q, threshold, depth-1)
			return nil
		})
	}
	_ = g.Wait() // tasks only read buf and write disjoint slots
	return n
}

// meanColor returns the per-channel mean of the region, rounded to
// nearest with ties rounding up.
func meanColor(buf *PixelBuffer, r Region) []uint8 {
	sums := make([]int, buf.C)
	for y := r.Y; y < r.Y+r.H; y++ {
		row := (y*buf.W + r.X) * buf.C
		for x := 0; x < r.W; x++ {
			for c := 0; c < buf.C; c++ {
				sums[c] += int(buf.Samples[row])
				row++
			}
		}
	}
	area := r.Area()
	mean := make([]uint8, buf.C)
	for c := range sums {
		mean[c] = uint8((2*sums[c] + area) / (2 * area))
	}
	return mean
}

// homogeneous reports whether every sample in the region lies within
// threshold of the region's representative color on every channel.
func homogeneous(buf *PixelBuffer, r Region, mean []uint8, threshold int) bool {
	for y := r.Y; y < r.Y+r.H; y++ {
		row := (y*buf.W + r.X) * buf.C
		for x := 0; x < r.W; x++ {
			for c := 0; c < buf.C; c++ {
				d := int(buf.Samples[row]) - int(mean[c])
				if d < 0 {
					d = -d
				}
				if d > threshold {
					return false
				}
				row++
			}
		}
	}
	return true
}
