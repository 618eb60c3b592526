package quadpix

// Region is an axis-aligned rectangle in a buffer's pixel grid.
type Region struct {
	X, Y, W, H int
}

// Quadrant indices for a node's children.
const (
	NW = 0
	NE = 1
	SW = 2
	SE = 3
)

// Area returns the number of pixels the region covers.
func (r Region) Area() int {
	return r.W * r.H
}

// Splittable reports whether the region can be divided into four
// non-empty quadrants. Strips of width or height 1 cannot.
func (r Region) Splittable() bool {
	return r.W > 1 && r.H > 1
}

// Contains reports whether other lies entirely within r.
func (r Region) Contains(other Region) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.W <= r.X+r.W && other.Y+other.H <= r.Y+r.H
}

// Split divides the region into NW, NE, SW, SE quadrants. Odd
// dimensions give the extra column to the west half and the extra row
// to the north half, so the four quadrants always tile r exactly.
func (r Region) Split() [4]Region {
	westW := (r.W + 1) / 2
	northH := (r.H + 1) / 2
	eastW := r.W - westW
	southH := r.H - northH
	midX := r.X + westW
	midY := r.Y + northH
	return [4]Region{
		NW: {X: r.X, Y: r.Y, W: westW, H: northH},
		NE: {X: midX, Y: r.Y, W: eastW, H: northH},
		SW: {X: r.X, Y: midY, W: westW, H: southH},
		SE: {X: midX, Y: midY, W: eastW, H: southH},
	}
}
