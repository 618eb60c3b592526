package quadpix

// MaxSample is the largest value an 8-bit sample can hold.
const MaxSample = 255

// PixelBuffer is a flat rectangular raster: W*H pixels with C samples
// per pixel (e.g. 3 for RGB, 4 for RGBA), 8 bits per sample, stored
// row-major. Buffers are treated as immutable once handed to the
// engine; every operation that produces pixels allocates a new buffer.
type PixelBuffer struct {
	W, H, C int
	Samples []uint8
}

// NewPixelBuffer allocates a zeroed buffer of the given dimensions.
func NewPixelBuffer(w, h, c int) *PixelBuffer {
	return &PixelBuffer{
		W:       w,
		H:       h,
		C:       c,
		Samples: make([]uint8, w*h*c),
	}
}

// Pixel returns the C samples of the pixel at (x, y) as a sub-slice of
// the backing store. Callers must not retain or mutate it.
func (b *PixelBuffer) Pixel(x, y int) []uint8 {
	off := (y*b.W + x) * b.C
	return b.Samples[off : off+b.C]
}

// SetPixel copies color into the pixel at (x, y).
func (b *PixelBuffer) SetPixel(x, y int, color []uint8) {
	off := (y*b.W + x) * b.C
	copy(b.Samples[off:off+b.C], color)
}
