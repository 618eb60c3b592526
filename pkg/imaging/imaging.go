// Package imaging converts between image container formats and the
// engine's flat pixel buffers. The engine itself never sees encoded
// bytes; decoding happens strictly before and encoding strictly after
// any tree work.
package imaging

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jpfielding/quadpix.go/pkg/quadpix"
)

// Channels per decoded pixel. Uploads of any supported format
// (PNG, JPEG, GIF, BMP, TIFF, WebP) normalize to RGB.
const Channels = 3

// Decode reads one image in any registered format and flattens it to
// an RGB buffer.
func Decode(r io.Reader) (*quadpix.PixelBuffer, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	buf := FromImage(img)
	if buf.W == 0 || buf.H == 0 {
		return nil, fmt.Errorf("%w: decoded %s image is empty", quadpix.ErrInvalidInput, format)
	}
	return buf, nil
}

// FromImage flattens any image.Image into an RGB buffer.
func FromImage(img image.Image) *quadpix.PixelBuffer {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	buf := quadpix.NewPixelBuffer(bounds.Dx(), bounds.Dy(), Channels)
	for y := 0; y < buf.H; y++ {
		src := rgba.PixOffset(0, y)
		dst := y * buf.W * Channels
		for x := 0; x < buf.W; x++ {
			buf.Samples[dst] = rgba.Pix[src]
			buf.Samples[dst+1] = rgba.Pix[src+1]
			buf.Samples[dst+2] = rgba.Pix[src+2]
			src += 4
			dst += Channels
		}
	}
	return buf
}

// ToImage expands a buffer into an *image.RGBA. Buffers with a fourth
// channel keep their alpha; RGB buffers become opaque.
func ToImage(buf *quadpix.PixelBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, buf.W, buf.H))
	for y := 0; y < buf.H; y++ {
		dst := img.PixOffset(0, y)
		for x := 0; x < buf.W; x++ {
			px := buf.Pixel(x, y)
			img.Pix[dst] = px[0]
			img.Pix[dst+1] = px[1]
			img.Pix[dst+2] = px[2]
			if buf.C >= 4 {
				img.Pix[dst+3] = px[3]
			} else {
				img.Pix[dst+3] = 0xFF
			}
			dst += 4
		}
	}
	return img
}

// EncodePNG writes the buffer as a PNG.
func EncodePNG(w io.Writer, buf *quadpix.PixelBuffer) error {
	if err := png.Encode(w, ToImage(buf)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Resize scales a buffer to w x h with bilinear interpolation.
func Resize(buf *quadpix.PixelBuffer, w, h int) *quadpix.PixelBuffer {
	if buf.W == w && buf.H == h {
		return buf
	}
	src := ToImage(buf)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return FromImage(dst)
}

// ResizeToCommon shrinks the larger of two buffers so both share the
// minimum of their dimensions. The engine refuses mismatched overlay
// inputs outright, so equal-size production is this collaborator's
// job.
func ResizeToCommon(a, b *quadpix.PixelBuffer) (*quadpix.PixelBuffer, *quadpix.PixelBuffer) {
	w := min(a.W, b.W)
	h := min(a.H, b.H)
	return Resize(a, w, h), Resize(b, w, h)
}
