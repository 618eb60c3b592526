package cmd

import (
	"fmt"
	"os"

	"github.com/jpfielding/quadpix.go/pkg/imaging"
	"github.com/jpfielding/quadpix.go/pkg/quadpix"
)

// loadImage reads and decodes an image file ("-" for stdin).
func loadImage(path string) (*quadpix.PixelBuffer, error) {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %v", err)
		}
		defer f.Close()
		in = f
	}
	return imaging.Decode(in)
}

// saveImage encodes a buffer as PNG ("-" for stdout).
func saveImage(path string, buf *quadpix.PixelBuffer) error {
	out := os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file: %v", err)
		}
		defer f.Close()
		out = f
	}
	return imaging.EncodePNG(out, buf)
}

func buildTree(buf *quadpix.PixelBuffer, threshold int, parallel bool) (*quadpix.Tree, error) {
	if parallel {
		return quadpix.BuildParallel(buf, threshold)
	}
	return quadpix.Build(buf, threshold)
}
