package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jpfielding/quadpix.go/pkg/quadpix"
)

// NewFlipCmd creates the flip cobra command
func NewFlipCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flip",
		Short: "mirror an image through its quadtree",
		Long:  "builds a quadtree over the input image, mirrors the tree and writes the reconstructed PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, _ := cmd.Flags().GetString("file")
			outPath, _ := cmd.Flags().GetString("out")
			dirName, _ := cmd.Flags().GetString("direction")
			threshold, _ := cmd.Flags().GetInt("threshold")
			parallel, _ := cmd.Flags().GetBool("parallel")

			if inPath == "" && len(args) > 0 {
				inPath = args[0]
			}
			if inPath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}

			var dir quadpix.Direction
			switch dirName {
			case "horizontal":
				dir = quadpix.Horizontal
			case "vertical":
				dir = quadpix.Vertical
			default:
				return fmt.Errorf("direction must be 'horizontal' or 'vertical', got %q", dirName)
			}

			buf, err := loadImage(inPath)
			if err != nil {
				return err
			}
			tree, err := buildTree(buf, threshold, parallel)
			if err != nil {
				return err
			}
			flipped, err := quadpix.Flip(tree, dir)
			if err != nil {
				return err
			}
			out, err := quadpix.Reconstruct(flipped)
			if err != nil {
				return err
			}

			stats, err := quadpix.Analyze(flipped)
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "flipped",
				"direction", dirName,
				"nodes", stats.NodeCount,
				"ratio", stats.CompressionRatio,
			)
			return saveImage(outPath, out)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "input image path ('-' for stdin)")
	pf.StringP("out", "o", "-", "output PNG path ('-' for stdout)")
	pf.StringP("direction", "d", "horizontal", "flip direction (horizontal|vertical)")
	pf.IntP("threshold", "t", 10, "homogeneity threshold (0-50)")
	pf.Bool("parallel", true, "build the quadtree concurrently")
	return cmd
}
