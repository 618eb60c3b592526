package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jpfielding/quadpix.go/pkg/imaging"
	"github.com/jpfielding/quadpix.go/pkg/quadpix"
)

// NewOverlayCmd creates the overlay cobra command
func NewOverlayCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "combine two images through their quadtrees",
		Long:  "builds quadtrees over both inputs, combines them leaf-by-leaf (blend|add|multiply|screen) and writes the reconstructed PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			pathA, _ := cmd.Flags().GetString("file1")
			pathB, _ := cmd.Flags().GetString("file2")
			outPath, _ := cmd.Flags().GetString("out")
			opName, _ := cmd.Flags().GetString("operation")
			alpha, _ := cmd.Flags().GetFloat64("alpha")
			threshold, _ := cmd.Flags().GetInt("threshold")
			parallel, _ := cmd.Flags().GetBool("parallel")
			compact, _ := cmd.Flags().GetBool("compact")
			resize, _ := cmd.Flags().GetBool("resize")

			if pathA == "" && len(args) > 0 {
				pathA = args[0]
			}
			if pathB == "" && len(args) > 1 {
				pathB = args[1]
			}
			if pathA == "" || pathB == "" {
				return fmt.Errorf("two image paths are required. Use --file1/--file2 or provide as arguments")
			}

			bufA, err := loadImage(pathA)
			if err != nil {
				return err
			}
			bufB, err := loadImage(pathB)
			if err != nil {
				return err
			}
			if resize {
				bufA, bufB = imaging.ResizeToCommon(bufA, bufB)
			}

			treeA, err := buildTree(bufA, threshold, parallel)
			if err != nil {
				return err
			}
			treeB, err := buildTree(bufB, threshold, parallel)
			if err != nil {
				return err
			}
			result, err := quadpix.Overlay(treeA, treeB, quadpix.Operation(opName), alpha)
			if err != nil {
				return err
			}
			if compact {
				result = quadpix.Compact(result)
			}
			out, err := quadpix.Reconstruct(result)
			if err != nil {
				return err
			}

			stats, err := quadpix.Analyze(result)
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "overlaid",
				"operation", opName,
				"alpha", alpha,
				"nodes", stats.NodeCount,
				"ratio", stats.CompressionRatio,
			)
			return saveImage(outPath, out)
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("file1", "", "first input image path ('-' for stdin)")
	pf.String("file2", "", "second input image path")
	pf.StringP("out", "o", "-", "output PNG path ('-' for stdout)")
	pf.String("operation", "blend", "combine operation (blend|add|multiply|screen)")
	pf.Float64("alpha", 0.5, "blend weight for the first image (0-1)")
	pf.IntP("threshold", "t", 10, "homogeneity threshold (0-50)")
	pf.Bool("parallel", true, "build the quadtrees concurrently")
	pf.Bool("compact", false, "re-merge homogeneous regions in the result tree")
	pf.Bool("resize", true, "shrink both images to their common minimum size first")
	return cmd
}
