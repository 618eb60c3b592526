package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpfielding/quadpix.go/pkg/quadpix"
)

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "report quadtree statistics for an image",
		Long:  "builds a quadtree over the input image and prints node counts, depth and compression ratio",
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, _ := cmd.Flags().GetString("file")
			threshold, _ := cmd.Flags().GetInt("threshold")
			parallel, _ := cmd.Flags().GetBool("parallel")
			format, _ := cmd.Flags().GetString("format")

			if inPath == "" && len(args) > 0 {
				inPath = args[0]
			}
			if inPath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}

			buf, err := loadImage(inPath)
			if err != nil {
				return err
			}
			tree, err := buildTree(buf, threshold, parallel)
			if err != nil {
				return err
			}
			stats, err := quadpix.Analyze(tree)
			if err != nil {
				return err
			}

			switch format {
			case "text":
				fmt.Printf("Image: %dx%d (%d channels)\n", buf.W, buf.H, buf.C)
				fmt.Printf("Threshold: %d\n", stats.Threshold)
				fmt.Printf("Nodes: %d\n", stats.NodeCount)
				fmt.Printf("Leaves: %d\n", stats.LeafCount)
				fmt.Printf("MaxDepth: %d\n", stats.MaxDepth)
				fmt.Printf("CompressionRatio: %.4f\n", stats.CompressionRatio)
			default:
				j, _ := json.Marshal(stats)
				os.Stdout.Write(j)
				fmt.Println()
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "input image path ('-' for stdin)")
	pf.IntP("threshold", "t", 10, "homogeneity threshold (0-50)")
	pf.Bool("parallel", true, "build the quadtree concurrently")
	pf.String("format", "json", "output format (text|json)")
	return cmd
}
