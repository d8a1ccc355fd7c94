package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaila-multimodaltoolbox/vaila/pose"
)

func (c *CLI) newPoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pose",
		Short: "MediaPipe landmark CSV tools",
	}
	cmd.AddCommand(c.newPoseToPixelCmd())
	return cmd
}

func (c *CLI) newPoseToPixelCmd() *cobra.Command {
	var width, height int
	var out string

	cmd := &cobra.Command{
		Use:   "topixel <norm.csv>",
		Short: "Convert normalized landmark coordinates to pixels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := pose.ReadNormCSV(args[0])
			if err != nil {
				return err
			}
			outPath := out
			if outPath == "" {
				outPath = pixelPathFor(args[0])
			}
			if err := pose.WritePixelCSV(outPath, frames, width, height); err != nil {
				return err
			}
			if missing := pose.CountMissing(frames); missing > 0 {
				cmd.Printf("%d frame(s) with missing data.\n", missing)
			}
			cmd.Println("Wrote " + outPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "video width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "video height in pixels")
	cmd.MarkFlagRequired("width")
	cmd.MarkFlagRequired("height")
	cmd.Flags().StringVar(&out, "out", "", "output path (default derived from the input)")
	return cmd
}

func pixelPathFor(normPath string) string {
	if strings.HasSuffix(normPath, "_norm.csv") {
		return strings.TrimSuffix(normPath, "_norm.csv") + "_pixel.csv"
	}
	return strings.TrimSuffix(normPath, ".csv") + "_pixel.csv"
}
