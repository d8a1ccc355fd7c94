package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaila-multimodaltoolbox/vaila/video"
)

func (c *CLI) newVideoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Video inspection, compression and coordinate reversion",
	}
	cmd.AddCommand(
		c.newVideoInfoCmd(),
		c.newVideoRevertCmd(),
		c.newVideoCompressCmd(),
	)
	return cmd
}

func (c *CLI) newVideoInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <video>",
		Short: "Print the stream properties of a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := video.Probe(cmd.Context(), c.runner, args[0])
			if err != nil {
				return err
			}
			cmd.Printf("%s: %dx%d, %.2f fps, %d frames\n",
				args[0], info.Width, info.Height, info.FPS, info.Frames)
			return nil
		},
	}
}

func (c *CLI) newVideoRevertCmd() *cobra.Command {
	var metadata, layout string

	cmd := &cobra.Command{
		Use:   "revert <pixel.csv> <out.csv>",
		Short: "Map landmark coordinates back to the original video space",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := video.RevertFile(metadata, args[0], args[1], video.Layout(layout))
			if err != nil {
				return err
			}
			cmd.Println("Wrote " + args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&metadata, "metadata", "", "resize metadata sidecar JSON")
	cmd.MarkFlagRequired("metadata")
	cmd.Flags().StringVar(&layout, "layout", string(video.LayoutMediaPipe),
		"CSV layout: mediapipe, yolo or vaila")
	return cmd
}

func (c *CLI) newVideoCompressCmd() *cobra.Command {
	var codec string
	var crf int

	cmd := &cobra.Command{
		Use:   "compress <input> <output>",
		Short: "Re-encode a video with ffmpeg",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := video.Compress(cmd.Context(), c.runner, args[0], args[1], codec, crf); err != nil {
				return err
			}
			cmd.Println(fmt.Sprintf("Wrote %s (%s, crf %d)", args[1], codec, crf))
			return nil
		},
	}
	cmd.Flags().StringVar(&codec, "codec", "h264", "target codec: h264 or h265")
	cmd.Flags().IntVar(&crf, "crf", 23, "constant rate factor (lower is better quality)")
	return cmd
}
