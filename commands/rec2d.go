package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vaila-multimodaltoolbox/vaila/rec2d"
)

func (c *CLI) newRec2dCmd() *cobra.Command {
	var params string

	cmd := &cobra.Command{
		Use:   "rec2d <directory>",
		Short: "Reconstruct 2D coordinates from pixel CSVs via DLT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := rec2d.LoadParams(params)
			if err != nil {
				return err
			}
			outputDir, err := rec2d.ProcessDirectory(table, args[0], time.Now())
			if err != nil {
				return err
			}
			cmd.Println("Wrote " + outputDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&params, "params", "", "DLT parameter file (frame,a0..a7)")
	cmd.MarkFlagRequired("params")
	return cmd
}
