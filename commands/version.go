package commands

import (
	"github.com/spf13/cobra"

	"github.com/vaila-multimodaltoolbox/vaila/version"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the toolbox version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(version.Banner())
			if !check {
				return nil
			}
			latest, err := version.Checker{}.Latest(cmd.Context())
			if err != nil {
				// a release check must never break an offline machine
				cmd.Println("Release check failed: " + err.Error())
				return nil
			}
			if version.IsNewer(latest) {
				cmd.Println("A newer release is available: " + latest)
			} else {
				cmd.Println("You are on the latest release.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "query GitHub for the latest release")
	return cmd
}
