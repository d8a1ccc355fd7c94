package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the toolbox and provision its conda environment",
		Args:  cobra.NoArgs,
		RunE:  c.runInstall,
	}
	c.bindInstallFlags(cmd)
	return cmd
}
