package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	vaila "github.com/vaila-multimodaltoolbox/vaila"
	"github.com/vaila-multimodaltoolbox/vaila/ui"
)

func (c *CLI) newUninstallCmd() *cobra.Command {
	var target string
	var removeEnv, yes bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove an installed toolbox using its install receipt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := c.resolveTarget(target)
			if err != nil {
				return err
			}
			if !yes && !ui.Confirm("Remove the vailá installation at "+resolved+"?", false) {
				cmd.Println("Uninstall cancelled.")
				return nil
			}
			opts := vaila.UninstallOptions{Target: resolved, RemoveEnv: removeEnv}
			if err := vaila.Uninstall(cmd.Context(), opts, c.runner); err != nil {
				return err
			}
			cmd.Println("Removed " + resolved)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "install directory (default the last install)")
	cmd.Flags().BoolVar(&removeEnv, "remove-env", false, "also remove the conda environment")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// resolveTarget falls back from the flag to the remembered install and
// finally to ~/vaila.
func (c *CLI) resolveTarget(target string) (string, error) {
	if target != "" {
		return target, nil
	}
	if last := c.settings.Load().LastTarget; last != "" {
		return last, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "vaila"), nil
}
