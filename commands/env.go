package commands

import (
	"github.com/spf13/cobra"

	vaila "github.com/vaila-multimodaltoolbox/vaila"
	"github.com/vaila-multimodaltoolbox/vaila/conda"
	"github.com/vaila-multimodaltoolbox/vaila/ui"
)

func (c *CLI) newEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage the toolbox conda environment",
	}
	cmd.AddCommand(
		c.newEnvListCmd(),
		c.newEnvCreateCmd(),
		c.newEnvUpdateCmd(),
		c.newEnvRemoveCmd(),
	)
	return cmd
}

func (c *CLI) newEnvListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conda environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := conda.Find(c.runner)
			if err != nil {
				return err
			}
			names, err := manager.EnvList(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		},
	}
}

// manifestPath resolves the manifest flag, materializing the bundled
// manifest into a temp file when none is given.
func manifestPath(flag string) (string, func(), error) {
	if flag != "" {
		return flag, func() {}, nil
	}
	config, err := vaila.NewConfig()
	if err != nil {
		return "", nil, err
	}
	return vaila.MaterializeManifest([]byte(vaila.MustGetResource(config.ManifestResource)))
}

func (c *CLI) newEnvCreateCmd() *cobra.Command {
	var manifest string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the environment from a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := conda.Find(c.runner)
			if err != nil {
				return err
			}
			path, cleanup, err := manifestPath(manifest)
			if err != nil {
				return err
			}
			defer cleanup()
			ui.StartSpinner(&ui.SpinnerCfg{Message: "Creating conda environment"})
			err = manager.CreateEnv(cmd.Context(), path)
			ui.StopSpinner("")
			return err
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "conda environment manifest")
	return cmd
}

func (c *CLI) newEnvUpdateCmd() *cobra.Command {
	var manifest string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the environment from a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := vaila.NewConfig()
			if err != nil {
				return err
			}
			manager, err := conda.Find(c.runner)
			if err != nil {
				return err
			}
			path, cleanup, err := manifestPath(manifest)
			if err != nil {
				return err
			}
			defer cleanup()
			ui.StartSpinner(&ui.SpinnerCfg{Message: "Updating conda environment"})
			err = manager.UpdateEnv(cmd.Context(), config.EnvName, path)
			ui.StopSpinner("")
			return err
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "conda environment manifest")
	return cmd
}

func (c *CLI) newEnvRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the toolbox environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := vaila.NewConfig()
			if err != nil {
				return err
			}
			if !yes && !ui.Confirm("Remove conda environment "+config.EnvName+"?", false) {
				return nil
			}
			manager, err := conda.Find(c.runner)
			if err != nil {
				return err
			}
			return manager.RemoveEnv(cmd.Context(), config.EnvName)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
