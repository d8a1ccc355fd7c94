// Package commands implements the vaila command-line interface.
package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	vaila "github.com/vaila-multimodaltoolbox/vaila"
	"github.com/vaila-multimodaltoolbox/vaila/configs"
	"github.com/vaila-multimodaltoolbox/vaila/shell"
	"github.com/vaila-multimodaltoolbox/vaila/version"
)

// CLI wires the command tree to the process runner and the settings
// store. Commands shell out only through the runner, so tests can drive
// the whole tree against a fake.
type CLI struct {
	runner   shell.Runner
	settings *configs.Configs
	rootCmd  *cobra.Command

	installOpts vaila.RunOptions
}

// New builds the CLI.
func New(runner shell.Runner, settings *configs.Configs) *CLI {
	c := &CLI{runner: runner, settings: settings}

	rootCmd := &cobra.Command{
		Use:           "vaila",
		Short:         "vailá multimodal toolbox installer and data tools",
		Long:          "Installs the vailá multimodal toolbox into a conda environment\nand bundles its data processing tools.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		// a bare `vaila` runs the install flow
		RunE: c.runInstall,
	}
	c.bindInstallFlags(rootCmd)
	c.rootCmd = rootCmd

	rootCmd.AddCommand(
		c.newInstallCmd(),
		c.newUninstallCmd(),
		c.newDoctorCmd(),
		c.newEnvCmd(),
		c.newDocsCmd(),
		c.newVersionCmd(),
		c.newFilesCmd(),
		c.newRotationCmd(),
		c.newRec2dCmd(),
		c.newStabiloCmd(),
		c.newVideoCmd(),
		c.newPoseCmd(),
	)
	return c
}

func (c *CLI) bindInstallFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.installOpts.Target, "target", "", "install directory (default ~/vaila)")
	flags.StringVar(&c.installOpts.Source, "source", "", "source tree to install (default current directory)")
	flags.StringVar(&c.installOpts.Lang, "lang", "", "interface language (en, pt_br)")
	flags.StringVar(&c.installOpts.ManifestPath, "manifest", "", "conda environment manifest to use instead of the bundled one")
	flags.BoolVarP(&c.installOpts.Yes, "yes", "y", false, "skip the confirmation prompt")
	flags.BoolVar(&c.installOpts.NoLauncher, "no-launcher", false, "do not write the launcher script")
	flags.BoolVar(&c.installOpts.NoDesktop, "no-desktop", false, "do not write the desktop entry")
	flags.BoolVar(&c.installOpts.DryRun, "dry-run", false, "print the planned stages and exit")
}

func (c *CLI) runInstall(cmd *cobra.Command, args []string) error {
	opts := c.installOpts
	if opts.Lang == "" {
		opts.Lang = c.settings.Load().Language
	}
	if err := vaila.RunInstall(cmd.Context(), opts, c.runner); err != nil {
		return err
	}
	if opts.DryRun {
		return nil
	}
	if opts.Lang != "" {
		c.settings.SetLanguage(opts.Lang)
	}
	if config, err := vaila.NewConfig(); err == nil {
		target := opts.Target
		if target == "" {
			if home, herr := os.UserHomeDir(); herr == nil {
				target = filepath.Join(home, config.DirName)
			}
		}
		if target != "" {
			c.settings.RememberInstall(target, config.EnvName)
		}
	}
	return nil
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
