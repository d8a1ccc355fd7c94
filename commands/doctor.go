package commands

import (
	"errors"

	"github.com/spf13/cobra"

	vaila "github.com/vaila-multimodaltoolbox/vaila"
	"github.com/vaila-multimodaltoolbox/vaila/ui"
)

func (c *CLI) newDoctorCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the machine and an existing installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := vaila.NewConfig()
			if err != nil {
				return err
			}
			resolved, err := c.resolveTarget(target)
			if err != nil {
				return err
			}

			checks := vaila.Doctor(cmd.Context(), config, resolved, c.runner)
			for _, check := range checks {
				mark := ui.GreenText("✓")
				if !check.OK {
					mark = ui.RedText("✗")
					if !check.Required {
						mark = ui.YellowText("-")
					}
				}
				line := mark + " " + check.Name
				if check.Detail != "" {
					line += ": " + check.Detail
				}
				cmd.Println(line)
				if !check.OK && check.Hint != "" {
					cmd.Println("    " + check.Hint)
				}
			}
			if vaila.Failed(checks) {
				return errors.New("required checks failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "install directory to inspect")
	return cmd
}
