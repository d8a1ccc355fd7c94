package files

import (
	"context"
	"strings"

	"go.trai.ch/zerr"

	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

var ErrTransfer = zerr.New("remote transfer failed")

// Transfer copies a path to a remote destination (`user@host:dir`) with
// rsync, falling back to scp when rsync is not installed. Both run
// through the shell runner.
func Transfer(ctx context.Context, runner shell.Runner, source, destination string) error {
	lookPather, _ := runner.(shell.LookPather)

	name := "rsync"
	args := []string{"-avz", "--progress", source, destination}
	if lookPather != nil {
		if _, err := lookPather.LookPath("rsync"); err != nil {
			name = "scp"
			args = []string{"-r", source, destination}
		}
	}

	result, err := runner.Run(ctx, shell.Command{Name: name, Args: args})
	if err != nil {
		return zerr.Wrap(ErrTransfer, err.Error())
	}
	if result.ExitCode != 0 {
		return zerr.With(zerr.With(ErrTransfer, "tool", name), "stderr", strings.TrimSpace(result.Stderr))
	}
	return nil
}
