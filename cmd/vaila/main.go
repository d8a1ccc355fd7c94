package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/vaila-multimodaltoolbox/vaila/commands"
	"github.com/vaila-multimodaltoolbox/vaila/configs"
	"github.com/vaila-multimodaltoolbox/vaila/shell"
	"github.com/vaila-multimodaltoolbox/vaila/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := commands.New(&shell.ExecRunner{}, configs.New())
	if err := cli.Execute(ctx); err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}
}
