package vaila

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/vaila-multimodaltoolbox/vaila/conda"
	"github.com/vaila-multimodaltoolbox/vaila/shell"
	"github.com/vaila-multimodaltoolbox/vaila/ui"
)

const (
	// Linux terminal command string to clear the current line and reset the cursor
	clearLineVT100         = "\033[2K\r"
	cliInstallerMaxLineLen = 80
	logFilename            = "vaila_install.log"
)

// RunOptions carries the command-line overrides for an installation run.
type RunOptions struct {
	Target       string
	Source       string
	Lang         string
	ManifestPath string
	Yes          bool
	NoLauncher   bool
	NoDesktop    bool
	DryRun       bool
}

// RunInstall provisions the toolbox end to end: confirmation, conda
// environment, tree copy, launcher, desktop entry, receipt. SIGINT during
// the run triggers a rollback.
func RunInstall(ctx context.Context, opts RunOptions, runner shell.Runner) error {
	config, err := NewConfig()
	if err != nil {
		return err
	}
	translator := NewTranslatorVar(config.Variables)
	if len(opts.Lang) > 0 {
		if err := translator.SetLanguage(opts.Lang); err != nil {
			fmt.Printf("Language '%s' not available\n", opts.Lang)
		}
	}

	target := opts.Target
	if target == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		target = filepath.Join(home, config.DirName)
	}
	source := opts.Source
	if source == "" {
		if source, err = os.Getwd(); err != nil {
			return err
		}
	}

	if opts.DryRun {
		fmt.Println(translator.Get("install_dryrun"))
		for _, stage := range stageSequence {
			fmt.Printf("  %s\n", stage)
		}
		fmt.Printf("  target: %s\n", target)
		return nil
	}

	// A machine without the dependency manager must stay untouched, so
	// conda is located before anything is written, the logfile included.
	if _, err := conda.Find(runner); err != nil {
		fmt.Println(translator.Get("conda_missing"))
		return err
	}

	if !opts.Yes && !ui.Confirm(
		ExpandVariables(translator.Get("install_confirm"), StringMap{"target": target}), false,
	) {
		fmt.Println(translator.Get("install_cancelled"))
		return nil
	}

	logfile := startLogging(logFilename)
	defer logfile.Close()

	installer := NewInstaller(source, config, runner)
	if err := installer.CheckInstallDir(target); err != nil {
		log.Println(err)
		return err
	}
	installer.CreateLauncher = !config.NoLauncher && !opts.NoLauncher
	installer.CreateDesktopEntry = !opts.NoDesktop
	if opts.ManifestPath != "" {
		installer.ManifestPath = opts.ManifestPath
	} else {
		installer.ManifestContent = []byte(MustGetResource(config.ManifestResource))
	}

	cancelChannel := make(chan os.Signal, 1)
	signal.Notify(cancelChannel, os.Interrupt)
	defer signal.Stop(cancelChannel)
	go func() {
		for range cancelChannel {
			installer.Rollback()
		}
	}()

	installer.SetProgressFunction(func(status InstallStatus) {
		if status.Stage != StageCopy {
			fmt.Print(clearLineVT100 + translator.Get("stage_"+strings.ReplaceAll(string(status.Stage), "-", "_")))
			return
		}
		next := installer.NextFile()
		if next == nil {
			return
		}
		file := next.Target
		if len(file) > cliInstallerMaxLineLen {
			file = "..." + file[len(file)-(cliInstallerMaxLineLen-3):]
		}
		fmt.Print(clearLineVT100 + file)
	})
	fmt.Println(translator.Get("install_running"))
	installer.StartInstall(ctx)
	installer.WaitForDone()
	if installer.Err() != nil {
		log.Println(installer.Err())
		fmt.Println(clearLineVT100 + translator.Get("install_failed"))
		return installer.Err()
	}
	fmt.Println(clearLineVT100 + installer.SizeString())
	fmt.Println(ui.GreenText(translator.Get("install_done")))
	if installer.CreateLauncher {
		fmt.Println(ExpandVariables(translator.Get("install_launcher_hint"),
			StringMap{"launcher": installer.LauncherPath()}))
	}
	return nil
}

// startLogging sets up the logging
func startLogging(logFilename string) *os.File {
	logfile, err := os.OpenFile(logFilename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal(err)
	}
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(logfile)
	return logfile
}
