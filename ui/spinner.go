package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// walkTokens cycle a small figure across the line while a long external
// command (environment solve, video encode) runs.
var walkTokens = []string{"▹▹▹▹▹", "▸▹▹▹▹", "▹▸▹▹▹", "▹▹▸▹▹", "▹▹▹▸▹", "▹▹▹▹▸"}

type SpinnerCfg struct {
	Message  string
	Tokens   []string
	Duration time.Duration
}

var s = &spinner.Spinner{}

func StartSpinner(cfg *SpinnerCfg) {
	if !SupportsANSICodes() {
		if cfg.Message != "" {
			os.Stdout.WriteString(cfg.Message + "\n")
		}
		return
	}
	if cfg.Tokens == nil {
		cfg.Tokens = walkTokens
	}
	if cfg.Duration.Microseconds() == 0 {
		cfg.Duration = time.Duration(120) * time.Millisecond
	}
	s = spinner.New(cfg.Tokens, cfg.Duration)
	s.Writer = os.Stdout

	if cfg.Message != "" {
		s.Suffix = " " + cfg.Message
	}

	s.Start()
}

func StopSpinner(msg string) {
	if msg != "" {
		s.FinalMSG = msg + "\n"
	}

	s.Stop()
}
