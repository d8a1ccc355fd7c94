package shell

import (
	"context"
	"strings"

	"go.trai.ch/zerr"
)

// FakeResponse scripts the outcome for commands whose "name arg arg..."
// string starts with Prefix. An empty Prefix matches everything.
type FakeResponse struct {
	Prefix string
	Result Result
	Err    error
}

// FakeRunner records every invocation and answers from a scripted response
// list. Commands with no matching response succeed with empty output.
type FakeRunner struct {
	Responses []FakeResponse
	Calls     []Command
	// Missing lists program names that LookPath should report as absent.
	Missing []string
	// Paths maps program names to the path LookPath resolves them to.
	Paths map[string]string
}

func (f *FakeRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	f.Calls = append(f.Calls, cmd)
	line := cmd.Name
	if len(cmd.Args) > 0 {
		line += " " + strings.Join(cmd.Args, " ")
	}
	for _, resp := range f.Responses {
		if strings.HasPrefix(line, resp.Prefix) {
			return resp.Result, resp.Err
		}
	}
	return Result{}, nil
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	for _, missing := range f.Missing {
		if missing == name {
			return "", zerr.With(ErrStartFailed, "name", name)
		}
	}
	if path, ok := f.Paths[name]; ok {
		return path, nil
	}
	return "/usr/bin/" + name, nil
}

// CallLines returns every recorded call as a single "name arg..." string,
// for compact assertions.
func (f *FakeRunner) CallLines() []string {
	lines := make([]string, 0, len(f.Calls))
	for _, call := range f.Calls {
		line := call.Name
		if len(call.Args) > 0 {
			line += " " + strings.Join(call.Args, " ")
		}
		lines = append(lines, line)
	}
	return lines
}
