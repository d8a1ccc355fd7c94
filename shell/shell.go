// Package shell runs external programs on behalf of the installer and the
// command-line tools. Everything that shells out (conda, pip, nvidia-smi,
// ffmpeg, rsync) goes through a Runner so that tests can substitute a fake.
package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/zerr"
)

// ErrStartFailed is returned when a program could not be started at all
// (not found, not executable, context already cancelled).
var ErrStartFailed = zerr.New("failed to start command")

// Command describes a single external program invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	// Env entries are layered over the current process environment.
	Env map[string]string
	// PathPrepend is joined in front of PATH, for tools that live in a
	// prefix the user has not exported (e.g. ~/miniconda3/bin).
	PathPrepend string
	Stdin       string
}

// Result carries the captured output of a finished program. A nonzero
// ExitCode is not an error at this layer; callers decide what it means.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner is the single seam for process execution.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// LookPather resolves program names, mirroring exec.LookPath. Split out so
// tests can pretend tools are absent.
type LookPather interface {
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = mergeEnv(os.Environ(), cmd.Env, cmd.PathPrepend)
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, zerr.Wrap(err, ErrStartFailed.Error())
	}
	return result, nil
}

func (ExecRunner) LookPath(name string) (string, error) { return exec.LookPath(name) }

func mergeEnv(base []string, overlay map[string]string, pathPrepend string) []string {
	merged := make([]string, 0, len(base)+len(overlay))
	for _, entry := range base {
		eq := strings.Index(entry, "=")
		if eq < 0 {
			continue
		}
		key := entry[:eq]
		if _, ok := overlay[key]; ok {
			continue
		}
		if pathPrepend != "" && key == "PATH" {
			entry = "PATH=" + pathPrepend + string(os.PathListSeparator) + entry[len("PATH="):]
		}
		merged = append(merged, entry)
	}
	for key, value := range overlay {
		merged = append(merged, key+"="+value)
	}
	return merged
}
