package conda

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

// wellKnownPrefixes are conda install locations probed when the executable
// is not on PATH. Relative entries are resolved against the home directory.
var wellKnownPrefixes = []string{
	"anaconda3",
	"miniconda3",
	"/opt/anaconda3",
	"/opt/miniconda3",
}

// Manager drives a conda executable.
type Manager struct {
	Path   string
	Runner shell.Runner
}

// Find locates the conda executable on PATH or in the well-known install
// prefixes and returns a Manager bound to it.
func Find(runner shell.Runner) (*Manager, error) {
	if lp, ok := runner.(shell.LookPather); ok {
		if path, err := lp.LookPath("conda"); err == nil {
			return &Manager{Path: path, Runner: runner}, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	for _, prefix := range wellKnownPrefixes {
		if !filepath.IsAbs(prefix) {
			if home == "" {
				continue
			}
			prefix = filepath.Join(home, prefix)
		}
		for _, sub := range []string{"bin/conda", "condabin/conda"} {
			candidate := filepath.Join(prefix, sub)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return &Manager{Path: candidate, Runner: runner}, nil
			}
		}
	}
	return nil, ErrCondaNotFound
}

// Version returns the `conda --version` string.
func (m *Manager) Version(ctx context.Context) (string, error) {
	result, err := m.run(ctx, "--version")
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", zerr.With(ErrEnvList, "stderr", result.Stderr)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// EnvList returns the names of all conda environments. Names are the base
// names of the environment paths reported by `conda env list --json`.
func (m *Manager) EnvList(ctx context.Context) ([]string, error) {
	result, err := m.run(ctx, "env", "list", "--json")
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, zerr.With(ErrEnvList, "stderr", result.Stderr)
	}
	var listing struct {
		Envs []string `json:"envs"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &listing); err != nil {
		return nil, zerr.Wrap(err, ErrEnvList.Error())
	}
	names := make([]string, 0, len(listing.Envs))
	for _, envPath := range listing.Envs {
		names = append(names, filepath.Base(envPath))
	}
	return names, nil
}

// EnvExists reports whether an environment with the given name exists.
func (m *Manager) EnvExists(ctx context.Context, name string) (bool, error) {
	names, err := m.EnvList(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range names {
		if existing == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateEnv creates a new environment from a manifest file.
func (m *Manager) CreateEnv(ctx context.Context, manifestPath string) error {
	result, err := m.run(ctx, "env", "create", "-f", manifestPath)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return zerr.With(ErrEnvCreate, "stderr", result.Stderr)
	}
	return nil
}

// UpdateEnv updates an existing environment from a manifest file, pruning
// packages no longer listed.
func (m *Manager) UpdateEnv(ctx context.Context, name, manifestPath string) error {
	result, err := m.run(ctx, "env", "update", "-n", name, "-f", manifestPath, "--prune")
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return zerr.With(ErrEnvUpdate, "stderr", result.Stderr)
	}
	return nil
}

// RemoveEnv deletes an environment and everything in it.
func (m *Manager) RemoveEnv(ctx context.Context, name string) error {
	result, err := m.run(ctx, "env", "remove", "-n", name, "-y")
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return zerr.With(ErrEnvRemove, "stderr", result.Stderr)
	}
	return nil
}

// RunIn runs an arbitrary program inside an environment via `conda run`.
func (m *Manager) RunIn(ctx context.Context, env string, argv ...string) (shell.Result, error) {
	args := append([]string{"run", "-n", env}, argv...)
	return m.run(ctx, args...)
}

// PipInstall installs pip packages into an environment, optionally from an
// alternative index.
func (m *Manager) PipInstall(ctx context.Context, env string, packages []string, indexURL string) error {
	argv := []string{"pip", "install"}
	if indexURL != "" {
		argv = append(argv, "--index-url", indexURL)
	}
	argv = append(argv, packages...)
	result, err := m.RunIn(ctx, env, argv...)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return zerr.With(ErrPipInstall, "stderr", result.Stderr)
	}
	return nil
}

// RemovePackage removes a conda-resolved package from an environment.
func (m *Manager) RemovePackage(ctx context.Context, env, pkg string) error {
	result, err := m.run(ctx, "remove", "-n", env, "-y", pkg)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return zerr.With(ErrPackageRemove, "stderr", result.Stderr)
	}
	return nil
}

func (m *Manager) run(ctx context.Context, args ...string) (shell.Result, error) {
	return m.Runner.Run(ctx, shell.Command{Name: m.Path, Args: args})
}
