package vaila

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaila-multimodaltoolbox/vaila/receipt"
	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

func writeInstalledTree(t *testing.T) (string, *receipt.Receipt) {
	t.Helper()
	target := filepath.Join(t.TempDir(), "vaila")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "vaila"), 0755))

	r := &receipt.Receipt{Product: "vailá", Version: "0.6.7", Environment: "vaila"}
	for _, name := range []string{"vaila/rotation.py", "README.md"} {
		path := filepath.Join(target, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0644))
		digest, err := receipt.HashFile(path)
		require.NoError(t, err)
		r.Files = append(r.Files, receipt.File{Path: path, Size: int64(len(name)), Digest: digest})
	}
	launcher := filepath.Join(target, "vaila-launcher")
	require.NoError(t, os.WriteFile(launcher, []byte("#!/bin/sh\n"), 0755))
	r.Launcher = launcher
	require.NoError(t, receipt.Write(filepath.Join(target, receipt.Filename), r))
	return target, r
}

func TestUninstallRemovesReceiptedFiles(t *testing.T) {
	target, _ := writeInstalledTree(t)
	keeper := filepath.Join(target, "notes.txt")
	require.NoError(t, os.WriteFile(keeper, []byte("mine"), 0644))

	err := Uninstall(context.Background(), UninstallOptions{Target: target}, &shell.FakeRunner{})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(target, receipt.Filename))
	assert.NoFileExists(t, filepath.Join(target, "vaila", "rotation.py"))
	assert.NoFileExists(t, filepath.Join(target, "vaila-launcher"))
	// files the installer never wrote stay put
	assert.FileExists(t, keeper)
	assert.DirExists(t, target)
}

func TestUninstallRemoveEnv(t *testing.T) {
	target, _ := writeInstalledTree(t)
	runner := &shell.FakeRunner{}

	err := Uninstall(context.Background(), UninstallOptions{Target: target, RemoveEnv: true}, runner)
	require.NoError(t, err)
	require.NotEmpty(t, runner.Calls)
	assert.Contains(t, runner.CallLines()[0], "env remove")
	assert.Contains(t, runner.CallLines()[0], "vaila")
}

func TestUninstallWithoutReceiptFails(t *testing.T) {
	err := Uninstall(context.Background(), UninstallOptions{Target: t.TempDir()}, &shell.FakeRunner{})
	require.Error(t, err)
}

func TestDoctorReportsMissingConda(t *testing.T) {
	config, err := NewConfig()
	require.NoError(t, err)
	runner := &shell.FakeRunner{Missing: []string{"conda", "ffmpeg", "nvidia-smi"}}

	checks := Doctor(context.Background(), config, t.TempDir(), runner)
	require.NotEmpty(t, checks)

	byName := map[string]Check{}
	for _, check := range checks {
		byName[check.Name] = check
	}
	assert.False(t, byName["ffmpeg"].OK)
}

func TestDoctorVerifiesReceipt(t *testing.T) {
	target, _ := writeInstalledTree(t)
	config, err := NewConfig()
	require.NoError(t, err)
	runner := &shell.FakeRunner{Responses: []shell.FakeResponse{
		{Prefix: "/usr/bin/conda --version", Result: shell.Result{Stdout: "conda 24.1.2"}},
		{Prefix: "/usr/bin/conda env list --json",
			Result: shell.Result{Stdout: `{"envs": ["/opt/conda/envs/vaila"]}`}},
	}}

	checks := Doctor(context.Background(), config, target, runner)
	var install Check
	for _, check := range checks {
		if check.Name == "installation" {
			install = check
		}
	}
	assert.True(t, install.OK)

	// corrupt one recorded file and re-run
	require.NoError(t, os.WriteFile(filepath.Join(target, "README.md"), []byte("changed"), 0644))
	checks = Doctor(context.Background(), config, target, runner)
	for _, check := range checks {
		if check.Name == "installation" {
			install = check
		}
	}
	assert.False(t, install.OK)
}

func TestFailed(t *testing.T) {
	assert.False(t, Failed([]Check{{Name: "gpu", OK: false}}))
	assert.True(t, Failed([]Check{{Name: "conda", OK: false, Required: true}}))
	assert.False(t, Failed([]Check{{Name: "conda", OK: true, Required: true}}))
}
