package vaila

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/vaila-multimodaltoolbox/vaila/conda"
	"github.com/vaila-multimodaltoolbox/vaila/receipt"
	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

// UninstallOptions controls what Uninstall removes beyond the recorded
// files.
type UninstallOptions struct {
	Target string
	// RemoveEnv also deletes the conda environment named in the receipt.
	RemoveEnv bool
}

// Uninstall reads the install receipt and removes everything it lists, in
// reverse creation order: receipt first, then desktop entry, launcher, and
// the copied files. Directories are removed when they end up empty.
func Uninstall(ctx context.Context, opts UninstallOptions, runner shell.Runner) error {
	r, err := receipt.LoadFromDir(opts.Target)
	if err != nil {
		return err
	}
	remove := func(path string) {
		if path == "" {
			return
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Error deleting %s: %v", path, err)
		}
	}
	remove(filepath.Join(opts.Target, receipt.Filename))
	remove(r.DesktopEntry)
	remove(r.Launcher)
	dirs := map[string]bool{}
	for p := len(r.Files) - 1; p >= 0; p-- {
		remove(r.Files[p].Path)
		dirs[filepath.Dir(r.Files[p].Path)] = true
	}
	removeEmptyDirs(dirs, opts.Target)

	if opts.RemoveEnv && r.Environment != "" {
		manager, err := conda.Find(runner)
		if err != nil {
			return err
		}
		if err := manager.RemoveEnv(ctx, r.Environment); err != nil {
			return err
		}
	}
	return nil
}

// removeEmptyDirs deletes the directories the uninstalled files lived in,
// deepest first, stopping at non-empty ones. The target itself goes last.
func removeEmptyDirs(dirs map[string]bool, target string) {
	paths := make([]string, 0, len(dirs))
	for dir := range dirs {
		paths = append(paths, dir)
	}
	sort.Slice(paths, func(a, b int) bool { return len(paths[a]) > len(paths[b]) })
	for _, dir := range paths {
		for dir != target && dir != "/" && dir != "." {
			if os.Remove(dir) != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
	os.Remove(target)
}
