// Package files implements the data file manager: batch rename, collect,
// remove, tree listings and pattern search over motion capture data
// directories, plus remote transfer and compressed backups.
package files

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/zerr"
)

var ErrNoMatches = zerr.New("no files matched")

// Rename is one planned or applied rename.
type Rename struct {
	Old string
	New string
}

// RenameFiles renames every file under root carrying the extension by
// replacing oldText with newText in the base name. With dryRun the plan
// is returned without touching the filesystem.
func RenameFiles(root, ext, oldText, newText string, dryRun bool) ([]Rename, error) {
	paths, err := collectByExtension(root, ext)
	if err != nil {
		return nil, err
	}
	var renames []Rename
	for _, path := range paths {
		base := filepath.Base(path)
		renamed := strings.ReplaceAll(base, oldText, newText)
		if renamed == base {
			continue
		}
		rename := Rename{Old: path, New: filepath.Join(filepath.Dir(path), renamed)}
		if !dryRun {
			if err := os.Rename(rename.Old, rename.New); err != nil {
				return renames, err
			}
		}
		renames = append(renames, rename)
	}
	return renames, nil
}

// Copy collects files by extension under root and copies them into a
// fresh `vaila_copy_<timestamp>` directory below dest, preserving the
// relative layout. It returns the created directory.
func Copy(root, dest, ext string, now time.Time) (string, error) {
	return collectInto(root, dest, ext, "vaila_copy_", now, false)
}

// Move is Copy followed by removal of the originals, into a
// `vaila_move_<timestamp>` directory.
func Move(root, dest, ext string, now time.Time) (string, error) {
	return collectInto(root, dest, ext, "vaila_move_", now, true)
}

func collectInto(root, dest, ext, prefix string, now time.Time, removeOriginals bool) (string, error) {
	paths, err := collectByExtension(root, ext)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", zerr.With(ErrNoMatches, "extension", ext)
	}

	outputDir := filepath.Join(dest, prefix+now.Format("20060102_150405"))
	for _, path := range paths {
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return "", err
		}
		target := filepath.Join(outputDir, relative)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return "", err
		}
		if err := copyFile(path, target); err != nil {
			return "", err
		}
		if removeOriginals {
			if err := os.Remove(path); err != nil {
				return "", err
			}
		}
	}
	return outputDir, nil
}

// Remove deletes every file under root matching the doublestar pattern
// and returns the removed paths. Confirmation belongs to the caller.
func Remove(root, pattern string) ([]string, error) {
	matches, err := Find(root, pattern)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0, len(matches))
	for _, match := range matches {
		if err := os.Remove(match.Path); err != nil {
			return removed, err
		}
		removed = append(removed, match.Path)
	}
	return removed, nil
}

// Tree writes a recursive listing of root into `tree_<timestamp>.txt`
// inside root and returns the listing file path.
func Tree(root string, now time.Time) (string, error) {
	outputPath := filepath.Join(root, "tree_"+now.Format("20060102_150405")+".txt")
	var builder strings.Builder
	builder.WriteString(root + "\n")
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		depth := strings.Count(relative, string(filepath.Separator))
		builder.WriteString(strings.Repeat("    ", depth))
		if entry.IsDir() {
			builder.WriteString(entry.Name() + "/\n")
		} else {
			builder.WriteString(entry.Name() + "\n")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, []byte(builder.String()), 0644); err != nil {
		return "", err
	}
	return outputPath, nil
}

// Match is one search hit with its size in bytes.
type Match struct {
	Path string
	Size int64
}

// Find returns the files under root matching a doublestar pattern
// (e.g. `**/*.csv`), sorted by path.
func Find(root, pattern string) ([]Match, error) {
	relatives, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(relatives)
	var matches []Match
	for _, relative := range relatives {
		path := filepath.Join(root, relative)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		matches = append(matches, Match{Path: path, Size: info.Size()})
	}
	return matches, nil
}

func collectByExtension(root, ext string) ([]string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if ext == "" || strings.EqualFold(filepath.Ext(path), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// SizeString formats a byte count the way listings print it.
func SizeString(size int64) string {
	switch {
	case size >= 1<<30:
		return fmt.Sprintf("%.2fGB", float64(size)/(1<<30))
	case size >= 1<<20:
		return fmt.Sprintf("%.2fMB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2fKB", float64(size)/(1<<10))
	}
	return fmt.Sprintf("%dB", size)
}
