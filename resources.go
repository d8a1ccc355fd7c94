package vaila

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/GeertJohan/go.rice"
	"go.trai.ch/zerr"
)

var (
	resourcesBox  *rice.Box
	openBoxesOnce sync.Once
)

var ErrResourceNotFound = zerr.New("resource not found")

// openBoxes opens the embedded resources payload. For go.rice's 'append'
// mode to work, the FindBox() call has to use a literal string parameter.
func openBoxes() {
	openBoxesOnce.Do(func() {
		var err error
		resourcesBox, err = rice.FindBox("resources")
		if err != nil {
			panic(err)
		}
	})
}

// GetResource returns the content of a single file from the resources box.
func GetResource(name string) (string, error) {
	openBoxes()
	content, err := resourcesBox.String(name)
	if err != nil {
		return "", zerr.With(ErrResourceNotFound, "name", name)
	}
	return content, nil
}

// MustGetResource is GetResource for resources that are compiled in and
// cannot be absent.
func MustGetResource(name string) string {
	content, err := GetResource(name)
	if err != nil {
		panic(err)
	}
	return content
}

// GetResourceFiltered returns the contents of all files under a resource
// directory whose paths match the filter, keyed by resource path.
func GetResourceFiltered(dir string, filter *regexp.Regexp) (map[string]string, error) {
	openBoxes()
	contents := make(map[string]string)
	err := resourcesBox.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !filter.MatchString(path) {
			return nil
		}
		content, err := resourcesBox.String(path)
		if err != nil {
			return err
		}
		contents[path] = content
		return nil
	})
	if err != nil {
		return nil, zerr.With(ErrResourceNotFound, "name", dir)
	}
	return contents, nil
}

// MustGetResourceFiltered is GetResourceFiltered for directories that are
// compiled in and cannot be absent.
func MustGetResourceFiltered(dir string, filter *regexp.Regexp) map[string]string {
	contents, err := GetResourceFiltered(dir, filter)
	if err != nil {
		panic(err)
	}
	return contents
}

// UnpackResourceDir writes a resource directory tree out to the filesystem.
func UnpackResourceDir(resourceDir, targetDir string) error {
	openBoxes()
	return resourcesBox.Walk(resourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(resourceDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(targetDir, relPath)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		content, err := resourcesBox.Bytes(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return os.WriteFile(target, content, info.Mode().Perm())
	})
}
