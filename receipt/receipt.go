// Package receipt records what an installation wrote to disk, so that
// uninstall can remove exactly those paths and doctor can verify them.
package receipt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v2"
)

// Filename is the receipt's name inside the install target directory.
const Filename = "install_receipt.yaml"

var (
	ErrReceiptNotFound = zerr.New("install receipt not found")
	ErrReceiptInvalid  = zerr.New("install receipt is not readable")
)

// Receipt is the YAML document written at the end of an installation.
type Receipt struct {
	Product      string    `yaml:"product"`
	Version      string    `yaml:"version"`
	InstalledAt  time.Time `yaml:"installed_at"`
	Environment  string    `yaml:"environment"`
	Launcher     string    `yaml:"launcher,omitempty"`
	DesktopEntry string    `yaml:"desktop_entry,omitempty"`
	Files        []File    `yaml:"files"`
}

// File is one installed regular file with its size and xxhash-64 digest.
type File struct {
	Path   string `yaml:"path"`
	Size   int64  `yaml:"size"`
	Digest string `yaml:"digest"`
}

// Problem is one verification finding for an installed file.
type Problem struct {
	Path   string
	Reason string // "missing" or "modified"
}

// HashFile returns the xxhash-64 digest of a file as a 16-digit hex string.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

// Write saves the receipt to path.
func Write(path string, r *Receipt) error {
	content, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// Load reads a receipt from path.
func Load(path string) (*Receipt, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerr.With(ErrReceiptNotFound, "path", path)
		}
		return nil, zerr.Wrap(err, ErrReceiptInvalid.Error())
	}
	var r Receipt
	if err := yaml.Unmarshal(content, &r); err != nil {
		return nil, zerr.Wrap(err, ErrReceiptInvalid.Error())
	}
	return &r, nil
}

// LoadFromDir reads the receipt from its standard location inside an
// install target.
func LoadFromDir(target string) (*Receipt, error) {
	return Load(filepath.Join(target, Filename))
}

// Verify re-hashes every listed file and reports the ones that are missing
// or whose content changed since installation.
func (r *Receipt) Verify() []Problem {
	var problems []Problem
	for _, file := range r.Files {
		digest, err := HashFile(file.Path)
		if err != nil {
			problems = append(problems, Problem{Path: file.Path, Reason: "missing"})
			continue
		}
		if digest != file.Digest {
			problems = append(problems, Problem{Path: file.Path, Reason: "modified"})
		}
	}
	return problems
}
