// Package conda wraps the conda dependency manager: parsing environment
// manifests and driving environment creation, updates and package
// installs through an external conda executable.
package conda

import (
	"strings"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v2"
)

// Manifest is a declarative conda environment file: a name, an ordered
// channel list and an ordered dependency list, optionally ending in a
// nested pip-only sublist.
type Manifest struct {
	Name         string
	Channels     []string
	Dependencies []Dependency
	Pip          []string
}

// Dependency is one conda package spec of the form name[=version[=build]].
type Dependency struct {
	Name    string
	Version string
	Build   string
}

// Spec renders the dependency back to conda's name=version=build form.
func (d Dependency) Spec() string {
	spec := d.Name
	if d.Version != "" {
		spec += "=" + d.Version
		if d.Build != "" {
			spec += "=" + d.Build
		}
	}
	return spec
}

// rawManifest mirrors the YAML document shape. Dependencies mix plain spec
// strings with a single map holding the pip sublist.
type rawManifest struct {
	Name         string        `yaml:"name"`
	Channels     []string      `yaml:"channels"`
	Dependencies []interface{} `yaml:"dependencies"`
}

// ParseManifest reads and validates a manifest document.
func ParseManifest(content []byte) (*Manifest, error) {
	var raw rawManifest
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, zerr.Wrap(err, ErrManifestInvalid.Error())
	}
	m := &Manifest{Name: raw.Name, Channels: raw.Channels}
	seenPip := false
	for _, entry := range raw.Dependencies {
		switch value := entry.(type) {
		case string:
			m.Dependencies = append(m.Dependencies, parseSpec(value))
		case map[interface{}]interface{}:
			if seenPip {
				return nil, zerr.With(ErrManifestInvalid, "reason", "multiple pip sublists")
			}
			pip, ok := value["pip"]
			if !ok {
				return nil, zerr.With(ErrManifestInvalid, "reason", "unknown dependency map entry")
			}
			pipList, ok := pip.([]interface{})
			if !ok {
				return nil, zerr.With(ErrManifestInvalid, "reason", "pip entry is not a list")
			}
			for _, pkg := range pipList {
				name, ok := pkg.(string)
				if !ok {
					return nil, zerr.With(ErrManifestInvalid, "reason", "pip package is not a string")
				}
				m.Pip = append(m.Pip, name)
			}
			seenPip = true
		default:
			return nil, zerr.With(ErrManifestInvalid, "reason", "unsupported dependency entry")
		}
	}
	return m, m.Validate()
}

// Validate checks the manifest invariants: a name, at least one channel,
// and no duplicate package names across the conda and pip lists.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return zerr.With(ErrManifestInvalid, "reason", "missing environment name")
	}
	if len(m.Channels) == 0 {
		return zerr.With(ErrManifestInvalid, "reason", "no channels")
	}
	seen := make(map[string]bool)
	for _, dep := range m.Dependencies {
		if dep.Name == "" {
			return zerr.With(ErrManifestInvalid, "reason", "empty dependency name")
		}
		if seen[dep.Name] {
			return zerr.With(ErrManifestInvalid, "package", dep.Name)
		}
		seen[dep.Name] = true
	}
	for _, pkg := range m.Pip {
		name := pipPackageName(pkg)
		if seen[name] {
			return zerr.With(ErrManifestInvalid, "package", name)
		}
		seen[name] = true
	}
	return nil
}

// Lookup finds a dependency by package name.
func (m *Manifest) Lookup(name string) (Dependency, bool) {
	for _, dep := range m.Dependencies {
		if dep.Name == name {
			return dep, true
		}
	}
	return Dependency{}, false
}

// Marshal serializes the manifest back into conda's YAML shape, pip
// sublist last, preserving dependency order.
func (m *Manifest) Marshal() ([]byte, error) {
	deps := make([]interface{}, 0, len(m.Dependencies)+1)
	for _, dep := range m.Dependencies {
		deps = append(deps, dep.Spec())
	}
	if len(m.Pip) > 0 {
		deps = append(deps, map[string][]string{"pip": m.Pip})
	}
	return yaml.Marshal(rawDocument{Name: m.Name, Channels: m.Channels, Dependencies: deps})
}

type rawDocument struct {
	Name         string        `yaml:"name"`
	Channels     []string      `yaml:"channels"`
	Dependencies []interface{} `yaml:"dependencies"`
}

func parseSpec(spec string) Dependency {
	parts := strings.SplitN(spec, "=", 3)
	dep := Dependency{Name: parts[0]}
	if len(parts) > 1 {
		dep.Version = parts[1]
	}
	if len(parts) > 2 {
		dep.Build = parts[2]
	}
	return dep
}

// pipPackageName strips version qualifiers from a pip requirement string.
func pipPackageName(requirement string) string {
	name := requirement
	for _, sep := range []string{"==", ">=", "<=", "~=", ">", "<", "["} {
		if idx := strings.Index(name, sep); idx >= 0 {
			name = name[:idx]
		}
	}
	return strings.TrimSpace(name)
}
