package vaila

import (
	"log"

	"gopkg.in/yaml.v2"
)

const configFilename = "config.yml"

// Config holds the installer's compiled-in configuration, read from
// config.yml in the resources box. The command line layers overrides on
// top of it.
type Config struct {
	Product string `yaml:"product"`
	Version string `yaml:"version"`
	Tagline string `yaml:"tagline"`
	// DirName is the default install directory name under the user's home.
	DirName string `yaml:"dir_name"`
	// EnvName is the conda environment the manifest declares.
	EnvName string `yaml:"env_name"`
	// ManifestResource is the resource path of the environment manifest.
	ManifestResource string `yaml:"manifest_resource"`
	// GpuPackages are pip-installed into the environment when an NVIDIA
	// GPU is detected, from GpuIndexURL.
	GpuPackages []string `yaml:"gpu_packages"`
	GpuIndexURL string   `yaml:"gpu_index_url"`
	// PackageSwaps replace a conda-resolved package with a pip substitute
	// after the environment is provisioned.
	PackageSwaps []PackageSwap `yaml:"package_swaps"`
	// CopyExcludes are doublestar patterns matched against source-relative
	// paths; matching files are not copied to the target.
	CopyExcludes []string  `yaml:"copy_excludes"`
	NoLauncher   bool      `yaml:"no_launcher"`
	Variables    StringMap `yaml:"variables"`
}

// PackageSwap names a conda package to remove and the pip package that
// replaces it.
type PackageSwap struct {
	Remove  string `yaml:"remove"`
	Install string `yaml:"install"`
}

// NewConfig reads the compiled-in config.yml.
func NewConfig() (*Config, error) {
	configFile := MustGetResource(configFilename)
	config := &Config{}
	err := yaml.Unmarshal([]byte(configFile), config)
	if err != nil {
		log.Printf("Unable to parse config file %s\n", configFilename)
		return config, err
	}
	if config.Variables == nil {
		config.Variables = make(StringMap)
	}
	return config, nil
}
