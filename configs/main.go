// Package configs persists user preferences between runs:
// the chosen interface language, the last install target and the conda
// environment name, stored as JSON under ~/.vaila.
package configs

import (
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings is the persisted user configuration.
type Settings struct {
	Language      string `json:"language" mapstructure:"language"`
	LastTarget    string `json:"lastTarget" mapstructure:"lastTarget"`
	LastEnvName   string `json:"lastEnvName" mapstructure:"lastEnvName"`
	SkipGpuExtras bool   `json:"skipGpuExtras" mapstructure:"skipGpuExtras"`
}

// Configs reads and writes the settings file.
type Configs struct {
	viper      *viper.Viper
	configPath string
}

// New opens the settings store at ~/.vaila/config.json. A missing file
// is not an error; reads return zero values until the first Save.
func New() *Configs {
	configPath := path.Join(os.Getenv("HOME"), ".vaila/config.json")
	return NewAt(configPath)
}

// NewAt opens a settings store at an explicit path.
func NewAt(configPath string) *Configs {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.ReadInConfig()
	return &Configs{viper: v, configPath: configPath}
}

// Load returns the current settings, zero-valued where unset.
func (c *Configs) Load() Settings {
	return Settings{
		Language:      c.viper.GetString("language"),
		LastTarget:    c.viper.GetString("lastTarget"),
		LastEnvName:   c.viper.GetString("lastEnvName"),
		SkipGpuExtras: c.viper.GetBool("skipGpuExtras"),
	}
}

// Save writes the settings, creating the directory on first use.
func (c *Configs) Save(settings Settings) error {
	c.viper.Set("language", settings.Language)
	c.viper.Set("lastTarget", settings.LastTarget)
	c.viper.Set("lastEnvName", settings.LastEnvName)
	c.viper.Set("skipGpuExtras", settings.SkipGpuExtras)

	dir := filepath.Dir(c.configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return c.viper.WriteConfig()
}

// SetLanguage stores just the language preference.
func (c *Configs) SetLanguage(language string) error {
	settings := c.Load()
	settings.Language = language
	return c.Save(settings)
}

// RememberInstall stores the target and environment of a completed
// install so uninstall and doctor can default to them.
func (c *Configs) RememberInstall(target, envName string) error {
	settings := c.Load()
	settings.LastTarget = target
	settings.LastEnvName = envName
	return c.Save(settings)
}
