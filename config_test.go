package vaila

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigReadsEmbeddedResource(t *testing.T) {
	config, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "vailá", config.Product)
	assert.Equal(t, "vaila", config.EnvName)
	assert.Equal(t, "yaml_for_conda_env/vaila_linux.yaml", config.ManifestResource)
	assert.NotEmpty(t, config.GpuPackages)
	require.NotEmpty(t, config.PackageSwaps)
	assert.Equal(t, "opencv", config.PackageSwaps[0].Remove)
	assert.Equal(t, "opencv-contrib-python", config.PackageSwaps[0].Install)
	assert.Contains(t, config.CopyExcludes, ".git")
}

func TestEmbeddedManifestMatchesConfig(t *testing.T) {
	config, err := NewConfig()
	require.NoError(t, err)
	content := MustGetResource(config.ManifestResource)
	assert.Contains(t, content, "name: "+config.EnvName)
}
