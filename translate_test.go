package vaila

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslatorLanguages(t *testing.T) {
	translator := NewTranslator()
	require.NotNil(t, translator)
	languages := translator.GetLanguages()
	assert.Equal(t, []string{"en", "pt_br"}, languages)
}

func TestTranslatorGetAndSwitch(t *testing.T) {
	translator := NewTranslator()
	require.NoError(t, translator.SetLanguage("en"))
	assert.Equal(t, "Installation cancelled.", translator.Get("install_cancelled"))

	require.NoError(t, translator.SetLanguage("pt_br"))
	assert.Equal(t, "Instalação cancelada.", translator.Get("install_cancelled"))

	assert.Error(t, translator.SetLanguage("de"))
}

func TestTranslatorFallsBackToDefaultLanguage(t *testing.T) {
	translator := NewTranslator()
	require.NoError(t, translator.SetLanguage("pt_br"))
	// a key only present in en falls back; a missing key is empty
	assert.Equal(t, "", translator.Get("no_such_key"))
}

func TestExpandVariables(t *testing.T) {
	result := ExpandVariables("install to {{.target}}", StringMap{"target": "/home/u/vaila"})
	assert.Equal(t, "install to /home/u/vaila", result)

	// unknown template stays untouched
	result = ExpandVariables("{{.broken", StringMap{})
	assert.Equal(t, "{{.broken", result)
}

func TestMergeVariablesLastWins(t *testing.T) {
	merged := MergeVariables(StringMap{"a": "1", "b": "2"}, StringMap{"b": "3"})
	assert.Equal(t, StringMap{"a": "1", "b": "3"}, merged)
}
