package receipt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHashFileStable(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "hello")
	first, err := HashFile(path)
	require.NoError(t, err)
	second, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 16)
}

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	installed := writeTestFile(t, dir, "vaila.py", "print()")
	digest, err := HashFile(installed)
	require.NoError(t, err)

	r := &Receipt{
		Product:     "vaila",
		Version:     "0.6.7",
		InstalledAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
		Environment: "vaila",
		Launcher:    filepath.Join(dir, "vaila"),
		Files:       []File{{Path: installed, Size: 7, Digest: digest}},
	}
	path := filepath.Join(dir, Filename)
	require.NoError(t, Write(path, r))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, r.Product, loaded.Product)
	assert.Equal(t, r.Environment, loaded.Environment)
	require.Len(t, loaded.Files, 1)
	assert.Equal(t, digest, loaded.Files[0].Digest)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), Filename))
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestVerifyDetectsModifiedAndMissing(t *testing.T) {
	dir := t.TempDir()
	kept := writeTestFile(t, dir, "kept.py", "ok")
	modified := writeTestFile(t, dir, "modified.py", "before")
	removed := writeTestFile(t, dir, "removed.py", "gone")

	r := &Receipt{}
	for _, path := range []string{kept, modified, removed} {
		digest, err := HashFile(path)
		require.NoError(t, err)
		r.Files = append(r.Files, File{Path: path, Digest: digest})
	}
	require.NoError(t, os.WriteFile(modified, []byte("after"), 0644))
	require.NoError(t, os.Remove(removed))

	problems := r.Verify()
	require.Len(t, problems, 2)
	assert.Equal(t, Problem{Path: modified, Reason: "modified"}, problems[0])
	assert.Equal(t, Problem{Path: removed, Reason: "missing"}, problems[1])
}
