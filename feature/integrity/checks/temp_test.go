package checks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckTemp(t *testing.T) {
	mods := t.TempDir()
	for _, name := range []string{"FS25_a.zip", "FS25_b.zip.tmp", "FS25_C.ZIP.TMP", "notes.tmp"} {
		require.NoError(t, os.WriteFile(filepath.Join(mods, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(mods, "dir.zip.tmp"), 0o755))

	leftovers, err := CheckTemp(mods)
	require.NoError(t, err)
	assert.Equal(t, []string{"FS25_C.ZIP.TMP", "FS25_b.zip.tmp"}, leftovers)

	removed, err := FixTemp(zap.NewNop(), mods, leftovers)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	leftovers, err = CheckTemp(mods)
	require.NoError(t, err)
	assert.Empty(t, leftovers)
	assert.FileExists(t, filepath.Join(mods, "FS25_a.zip"))
}

func TestCheckTemp_MissingFolder(t *testing.T) {
	leftovers, err := CheckTemp(filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, err)
	assert.Empty(t, leftovers)
}
