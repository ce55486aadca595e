package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	cache, err := Load(filepath.Join(t.TempDir(), "mtimes"))
	require.NoError(t, err)
	assert.True(t, cache.Changed("maps/sandbox/map.xml", 100))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mtimes")

	first, err := Load(path)
	require.NoError(t, err)
	first.Record("sounds/shot@Sound.mp3", 1700000000000)
	first.Record("maps/sandbox/map.xml", 1700000000500)
	require.NoError(t, first.Save(path))

	second, err := Load(path)
	require.NoError(t, err)
	assert.False(t, second.Changed("sounds/shot@Sound.mp3", 1700000000000))
	assert.False(t, second.Changed("maps/sandbox/map.xml", 1700000000500))
	assert.True(t, second.Changed("maps/sandbox/map.xml", 1700000000501))
	assert.True(t, second.Changed("maps/sandbox/resource.yaml", 1700000000000))
}

func TestSaveReplacesStaleEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mtimes")

	first, err := Load(path)
	require.NoError(t, err)
	first.Record("old/file.png", 1)
	require.NoError(t, first.Save(path))

	second, err := Load(path)
	require.NoError(t, err)
	second.Record("new/file.png", 2)
	require.NoError(t, second.Save(path))

	third, err := Load(path)
	require.NoError(t, err)
	assert.True(t, third.Changed("old/file.png", 1))
	assert.False(t, third.Changed("new/file.png", 2))
}

func TestMalformedLinesSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mtimes")
	err := os.WriteFile(path, []byte(
		"valid/path.png: 123\n"+
			"no separator here\n"+
			"bad/mtime.png: not-a-number\n"+
			"\n",
	), 0644)
	require.NoError(t, err)

	cache, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cache.Changed("valid/path.png", 123))
	assert.True(t, cache.Changed("bad/mtime.png", 456))
}

func TestSaveIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")

	first, err := Load(a)
	require.NoError(t, err)
	first.Record("z.png", 3)
	first.Record("a.png", 1)
	first.Record("m.png", 2)
	require.NoError(t, first.Save(a))

	second, err := Load(b)
	require.NoError(t, err)
	second.Record("m.png", 2)
	second.Record("z.png", 3)
	second.Record("a.png", 1)
	require.NoError(t, second.Save(b))

	left, err := os.ReadFile(a)
	require.NoError(t, err)
	right, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, left, right)
}
