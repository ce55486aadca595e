package resource

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefinition(t *testing.T) {
	// Concrete kind with declared fields
	{
		resource, err := ParseDefinition([]byte(`
type: Texture
diffuse: stone.jpg
`))
		require.NoError(t, err)

		texture, ok := resource.(*Texture)
		require.True(t, ok)
		assert.Equal(t, "stone.jpg", texture.Diffuse)
	}

	// Declared fields are optional
	{
		resource, err := ParseDefinition([]byte(`type: Sound`))
		require.NoError(t, err)
		assert.Equal(t, "Sound", resource.Type())
	}

	// Missing tag
	{
		_, err := ParseDefinition([]byte(`diffuse: stone.jpg`))
		require.Error(t, err)
	}

	// Unknown tag
	{
		_, err := ParseDefinition([]byte(`type: Shader`))
		require.Error(t, err)
	}
}

func TestParseShort(t *testing.T) {
	path := filepath.Join("sounds", "shot@Sound.mp3")
	resource, ok, err := ParseShort(path)
	require.NoError(t, err)
	require.True(t, ok)

	sound, isSound := resource.(*Sound)
	require.True(t, isSound)
	assert.Equal(t, path, sound.Sound)

	// Not a short definition at all
	_, ok, err = ParseShort(filepath.Join("sounds", "shot.mp3"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Kinds that need a full definition
	_, ok, err = ParseShort("city@Map.xml")
	require.Error(t, err)
	assert.True(t, ok)

	// Unknown kind
	_, ok, err = ParseShort("thing@Shader.bin")
	require.Error(t, err)
	assert.True(t, ok)
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "shot", ShortName(filepath.Join("sounds", "shot@Sound.mp3")))
	assert.Equal(t, "plain", ShortName("plain.mp3"))
	assert.Equal(t, "noext", ShortName("noext@Image"))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	texture := Texture{}
	texture.InitRoot(dir)

	// Declared relative paths join the root.
	texture.Diffuse = "stone.jpg"
	assert.Equal(t, filepath.Join(dir, "stone.jpg"), texture.DiffusePath())

	// Paths already under the root pass through.
	texture.Diffuse = filepath.Join(dir, "stone.jpg")
	assert.Equal(t, filepath.Join(dir, "stone.jpg"), texture.DiffusePath())

	// Nothing declared falls back to the conventional name.
	texture.Diffuse = ""
	assert.Equal(t, filepath.Join(dir, "diffuse.jpg"), texture.DiffusePath())
}

func TestWalkFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DEFINITION_FILE), []byte("type: Proplib"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.3ds"), []byte("c"), 0644))

	files, err := walkFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "nested", "c.3ds"),
	}, files)
}

func TestMarshalCatalogue(t *testing.T) {
	dir := t.TempDir()

	texture := &Texture{Diffuse: "stone.jpg"}
	texture.InitRoot(dir)
	require.NoError(t, texture.Init(context.Background(), &Info{
		Name:       "textures.stone",
		ID:         42,
		Version:    7,
		Namespaces: map[string]string{},
	}))

	data, err := MarshalCatalogue([]Resource{texture})
	require.NoError(t, err)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "Texture", entry["type"])
	assert.Equal(t, dir, entry["root"])
	assert.Equal(t, "stone.jpg", entry["diffuse"])

	info, ok := entry["info"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "textures.stone", info["name"])
	assert.Equal(t, float64(42), info["id"])
}
