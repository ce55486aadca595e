package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangarlabs/hangar/pkg/resource"
)

func write(t *testing.T, root string, rel string, data string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

// writeTree builds a source tree with one resource of five kinds: a
// short-form sound, a texture, a namespaced proplib, a map referencing
// it and a localization.
func writeTree(t *testing.T, root string) {
	t.Helper()

	write(t, root, "sounds/shot@Sound.mp3", "mp3")

	write(t, root, "textures/stone/resource.yaml", "type: Texture\n")
	write(t, root, "textures/stone/diffuse.jpg", "jpeg")

	write(t, root, "@gen=1/@theme=forest/props/resource.yaml", "type: Proplib\n")
	write(t, root, "@gen=1/@theme=forest/props/library.xml", `
<library name="forest_props">
  <prop-group name="bushes">
    <prop name="shrub">
      <sprite file="shrub.png"/>
    </prop>
  </prop-group>
</library>
`)
	write(t, root, "@gen=1/@theme=forest/props/shrub.png", "png")

	write(t, root, "maps/city/resource.yaml", "type: Map\n")
	write(t, root, "maps/city/map.xml", `
<map>
  <static-geometry>
    <prop library-name="forest_props" group-name="bushes" name="shrub">
      <position/>
      <rotation/>
      <texture-name></texture-name>
    </prop>
  </static-geometry>
  <collision-geometry/>
</map>
`)

	write(t, root, "localization/interface.en/resource.yaml", `
type: Localization
strings:
  welcome: Welcome!
`)
}

func readCatalogue(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(out, CATALOGUE_FILE))
	require.NoError(t, err)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entries))
	return entries
}

// bundlePath recomputes a catalogue entry's bundle directory.
func bundlePath(t *testing.T, out string, catalogued map[string]interface{}) string {
	t.Helper()
	info, ok := catalogued["info"].(map[string]interface{})
	require.True(t, ok)

	encoded := (&resource.Info{
		ID:      int64(info["id"].(float64)),
		Version: int64(info["version"].(float64)),
	}).Encode()
	return filepath.Join(out, filepath.FromSlash(encoded))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "resources")
	out := filepath.Join(dir, "out")
	writeTree(t, root)

	require.NoError(t, New(root, out).Run(context.Background()))

	mtimes, err := os.ReadFile(filepath.Join(out, MTIMES_FILE))
	require.NoError(t, err)
	assert.NotEmpty(t, mtimes)

	entries := readCatalogue(t, out)
	require.Len(t, entries, 5)

	bundles := make(map[string]string)
	for _, catalogued := range entries {
		path := bundlePath(t, out, catalogued)
		require.DirExists(t, path)
		bundles[catalogued["type"].(string)] = path
	}

	assert.FileExists(t, filepath.Join(bundles["Sound"], "sound.swf"))
	assert.FileExists(t, filepath.Join(bundles["Texture"], "image.tnk"))
	assert.FileExists(t, filepath.Join(bundles["Proplib"], "library.tara"))
	assert.FileExists(t, filepath.Join(bundles["Localization"], "en.l18n"))
	for _, name := range []string{"map.xml", "proplibs.xml", "private.json"} {
		assert.FileExists(t, filepath.Join(bundles["Map"], name))
	}

	// Rerunning over an unchanged tree is idempotent: identical cache
	// state, identical catalogue.
	catalogue, err := os.ReadFile(filepath.Join(out, CATALOGUE_FILE))
	require.NoError(t, err)

	require.NoError(t, New(root, out).Run(context.Background()))

	mtimesAgain, err := os.ReadFile(filepath.Join(out, MTIMES_FILE))
	require.NoError(t, err)
	assert.Equal(t, mtimes, mtimesAgain)

	catalogueAgain, err := os.ReadFile(filepath.Join(out, CATALOGUE_FILE))
	require.NoError(t, err)
	assert.Equal(t, catalogue, catalogueAgain)
}

func TestRunRegeneratesDeletedBundles(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "resources")
	out := filepath.Join(dir, "out")
	writeTree(t, root)

	require.NoError(t, New(root, out).Run(context.Background()))

	var sound string
	for _, catalogued := range readCatalogue(t, out) {
		if catalogued["type"] == "Sound" {
			sound = bundlePath(t, out, catalogued)
		}
	}
	require.NotEmpty(t, sound)
	require.NoError(t, os.RemoveAll(sound))

	// The cache judges the sound unchanged, but the missing bundle
	// wins over the cache.
	require.NoError(t, New(root, out).Run(context.Background()))
	assert.FileExists(t, filepath.Join(sound, "sound.swf"))
}

func TestRunMovesVersionOnContentChange(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "resources")
	out := filepath.Join(dir, "out")
	writeTree(t, root)

	require.NoError(t, New(root, out).Run(context.Background()))

	var before string
	for _, catalogued := range readCatalogue(t, out) {
		if catalogued["type"] == "Sound" {
			before = bundlePath(t, out, catalogued)
		}
	}

	write(t, root, "sounds/shot@Sound.mp3", "a different mp3")
	require.NoError(t, New(root, out).Run(context.Background()))

	var after string
	for _, catalogued := range readCatalogue(t, out) {
		if catalogued["type"] == "Sound" {
			after = bundlePath(t, out, catalogued)
		}
	}

	// Same id, new version: a new bundle appears, the old one stays.
	assert.NotEqual(t, before, after)
	assert.Equal(t, filepath.Dir(before), filepath.Dir(after))
	assert.DirExists(t, before)
	assert.FileExists(t, filepath.Join(after, "sound.swf"))
}

func TestRunTouchedFileDoesNotMoveVersion(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "resources")
	out := filepath.Join(dir, "out")
	shot := write(t, root, "sounds/shot@Sound.mp3", "mp3")

	require.NoError(t, New(root, out).Run(context.Background()))

	mtimes, err := os.ReadFile(filepath.Join(out, MTIMES_FILE))
	require.NoError(t, err)

	// A touch changes the cache but not the content address.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(shot, future, future))

	require.NoError(t, New(root, out).Run(context.Background()))

	mtimesAgain, err := os.ReadFile(filepath.Join(out, MTIMES_FILE))
	require.NoError(t, err)
	assert.NotEqual(t, mtimes, mtimesAgain)

	entries := readCatalogue(t, out)
	require.Len(t, entries, 1)
	assert.DirExists(t, bundlePath(t, out, entries[0]))
}

func TestRunSkipsHiddenPaths(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "resources")
	out := filepath.Join(dir, "out")

	write(t, root, "textures/stone/resource.yaml", "type: Texture\n")
	write(t, root, "textures/stone/diffuse.jpg", "jpeg")
	write(t, root, ".archive/old@Sound.mp3", "mp3")

	require.NoError(t, New(root, out).Run(context.Background()))

	entries := readCatalogue(t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "Texture", entries[0]["type"])
}

func TestRunForcedID(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "resources")
	out := filepath.Join(dir, "out")

	write(t, root, "objects/tank/resource.yaml", `
type: Object3D
id: 7
images:
  skin: skin.png
`)
	write(t, root, "objects/tank/object.3ds", "mesh")
	write(t, root, "objects/tank/skin.png", "png")

	require.NoError(t, New(root, out).Run(context.Background()))

	// The declared id overrides the path hash.
	assert.DirExists(t, filepath.Join(out, "0", "0", "0", "7"))
}

func TestRunFailsValidation(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "resources")
	out := filepath.Join(dir, "out")

	write(t, root, "@gen=1/@theme=forest/props/resource.yaml", "type: Proplib\n")
	write(t, root, "@gen=1/@theme=forest/props/library.xml", `<library name="forest_props"></library>`)

	write(t, root, "maps/city/resource.yaml", "type: Map\n")
	write(t, root, "maps/city/map.xml", `
<map>
  <static-geometry>
    <prop library-name="forest_props" group-name="trees" name="birch">
      <position/>
      <rotation/>
      <texture-name></texture-name>
    </prop>
  </static-geometry>
  <collision-geometry/>
</map>
`)

	err := New(root, out).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "birch")

	// A failed run leaves no catalogue and no bundles.
	assert.NoFileExists(t, filepath.Join(out, CATALOGUE_FILE))
}
