package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

const fragmentSource = "#version 330 core\nout vec4 c;\nvoid main()\n{\n    c = vec4(1.0);\n}\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadShaderAsset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "flat.frag"), fragmentSource)
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir, false))
	defer am.Shutdown()

	assert.Equal(t, []string{filepath.Join(dir, "flat.frag")}, am.Assets(metadata.ResourceTypeShader))

	res, err := am.LoadAsset("flat.frag", nil)
	require.NoError(t, err)
	assert.Equal(t, "flat", res.Name)
	assert.Equal(t, metadata.ResourceTypeShader, res.Type)
	assert.Equal(t, fragmentSource, string(res.Data))
	assert.Equal(t, uint64(len(fragmentSource)), res.DataSize)

	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)
}

func TestLoadAssetErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty.vert"), "  \n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "text")

	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir, false))
	defer am.Shutdown()

	_, err = am.LoadAsset("missing.vert", nil)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = am.LoadAsset("empty.vert", nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = am.LoadAsset("readme.txt", nil)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInitializeRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "flat.frag")
	writeFile(t, file, fragmentSource)

	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()
	assert.ErrorIs(t, am.Initialize(file, false), core.ErrInvalidArgument)
}

func TestWatcherReportsShaderChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flat.frag")
	writeFile(t, path, fragmentSource)

	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir, true))
	defer am.Shutdown()

	writeFile(t, path, fragmentSource+"\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "not a shader")

	var changed []string
	require.Eventually(t, func() bool {
		changed = append(changed, am.DrainChanges()...)
		return len(changed) > 0
	}, 5*time.Second, 20*time.Millisecond)

	assert.Contains(t, changed, path)
	for _, p := range changed {
		assert.Equal(t, ".frag", filepath.Ext(p))
	}
}

func TestDrainChangesDeduplicates(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	am.publish("a.vert")
	am.publish("b.frag")
	am.publish("a.vert")

	assert.Equal(t, []string{"a.vert", "b.frag"}, am.DrainChanges())
	assert.Empty(t, am.DrainChanges())
}

func TestShutdownIsIdempotent(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(t.TempDir(), true))
	assert.NoError(t, am.Shutdown())
	assert.NoError(t, am.Shutdown())
}
