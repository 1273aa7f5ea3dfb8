package main

import (
	"bytes"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDot(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "dot.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestRun_Help(t *testing.T) {
	assert.ErrorIs(t, run([]string{"-h"}), flag.ErrHelp)
}

func TestRun_NoImage(t *testing.T) {
	assert.EqualError(t, run(nil), "no image given")
}

func TestRun_SoftwareWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	img := writeDot(t, dir)
	cfgPath := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"renderer":"software","width":16,"height":16,"frames":50}`), 0o644))

	prefix := filepath.Join(dir, "frame_")
	err := run([]string{"-config", cfgPath, "-frames", "2", "-pngPrefix", prefix, img})
	require.NoError(t, err)

	assert.FileExists(t, prefix+"00000.png")
	assert.FileExists(t, prefix+"00001.png")
	assert.NoFileExists(t, prefix+"00002.png")
}

func TestRun_BadConfig(t *testing.T) {
	err := run([]string{"-config", filepath.Join(t.TempDir(), "missing.json"), "x.png"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
