package pixeldust

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/pixeldust/fieldrt/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetServer_LoadImage(t *testing.T) {
	body := checkerPNG(t, 6, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	server := NewAssetServer(&sampler.Loader{Client: srv.Client()})
	id, err := server.LoadImage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, srv.URL, server.Source(id))

	img, ok := server.Image(id)
	require.True(t, ok)
	assert.Equal(t, 6, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, uint(0), server.Version(id))
}

func TestAssetServer_LoadImageFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	server := NewAssetServer(nil)
	_, err := server.LoadImage(context.Background(), srv.URL)

	var loadErr *sampler.ImageLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, http.StatusNotFound, loadErr.Status)
	assert.Zero(t, server.Len())
}

func TestAssetServer_ReplaceImageBumpsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, checkerPNG(t, 2, 2), 0o644))

	server := NewAssetServer(nil)
	id, err := server.LoadImage(context.Background(), path)
	require.NoError(t, err)
	other, err := server.LoadImage(context.Background(), path)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, server.Len())

	b, err := sampler.NewSourceImage(1, 1, []uint8{0, 0, 0, 255})
	require.NoError(t, err)
	require.True(t, server.ReplaceImage(id, b))
	got, _ := server.Image(id)
	assert.Same(t, b, got)
	assert.Equal(t, uint(1), server.Version(id))
	assert.Equal(t, path, server.Source(id))
	assert.Equal(t, uint(0), server.Version(other))

	assert.False(t, server.ReplaceImage(AssetId("missing"), b))
	_, ok := server.Image(AssetId("missing"))
	assert.False(t, ok)
}

func TestAssetServerModule_Idempotent(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{}, AssetServerModule{}).Build()
	_, ok := Resource[AssetServer](app)
	assert.True(t, ok)
}
