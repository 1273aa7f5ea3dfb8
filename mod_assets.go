package pixeldust

import (
	"context"
	"sync"

	"github.com/gekko3d/pixeldust/fieldrt/sampler"
	"github.com/google/uuid"
)

type AssetId string

type ImageAsset struct {
	version uint
	source  string
	image   *sampler.SourceImage
}

// AssetServer keeps decoded images by id. It is safe for use from loader goroutines.
type AssetServer struct {
	mu     sync.RWMutex
	images map[AssetId]ImageAsset
	loader *sampler.Loader
}

type AssetServerModule struct {
	Loader *sampler.Loader
}

func NewAssetServer(loader *sampler.Loader) *AssetServer {
	if loader == nil {
		loader = &sampler.Loader{}
	}
	return &AssetServer{
		images: make(map[AssetId]ImageAsset),
		loader: loader,
	}
}

func (m AssetServerModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[AssetServer](app); ok {
		return
	}
	cmd.AddResources(NewAssetServer(m.Loader))
}

// LoadImage fetches and decodes src synchronously.
func (server *AssetServer) LoadImage(ctx context.Context, src string) (AssetId, error) {
	img, err := server.loader.Load(ctx, src)
	if err != nil {
		return "", err
	}
	id := makeAssetId()
	server.mu.Lock()
	server.images[id] = ImageAsset{source: src, image: img}
	server.mu.Unlock()
	return id, nil
}

func (server *AssetServer) Image(id AssetId) (*sampler.SourceImage, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	a, ok := server.images[id]
	if !ok {
		return nil, false
	}
	return a.image, true
}

// ReplaceImage swaps the image behind id and bumps its version.
func (server *AssetServer) ReplaceImage(id AssetId, img *sampler.SourceImage) bool {
	server.mu.Lock()
	defer server.mu.Unlock()
	a, ok := server.images[id]
	if !ok {
		return false
	}
	a.image = img
	a.version++
	server.images[id] = a
	return true
}

func (server *AssetServer) Version(id AssetId) uint {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.images[id].version
}

func (server *AssetServer) Source(id AssetId) string {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.images[id].source
}

func (server *AssetServer) Len() int {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return len(server.images)
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
