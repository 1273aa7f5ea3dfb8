package pixeldust

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/gekko3d/pixeldust/fieldrt/sampler"
)

// ParticleFieldModule loads the source image in the background, samples it into a
// particle set and hands the set to the renderer once it arrives.
type ParticleFieldModule struct {
	Source       string
	Options      sampler.Options
	MaxDimension int
	Center       bool
	// Seed 0 seeds the random source from the clock.
	Seed int64
	// Loader backs the AssetServer created when none is installed yet.
	Loader  *sampler.Loader
	Context context.Context
	// Wait blocks the first frame until the load has settled. Used by headless runs.
	Wait bool
}

func NewParticleField(source string) ParticleFieldModule {
	return ParticleFieldModule{
		Source:  source,
		Options: sampler.DefaultOptions(),
		Center:  true,
	}
}

func (mod ParticleFieldModule) Install(app *App, cmd *Commands) {
	rc := ensureRenderContext(app)
	log := app.Logger()

	assets, ok := Resource[AssetServer](app)
	if !ok {
		assets = NewAssetServer(mod.Loader)
		cmd.AddResources(assets)
	}

	parent := mod.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	app.onShutdown(cancel)

	seed := mod.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if mod.Options.Cap != sampler.CapNone {
		log.Infof("Particle cap %d enforced with %s policy", mod.Options.MaxPoints, mod.Options.Cap)
	}
	log.Infof("Loading particle image %s", mod.Source)

	results := make(chan particleLoad, 1)
	rc.results = results
	go func() {
		results <- mod.load(ctx, assets, rng)
	}()

	cmd.UseSystem(
		System(func(rc *RenderContext) {
			particleAttachSystem(app, rc, mod.Wait)
		}).InStage(PreRender),
	)
}

// load runs off the frame loop. The decoded image is kept in the asset server,
// replaced by its downscaled version when MaxDimension applies.
func (mod ParticleFieldModule) load(ctx context.Context, assets *AssetServer, rng *rand.Rand) particleLoad {
	id, err := assets.LoadImage(ctx, mod.Source)
	if err != nil {
		return particleLoad{err: err}
	}
	img, _ := assets.Image(id)
	if small := img.Downscale(mod.MaxDimension); small != img {
		assets.ReplaceImage(id, small)
		img = small
	}

	set := sampler.New(mod.Options, rng).Sample(img)
	if mod.Center {
		set = set.Centered()
	}
	return particleLoad{id: id, image: img, set: set}
}

// particleAttachSystem settles the particle slot from the loader result.
// It never blocks unless wait is set.
func particleAttachSystem(app *App, rc *RenderContext, wait bool) {
	if rc.results == nil {
		return
	}
	var res particleLoad
	if wait {
		res = <-rc.results
	} else {
		select {
		case res = <-rc.results:
		default:
			return
		}
	}
	rc.results = nil

	log := app.Logger()
	if res.err != nil {
		var loadErr *sampler.ImageLoadError
		if errors.As(res.err, &loadErr) {
			log.Errorf("Particle image %q unavailable, continuing without particles: %v", loadErr.Source, res.err)
		} else {
			log.Errorf("Particle load failed: %v", res.err)
		}
		rc.Slot.Fail(res.err)
		return
	}

	rc.Slot.Fill(res.set)
	rc.Image = res.id
	if assets, ok := Resource[AssetServer](app); ok {
		log.Debugf("Image asset %s v%d from %s", res.id, assets.Version(res.id), assets.Source(res.id))
	}
	if rc.Renderer != nil {
		if err := rc.Renderer.Attach(res.set); err != nil {
			log.Errorf("Attach particles: %v", err)
		}
	}
	log.Infof("Particles ready: %d points from %dx%d image", res.set.Len(), res.image.Width, res.image.Height)
}
