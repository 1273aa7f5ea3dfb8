package pixeldust

import (
	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/gekko3d/pixeldust/fieldrt/sampler"
)

// RenderContext is the one place the particle module, the animation driver and
// the renderer meet. It is created on first use and lives as an App resource.
type RenderContext struct {
	Uniforms core.Uniforms
	Driver   *core.Driver
	Renderer core.Renderer
	Slot     core.ParticleSlot

	// Image is the asset holding the decoded source, once loaded.
	Image AssetId

	results <-chan particleLoad
}

type particleLoad struct {
	id    AssetId
	image *sampler.SourceImage
	set   *core.ParticleSet
	err   error
}

func ensureRenderContext(app *App) *RenderContext {
	if rc, ok := Resource[RenderContext](app); ok {
		return rc
	}
	rc := &RenderContext{}
	rc.Driver = core.NewDriver(&rc.Uniforms)
	app.addResources(rc)
	return rc
}

// Particles returns the attached set, or nil while loading or after a failure.
func (rc *RenderContext) Particles() *core.ParticleSet {
	set, _ := rc.Slot.Ready()
	return set
}

// setRenderer installs r and attaches an already loaded set to it.
func (rc *RenderContext) setRenderer(r core.Renderer) error {
	rc.Renderer = r
	if set, ok := rc.Slot.Ready(); ok {
		return r.Attach(set)
	}
	return nil
}
