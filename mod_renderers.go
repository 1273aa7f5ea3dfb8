package pixeldust

import (
	"fmt"

	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/gekko3d/pixeldust/fieldrt/gpu"
	"github.com/gekko3d/pixeldust/fieldrt/raster"
	"github.com/go-gl/mathgl/mgl32"
)

// GpuRendererModule draws into the shared window with WebGPU.
// Install it through App.UseRenderer / App.UseGPU.
type GpuRendererModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string
	Background   mgl32.Vec4
	Intensity    float32
}

func (mod GpuRendererModule) Install(app *App, cmd *Commands) {
	ws := ensureWindowResource(app, mod.WindowWidth, mod.WindowHeight, mod.WindowTitle)
	if ws == nil {
		return
	}
	r, err := gpu.NewFieldRenderer(ws.Glfw(), core.NewCamera())
	if err != nil {
		app.fail(fmt.Errorf("gpu renderer: %w", err))
		return
	}
	if mod.Background != (mgl32.Vec4{}) {
		r.Background = mod.Background
	}
	if mod.Intensity > 0 {
		r.Intensity = mod.Intensity
	}
	app.onShutdown(r.Release)

	rc := ensureRenderContext(app)
	if err := rc.setRenderer(r); err != nil {
		app.fail(fmt.Errorf("gpu renderer: %w", err))
	}
	app.Logger().Infof("WebGPU renderer ready (%dx%d, %v)", r.Config.Width, r.Config.Height, r.Config.Format)
}

// SoftwareRendererModule renders on the CPU without a window. Frames can be
// recorded with Recorder; the Rasterizer is also added as a resource.
type SoftwareRendererModule struct {
	Width      int
	Height     int
	Seed       int64
	Background mgl32.Vec4
	HUD        bool
	Recorder   *raster.Recorder
}

func (mod SoftwareRendererModule) Install(app *App, cmd *Commands) {
	w, h := mod.Width, mod.Height
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 720
	}
	r := raster.NewRasterizer(w, h, mod.Seed)
	if mod.Background != (mgl32.Vec4{}) {
		r.Surface.Clear(mod.Background.Vec3())
	}
	if mod.HUD {
		r.HUD = raster.NewHUD()
	}

	log := app.Logger()
	if rec := mod.Recorder; rec != nil && rec.Enabled() {
		r.OnFrame = rec.Capture
		app.onShutdown(func() {
			if err := rec.Close(); err != nil {
				log.Errorf("Recorder: %v", err)
				return
			}
			log.Infof("Recorded %d frames", rec.Frames())
		})
	}

	cmd.AddResources(r)
	if err := ensureRenderContext(app).setRenderer(r); err != nil {
		app.fail(fmt.Errorf("software renderer: %w", err))
	}
	log.Infof("Software renderer ready (%dx%d)", w, h)
}
