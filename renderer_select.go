package pixeldust

import (
	"fmt"
)

// RendererName identifies a concrete renderer module.
type RendererName string

const (
	RendererGPU      RendererName = "gpu"
	RendererSoftware RendererName = "software"
)

func ParseRendererName(s string) (RendererName, error) {
	switch RendererName(s) {
	case "", RendererGPU:
		return RendererGPU, nil
	case RendererSoftware:
		return RendererSoftware, nil
	}
	return "", fmt.Errorf("unknown renderer %q", s)
}

// UseRenderer installs exactly one renderer module, enforcing exclusivity via
// ensureSingleRenderer.
//
//	app.UseRenderer(RendererSoftware, SoftwareRendererModule{Width: 640, Height: 360})
func (app *App) UseRenderer(name RendererName, mod Module) *App {
	ensureSingleRenderer(app, string(name))
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(mod)
	return app
}

// UseGPU selects the WebGPU renderer with a window of the given size.
func (app *App) UseGPU(width, height int, title string) *App {
	return app.UseRenderer(RendererGPU, GpuRendererModule{
		WindowWidth:  width,
		WindowHeight: height,
		WindowTitle:  title,
	})
}

// UseSoftware selects the headless CPU renderer.
func (app *App) UseSoftware(width, height int) *App {
	return app.UseRenderer(RendererSoftware, SoftwareRendererModule{
		Width:  width,
		Height: height,
	})
}
