package pixeldust

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the single GLFW window shared by the renderer and input modules.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

func (s *WindowState) Glfw() *glfw.Window { return s.windowGlfw }

func (s *WindowState) ShouldClose() bool {
	return s.windowGlfw == nil || s.windowGlfw.ShouldClose()
}

func (s *WindowState) destroy() {
	if s.windowGlfw != nil {
		s.windowGlfw.Destroy()
		s.windowGlfw = nil
	}
	glfw.Terminate()
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*WindowState, error) {
	// GLFW calls must stay on the main thread.
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // WebGPU owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}, nil
}

// PlatformWindowModule ensures a single shared WindowState resource exists.
// Install is idempotent: an existing WindowState is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	ensureWindowResource(app, m.Width, m.Height, m.Title)
}

// ensureWindowResource creates the shared window if missing. Failures are
// recorded as setup errors and nil is returned.
func ensureWindowResource(app *App, width, height int, title string) *WindowState {
	if ws, ok := Resource[WindowState](app); ok {
		return ws
	}
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "pixeldust"
	}
	ws, err := createWindowState(width, height, title)
	if err != nil {
		app.fail(err)
		return nil
	}
	app.addResources(ws)
	app.onShutdown(ws.destroy)
	app.Logger().Infof("Created shared window (%dx%d) '%s'", width, height, title)
	return ws
}
