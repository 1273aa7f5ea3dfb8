package pixeldust

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Pointer is the latest raw pointer sample in normalized device coordinates:
// x in [-1,1] left to right, y in [-1,1] bottom to top.
type Pointer struct {
	Raw mgl32.Vec2

	// cursor position in window pixels
	X, Y float64
}

// NormalizePointer maps a cursor position in a w×h window to NDC.
// Positions outside the window are clamped to the edge.
func NormalizePointer(x, y float64, w, h int) mgl32.Vec2 {
	if w <= 0 || h <= 0 {
		return mgl32.Vec2{}
	}
	nx := x/float64(w)*2 - 1
	ny := -(y/float64(h))*2 + 1
	return mgl32.Vec2{float32(clampUnit(nx)), float32(clampUnit(ny))}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func ensurePointer(app *App) *Pointer {
	if p, ok := Resource[Pointer](app); ok {
		return p
	}
	p := &Pointer{}
	app.addResources(p)
	return p
}

// InputModule polls GLFW once per frame, tracks the cursor as the raw pointer and
// quits on Escape or when the window is closed.
type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	ensurePointer(app)
	if app.Err() != nil || ensureWindowResource(app, 0, 0, "") == nil {
		return
	}
	cmd.UseSystem(
		System(inputSystem).
			InStage(PreUpdate),
	)
}

func inputSystem(cmd *Commands, s *WindowState, p *Pointer) {
	glfw.PollEvents()

	win := s.windowGlfw
	if win == nil {
		cmd.Quit()
		return
	}
	if win.ShouldClose() || win.GetKey(glfw.KeyEscape) == glfw.Press {
		cmd.Quit()
		return
	}

	p.X, p.Y = win.GetCursorPos()
	s.WindowWidth, s.WindowHeight = win.GetSize()
	p.Raw = NormalizePointer(p.X, p.Y, s.WindowWidth, s.WindowHeight)
}

// PointerPathModule drives the pointer along a Lissajous curve instead of a real
// cursor, so headless recordings still show pointer interaction.
type PointerPathModule struct {
	Amplitude float32
	FreqX     float64
	FreqY     float64
}

func NewPointerPath() PointerPathModule {
	return PointerPathModule{Amplitude: 0.6, FreqX: 0.9, FreqY: 1.3}
}

func (mod PointerPathModule) Install(app *App, cmd *Commands) {
	ensurePointer(app)
	cmd.UseSystem(
		System(func(t *Time, p *Pointer) {
			p.Raw = mod.At(t.Elapsed().Seconds())
		}).InStage(PreUpdate),
	)
}

// At returns the pointer position at time s seconds.
func (mod PointerPathModule) At(s float64) mgl32.Vec2 {
	return mgl32.Vec2{
		mod.Amplitude * float32(math.Sin(mod.FreqX*s)),
		mod.Amplitude * float32(math.Sin(mod.FreqY*s+math.Pi/2)),
	}
}
