package pixeldust

import (
	"errors"

	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// AnimationModule steps the driver once per frame through the installed renderer.
// Frames without a usable renderer leave the animation state untouched.
// Zero fields fall back to the driver defaults.
type AnimationModule struct {
	Smoothing  float32
	TrailAlpha float32
	Background mgl32.Vec4
	Relaxation float32
	PointSize  float32
}

func NewAnimation() AnimationModule {
	return AnimationModule{
		Smoothing:  core.DefaultSmoothing,
		TrailAlpha: core.DefaultTrailAlpha,
		Background: mgl32.Vec4{0, 0, 0, 1},
		Relaxation: 0.05,
		PointSize:  0.012,
	}
}

func (mod AnimationModule) Install(app *App, cmd *Commands) {
	rc := ensureRenderContext(app)
	ensurePointer(app)
	d := rc.Driver
	if mod.Smoothing > 0 {
		d.Smoothing = mod.Smoothing
	}
	if mod.TrailAlpha > 0 {
		d.Trail.Alpha = mod.TrailAlpha
	}
	if mod.Background != (mgl32.Vec4{}) {
		d.Trail.Color = mod.Background
	}
	rc.Uniforms.Relaxation = mod.Relaxation
	rc.Uniforms.PointSize = mod.PointSize

	log := app.Logger()
	cmd.UseSystem(
		System(func(t *Time, p *Pointer, rc *RenderContext) {
			animationSystem(log, t, p, rc)
		}).InStage(Render),
	)
}

func animationSystem(log Logger, t *Time, p *Pointer, rc *RenderContext) {
	err := rc.Driver.Step(t.Elapsed().Seconds(), p.Raw, rc.Renderer)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrRenderingUnavailable):
		log.Debugf("Frame skipped: %v", err)
	default:
		log.Errorf("Frame dropped: %v", err)
	}
}
