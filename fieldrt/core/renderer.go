package core

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrRenderingUnavailable is returned when there is nothing to draw on:
// no renderer, a closed window or a lost surface.
var ErrRenderingUnavailable = errors.New("rendering unavailable")

// Uniforms are the values published to the shading stage every frame.
type Uniforms struct {
	Time       float32
	Pointer    mgl32.Vec2
	Relaxation float32
	PointSize  float32
}

// Fade describes the low-alpha overlay applied instead of a full clear.
type Fade struct {
	Color mgl32.Vec4
	Alpha float32
}

// Renderer is the rendering stage. It receives the particle set once and
// produces one Frame per refresh.
type Renderer interface {
	Attach(set *ParticleSet) error
	BeginFrame() (Frame, error)
}

// Frame is a single refresh on a Renderer's accumulation target.
// Fade must be called before DrawParticles; End presents the result.
type Frame interface {
	Fade(f Fade)
	DrawParticles(u Uniforms)
	End() error
}
