package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultSmoothing  float32 = 0.07
	DefaultTrailAlpha float32 = 0.08
)

// AnimationState is everything the driver mutates per tick.
type AnimationState struct {
	RawPointer      mgl32.Vec2
	SmoothedPointer mgl32.Vec2
	ElapsedSeconds  float64
}

// Driver advances AnimationState once per refresh and publishes it to Uniforms.
// Tick is not safe for concurrent use; it is meant to be called from the frame loop only.
type Driver struct {
	State     AnimationState
	Smoothing float32
	Trail     Fade

	uniforms *Uniforms
	ticks    uint64
}

// NewDriver creates a driver publishing into u. A nil u gets a private Uniforms.
func NewDriver(u *Uniforms) *Driver {
	if u == nil {
		u = &Uniforms{}
	}
	return &Driver{
		Smoothing: DefaultSmoothing,
		Trail: Fade{
			Color: mgl32.Vec4{0, 0, 0, 1},
			Alpha: DefaultTrailAlpha,
		},
		uniforms: u,
	}
}

// Tick updates elapsed time and the smoothed pointer, then publishes both.
func (d *Driver) Tick(nowSeconds float64, rawPointer mgl32.Vec2) {
	if nowSeconds > d.State.ElapsedSeconds {
		d.State.ElapsedSeconds = nowSeconds
	}
	d.State.RawPointer = rawPointer
	d.State.SmoothedPointer = Smooth(d.State.SmoothedPointer, rawPointer, d.Smoothing)
	d.ticks++

	d.uniforms.Time = float32(d.State.ElapsedSeconds)
	d.uniforms.Pointer = d.State.SmoothedPointer
}

func (d *Driver) Uniforms() *Uniforms { return d.uniforms }
func (d *Driver) Ticks() uint64       { return d.ticks }

// Step is one refresh: it opens a frame on r, ticks, then composites into that frame.
// When r is nil or cannot open a frame the whole refresh is a no-op: state and
// uniforms are left untouched and the BeginFrame error is returned.
func (d *Driver) Step(nowSeconds float64, rawPointer mgl32.Vec2, r Renderer) error {
	if r == nil {
		return ErrRenderingUnavailable
	}
	frame, err := r.BeginFrame()
	if err != nil {
		return err
	}
	d.Tick(nowSeconds, rawPointer)
	return d.draw(frame)
}

// Composite fades the renderer's target and draws the attached particles.
// Returns ErrRenderingUnavailable when r is nil.
func (d *Driver) Composite(r Renderer) error {
	if r == nil {
		return ErrRenderingUnavailable
	}
	frame, err := r.BeginFrame()
	if err != nil {
		return err
	}
	return d.draw(frame)
}

func (d *Driver) draw(frame Frame) error {
	frame.Fade(d.Trail)
	frame.DrawParticles(*d.uniforms)
	return frame.End()
}

// Smooth moves current toward target by factor alpha (linear interpolation).
func Smooth(current, target mgl32.Vec2, alpha float32) mgl32.Vec2 {
	return current.Add(target.Sub(current).Mul(alpha))
}
