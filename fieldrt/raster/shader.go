package raster

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader is the CPU version of the vertex stage in particles.wgsl.
// A particle drifts around its rest position on a sine wave plus a Perlin flow
// field, and is pushed away from the pointer. Every offset is scaled by influence.
type Shader struct {
	WaveAmplitude   float32
	WaveFrequency   float32
	WaveSpeed       float32
	FlowAmplitude   float32
	FlowScale       float32
	FlowSpeed       float32
	PointerRadius   float32
	PointerStrength float32

	noise *perlin.Perlin
}

func NewShader(seed int64) *Shader {
	return &Shader{
		WaveAmplitude:   0.025,
		WaveFrequency:   3,
		WaveSpeed:       1.2,
		FlowAmplitude:   0.035,
		FlowScale:       1.4,
		FlowSpeed:       0.15,
		PointerRadius:   0.45,
		PointerStrength: 0.3,
		noise:           perlin.NewPerlin(2, 2, 3, seed),
	}
}

// Displace returns the animated position of one particle.
// pointer is the smoothed pointer already projected onto the z=0 plane.
func (sh *Shader) Displace(p core.ParticleRecord, u core.Uniforms, pointer mgl32.Vec2) mgl32.Vec3 {
	rest := p.RestPosition
	t := float64(u.Time)
	phase := float64(p.PhaseOffset)
	speed := float64(sh.WaveSpeed)
	freq := float64(sh.WaveFrequency)

	wx := math.Sin(float64(rest.Y())*freq + t*speed + phase)
	wy := math.Cos(float64(rest.X())*freq + t*speed*0.8 + phase)

	flow := sh.noise.Noise3D(
		float64(rest.X()*sh.FlowScale),
		float64(rest.Y()*sh.FlowScale),
		t*float64(sh.FlowSpeed),
	)
	angle := flow * 2 * math.Pi

	off := mgl32.Vec3{
		float32(wx)*sh.WaveAmplitude + float32(math.Cos(angle))*sh.FlowAmplitude,
		float32(wy)*sh.WaveAmplitude + float32(math.Sin(angle))*sh.FlowAmplitude,
		float32(math.Sin(t*speed+phase)) * u.Relaxation,
	}

	away := rest.Vec2().Sub(pointer)
	if dist := away.Len(); dist < sh.PointerRadius && dist > 1e-6 {
		f := 1 - dist/sh.PointerRadius
		push := away.Mul(f * f * sh.PointerStrength / dist)
		off = off.Add(push.Vec3(0))
	}

	off = off.Mul(p.Influence)
	return mgl32.Vec3{rest.X() + off.X(), rest.Y() + off.Y(), p.Position.Z() + off.Z()}
}
