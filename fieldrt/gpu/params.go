package gpu

import (
	"unsafe"

	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleParams matches struct Params in particles.wgsl (96 bytes).
type ParticleParams struct {
	ViewProj   mgl32.Mat4
	Time       float32
	Relaxation float32
	Pointer    [2]float32 // already projected onto the z=0 plane
	PointSize  float32
	Intensity  float32
	_          [2]float32
}

// FadeParams matches struct Fade in fade.wgsl (32 bytes).
type FadeParams struct {
	Color [4]float32
	Alpha float32
	_     [3]float32
}

func NewParticleParams(cam core.Camera, aspect float32, u core.Uniforms, intensity float32) ParticleParams {
	p := cam.PointerToPlane(u.Pointer, aspect)
	return ParticleParams{
		ViewProj:   cam.ViewProj(aspect),
		Time:       u.Time,
		Relaxation: u.Relaxation,
		Pointer:    [2]float32{p.X(), p.Y()},
		PointSize:  u.PointSize,
		Intensity:  intensity,
	}
}

func NewFadeParams(f core.Fade) FadeParams {
	return FadeParams{Color: f.Color, Alpha: f.Alpha}
}

func asBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}
