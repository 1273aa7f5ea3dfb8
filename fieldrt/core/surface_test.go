package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSurfaceTrailDecay(t *testing.T) {
	s := NewSurface(4, 4)
	s.Add(1, 2, mgl32.Vec3{1, 1, 1}, 1)

	fade := Fade{Color: mgl32.Vec4{0, 0, 0, 1}, Alpha: DefaultTrailAlpha}
	for frame := 1; frame <= 30; frame++ {
		s.Fade(fade)
		want := math.Pow(1-float64(DefaultTrailAlpha), float64(frame))
		assert.InDelta(t, want, s.At(1, 2).X(), 1e-5, "frame %d", frame)
	}
	// Untouched pixels stay at the background.
	assert.Equal(t, mgl32.Vec3{}, s.At(0, 0))
}

func TestSurfaceFadeConvergesToOverlay(t *testing.T) {
	s := NewSurface(2, 2)
	bg := Fade{Color: mgl32.Vec4{0.2, 0.4, 0.6, 1}, Alpha: 0.5}
	for i := 0; i < 40; i++ {
		s.Fade(bg)
	}
	c := s.At(1, 1)
	assert.InDelta(t, 0.2, c.X(), 1e-5)
	assert.InDelta(t, 0.4, c.Y(), 1e-5)
	assert.InDelta(t, 0.6, c.Z(), 1e-5)
}

func TestSurfaceAdditiveAccumulation(t *testing.T) {
	s := NewSurface(3, 3)
	s.Add(1, 1, mgl32.Vec3{0.25, 0.5, 1}, 1)
	s.Add(1, 1, mgl32.Vec3{0.25, 0.5, 1}, 1)
	s.Add(-1, 5, mgl32.Vec3{1, 1, 1}, 1)

	assert.Equal(t, mgl32.Vec3{0.5, 1, 2}, s.At(1, 1))

	img := s.NRGBA()
	px := img.NRGBAAt(1, 1)
	assert.Equal(t, uint8(128), px.R)
	assert.Equal(t, uint8(255), px.G)
	assert.Equal(t, uint8(255), px.B, "overexposed channels clamp")
	assert.Equal(t, uint8(255), px.A)
}

func TestSurfaceLuminanceDropsEveryFrame(t *testing.T) {
	s := NewSurface(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			s.Add(x, y, mgl32.Vec3{1, 0.5, 0.25}, 1)
		}
	}
	prev := s.Luminance()
	for i := 0; i < 10; i++ {
		s.Fade(Fade{Alpha: DefaultTrailAlpha})
		cur := s.Luminance()
		assert.Less(t, cur, prev)
		prev = cur
	}
}
