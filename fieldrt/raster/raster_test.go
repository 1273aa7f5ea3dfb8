package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleParticle(pos mgl32.Vec3, influence float32) *core.ParticleSet {
	set := core.NewParticleSet(1)
	set.Append(core.ParticleRecord{
		Position:     pos,
		RestPosition: mgl32.Vec3{pos.X(), pos.Y(), 0},
		Influence:    influence,
		Color:        mgl32.Vec3{1, 1, 1},
	})
	return set
}

func stillShader() *Shader {
	sh := NewShader(1)
	sh.WaveAmplitude = 0
	sh.FlowAmplitude = 0
	return sh
}

func drawOnce(t *testing.T, r *Rasterizer, fade core.Fade, u core.Uniforms) {
	t.Helper()
	f, err := r.BeginFrame()
	require.NoError(t, err)
	f.Fade(fade)
	f.DrawParticles(u)
	require.NoError(t, f.End())
}

func TestRasterizerProjectsCenterParticle(t *testing.T) {
	r := NewRasterizer(64, 64, 1)
	require.NoError(t, r.Attach(singleParticle(mgl32.Vec3{}, 0)))

	drawOnce(t, r, core.Fade{}, core.Uniforms{PointSize: 0.012})

	assert.Equal(t, 1, r.Drawn())
	assert.Equal(t, 1, r.Frames())
	c := r.Surface.At(32, 32)
	assert.InDelta(t, r.Intensity, c.X(), 1e-6)
	assert.InDelta(t, float64(r.Intensity), r.Surface.Luminance()/3, 1e-5)
}

func TestRasterizerCullsBehindCamera(t *testing.T) {
	r := NewRasterizer(32, 32, 1)
	require.NoError(t, r.Attach(singleParticle(mgl32.Vec3{0, 0, 5}, 0)))

	drawOnce(t, r, core.Fade{}, core.Uniforms{PointSize: 0.012})

	assert.Equal(t, 0, r.Drawn())
	assert.Zero(t, r.Surface.Luminance())
}

func TestRasterizerLargePointsSplatDisc(t *testing.T) {
	r := NewRasterizer(64, 64, 1)
	require.NoError(t, r.Attach(singleParticle(mgl32.Vec3{}, 0)))

	drawOnce(t, r, core.Fade{}, core.Uniforms{PointSize: 0.5})

	lit := 0
	for i := 0; i < len(r.Surface.Pix); i += 3 {
		if r.Surface.Pix[i] > 0 {
			lit++
		}
	}
	assert.Greater(t, lit, 1)
	// falloff peaks at the center
	center := r.Surface.At(32, 32).X()
	assert.Greater(t, center, r.Surface.At(34, 32).X())
}

func TestRasterizerTrailDecay(t *testing.T) {
	r := NewRasterizer(32, 32, 1)
	require.NoError(t, r.Attach(singleParticle(mgl32.Vec3{}, 0)))
	drawOnce(t, r, core.Fade{}, core.Uniforms{PointSize: 0.012})
	start := r.Surface.Luminance()
	require.Greater(t, start, 0.0)

	require.NoError(t, r.Attach(nil))
	fade := core.Fade{Color: mgl32.Vec4{0, 0, 0, 1}, Alpha: 0.08}
	for n := 1; n <= 20; n++ {
		drawOnce(t, r, fade, core.Uniforms{})
		assert.InDelta(t, start*math.Pow(0.92, float64(n)), r.Surface.Luminance(), 1e-5)
	}
	assert.Equal(t, 0, r.Drawn())
}

func TestRasterizerWithDriver(t *testing.T) {
	r := NewRasterizer(48, 32, 7)
	require.NoError(t, r.Attach(singleParticle(mgl32.Vec3{}, 1)))
	var frames []*image.NRGBA
	r.OnFrame = func(img *image.NRGBA) error {
		frames = append(frames, img)
		return nil
	}

	d := core.NewDriver(&core.Uniforms{Relaxation: 0.05, PointSize: 0.012})
	for i := 0; i < 5; i++ {
		d.Tick(float64(i)/60, mgl32.Vec2{0.5, 0.5})
		require.NoError(t, d.Composite(r))
	}
	assert.Len(t, frames, 5)
	assert.Equal(t, 5, r.Frames())
	assert.Equal(t, image.Rect(0, 0, 48, 32), frames[0].Bounds())
}

func TestRasterizerUnavailable(t *testing.T) {
	r := NewRasterizer(0, 10, 1)
	_, err := r.BeginFrame()
	assert.ErrorIs(t, err, core.ErrRenderingUnavailable)

	d := core.NewDriver(nil)
	assert.ErrorIs(t, d.Composite(r), core.ErrRenderingUnavailable)
}

func TestDisplaceScalesWithInfluence(t *testing.T) {
	sh := NewShader(3)
	u := core.Uniforms{Time: 1.3, Relaxation: 0.05}
	base := core.ParticleRecord{
		Position:     mgl32.Vec3{0.2, -0.1, 0.03},
		RestPosition: mgl32.Vec3{0.2, -0.1, 0},
		PhaseOffset:  1,
	}
	far := mgl32.Vec2{10, 10}

	frozen := sh.Displace(base, u, far)
	assert.Equal(t, mgl32.Vec3{0.2, -0.1, 0.03}, frozen)

	half := base
	half.Influence = 0.5
	full := base
	full.Influence = 1
	dHalf := sh.Displace(half, u, far).Sub(base.Position)
	dFull := sh.Displace(full, u, far).Sub(base.Position)
	assert.InDelta(t, dFull.X(), 2*dHalf.X(), 1e-5)
	assert.InDelta(t, dFull.Y(), 2*dHalf.Y(), 1e-5)
	assert.InDelta(t, dFull.Z(), 2*dHalf.Z(), 1e-5)
}

func TestDisplacePushesAwayFromPointer(t *testing.T) {
	sh := stillShader()
	rec := core.ParticleRecord{
		RestPosition: mgl32.Vec3{0.1, 0, 0},
		Influence:    1,
	}
	u := core.Uniforms{}

	near := sh.Displace(rec, u, mgl32.Vec2{0, 0})
	assert.Greater(t, near.X(), float32(0.1))
	assert.InDelta(t, 0, near.Y(), 1e-6)

	outside := sh.Displace(rec, u, mgl32.Vec2{-1, 0})
	assert.InDelta(t, 0.1, outside.X(), 1e-6)

	// no push when the pointer sits exactly on the particle
	on := sh.Displace(rec, u, mgl32.Vec2{0.1, 0})
	assert.InDelta(t, 0.1, on.X(), 1e-6)
}

func TestRecorderWritesGIFAndPNGs(t *testing.T) {
	dir := t.TempDir()
	rec := &Recorder{
		GIFPath:   filepath.Join(dir, "out.gif"),
		PNGPrefix: filepath.Join(dir, "frame_"),
		Delay:     2,
	}
	require.True(t, rec.Enabled())

	s := core.NewSurface(16, 8)
	for i := 0; i < 3; i++ {
		s.Add(i, i, mgl32.Vec3{1, 0.5, 0}, 1)
		require.NoError(t, rec.Capture(s.NRGBA()))
	}
	require.NoError(t, rec.Close())
	assert.Equal(t, 3, rec.Frames())

	for i := 0; i < 3; i++ {
		_, err := os.Stat(filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i)))
		assert.NoError(t, err)
	}

	f, err := os.Open(rec.GIFPath)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	assert.Equal(t, []int{2, 2, 2}, anim.Delay)
}

func TestRecorderDisabled(t *testing.T) {
	rec := &Recorder{}
	assert.False(t, rec.Enabled())
	require.NoError(t, rec.Capture(core.NewSurface(2, 2).NRGBA()))
	require.NoError(t, rec.Close())
}

func TestHUDDrawsText(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 160, 60))
	h := NewHUD()
	lines := h.Lines(core.Uniforms{Time: 1.5, Pointer: mgl32.Vec2{0.25, -0.5}}, 1234, 9)
	require.Len(t, lines, 3)
	assert.Equal(t, "particles 1234", lines[0])
	assert.Contains(t, lines[2], "+0.25 -0.50")

	h.Draw(img, lines...)
	lit := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 160; x++ {
			if img.NRGBAAt(x, y) != (color.NRGBA{}) {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 20)
}
