package raster

import (
	"image"
	"math"

	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Rasterizer is a software core.Renderer. It keeps an accumulation Surface
// across frames, splats particles additively and hands each finished frame to OnFrame.
type Rasterizer struct {
	Surface   *core.Surface
	Camera    core.Camera
	Shader    *Shader
	Intensity float32
	HUD       *HUD

	// OnFrame receives every presented frame, HUD included.
	OnFrame func(img *image.NRGBA) error

	set    *core.ParticleSet
	frames int
	drawn  int
}

func NewRasterizer(width, height int, seed int64) *Rasterizer {
	return &Rasterizer{
		Surface:   core.NewSurface(width, height),
		Camera:    core.NewCamera(),
		Shader:    NewShader(seed),
		Intensity: 0.35,
	}
}

func (r *Rasterizer) Attach(set *core.ParticleSet) error {
	r.set = set
	return nil
}

func (r *Rasterizer) Frames() int { return r.frames }

// Drawn is the number of particles that landed on the surface in the last frame.
func (r *Rasterizer) Drawn() int { return r.drawn }

func (r *Rasterizer) BeginFrame() (core.Frame, error) {
	if r.Surface == nil || r.Surface.Width == 0 || r.Surface.Height == 0 {
		return nil, core.ErrRenderingUnavailable
	}
	return &softwareFrame{r: r}, nil
}

func (r *Rasterizer) aspect() float32 {
	return float32(r.Surface.Width) / float32(r.Surface.Height)
}

type softwareFrame struct {
	r *Rasterizer
	u core.Uniforms
}

func (f *softwareFrame) Fade(fd core.Fade) {
	f.r.Surface.Fade(fd)
}

func (f *softwareFrame) DrawParticles(u core.Uniforms) {
	r := f.r
	f.u = u
	r.drawn = 0
	if r.set.Len() == 0 {
		return
	}

	aspect := r.aspect()
	vp := r.Camera.ViewProj(aspect)
	pointer := r.Camera.PointerToPlane(u.Pointer, aspect)
	w, h := float32(r.Surface.Width), float32(r.Surface.Height)
	// world size -> pixels at clip depth 1
	pxPerUnit := h / (2 * float32(math.Tan(float64(mgl32.DegToRad(r.Camera.FovYDegrees))/2)))

	for i := 0; i < r.set.Len(); i++ {
		rec := r.set.Record(i)
		p := rec.Position
		if r.Shader != nil {
			p = r.Shader.Displace(rec, u, pointer)
		}
		clip := vp.Mul4x1(p.Vec4(1))
		if clip.W() <= 0 {
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip.W())
		if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
			continue
		}
		sx := (ndc.X() + 1) * 0.5 * w
		sy := (1 - ndc.Y()) * 0.5 * h
		radius := u.PointSize * pxPerUnit / clip.W() * 0.5
		r.splat(sx, sy, radius, rec.Color)
		r.drawn++
	}
}

// splat adds a soft disc; sub-pixel points collapse to a single pixel.
func (r *Rasterizer) splat(sx, sy, radius float32, c mgl32.Vec3) {
	cx, cy := int(sx), int(sy)
	if radius <= 1 {
		r.Surface.Add(cx, cy, c, r.Intensity)
		return
	}
	ir := int(math.Ceil(float64(radius)))
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			if d > radius {
				continue
			}
			falloff := 1 - d/radius
			r.Surface.Add(cx+dx, cy+dy, c, r.Intensity*falloff*falloff)
		}
	}
}

func (f *softwareFrame) End() error {
	r := f.r
	r.frames++
	if r.OnFrame == nil {
		return nil
	}
	img := r.Surface.NRGBA()
	if r.HUD != nil {
		r.HUD.Draw(img, r.HUD.Lines(f.u, r.set.Len(), r.frames)...)
	}
	return r.OnFrame(img)
}
