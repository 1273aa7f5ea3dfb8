package core

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Surface is a CPU framebuffer of linear RGB floats, 3 per pixel, row-major.
// It keeps its contents between frames, which is what makes trails possible.
type Surface struct {
	Width, Height int
	Pix           []float32
}

func NewSurface(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Surface{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}
}

func (s *Surface) idx(x, y int) int { return (y*s.Width + x) * 3 }

func (s *Surface) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width && y < s.Height
}

func (s *Surface) At(x, y int) mgl32.Vec3 {
	if !s.In(x, y) {
		return mgl32.Vec3{}
	}
	i := s.idx(x, y)
	return mgl32.Vec3{s.Pix[i], s.Pix[i+1], s.Pix[i+2]}
}

// Clear replaces every pixel with c.
func (s *Surface) Clear(c mgl32.Vec3) {
	for i := 0; i < len(s.Pix); i += 3 {
		s.Pix[i], s.Pix[i+1], s.Pix[i+2] = c[0], c[1], c[2]
	}
}

// Fade blends an overlay of color f.Color at opacity f.Alpha over the whole surface:
// dst = dst*(1-a) + color*a. Repeated fades converge to the overlay color.
func (s *Surface) Fade(f Fade) {
	a := clamp01(f.Alpha)
	if a == 0 {
		return
	}
	keep := 1 - a
	cr, cg, cb := f.Color[0]*a, f.Color[1]*a, f.Color[2]*a
	for i := 0; i < len(s.Pix); i += 3 {
		s.Pix[i] = s.Pix[i]*keep + cr
		s.Pix[i+1] = s.Pix[i+1]*keep + cg
		s.Pix[i+2] = s.Pix[i+2]*keep + cb
	}
}

// Add blends c*intensity additively into the pixel at (x, y). Out of range is ignored.
func (s *Surface) Add(x, y int, c mgl32.Vec3, intensity float32) {
	if !s.In(x, y) {
		return
	}
	i := s.idx(x, y)
	s.Pix[i] += c[0] * intensity
	s.Pix[i+1] += c[1] * intensity
	s.Pix[i+2] += c[2] * intensity
}

// Luminance returns the summed RGB of the whole surface. Handy for asserting energy decay.
func (s *Surface) Luminance() float64 {
	var sum float64
	for _, v := range s.Pix {
		sum += float64(v)
	}
	return sum
}

// NRGBA converts to an 8-bit image, clamping each channel to [0,1].
func (s *Surface) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			i := s.idx(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(s.Pix[i]),
				G: toByte(s.Pix[i+1]),
				B: toByte(s.Pix[i+2]),
				A: 255,
			})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	return uint8(math.Round(float64(clamp01(v)) * 255))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
