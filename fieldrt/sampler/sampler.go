package sampler

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultThreshold = 0.01
	DefaultMaxPoints = 50000
	DefaultScale     = 1.5

	jitterRange   = 0.1 // z jitter spans [-0.05, 0.05]
	minInfluence  = 0.2
	influenceSpan = 0.8
)

// Mapping selects how pixel columns/rows map onto [-1, 1].
type Mapping int

const (
	// MapEdge puts column 0 at -1 and the last column at +1 (row 0 at +1, last row at -1).
	MapEdge Mapping = iota
	// MapPixel uses x/w*2-1 and 1-y/h*2, so the last column stops one pixel short of +1.
	MapPixel
)

// CapPolicy decides what MaxPoints does.
type CapPolicy int

const (
	// CapNone accepts MaxPoints but never enforces it.
	CapNone CapPolicy = iota
	// CapTruncate stops the scan once MaxPoints particles were emitted.
	CapTruncate
	// CapStride scans everything, then keeps MaxPoints evenly spaced particles.
	CapStride
)

func ParseMapping(s string) (Mapping, error) {
	switch s {
	case "", "edge":
		return MapEdge, nil
	case "pixel":
		return MapPixel, nil
	}
	return MapEdge, fmt.Errorf("unknown mapping %q", s)
}

func (m Mapping) String() string {
	if m == MapPixel {
		return "pixel"
	}
	return "edge"
}

func ParseCapPolicy(s string) (CapPolicy, error) {
	switch s {
	case "", "none":
		return CapNone, nil
	case "truncate":
		return CapTruncate, nil
	case "stride":
		return CapStride, nil
	}
	return CapNone, fmt.Errorf("unknown cap policy %q", s)
}

func (c CapPolicy) String() string {
	switch c {
	case CapTruncate:
		return "truncate"
	case CapStride:
		return "stride"
	}
	return "none"
}

// Options control sampling. The zero value of MaxBrightness disables the upper cutoff
// and a Stride below 1 means every pixel. Threshold and Scale are used as given.
type Options struct {
	Threshold     float64
	MaxBrightness float64
	Scale         float32
	MaxPoints     int
	Cap           CapPolicy
	Mapping       Mapping
	Stride        int
}

func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Scale:     DefaultScale,
		MaxPoints: DefaultMaxPoints,
		Cap:       CapNone,
		Mapping:   MapEdge,
		Stride:    1,
	}
}

// Sampler turns images into particle sets. Its random source drives z jitter,
// phase and influence; seed it for reproducible output.
type Sampler struct {
	opts Options
	rng  *rand.Rand
}

// New creates a Sampler. A nil rng is replaced by a clock-seeded one.
func New(opts Options, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{opts: opts, rng: rng}
}

func (s *Sampler) Options() Options { return s.opts }

// Brightness is the mean of the normalized R, G and B channels.
func Brightness(r, g, b uint8) float64 {
	return (float64(r) + float64(g) + float64(b)) / (3 * 255)
}

// ToNDC maps pixel (x, y) of a w*h image into [-1,1]^2 with +y up.
func ToNDC(x, y, w, h int, m Mapping) (float32, float32) {
	if m == MapPixel {
		return float32(x)/float32(w)*2 - 1, 1 - float32(y)/float32(h)*2
	}
	return edgeNDC(x, w), -edgeNDC(y, h)
}

func edgeNDC(i, n int) float32 {
	if n <= 1 {
		return -1
	}
	return float32(i)/float32(n-1)*2 - 1
}

// Sample scans img in row-major order and emits one particle per pixel brighter than the threshold.
func (s *Sampler) Sample(img *SourceImage) *core.ParticleSet {
	o := s.opts
	stride := o.Stride
	if stride < 1 {
		stride = 1
	}
	truncate := o.Cap == CapTruncate && o.MaxPoints >= 0

	set := core.NewParticleSet(min(img.Width*img.Height, DefaultMaxPoints))
scan:
	for y := 0; y < img.Height; y += stride {
		for x := 0; x < img.Width; x += stride {
			if truncate && set.Len() >= o.MaxPoints {
				break scan
			}
			r, g, b, _ := img.RGBA(x, y)
			brightness := Brightness(r, g, b)
			if brightness <= o.Threshold {
				continue
			}
			if o.MaxBrightness > 0 && brightness >= o.MaxBrightness {
				continue
			}

			nx, ny := ToNDC(x, y, img.Width, img.Height, o.Mapping)
			px, py := nx*o.Scale, ny*o.Scale
			set.Append(core.ParticleRecord{
				Position:     mgl32.Vec3{px, py, s.jitter()},
				RestPosition: mgl32.Vec3{px, py, 0},
				PhaseOffset:  s.phase(),
				Influence:    s.influence(),
				Color:        mgl32.Vec3{float32(r) / 255, float32(g) / 255, float32(b) / 255},
			})
		}
	}

	if o.Cap == CapStride && o.MaxPoints >= 0 && set.Len() > o.MaxPoints {
		return set.Select(StrideIndices(set.Len(), o.MaxPoints))
	}
	return set
}

func (s *Sampler) jitter() float32 {
	return float32((s.rng.Float64() - 0.5) * jitterRange)
}

func (s *Sampler) phase() float32 {
	p := float32(s.rng.Float64() * 2 * math.Pi)
	// float32 rounding can land exactly on 2*pi
	if p >= 2*math.Pi {
		p = 0
	}
	return p
}

func (s *Sampler) influence() float32 {
	return float32(minInfluence + s.rng.Float64()*influenceSpan)
}

// StrideIndices picks k evenly spaced indices out of n, in increasing order.
func StrideIndices(n, k int) []int {
	if k >= n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	out := make([]int, k)
	for i := range out {
		out[i] = i * n / k
	}
	return out
}

// Sample is a one-shot helper using default options with the given threshold and scale.
func Sample(img *SourceImage, threshold float64, scale float32, rng *rand.Rand) *core.ParticleSet {
	opts := DefaultOptions()
	opts.Threshold = threshold
	opts.Scale = scale
	return New(opts, rng).Sample(img)
}
