package pixeldust

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gekko3d/pixeldust/fieldrt/core"
	"github.com/gekko3d/pixeldust/fieldrt/sampler"
	"github.com/go-gl/mathgl/mgl32"
	css "github.com/mazznoer/csscolorparser"
)

// Config is everything the CLI can set. Zero-valued numeric fields fall back to
// defaults when the app is assembled; use DefaultConfig as the starting point.
type Config struct {
	Image         string  `json:"image"`
	Threshold     float64 `json:"threshold"`
	MaxPoints     int     `json:"maxPoints"`
	CapPolicy     string  `json:"capPolicy"`
	Scale         float32 `json:"scale"`
	Mapping       string  `json:"mapping"`
	Stride        int     `json:"stride"`
	MaxBrightness float64 `json:"maxBrightness,omitempty"`
	MaxDimension  int     `json:"maxDimension,omitempty"`
	Center        bool    `json:"center"`
	Seed          int64   `json:"seed,omitempty"`

	Background string  `json:"background"`
	TrailAlpha float32 `json:"trailAlpha"`
	Smoothing  float32 `json:"smoothing"`
	Relaxation float32 `json:"relaxation"`
	PointSize  float32 `json:"pointSize"`

	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Renderer string  `json:"renderer"`
	Frames   int     `json:"frames,omitempty"`
	FPS      float64 `json:"fps,omitempty"`
	GIFOut   string  `json:"gifOut,omitempty"`
	GIFDelay int     `json:"gifDelay,omitempty"`
	PNGOut   string  `json:"pngPrefix,omitempty"`
	HUD      bool    `json:"hud,omitempty"`
	Debug    bool    `json:"debug,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Threshold:  0.001,
		MaxPoints:  sampler.DefaultMaxPoints,
		CapPolicy:  sampler.CapNone.String(),
		Scale:      sampler.DefaultScale,
		Mapping:    sampler.MapEdge.String(),
		Stride:     1,
		Center:     true,
		Background: "#000000",
		TrailAlpha: core.DefaultTrailAlpha,
		Smoothing:  core.DefaultSmoothing,
		Relaxation: 0.05,
		PointSize:  0.012,
		Width:      1280,
		Height:     720,
		Renderer:   string(RendererGPU),
		FPS:        60,
	}
}

// LoadConfigFile reads a JSON file over base. Keys missing from the file keep
// the values from base.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) SamplerOptions() (sampler.Options, error) {
	mapping, err := sampler.ParseMapping(c.Mapping)
	if err != nil {
		return sampler.Options{}, err
	}
	capPolicy, err := sampler.ParseCapPolicy(c.CapPolicy)
	if err != nil {
		return sampler.Options{}, err
	}
	return sampler.Options{
		Threshold:     c.Threshold,
		MaxBrightness: c.MaxBrightness,
		Scale:         c.Scale,
		MaxPoints:     c.MaxPoints,
		Cap:           capPolicy,
		Mapping:       mapping,
		Stride:        c.Stride,
	}, nil
}

// BackgroundColor parses Background as a CSS colour ("#000", "black", "rgb(0,0,0)").
func (c Config) BackgroundColor() (mgl32.Vec4, error) {
	if c.Background == "" {
		return mgl32.Vec4{0, 0, 0, 1}, nil
	}
	clr, err := css.Parse(c.Background)
	if err != nil {
		return mgl32.Vec4{}, fmt.Errorf("background %q: %w", c.Background, err)
	}
	return mgl32.Vec4{float32(clr.R), float32(clr.G), float32(clr.B), float32(clr.A)}, nil
}

func (c Config) RendererName() (RendererName, error) {
	return ParseRendererName(c.Renderer)
}
