package pixeldust

import (
	"flag"
	"strconv"
)

type flagField struct {
	usage string
	bind  func(fs *flag.FlagSet, name, usage string, c *Config)
	copy  func(dst *Config, src Config)
}

var flagFields = map[string]flagField{
	"image": {"source image URL or path",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.StringVar(&c.Image, n, c.Image, u) },
		func(d *Config, s Config) { d.Image = s.Image }},
	"threshold": {"brightness cutoff in [0,1]; pixels at or below it are skipped",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.Float64Var(&c.Threshold, n, c.Threshold, u) },
		func(d *Config, s Config) { d.Threshold = s.Threshold }},
	"maxPoints": {"particle cap, enforced only with -capPolicy truncate|stride",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.IntVar(&c.MaxPoints, n, c.MaxPoints, u) },
		func(d *Config, s Config) { d.MaxPoints = s.MaxPoints }},
	"capPolicy": {"none, truncate or stride",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.StringVar(&c.CapPolicy, n, c.CapPolicy, u) },
		func(d *Config, s Config) { d.CapPolicy = s.CapPolicy }},
	"scale": {"spatial scale of the field",
		func(fs *flag.FlagSet, n, u string, c *Config) { float32Var(fs, &c.Scale, n, u) },
		func(d *Config, s Config) { d.Scale = s.Scale }},
	"mapping": {"edge or pixel",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.StringVar(&c.Mapping, n, c.Mapping, u) },
		func(d *Config, s Config) { d.Mapping = s.Mapping }},
	"stride": {"sample every Nth pixel",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.IntVar(&c.Stride, n, c.Stride, u) },
		func(d *Config, s Config) { d.Stride = s.Stride }},
	"maxBrightness": {"exclusive upper brightness cutoff, 0 = off",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.Float64Var(&c.MaxBrightness, n, c.MaxBrightness, u) },
		func(d *Config, s Config) { d.MaxBrightness = s.MaxBrightness }},
	"maxDimension": {"downscale so the longest side is at most N pixels, 0 = off",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.IntVar(&c.MaxDimension, n, c.MaxDimension, u) },
		func(d *Config, s Config) { d.MaxDimension = s.MaxDimension }},
	"center": {"centre the field on its bounding box",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.BoolVar(&c.Center, n, c.Center, u) },
		func(d *Config, s Config) { d.Center = s.Center }},
	"seed": {"random seed, 0 = clock",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.Int64Var(&c.Seed, n, c.Seed, u) },
		func(d *Config, s Config) { d.Seed = s.Seed }},
	"background": {"CSS colour of the background and trail overlay",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.StringVar(&c.Background, n, c.Background, u) },
		func(d *Config, s Config) { d.Background = s.Background }},
	"trailAlpha": {"trail overlay alpha",
		func(fs *flag.FlagSet, n, u string, c *Config) { float32Var(fs, &c.TrailAlpha, n, u) },
		func(d *Config, s Config) { d.TrailAlpha = s.TrailAlpha }},
	"smoothing": {"pointer smoothing factor",
		func(fs *flag.FlagSet, n, u string, c *Config) { float32Var(fs, &c.Smoothing, n, u) },
		func(d *Config, s Config) { d.Smoothing = s.Smoothing }},
	"relaxation": {"relaxation uniform",
		func(fs *flag.FlagSet, n, u string, c *Config) { float32Var(fs, &c.Relaxation, n, u) },
		func(d *Config, s Config) { d.Relaxation = s.Relaxation }},
	"pointSize": {"particle size in world units",
		func(fs *flag.FlagSet, n, u string, c *Config) { float32Var(fs, &c.PointSize, n, u) },
		func(d *Config, s Config) { d.PointSize = s.PointSize }},
	"width": {"window or surface width",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.IntVar(&c.Width, n, c.Width, u) },
		func(d *Config, s Config) { d.Width = s.Width }},
	"height": {"window or surface height",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.IntVar(&c.Height, n, c.Height, u) },
		func(d *Config, s Config) { d.Height = s.Height }},
	"renderer": {"gpu or software",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.StringVar(&c.Renderer, n, c.Renderer, u) },
		func(d *Config, s Config) { d.Renderer = s.Renderer }},
	"frames": {"frames to render, 0 = until closed (software: 240)",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.IntVar(&c.Frames, n, c.Frames, u) },
		func(d *Config, s Config) { d.Frames = s.Frames }},
	"fps": {"simulated refresh rate of the software renderer",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.Float64Var(&c.FPS, n, c.FPS, u) },
		func(d *Config, s Config) { d.FPS = s.FPS }},
	"gifOut": {"software renderer: animated GIF output path",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.StringVar(&c.GIFOut, n, c.GIFOut, u) },
		func(d *Config, s Config) { d.GIFOut = s.GIFOut }},
	"gifDelay": {"GIF frame delay in 100ths of a second, 0 = from fps",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.IntVar(&c.GIFDelay, n, c.GIFDelay, u) },
		func(d *Config, s Config) { d.GIFDelay = s.GIFDelay }},
	"pngPrefix": {"software renderer: PNG sequence prefix",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.StringVar(&c.PNGOut, n, c.PNGOut, u) },
		func(d *Config, s Config) { d.PNGOut = s.PNGOut }},
	"hud": {"software renderer: draw a status overlay",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.BoolVar(&c.HUD, n, c.HUD, u) },
		func(d *Config, s Config) { d.HUD = s.HUD }},
	"debug": {"debug logging",
		func(fs *flag.FlagSet, n, u string, c *Config) { fs.BoolVar(&c.Debug, n, c.Debug, u) },
		func(d *Config, s Config) { d.Debug = s.Debug }},
}

// RegisterFlags binds one flag per Config key onto c.
func RegisterFlags(fs *flag.FlagSet, c *Config) {
	for name, f := range flagFields {
		f.bind(fs, name, f.usage, c)
	}
}

// MergeFlags copies into dst only the flags that were set on the command line.
func MergeFlags(fs *flag.FlagSet, dst *Config, src Config) {
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			field.copy(dst, src)
		}
	})
}

type float32Value struct{ p *float32 }

func (v float32Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatFloat(float64(*v.p), 'g', -1, 32)
}

func (v float32Value) Set(s string) error {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*v.p = float32(f)
	return nil
}

func float32Var(fs *flag.FlagSet, p *float32, name, usage string) {
	fs.Var(float32Value{p}, name, usage)
}
