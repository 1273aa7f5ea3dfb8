package pixeldust

import (
	"fmt"
	"math"
	"time"

	"github.com/gekko3d/pixeldust/fieldrt/raster"
)

// DefaultHeadlessFrames is what a software run renders when Frames is 0.
const DefaultHeadlessFrames = 240

// FrameBudget is the number of frames to run; 0 means until quit.
func (c Config) FrameBudget() int {
	if c.Frames > 0 {
		return c.Frames
	}
	if RendererName(c.Renderer) == RendererSoftware {
		return DefaultHeadlessFrames
	}
	return 0
}

func (c Config) gifDelay() int {
	if c.GIFDelay > 0 {
		return c.GIFDelay
	}
	fps := c.FPS
	if fps <= 0 {
		fps = 60
	}
	return max(1, int(math.Round(100/fps)))
}

// NewApp assembles the full application described by cfg.
// A setup error (bad config, window or GPU failure) is returned with every
// already acquired resource released.
func NewApp(cfg Config) (*App, error) {
	opts, err := cfg.SamplerOptions()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	renderer, err := cfg.RendererName()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	headless := renderer == RendererSoftware

	clock := TimeModule{}
	if headless {
		clock.Clock = StepClock(time.Now(), FrameStep(cfg.FPS))
	}

	app := NewAppBuilder().
		UseModule(
			LoggingModule{Prefix: "pixeldust", Debug: cfg.Debug},
			clock,
			AssetServerModule{},
			ProfilerModule{},
			ParticleFieldModule{
				Source:       cfg.Image,
				Options:      opts,
				MaxDimension: cfg.MaxDimension,
				Center:       cfg.Center,
				Seed:         cfg.Seed,
				Wait:         headless,
			},
			AnimationModule{
				Smoothing:  cfg.Smoothing,
				TrailAlpha: cfg.TrailAlpha,
				Background: bg,
				Relaxation: cfg.Relaxation,
				PointSize:  cfg.PointSize,
			},
		).
		Build()

	if headless {
		app.UseRenderer(RendererSoftware, SoftwareRendererModule{
			Width:      cfg.Width,
			Height:     cfg.Height,
			Seed:       cfg.Seed,
			Background: bg,
			HUD:        cfg.HUD,
			Recorder: &raster.Recorder{
				GIFPath:   cfg.GIFOut,
				PNGPrefix: cfg.PNGOut,
				Delay:     cfg.gifDelay(),
			},
		})
		app.UseModules(NewPointerPath())
	} else {
		app.UseModules(PlatformWindowModule{Width: cfg.Width, Height: cfg.Height, Title: "pixeldust"})
		app.UseRenderer(RendererGPU, GpuRendererModule{
			WindowWidth:  cfg.Width,
			WindowHeight: cfg.Height,
			WindowTitle:  "pixeldust",
			Background:   bg,
		})
		app.UseModules(InputModule{})
	}

	if err := app.Err(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}
