package pixeldust

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	FPS        float64
	frameCount int
	fpsTime    time.Duration
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = time.Now()
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] = time.Since(start)
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// Frame accumulates frame time and refreshes FPS about once per second.
func (p *Profiler) Frame(dt time.Duration) {
	p.frameCount++
	p.fpsTime += dt
	if p.fpsTime >= time.Second {
		p.FPS = float64(p.frameCount) / p.fpsTime.Seconds()
		p.frameCount = 0
		p.fpsTime = 0
	}
}

func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

func (p *Profiler) StatsString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("FPS %.1f\n", p.FPS))
	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("Stats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}

	return sb.String()
}

// ProfilerModule times every frame and the render stage, counts particles and
// logs the stats at debug level every Interval (default 5s).
type ProfilerModule struct {
	Interval time.Duration
}

func (mod ProfilerModule) Install(app *App, cmd *Commands) {
	interval := mod.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	prof := NewProfiler()
	cmd.AddResources(prof)
	ensureRenderContext(app)

	log := app.Logger()
	var sinceLog time.Duration
	cmd.UseSystem(System(func(p *Profiler) {
		p.BeginScope("frame")
	}).InStage(Prelude))
	cmd.UseSystem(System(func(p *Profiler) {
		p.BeginScope("render")
	}).InStage(PreRender))
	cmd.UseSystem(System(func(p *Profiler, t *Time, rc *RenderContext) {
		p.EndScope("render")
		p.EndScope("frame")
		p.SetCount("particles", rc.Particles().Len())
		p.Frame(t.Dt)

		sinceLog += t.Dt
		if sinceLog >= interval && log.DebugEnabled() {
			sinceLog = 0
			log.Debugf("Profiler:\n%s", p.StatsString())
		}
	}).InStage(PostRender))
}
