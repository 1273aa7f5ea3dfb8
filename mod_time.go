package pixeldust

import (
	"time"
)

type Time struct {
	Start time.Time
	Now   time.Time
	Dt    time.Duration
}

// Elapsed is the time since the module was installed.
func (t *Time) Elapsed() time.Duration {
	return t.Now.Sub(t.Start)
}

// TimeModule provides the Time resource, refreshed at the start of every frame.
// Clock defaults to time.Now.
type TimeModule struct {
	Clock func() time.Time
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	clock := mod.Clock
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	cmd.AddResources(&Time{
		Start: now,
		Now:   now,
	})
	cmd.UseSystem(
		System(func(t *Time) {
			advanceTime(t, clock())
		}).InStage(Prelude),
	)
}

func advanceTime(t *Time, now time.Time) {
	if now.Before(t.Now) {
		now = t.Now
	}
	t.Dt = now.Sub(t.Now)
	t.Now = now
}

// StepClock returns a clock that advances by step on every call after the first.
// Headless rendering uses it to simulate a fixed refresh rate.
func StepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

// FrameStep converts frames per second to a frame duration. fps <= 0 yields 60 fps.
func FrameStep(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
