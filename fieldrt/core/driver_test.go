package core

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothingConvergesMonotonically(t *testing.T) {
	starts := []mgl32.Vec2{{0, 0}, {-1, -1}, {0.9, -0.4}, {-0.2, 1}}
	target := mgl32.Vec2{0.3, -0.7}

	for _, start := range starts {
		d := NewDriver(nil)
		d.State.SmoothedPointer = start

		prev := target.Sub(start).Len()
		for i := 0; i < 150; i++ {
			d.Tick(float64(i)/60, target)
			dist := target.Sub(d.State.SmoothedPointer).Len()
			require.Less(t, dist, prev, "tick %d from %v", i, start)

			bound := float64(target.Sub(start).Len()) * math.Pow(1-float64(DefaultSmoothing), float64(i+1))
			assert.InDelta(t, bound, float64(dist), 1e-5, "tick %d from %v", i, start)
			prev = dist
		}
	}
}

func TestSmoothingTowardCorner(t *testing.T) {
	d := NewDriver(nil)
	target := mgl32.Vec2{1, 1}

	for i := 0; i < 100; i++ {
		d.Tick(float64(i)/60, target)
	}
	// (1-0.07)^100 per axis
	expected := 1 - float32(math.Pow(0.93, 100))
	assert.InDelta(t, expected, d.State.SmoothedPointer.X(), 1e-5)
	assert.InDelta(t, expected, d.State.SmoothedPointer.Y(), 1e-5)
	assert.InDelta(t, 1, d.State.SmoothedPointer.X(), 1e-3)

	for i := 100; i < 130; i++ {
		d.Tick(float64(i)/60, target)
	}
	assert.InDelta(t, 1, d.State.SmoothedPointer.X(), 1e-4)
	assert.InDelta(t, 1, d.State.SmoothedPointer.Y(), 1e-4)
}

func TestTickPublishesUniforms(t *testing.T) {
	u := &Uniforms{Relaxation: 0.05}
	d := NewDriver(u)

	d.Tick(1.5, mgl32.Vec2{1, 0})

	assert.Equal(t, float32(1.5), u.Time)
	assert.InDelta(t, 0.07, u.Pointer.X(), 1e-6)
	assert.Equal(t, float32(0), u.Pointer.Y())
	assert.Equal(t, float32(0.05), u.Relaxation, "driver must not touch other uniforms")
	assert.Equal(t, uint64(1), d.Ticks())
}

func TestElapsedIsMonotonic(t *testing.T) {
	d := NewDriver(nil)
	d.Tick(2, mgl32.Vec2{})
	d.Tick(1, mgl32.Vec2{})
	assert.Equal(t, 2.0, d.State.ElapsedSeconds)
	assert.Equal(t, float32(2), d.Uniforms().Time)
}

type recordingFrame struct {
	calls []string
	fade  Fade
	u     Uniforms
}

func (f *recordingFrame) Fade(fd Fade)             { f.calls = append(f.calls, "fade"); f.fade = fd }
func (f *recordingFrame) DrawParticles(u Uniforms) { f.calls = append(f.calls, "draw"); f.u = u }
func (f *recordingFrame) End() error               { f.calls = append(f.calls, "end"); return nil }

type recordingRenderer struct {
	frame *recordingFrame
	err   error
}

func (r *recordingRenderer) Attach(set *ParticleSet) error { return nil }
func (r *recordingRenderer) BeginFrame() (Frame, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.frame = &recordingFrame{}
	return r.frame, nil
}

func TestCompositeFadesBeforeDrawing(t *testing.T) {
	d := NewDriver(nil)
	d.Tick(3, mgl32.Vec2{0.5, 0.5})

	r := &recordingRenderer{}
	require.NoError(t, d.Composite(r))

	assert.Equal(t, []string{"fade", "draw", "end"}, r.frame.calls)
	assert.Equal(t, DefaultTrailAlpha, r.frame.fade.Alpha)
	assert.Equal(t, float32(3), r.frame.u.Time)
}

func TestCompositeWithoutRenderer(t *testing.T) {
	d := NewDriver(nil)
	err := d.Composite(nil)
	assert.True(t, errors.Is(err, ErrRenderingUnavailable))

	lost := &recordingRenderer{err: ErrRenderingUnavailable}
	assert.ErrorIs(t, d.Composite(lost), ErrRenderingUnavailable)
	assert.Nil(t, lost.frame)
}

func TestStepWithoutRendererLeavesStateUntouched(t *testing.T) {
	u := &Uniforms{}
	d := NewDriver(u)
	d.Tick(0.5, mgl32.Vec2{0.2, 0.2})
	before, beforeU := d.State, *u

	for i := 0; i < 100; i++ {
		err := d.Step(float64(i)/60+1, mgl32.Vec2{1, 1}, nil)
		require.ErrorIs(t, err, ErrRenderingUnavailable)
	}
	assert.Equal(t, before, d.State)
	assert.Equal(t, beforeU, *u)
	assert.Equal(t, uint64(1), d.Ticks())

	lost := &recordingRenderer{err: ErrRenderingUnavailable}
	require.ErrorIs(t, d.Step(5, mgl32.Vec2{1, 1}, lost), ErrRenderingUnavailable)
	assert.Equal(t, before, d.State)
	assert.Equal(t, uint64(1), d.Ticks())
}

func TestStepTicksThenComposites(t *testing.T) {
	d := NewDriver(nil)
	r := &recordingRenderer{}

	require.NoError(t, d.Step(2, mgl32.Vec2{1, 0}, r))
	assert.Equal(t, []string{"fade", "draw", "end"}, r.frame.calls)
	assert.Equal(t, float32(2), r.frame.u.Time)
	assert.InDelta(t, DefaultSmoothing, r.frame.u.Pointer.X(), 1e-6)
	assert.Equal(t, uint64(1), d.Ticks())
}
