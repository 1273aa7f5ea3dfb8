package pixeldust

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := newApp()

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	got, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Same(t, resource2, got)
}

func TestApp_SystemsRunInStageOrder(t *testing.T) {
	app := newApp()
	var calls []string
	record := func(name string) func() {
		return func() { calls = append(calls, name) }
	}
	app.UseSystem(System(record("render")).InStage(Render))
	app.UseSystem(System(record("prelude")).InStage(Prelude))
	app.UseSystem(System(record("update")))
	app.UseSystem(System(record("finale")).InStage(Finale))
	app.UseSystem(System(record("update2")).InStage(Update))

	n, err := app.RunFrames(1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"prelude", "update", "update2", "render", "finale"}, calls)
}

func TestApp_InjectsResourcesAndCommands(t *testing.T) {
	app := newApp()
	res := NewMockResource1("a")
	app.addResources(res)

	var seen *MockResource1
	app.UseSystem(System(func(cmd *Commands, r *MockResource1) {
		seen = r
		r.name += "!"
		cmd.Quit()
	}))

	n, err := app.RunFrames(10)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "Quit stops the loop after the current frame")
	assert.Same(t, res, seen)
	assert.Equal(t, "a!", res.name)
	assert.Equal(t, uint64(1), app.Frames())
}

func TestApp_RunFramesCanResume(t *testing.T) {
	app := newApp()
	count := 0
	app.UseSystem(System(func() { count++ }))

	_, _ = app.RunFrames(3)
	_, _ = app.RunFrames(2)
	assert.Equal(t, 5, count)
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := newApp()
	app.UseSystem(System(func(r *MockResource2) {}))
	assert.Panics(t, func() { _, _ = app.RunFrames(1) })
}

func TestApp_UseSystemUnknownStagePanics(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"})) })
}

func TestApp_SetupErrorStopsRun(t *testing.T) {
	app := newApp()
	ran := false
	app.UseSystem(System(func() { ran = true }))
	first := errors.New("first")
	app.fail(first)
	app.fail(errors.New("second"))

	n, err := app.RunFrames(1)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, first)
	assert.ErrorContains(t, err, "second")
	assert.False(t, ran)
}

func TestApp_ShutdownRunsInReverseOnce(t *testing.T) {
	app := newApp()
	var order []int
	app.onShutdown(func() { order = append(order, 1) })
	app.onShutdown(func() { order = append(order, 2) })

	app.UseSystem(System(func(cmd *Commands) {
		if app.Frames() == 1 {
			cmd.Quit()
		}
	}).InStage(Finale))

	require.NoError(t, app.Run())
	assert.Equal(t, uint64(2), app.Frames())
	app.Shutdown()
	assert.Equal(t, []int{2, 1}, order)
}
