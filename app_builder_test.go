package pixeldust

import (
	"testing"

	"github.com/gekko3d/pixeldust/fieldrt/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockModule struct {
	installed bool
	order     *[]string
	name      string
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
}

func TestAppBuilder_Defaults(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.Equal(t, defaultStages, app.stages)
	assert.NoError(t, app.Err())
	assert.IsType(t, &nopLogger{}, app.Logger())
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	builder.UseModule(&MockModule{})

	assert.Len(t, builder.modules, 1)
}

func TestAppBuilder_Build_InstallsInOrder(t *testing.T) {
	var order []string
	a := &MockModule{order: &order, name: "a"}
	b := &MockModule{order: &order, name: "b"}

	app := NewAppBuilder().UseModule(a, b).Build()

	assert.True(t, a.installed)
	assert.True(t, b.installed)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Len(t, app.modules, 2)
}

func TestRendererGuard(t *testing.T) {
	app := NewAppBuilder().Build()
	ensureSingleRenderer(app, string(RendererSoftware))
	ensureSingleRenderer(app, string(RendererSoftware))
	assert.Panics(t, func() { ensureSingleRenderer(app, string(RendererGPU)) })

	tag, ok := Resource[RendererTag](app)
	assert.True(t, ok)
	assert.Equal(t, "software", tag.Name)
}

func TestUseSoftware(t *testing.T) {
	app := NewAppBuilder().Build().UseSoftware(64, 48)
	require.NoError(t, app.Err())

	r, ok := Resource[raster.Rasterizer](app)
	require.True(t, ok)
	assert.Equal(t, 64, r.Surface.Width)
	assert.Equal(t, 48, r.Surface.Height)

	rc, ok := Resource[RenderContext](app)
	require.True(t, ok)
	assert.Same(t, r, rc.Renderer)
	assert.Panics(t, func() { app.UseGPU(64, 48, "second") })
}

func TestParseRendererName(t *testing.T) {
	for in, want := range map[string]RendererName{"": RendererGPU, "gpu": RendererGPU, "software": RendererSoftware} {
		got, err := ParseRendererName(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseRendererName("vulkan")
	assert.Error(t, err)
}
