package pixeldust

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: newApp()}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs every module in the order given. Setup errors are kept on the
// App and returned by Run/RunFrames.
func (b *AppBuilder) Build() *App {
	return b.app.UseModules(b.modules...)
}
