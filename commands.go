package pixeldust

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// Quit ends the frame loop after the current frame.
func (cmd *Commands) Quit() {
	cmd.app.quit = true
}

func (cmd *Commands) Quitting() bool {
	return cmd.app.quit
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
