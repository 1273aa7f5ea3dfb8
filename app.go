package pixeldust

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any

	frames   uint64
	quit     bool
	setupErr error
	shutdown []func()
}

func newApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, s := range defaultStages {
		app.stages = append(app.stages, s)
		app.systems[s.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// UseModules installs modules immediately, in order.
func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, m := range modules {
		app.modules = append(app.modules, m)
		m.Install(app, cmd)
	}
	return app
}

// Err returns the first setup error reported by a module.
func (app *App) Err() error { return app.setupErr }

func (app *App) fail(err error) {
	if err == nil {
		return
	}
	if app.setupErr == nil {
		app.setupErr = err
		return
	}
	app.setupErr = errors.Join(app.setupErr, err)
}

func (app *App) onShutdown(fn func()) {
	app.shutdown = append(app.shutdown, fn)
}

// Frames is the number of frames executed so far.
func (app *App) Frames() uint64 { return app.frames }

// Run executes frames until a system asks to quit, then shuts down.
func (app *App) Run() error {
	defer app.Shutdown()
	_, err := app.RunFrames(0)
	return err
}

// RunFrames executes at most n frames (n <= 0 means until quit) and returns how
// many ran. It can be called repeatedly; call Shutdown when done.
func (app *App) RunFrames(n int) (int, error) {
	if app.setupErr != nil {
		return 0, app.setupErr
	}

	ran := 0
	for !app.quit && (n <= 0 || ran < n) {
		app.callSystems()
		app.frames++
		ran++
	}
	return ran, nil
}

// Shutdown runs the modules' release hooks in reverse install order. Safe to call twice.
func (app *App) Shutdown() {
	for i := len(app.shutdown) - 1; i >= 0; i-- {
		app.shutdown[i]()
	}
	app.shutdown = nil
}

func (app *App) callSystems() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type *T, if one was added.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	typed, ok := r.(*T)
	return typed, ok
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("System %s: argument %s must be a pointer",
				runtime.FuncForPC(systemValue.Pointer()).Name(), argType))
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			app.Logger().Errorf("%s", msg)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
