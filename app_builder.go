package lightlab

type Module interface {
	Install(app *App, cmd *Commands)
}

type AppBuilder struct {
	app     *App
	modules []Module
}

var defaultStages = []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: newApp()}
}

func (b *AppBuilder) UseStates(initialState State, finalState State) *AppBuilder {
	b.app.stateful = true
	b.app.initialState = initialState
	b.app.finalState = finalState

	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

func (b *AppBuilder) Build() *App {
	app := b.app
	commands := &Commands{app: app}

	for _, stage := range defaultStages {
		app.schedule.addStage(stage)
	}

	for _, module := range b.modules {
		module.Install(app, commands)
	}
	app.FlushCommands()

	return app
}

// UseModules installs modules on an already built app.
func (app *App) UseModules(modules ...Module) *App {
	commands := &Commands{app: app}
	for _, module := range modules {
		module.Install(app, commands)
	}
	return app
}
