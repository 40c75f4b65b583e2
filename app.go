package lightlab

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type App struct {
	stateful           bool
	stateTransitioning bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	built              bool
	finished           bool
	schedule           schedule
	resources          map[reflect.Type]any
	ecs                *Ecs
	frame              uint64

	// Command Buffering
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingCompAdd
	pendingCompRemovals []pendingCompRemoval
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

type pendingCompRemoval struct {
	eid        EntityId
	components []any
}

func newApp() *App {
	ecs := MakeEcs()
	app := &App{
		resources: make(map[reflect.Type]any),
		ecs:       &ecs,
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Frame returns the number of completed frames.
func (app *App) Frame() uint64 {
	return app.frame
}

// Finished reports whether the app reached its final state.
func (app *App) Finished() bool {
	return app.finished
}

// Run executes frames until the final state is reached.
func (app *App) Run() {
	app.start()
	for !app.finished {
		app.Step()
	}
}

// RunFrames executes at most n frames and reports how many ran.
func (app *App) RunFrames(n int) int {
	app.start()
	ran := 0
	for ran < n && !app.finished {
		app.Step()
		ran++
	}
	return ran
}

func (app *App) start() {
	if app.built {
		return
	}
	app.built = true

	if app.stateful {
		app.Logger().Debugf("Running in stateful mode")
		app.state = app.initialState
		app.callSystems(app.state, enter)
	} else {
		app.Logger().Debugf("Running in stateless mode")
	}
}

// Step runs a single update-then-render pass.
func (app *App) Step() {
	app.start()
	if app.finished {
		return
	}

	app.callSystems(app.state, execute)
	app.frame++

	if app.stateful {
		if app.stateTransitioning {
			app.stateTransitioning = false
			app.executeChangeState(app.nextState)
		}

		if app.state == app.finalState {
			app.callSystems(app.state, exit)
			app.finished = true
		}
	}
}

// callSystems runs one phase across all stages, flushing queued commands
// after each stage. Unbound systems only take part in the execute phase.
func (app *App) callSystems(state State, phase statePhase) {
	slot := stateSlot{state: state, phase: phase}
	for _, st := range app.schedule.stages {
		if phase == execute {
			for _, system := range st.unbound {
				app.callSystem(system)
			}
		}
		if app.stateful {
			for _, system := range st.bound[slot] {
				app.callSystem(system)
			}
		}
		app.FlushCommands()
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	app.callSystems(app.state, exit)
	app.state = newState
	app.callSystems(app.state, enter)
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

func (app *App) hasResource(t reflect.Type) bool {
	_, ok := app.resources[t]
	return ok
}

// Resource returns the resource of type T registered on the app, or nil.
func Resource[T any](app *App) *T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if typed, ok := res.(*T); ok {
			return typed
		}
	}
	return nil
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() == reflect.Interface {
			args[i] = app.resolveInterface(argType, systemValue)
			continue
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

// resolveInterface injects the first resource implementing an interface argument (e.g. Logger).
func (app *App) resolveInterface(argType reflect.Type, systemValue reflect.Value) reflect.Value {
	for _, res := range app.resources {
		if reflect.TypeOf(res).Implements(argType) {
			return reflect.ValueOf(res)
		}
	}
	if argType == reflect.TypeOf((*Logger)(nil)).Elem() {
		return reflect.ValueOf(NewNopLogger())
	}
	panic(fmt.Sprintf("Unable to resolve interface dependency %s for %s",
		argType, runtime.FuncForPC(systemValue.Pointer()).Name()))
}

func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompRemovals) == 0 {
		return
	}

	// Removals run first so additions and component changes queued for a
	// removed entity fall through as no-ops.
	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	for _, rem := range app.pendingCompRemovals {
		app.ecs.removeComponents(rem.eid, rem.components...)
	}

	app.pendingRemovals = app.pendingRemovals[:0]
	app.pendingAdditions = app.pendingAdditions[:0]
	app.pendingCompAdds = app.pendingCompAdds[:0]
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
