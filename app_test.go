package lightlab

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameCounter struct {
	updates int
	renders int
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: StateRunning,
		state:        StateRunning,
		finalState:   StateQuit,
	}

	app.changeState(StateQuit)
	assert.Equal(t, StateQuit, app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(StateQuit)
	assert.Equal(t, StateQuit, app.state)
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	settings := &RenderSettings{}
	app.addResources(settings)
	assert.Contains(t, app.resources, reflect.TypeOf(settings).Elem())

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(settings)), func() {
		app.addResources(settings)
	})

	app.addResources(NewPanel("test"))
	assert.Same(t, settings, Resource[RenderSettings](app))
	assert.NotNil(t, Resource[Panel](app))
	assert.Nil(t, Resource[TextureLibrary](app))
}

func TestApp_StagesRunInOrder(t *testing.T) {
	var order []string
	app := newTestApp()
	app.UseSystem(System(func() { order = append(order, "render") }).InStage(Render))
	app.UseSystem(System(func() { order = append(order, "pre-update") }).InStage(PreUpdate))
	app.UseSystem(System(func() { order = append(order, "update") }).InStage(Update))

	app.Step()
	assert.Equal(t, []string{"pre-update", "update", "render"}, order)
	assert.Equal(t, uint64(1), app.Frame())
}

func TestApp_InjectsResourcesAndLogger(t *testing.T) {
	logger := &recordingLogger{}
	app := newTestApp(loggerModule{logger: logger})
	counter := &frameCounter{}
	app.addResources(counter)

	app.UseSystem(System(func(c *frameCounter, log Logger) {
		c.updates++
		log.Infof("update %d", c.updates)
	}))

	assert.Equal(t, 3, app.RunFrames(3))
	assert.Equal(t, 3, counter.updates)
	assert.Equal(t, []string{
		"DEBUG: Running in stateless mode",
		"INFO: update 1",
		"INFO: update 2",
		"INFO: update 3",
	}, logger.Lines())
}

func TestApp_MissingDependencyPanics(t *testing.T) {
	app := newTestApp()
	app.UseSystem(System(func(c *frameCounter) {}))
	assert.Panics(t, func() { app.Step() })
}

func TestApp_QuitReachesFinalState(t *testing.T) {
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	counter := &frameCounter{}
	app.addResources(counter)
	exited := false

	app.UseSystem(System(func(cmd *Commands, c *frameCounter) {
		c.updates++
		if c.updates == 2 {
			cmd.Quit()
		}
	}).InStage(Update).InState(OnExecute(StateRunning)))
	app.UseSystem(System(func() { exited = true }).InStage(Finale).InState(OnExit(StateQuit)))

	app.Run()
	assert.True(t, app.Finished())
	assert.True(t, exited)
	assert.Equal(t, 2, counter.updates)

	// Finished apps ignore further steps.
	app.Step()
	assert.Equal(t, 2, counter.updates)
}

func TestApp_QuitIsIgnoredWhenStateless(t *testing.T) {
	app := newTestApp()
	app.UseSystem(System(func(cmd *Commands) { cmd.Quit() }))
	assert.Equal(t, 4, app.RunFrames(4))
	assert.False(t, app.Finished())
}

func TestApp_CommandsAreDeferredUntilStageEnd(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()
	var seenInStage, seenAfter bool
	var eid EntityId

	app.UseSystem(System(func(cmd *Commands) {
		if app.Frame() == 0 {
			eid = cmd.AddEntity(&LightRigComponent{Name: "rig"})
			seenInStage = cmd.Alive(eid)
		}
	}).InStage(Update))
	app.UseSystem(System(func(cmd *Commands) {
		if app.Frame() == 0 {
			seenAfter = cmd.Alive(eid)
		}
	}).InStage(PostUpdate))

	app.Step()
	assert.False(t, seenInStage)
	assert.True(t, seenAfter)
	require.NotNil(t, GetComponent[LightRigComponent](cmd, eid))
	assert.Equal(t, "rig", GetComponent[LightRigComponent](cmd, eid).Name)
}
