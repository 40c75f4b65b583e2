package lightlab

import (
	"fmt"
)

type State int

type Stage struct {
	Name string
}

var (
	Prelude    = Stage{Name: "Prelude"}
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
	PreRender  = Stage{Name: "PreRender"}
	Render     = Stage{Name: "Render"}
	PostRender = Stage{Name: "PostRender"}
	Finale     = Stage{Name: "Finale"}
)

type statePhase int

const (
	enter statePhase = iota
	execute
	exit
)

// stateSlot addresses the systems bound to one phase of one state.
type stateSlot struct {
	state State
	phase statePhase
}

// stageSystems holds everything registered in a stage. Unbound systems run
// on every frame before the systems of the current state.
type stageSystems struct {
	stage   Stage
	unbound []systemFn
	bound   map[stateSlot][]systemFn
}

type schedule struct {
	stages []*stageSystems
}

func (s *schedule) addStage(stage Stage) {
	s.stages = append(s.stages, &stageSystems{
		stage: stage,
		bound: make(map[stateSlot][]systemFn),
	})
}

func (s *schedule) find(stage Stage) *stageSystems {
	for _, st := range s.stages {
		if st.stage.Name == stage.Name {
			return st
		}
	}
	return nil
}

type systemScheduleBuilder struct {
	system    systemFn
	stage     Stage
	slot      stateSlot
	bound     bool
	runAlways bool
}

type stateScheduleBuilder struct {
	slot stateSlot
}

func OnEnter(state State) stateScheduleBuilder {
	return stateScheduleBuilder{slot: stateSlot{state: state, phase: enter}}
}

func OnExecute(state State) stateScheduleBuilder {
	return stateScheduleBuilder{slot: stateSlot{state: state, phase: execute}}
}

func OnExit(state State) stateScheduleBuilder {
	return stateScheduleBuilder{slot: stateSlot{state: state, phase: exit}}
}

// System schedules fn in the Update stage, on every frame, unless narrowed
// with InStage or InState.
func System(fn systemFn) systemScheduleBuilder {
	return systemScheduleBuilder{system: fn, stage: Update}
}

func (sched systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	sched.stage = s
	return sched
}

func (sched systemScheduleBuilder) InState(s stateScheduleBuilder) systemScheduleBuilder {
	sched.slot = s.slot
	sched.bound = true
	return sched
}

// RunAlways ignores any state binding.
func (sched systemScheduleBuilder) RunAlways() systemScheduleBuilder {
	sched.runAlways = true
	return sched
}

func (app *App) UseSystem(sys systemScheduleBuilder) *App {
	st := app.schedule.find(sys.stage)
	if st == nil {
		panic(fmt.Sprintf("Stage %v doesn't exist", sys.stage.Name))
	}

	if sys.runAlways || !sys.bound {
		st.unbound = append(st.unbound, sys.system)
		return app
	}

	if !app.stateful {
		panic("Trying to use a stateful system in a stateless app.")
	}
	if sys.slot.state < app.initialState || sys.slot.state > app.finalState {
		panic(fmt.Sprintf("State %v doesn't exist", sys.slot.state))
	}
	st.bound[sys.slot] = append(st.bound[sys.slot], sys.system)
	return app
}
