package lightlab

import (
	"reflect"
	"slices"
)

type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// Quit moves a stateful app into its final state at the end of the frame.
func (cmd *Commands) Quit() {
	if cmd.app.stateful {
		cmd.app.changeState(cmd.app.finalState)
	}
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompAdd{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingCompRemoval{
		eid:        entityId,
		components: components,
	})
}

// RemoveEntity queues the entity for removal. An entity whose addition is
// still queued is dropped from the queue instead, so it never spawns.
func (cmd *Commands) RemoveEntity(entityId EntityId) {
	pending := cmd.app.pendingAdditions
	if i := slices.IndexFunc(pending, func(add pendingAdd) bool { return add.eid == entityId }); i >= 0 {
		cmd.app.pendingAdditions = slices.Delete(pending, i, i+1)
		return
	}
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// Alive reports whether the entity exists in the world (pending additions excluded).
func (cmd *Commands) Alive(entityId EntityId) bool {
	_, _, ok := cmd.app.ecs.locate(entityId)
	return ok
}

// GetAllComponents returns copies of the entity's components in registration order.
func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	return cmd.app.ecs.components(entityId)
}

// GetComponent returns a pointer into the entity's component storage.
// The pointer is valid until the next structural change (FlushCommands).
func GetComponent[T any](cmd *Commands, entityId EntityId) *T {
	ecs := cmd.app.ecs
	arch, r, ok := ecs.locate(entityId)
	if !ok {
		return nil
	}
	data, ok := arch.columns[ecs.getComponentId(reflect.TypeFor[T]())]
	if !ok {
		return nil
	}
	return &data.([]T)[r]
}
