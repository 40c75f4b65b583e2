package lightlab

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

// Ecs is an archetype store. It is not safe for concurrent use: systems,
// command flushes and panel callbacks all run on the frame goroutine.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId

	nextEntity EntityId
	registry   componentRegistry
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:  make(map[archetypeId]*archetype),
		entityIndex: make(map[EntityId]archetypeId),
		registry: componentRegistry{
			ids: make(map[reflect.Type]componentId),
		},
	}
}

// componentRegistry assigns dense ids to component types in first-seen order.
type componentRegistry struct {
	ids   map[reflect.Type]componentId
	types []reflect.Type
}

type archetype struct {
	id      archetypeId
	key     archetypeKey
	rows    map[EntityId]row
	columns map[componentId]any // []T per component type
	size    int                 // allocated rows, live or free
	free    []row
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) entityCount() int {
	return len(ecs.entityIndex)
}

// locate returns the archetype and row holding the entity.
func (ecs *Ecs) locate(entityId EntityId) (*archetype, row, bool) {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil, 0, false
	}
	arch := ecs.archetypes[archId]
	return arch, arch.rows[entityId], true
}

func (ecs *Ecs) hasComponentType(entityId EntityId, componentType reflect.Type) bool {
	arch, _, ok := ecs.locate(entityId)
	if !ok {
		return false
	}
	_, ok = arch.columns[ecs.getComponentId(componentType)]
	return ok
}

// components copies out every component of the entity in component id order.
func (ecs *Ecs) components(entityId EntityId) []any {
	arch, r, ok := ecs.locate(entityId)
	if !ok {
		return nil
	}
	res := make([]any, 0, len(arch.key))
	for _, id := range arch.key {
		res = append(res, reflectSliceGet(arch.columns[id], int(r)).Interface())
	}
	return res
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	arch := ecs.getOrMakeArchetype(ecs.getArchetypeKey(components...))

	r := ecs.archetypeReserveRow(arch)
	for _, component := range components {
		ecs.writeComponent(arch, r, component)
	}
	ecs.place(entityId, arch, r)
	return entityId
}

// removeEntity reports false when the entity was already gone.
func (ecs *Ecs) removeEntity(entityId EntityId) bool {
	arch, r, ok := ecs.locate(entityId)
	if !ok {
		return false
	}
	ecs.release(arch, r)
	delete(arch.rows, entityId)
	delete(ecs.entityIndex, entityId)
	return true
}

// addComponents attaches or overwrites components. Components of a type the
// entity already has are written in place.
func (ecs *Ecs) addComponents(entityId EntityId, components ...any) bool {
	src, srcRow, ok := ecs.locate(entityId)
	if !ok {
		return false
	}

	dstKey := combineArchetypeKeys(src.key, ecs.getArchetypeKey(components...))
	if slices.Equal(dstKey, src.key) {
		for _, component := range components {
			ecs.writeComponent(src, srcRow, component)
		}
		return true
	}

	dst := ecs.getOrMakeArchetype(dstKey)
	dstRow := ecs.migrate(entityId, src, srcRow, dst)
	for _, component := range components {
		ecs.writeComponent(dst, dstRow, component)
	}
	return true
}

// removeComponents detaches components; unknown or absent types are ignored.
func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) bool {
	src, srcRow, ok := ecs.locate(entityId)
	if !ok {
		return false
	}

	drop := make(set[componentId], len(components))
	for _, c := range components {
		drop[ecs.getComponentId(componentTypeOf(c))] = struct{}{}
	}
	dstKey := slices.DeleteFunc(slices.Clone(src.key), func(id componentId) bool {
		_, found := drop[id]
		return found
	})
	if len(dstKey) == len(src.key) {
		return true
	}

	ecs.migrate(entityId, src, srcRow, ecs.getOrMakeArchetype(dstKey))
	return true
}

// migrate moves the entity to dst, carrying over the components both
// archetypes share, and returns its new row.
func (ecs *Ecs) migrate(entityId EntityId, src *archetype, srcRow row, dst *archetype) row {
	dstRow := ecs.archetypeReserveRow(dst)
	for _, id := range dst.key {
		from, shared := src.columns[id]
		if !shared {
			continue
		}
		reflectSliceSet(dst.columns[id], int(dstRow), reflectSliceGet(from, int(srcRow)))
	}

	ecs.release(src, srcRow)
	delete(src.rows, entityId)
	ecs.place(entityId, dst, dstRow)
	return dstRow
}

func (ecs *Ecs) place(entityId EntityId, arch *archetype, r row) {
	arch.rows[entityId] = r
	ecs.entityIndex[entityId] = arch.id
}

// release zeroes the row so stale pointers (materials, textures) can be
// collected, then queues it for reuse.
func (ecs *Ecs) release(arch *archetype, r row) {
	for _, id := range arch.key {
		reflectSliceClear(arch.columns[id], int(r))
	}
	arch.free = append(arch.free, r)
}

func (ecs *Ecs) writeComponent(arch *archetype, r row, component any) {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		if value.Type().Elem().Kind() != reflect.Struct {
			panic(fmt.Errorf("expected Component to be a struct or a pointer to a struct, got %s", value.Type()))
		}
		value = value.Elem()
	}
	reflectSliceSet(arch.columns[ecs.getComponentId(value.Type())], int(r), value)
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) *archetype {
	id := getArchetypeId(key)
	if arch, ok := ecs.archetypes[id]; ok {
		return arch
	}

	arch := &archetype{
		id:      id,
		key:     key,
		rows:    make(map[EntityId]row),
		columns: make(map[componentId]any, len(key)),
	}
	for _, componentId := range key {
		arch.columns[componentId] = reflectSliceMake(ecs.getComponentType(componentId), 4)
	}
	ecs.archetypes[id] = arch
	return arch
}

func (ecs *Ecs) archetypeReserveRow(arch *archetype) row {
	if n := len(arch.free); n > 0 {
		r := arch.free[n-1]
		arch.free = arch.free[:n-1]
		return r
	}

	r := row(arch.size)
	arch.size++
	for _, componentId := range arch.key {
		arch.columns[componentId] = reflectSliceAppend(
			arch.columns[componentId],
			reflect.Zero(ecs.getComponentType(componentId)),
		)
	}
	return r
}

// getArchetypeKey maps a component list to its canonical key: sorted,
// deduplicated component ids. The archetype id is a hash of that key.
func (ecs *Ecs) getArchetypeKey(components ...any) archetypeKey {
	res := make(archetypeKey, 0, len(components))
	for _, component := range components {
		compType := componentTypeOf(component)
		if compType.Kind() != reflect.Struct {
			panic("component should be a struct")
		}
		res = append(res, ecs.getComponentId(compType))
	}
	return dedupAndSortArchetypeKey(res)
}

func componentTypeOf(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func combineArchetypeKeys(a archetypeKey, b archetypeKey) archetypeKey {
	merged := make(archetypeKey, 0, len(a)+len(b))
	return dedupAndSortArchetypeKey(append(append(merged, a...), b...))
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

func getArchetypeId(key archetypeKey) archetypeId {
	buf := make([]byte, 0, 4*len(key))
	for _, componentId := range key {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(componentId))
	}
	hash := fnv.New64a()
	hash.Write(buf)
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	id := ecs.nextEntity
	ecs.nextEntity++
	return id
}

func (ecs *Ecs) getComponentId(componentType reflect.Type) componentId {
	reg := &ecs.registry
	if id, ok := reg.ids[componentType]; ok {
		return id
	}
	id := componentId(len(reg.types))
	reg.ids[componentType] = id
	reg.types = append(reg.types, componentType)
	return id
}

func (ecs *Ecs) getComponentType(componentId componentId) reflect.Type {
	if int(componentId) < len(ecs.registry.types) {
		return ecs.registry.types[componentId]
	}
	panic("ComponentID not registered")
}
