package lightlab

import (
	"reflect"
)

// Queries iterate every archetype holding the requested components.
// Components listed as optionals may be absent; their pointer is then nil.
// Components listed via Without exclude the archetype entirely.
type Query1[A any] struct {
	ecs     *Ecs
	without []any
}
type Query2[A, B any] struct {
	ecs     *Ecs
	without []any
}
type Query3[A, B, C any] struct {
	ecs     *Ecs
	without []any
}
type Query4[A, B, C, D any] struct {
	ecs     *Ecs
	without []any
}

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{ecs: cmd.app.ecs}
}

func (q Query1[A]) Without(components ...any) Query1[A] {
	q.without = append(q.without, components...)
	return q
}

func (q Query2[A, B]) Without(components ...any) Query2[A, B] {
	q.without = append(q.without, components...)
	return q
}

func (q Query3[A, B, C]) Without(components ...any) Query3[A, B, C] {
	q.without = append(q.without, components...)
	return q
}

func (q Query4[A, B, C, D]) Without(components ...any) Query4[A, B, C, D] {
	q.without = append(q.without, components...)
	return q
}

// column resolves the typed slice for a component id in an archetype.
// ok is false when the archetype must be skipped.
func column[T any](arch *archetype, id componentId, opt set[componentId]) (comps []T, present bool, ok bool) {
	if data, found := arch.columns[id]; found {
		return data.([]T), true, true
	}
	if _, optional := opt[id]; optional {
		return nil, false, true
	}
	return nil, false, false
}

func at[T any](comps []T, present bool, r row) *T {
	if !present {
		return nil
	}
	return &comps[r]
}

func excluded(arch *archetype, without set[componentId]) bool {
	for id := range without {
		if _, ok := arch.columns[id]; ok {
			return true
		}
	}
	return false
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)
	without := identifyOptionals(q.ecs, q.without...)

	for _, arch := range q.ecs.archetypes {
		if excluded(arch, without) {
			continue
		}
		comps1, has1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}

		for entityId, r := range arch.rows {
			if !m(entityId, at(comps1, has1, r)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)
	without := identifyOptionals(q.ecs, q.without...)

	for _, arch := range q.ecs.archetypes {
		if excluded(arch, without) {
			continue
		}
		comps1, has1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		comps2, has2, ok := column[B](arch, id2, opt)
		if !ok {
			continue
		}

		for entityId, r := range arch.rows {
			if !m(entityId, at(comps1, has1, r), at(comps2, has2, r)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	id3 := identifyComponent[C](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)
	without := identifyOptionals(q.ecs, q.without...)

	for _, arch := range q.ecs.archetypes {
		if excluded(arch, without) {
			continue
		}
		comps1, has1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		comps2, has2, ok := column[B](arch, id2, opt)
		if !ok {
			continue
		}
		comps3, has3, ok := column[C](arch, id3, opt)
		if !ok {
			continue
		}

		for entityId, r := range arch.rows {
			if !m(entityId, at(comps1, has1, r), at(comps2, has2, r), at(comps3, has3, r)) {
				return
			}
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	id3 := identifyComponent[C](q.ecs)
	id4 := identifyComponent[D](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)
	without := identifyOptionals(q.ecs, q.without...)

	for _, arch := range q.ecs.archetypes {
		if excluded(arch, without) {
			continue
		}
		comps1, has1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		comps2, has2, ok := column[B](arch, id2, opt)
		if !ok {
			continue
		}
		comps3, has3, ok := column[C](arch, id3, opt)
		if !ok {
			continue
		}
		comps4, has4, ok := column[D](arch, id4, opt)
		if !ok {
			continue
		}

		for entityId, r := range arch.rows {
			if !m(entityId, at(comps1, has1, r), at(comps2, has2, r), at(comps3, has3, r), at(comps4, has4, r)) {
				return
			}
		}
	}
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		t := reflect.TypeOf(c)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		res[ecs.getComponentId(t)] = struct{}{}
	}

	return res
}

func identifyComponent[A any](ecs *Ecs) componentId {
	var a A
	return ecs.getComponentId(reflect.TypeOf(a))
}
