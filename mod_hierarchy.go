package lightlab

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// TransformHierarchySystem derives world transforms of children from their
// parents, walking each tree from its root so every parent is resolved
// before its children. Roots keep their TransformComponent authoritative;
// entities caught in a parent cycle are never reached.
func TransformHierarchySystem(cmd *Commands) {
	var queue []EntityId
	MakeQuery1[TransformComponent](cmd).Without(Parent{}).Map(func(eid EntityId, tr *TransformComponent) bool {
		if local := GetComponent[LocalTransformComponent](cmd, eid); local != nil {
			*local = LocalTransformComponent(*tr)
		}
		queue = append(queue, eid)
		return true
	})

	children := childrenByParent(cmd)
	for len(queue) > 0 {
		parentId := queue[0]
		queue = queue[1:]
		parentWorld := GetComponent[TransformComponent](cmd, parentId)

		for _, child := range children[parentId] {
			world := GetComponent[TransformComponent](cmd, child)
			if world == nil {
				continue
			}
			if local := GetComponent[LocalTransformComponent](cmd, child); local != nil {
				*world = parentWorld.Compose(*local)
			}
			queue = append(queue, child)
		}
	}
}

func childrenByParent(cmd *Commands) map[EntityId][]EntityId {
	children := make(map[EntityId][]EntityId)
	MakeQuery1[Parent](cmd).Map(func(eid EntityId, parent *Parent) bool {
		children[parent.Entity] = append(children[parent.Entity], eid)
		return true
	})
	return children
}

// Descendants returns root and every entity below it, parents before children.
func Descendants(cmd *Commands, root EntityId) []EntityId {
	if !cmd.Alive(root) {
		return nil
	}
	children := childrenByParent(cmd)
	out := []EntityId{root}
	for i := 0; i < len(out); i++ {
		out = append(out, children[out[i]]...)
	}
	return out
}
