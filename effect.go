package lightlab

// EffectToggle swaps the materials of a model for a shared override material
// and restores the originals later. Originals are remembered per entity the
// first time the override is installed.
type EffectToggle struct {
	override  *Material
	snapshots map[EntityId]*Material
}

func NewEffectToggle(override *Material) *EffectToggle {
	return &EffectToggle{
		override:  override,
		snapshots: make(map[EntityId]*Material),
	}
}

func (e *EffectToggle) Override() *Material { return e.override }

// Snapshot returns the material stored for a mesh entity, if any.
func (e *EffectToggle) Snapshot(eid EntityId) (*Material, bool) {
	m, ok := e.snapshots[eid]
	return m, ok
}

func (e *EffectToggle) SnapshotCount() int { return len(e.snapshots) }

// Enable installs the override on every drawable below root. A mesh that already
// has a snapshot keeps it, so repeated calls never record the override itself.
func (e *EffectToggle) Enable(cmd *Commands, root EntityId) int {
	changed := 0
	for _, eid := range Descendants(cmd, root) {
		mesh := GetComponent[MeshComponent](cmd, eid)
		if mesh == nil {
			continue
		}
		if _, ok := e.snapshots[eid]; !ok && mesh.Material != e.override {
			e.snapshots[eid] = mesh.Material
		}
		if mesh.Material != e.override {
			mesh.Material = e.override
			changed++
		}
	}
	if changed > 0 {
		e.override.MarkNeedsUpdate()
	}
	return changed
}

// Disable puts the remembered materials back. Meshes without a snapshot are left alone.
func (e *EffectToggle) Disable(cmd *Commands, root EntityId) int {
	restored := 0
	for _, eid := range Descendants(cmd, root) {
		mesh := GetComponent[MeshComponent](cmd, eid)
		if mesh == nil {
			continue
		}
		original, ok := e.snapshots[eid]
		if !ok {
			continue
		}
		mesh.Material = original
		delete(e.snapshots, eid)
		restored++
	}
	return restored
}

// Reset forgets every snapshot. Called when the model they belong to is discarded.
func (e *EffectToggle) Reset() {
	clear(e.snapshots)
}
