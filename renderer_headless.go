package lightlab

// HeadlessShadowMap is a CPU-side stand-in that only tracks disposal.
type HeadlessShadowMap struct {
	size      int
	disposals int
}

func (m *HeadlessShadowMap) Size() int { return m.size }

func (m *HeadlessShadowMap) Dispose() { m.disposals++ }

// Disposals counts Dispose calls; anything above one is a double free.
func (m *HeadlessShadowMap) Disposals() int { return m.disposals }

// HeadlessRenderer renders nothing. It keeps the last frame for inspection and
// is used by -headless runs and tests.
type HeadlessRenderer struct {
	Frames     int
	Last       *Frame
	ShadowMaps []*HeadlessShadowMap
	Closed     bool
}

func NewHeadlessRenderer() *HeadlessRenderer {
	return &HeadlessRenderer{}
}

func (r *HeadlessRenderer) Render(frame *Frame) error {
	r.Frames++
	r.Last = frame
	return nil
}

func (r *HeadlessRenderer) NewShadowMap(size int) ShadowMap {
	m := &HeadlessShadowMap{size: size}
	r.ShadowMaps = append(r.ShadowMaps, m)
	return m
}

func (r *HeadlessRenderer) Close() {
	r.Closed = true
}
