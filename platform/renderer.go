package platform

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/lightlab"
	"github.com/go-gl/mathgl/mgl32"
)

const maxSpotLights = 2

type spotLightUniform struct {
	Position  [4]float32 // w = distance
	Direction [4]float32 // w = decay
	Color     [4]float32 // w = casts shadow
	Cone      [4]float32 // outer cos, inner cos, bias, map size
	ViewProj  mgl32.Mat4
}

type frameUniform struct {
	ViewProj  mgl32.Mat4
	CameraPos [4]float32
	Ambient   [4]float32
	Counts    [4]uint32
	Lights    [maxSpotLights]spotLightUniform
}

type drawUniform struct {
	Model            mgl32.Mat4
	Normal           mgl32.Mat4
	Color            [4]float32 // w = has map
	Surface          [4]float32 // roughness, metalness, reflectivity, receive shadow
	SubsurfaceColor  [4]float32 // w = shininess
	ThicknessColor   [4]float32 // w = distortion
	SubsurfaceParams [4]float32 // ambient, attenuation, power, scale
}

type backgroundUniform struct {
	InvViewProj mgl32.Mat4
	CameraPos   [4]float32
}

// ShadowMap is a depth texture rendered from a spot light.
type ShadowMap struct {
	size     int
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	released bool
}

func (m *ShadowMap) Size() int { return m.size }

func (m *ShadowMap) Dispose() {
	if m.released {
		return
	}
	m.released = true
	m.view.Release()
	m.texture.Release()
}

// Renderer is the wgpu implementation of lightlab.Renderer. It draws a depth
// pass per shadow-casting light, then the lit scene, then helper lines.
type Renderer struct {
	window *Window
	gpu    *gpuState

	width, height int
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView

	frameLayout      *wgpu.BindGroupLayout
	drawLayout       *wgpu.BindGroupLayout
	surfaceLayout    *wgpu.PipelineLayout
	shadowLayout     *wgpu.BindGroupLayout
	lineLayout       *wgpu.BindGroupLayout
	backgroundLayout *wgpu.BindGroupLayout

	litPipeline        *wgpu.RenderPipeline
	subsurfacePipeline *wgpu.RenderPipeline
	shadowPipeline     *wgpu.RenderPipeline
	linePipeline       *wgpu.RenderPipeline
	backgroundPipeline *wgpu.RenderPipeline

	linearSampler *wgpu.Sampler
	shadowSampler *wgpu.Sampler
	white         *gpuTexture
	noShadow      *ShadowMap

	meshes   map[lightlab.AssetId]*gpuMesh
	textures map[lightlab.AssetId]*gpuTexture
	uniforms *uniformPool

	lineBuffer   *wgpu.Buffer
	lineCapacity int

	bindGroups []*wgpu.BindGroup
}

func NewRenderer(w *Window) (*Renderer, error) {
	gpu, err := createGpuState(w)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		window:   w,
		gpu:      gpu,
		meshes:   make(map[lightlab.AssetId]*gpuMesh),
		textures: make(map[lightlab.AssetId]*gpuTexture),
		uniforms: &uniformPool{device: gpu.device, queue: gpu.queue},
	}
	if err := r.init(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init() error {
	device := r.gpu.device
	var err error

	width, height := r.window.FramebufferSize()
	if err = r.resizeDepth(width, height); err != nil {
		return err
	}

	r.frameLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "FrameBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeDepth, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeDepth, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison},
			},
		},
	})
	if err != nil {
		return err
	}
	r.drawLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "DrawBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return err
	}
	r.surfaceLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "SurfaceLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.frameLayout, r.drawLayout},
	})
	if err != nil {
		return err
	}

	format := r.gpu.surfaceConfig.Format
	if r.litPipeline, err = createRenderPipeline(device, pipelineDescriptor{
		name:        "Lit",
		shader:      litShader,
		layout:      r.surfaceLayout,
		buffers:     []wgpu.VertexBufferLayout{meshVertexLayout(true)},
		colorFormat: format,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		cullMode:    wgpu.CullModeBack,
		depthWrite:  true,
		depthTest:   wgpu.CompareFunctionLess,
	}); err != nil {
		return err
	}
	if r.subsurfacePipeline, err = createRenderPipeline(device, pipelineDescriptor{
		name:        "Subsurface",
		shader:      subsurfaceShader,
		layout:      r.surfaceLayout,
		buffers:     []wgpu.VertexBufferLayout{meshVertexLayout(true)},
		colorFormat: format,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		cullMode:    wgpu.CullModeNone,
		depthWrite:  true,
		depthTest:   wgpu.CompareFunctionLess,
	}); err != nil {
		return err
	}
	if r.shadowPipeline, err = createRenderPipeline(device, pipelineDescriptor{
		name:       "ShadowDepth",
		shader:     shadowWGSL,
		buffers:    []wgpu.VertexBufferLayout{meshVertexLayout(false)},
		topology:   wgpu.PrimitiveTopologyTriangleList,
		cullMode:   wgpu.CullModeNone,
		depthWrite: true,
		depthTest:  wgpu.CompareFunctionLess,
		depthBias:  2,
		slopeBias:  2,
	}); err != nil {
		return err
	}
	if r.linePipeline, err = createRenderPipeline(device, pipelineDescriptor{
		name:        "Lines",
		shader:      linesWGSL,
		buffers:     []wgpu.VertexBufferLayout{lineVertexLayout()},
		colorFormat: format,
		blend: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		},
		topology:  wgpu.PrimitiveTopologyLineList,
		cullMode:  wgpu.CullModeNone,
		depthTest: wgpu.CompareFunctionLessEqual,
	}); err != nil {
		return err
	}
	if r.backgroundPipeline, err = createRenderPipeline(device, pipelineDescriptor{
		name:        "Background",
		shader:      backgroundWGSL,
		colorFormat: format,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		cullMode:    wgpu.CullModeNone,
		depthTest:   wgpu.CompareFunctionAlways,
	}); err != nil {
		return err
	}
	r.shadowLayout = r.shadowPipeline.GetBindGroupLayout(0)
	r.lineLayout = r.linePipeline.GetBindGroupLayout(0)
	r.backgroundLayout = r.backgroundPipeline.GetBindGroupLayout(0)

	if r.linearSampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}); err != nil {
		return err
	}
	if r.shadowSampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionLessEqual,
		MaxAnisotropy: 1,
	}); err != nil {
		return err
	}

	if r.white, err = createTexture(device, r.gpu.queue, lightlab.TextureAsset{
		Texels: []uint8{255, 255, 255, 255},
		Width:  1,
		Height: 1,
		Format: lightlab.TextureFormatRGBA8Unorm,
		Name:   "white",
	}); err != nil {
		return err
	}
	// Bound in unused shadow slots; never sampled.
	r.noShadow, err = r.newShadowMap(1)
	return err
}

func (r *Renderer) resizeDepth(width, height int) error {
	if r.depthTexture != nil {
		r.depthView.Release()
		r.depthTexture.Release()
		r.depthTexture, r.depthView = nil, nil
	}
	texture, view, err := createDepthTarget(r.gpu.device, "Depth", width, height, wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return fmt.Errorf("depth target: %w", err)
	}
	r.depthTexture, r.depthView = texture, view
	r.width, r.height = width, height
	return nil
}

func (r *Renderer) newShadowMap(size int) (*ShadowMap, error) {
	texture, view, err := createDepthTarget(r.gpu.device, "ShadowMap", size, size,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return nil, err
	}
	return &ShadowMap{size: size, texture: texture, view: view}, nil
}

// NewShadowMap allocates a square depth texture. Allocation failure is fatal,
// as for every other GPU resource.
func (r *Renderer) NewShadowMap(size int) lightlab.ShadowMap {
	m, err := r.newShadowMap(size)
	if err != nil {
		panic(err)
	}
	return m
}

func (r *Renderer) Render(frame *lightlab.Frame) error {
	width, height := r.window.FramebufferSize()
	if width == 0 || height == 0 {
		// minimized
		return nil
	}
	if width != r.width || height != r.height {
		r.gpu.resize(width, height)
		if err := r.resizeDepth(width, height); err != nil {
			return err
		}
	}

	r.uniforms.reset()
	defer r.releaseBindGroups()
	if err := r.syncAssets(frame); err != nil {
		return err
	}

	nextTexture, err := r.gpu.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface: %w", err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()
	encoder, err := r.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	lights := frame.SpotLights
	if len(lights) > maxSpotLights {
		lights = lights[:maxSpotLights]
	}
	for _, light := range lights {
		if !light.CastShadow {
			continue
		}
		if err := r.shadowPass(encoder, light, frame.Draws); err != nil {
			return fmt.Errorf("shadow pass: %w", err)
		}
	}
	if err := r.mainPass(encoder, view, frame, lights); err != nil {
		return fmt.Errorf("main pass: %w", err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmdBuffer.Release()
	r.gpu.queue.Submit(cmdBuffer)
	r.gpu.surface.Present()
	return nil
}

// syncAssets uploads new or changed meshes and textures and frees the ones
// the asset server no longer holds.
func (r *Renderer) syncAssets(frame *lightlab.Frame) error {
	assets := frame.Assets
	if assets == nil {
		return nil
	}
	for id, m := range r.meshes {
		if _, ok := assets.Mesh(id); !ok {
			m.release()
			delete(r.meshes, id)
		}
	}
	for _, d := range frame.Draws {
		if err := r.syncMesh(assets, d.Mesh); err != nil {
			return err
		}
		for _, id := range materialTextures(d.Material) {
			if err := r.syncTexture(assets, id); err != nil {
				return err
			}
		}
	}
	return r.syncTexture(assets, frame.Background)
}

func (r *Renderer) syncMesh(assets *lightlab.AssetServer, id lightlab.AssetId) error {
	mesh, ok := assets.Mesh(id)
	if !ok || len(mesh.Indices) == 0 {
		return nil
	}
	if cached, ok := r.meshes[id]; ok {
		if cached.version == mesh.Version {
			return nil
		}
		cached.release()
	}
	m, err := createMesh(r.gpu.device, mesh)
	if err != nil {
		delete(r.meshes, id)
		return fmt.Errorf("upload mesh %s: %w", id, err)
	}
	r.meshes[id] = m
	return nil
}

func (r *Renderer) syncTexture(assets *lightlab.AssetServer, id lightlab.AssetId) error {
	if id == "" {
		return nil
	}
	tex, ok := assets.Texture(id)
	if !ok {
		return nil
	}
	if cached, ok := r.textures[id]; ok {
		if cached.version == tex.Version {
			return nil
		}
		cached.release()
	}
	t, err := createTexture(r.gpu.device, r.gpu.queue, tex)
	if err != nil {
		delete(r.textures, id)
		return fmt.Errorf("upload texture %s: %w", tex.Name, err)
	}
	r.textures[id] = t
	return nil
}

func materialTextures(m *lightlab.Material) []lightlab.AssetId {
	ids := []lightlab.AssetId{m.Map}
	if m.Subsurface != nil {
		ids = append(ids, m.Subsurface.Map, m.Subsurface.ThicknessMap)
	}
	return ids
}

func (r *Renderer) textureView(id lightlab.AssetId) (*wgpu.TextureView, bool) {
	if t, ok := r.textures[id]; ok && id != "" {
		return t.view, true
	}
	return r.white.view, false
}

func (r *Renderer) createBindGroup(layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	bg, err := r.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	r.bindGroups = append(r.bindGroups, bg)
	return bg, nil
}

func (r *Renderer) uniformBindGroup(layout *wgpu.BindGroupLayout, data []byte) (*wgpu.BindGroup, error) {
	buf, err := r.uniforms.write(data)
	if err != nil {
		return nil, err
	}
	return r.createBindGroup(layout, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
	})
}

func (r *Renderer) releaseBindGroups() {
	for _, bg := range r.bindGroups {
		bg.Release()
	}
	r.bindGroups = r.bindGroups[:0]
}

func (r *Renderer) shadowPass(encoder *wgpu.CommandEncoder, light lightlab.FrameSpotLight, draws []lightlab.DrawItem) error {
	sm, ok := light.ShadowMap.(*ShadowMap)
	if !ok || sm.released {
		return nil
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            sm.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	defer pass.Release()

	pass.SetPipeline(r.shadowPipeline)
	for _, d := range draws {
		mesh, ok := r.meshes[d.Mesh]
		if !d.CastShadow || !ok {
			continue
		}
		lightModel := glToWebGPUDepth.Mul4(light.ShadowViewProj).Mul4(d.Model)
		bg, err := r.uniformBindGroup(r.shadowLayout, wgpu.ToBytes(lightModel[:]))
		if err != nil {
			pass.End()
			return err
		}
		pass.SetBindGroup(0, bg, nil)
		pass.SetVertexBuffer(0, mesh.vertexBuf, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(mesh.indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
	}
	return pass.End()
}

func (r *Renderer) mainPass(encoder *wgpu.CommandEncoder, view *wgpu.TextureView, frame *lightlab.Frame, lights []lightlab.FrameSpotLight) error {
	cc := frame.ClearColor
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: float64(cc[0]), G: float64(cc[1]), B: float64(cc[2]), A: 1},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	defer pass.Release()

	if err := r.drawBackground(pass, frame); err != nil {
		pass.End()
		return err
	}
	if err := r.drawSurfaces(pass, frame, lights); err != nil {
		pass.End()
		return err
	}
	if err := r.drawLines(pass, frame); err != nil {
		pass.End()
		return err
	}
	return pass.End()
}

func (r *Renderer) viewProj(frame *lightlab.Frame) mgl32.Mat4 {
	return glToWebGPUDepth.Mul4(frame.Camera.Projection).Mul4(frame.Camera.View)
}

// glToWebGPUDepth remaps GL clip depth [-1, 1], as produced by mgl32
// projections, to the [0, 1] range wgpu expects.
var glToWebGPUDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func (r *Renderer) drawBackground(pass *wgpu.RenderPassEncoder, frame *lightlab.Frame) error {
	tex, ok := r.textureView(frame.Background)
	if !ok {
		return nil
	}
	u := backgroundUniform{
		InvViewProj: r.viewProj(frame).Inv(),
		CameraPos:   vec4(frame.Camera.Position, 1),
	}
	buf, err := r.uniforms.write(wgpu.ToBytes([]backgroundUniform{u}))
	if err != nil {
		return err
	}
	bg, err := r.createBindGroup(r.backgroundLayout, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
		{Binding: 1, TextureView: tex, Size: wgpu.WholeSize},
		{Binding: 2, Sampler: r.linearSampler, Size: wgpu.WholeSize},
	})
	if err != nil {
		return err
	}
	pass.SetPipeline(r.backgroundPipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(3, 1, 0, 0)
	return nil
}

func (r *Renderer) frameBindGroup(frame *lightlab.Frame, lights []lightlab.FrameSpotLight) (*wgpu.BindGroup, error) {
	amb := frame.Ambient.Color.Mul(frame.Ambient.Intensity)
	u := frameUniform{
		ViewProj:  r.viewProj(frame),
		CameraPos: vec4(frame.Camera.Position, 1),
		Ambient:   vec4(amb, 1),
	}
	u.Counts[0] = uint32(len(lights))
	shadowViews := [maxSpotLights]*wgpu.TextureView{r.noShadow.view, r.noShadow.view}
	for i, l := range lights {
		casts := float32(0)
		mapSize := float32(0)
		if sm, ok := l.ShadowMap.(*ShadowMap); ok && l.CastShadow && !sm.released {
			casts = 1
			mapSize = float32(sm.size)
			shadowViews[i] = sm.view
		}
		u.Lights[i] = spotLightUniform{
			Position:  vec4(l.Position, l.Distance),
			Direction: vec4(l.Direction, l.Decay),
			Color:     vec4(l.Color.Mul(l.Intensity), casts),
			Cone:      [4]float32{l.ConeOuter, l.ConeInner, l.ShadowBias, mapSize},
			ViewProj:  glToWebGPUDepth.Mul4(l.ShadowViewProj),
		}
	}
	buf, err := r.uniforms.write(wgpu.ToBytes([]frameUniform{u}))
	if err != nil {
		return nil, err
	}
	return r.createBindGroup(r.frameLayout, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
		{Binding: 1, TextureView: shadowViews[0], Size: wgpu.WholeSize},
		{Binding: 2, TextureView: shadowViews[1], Size: wgpu.WholeSize},
		{Binding: 3, Sampler: r.shadowSampler, Size: wgpu.WholeSize},
	})
}

func (r *Renderer) drawSurfaces(pass *wgpu.RenderPassEncoder, frame *lightlab.Frame, lights []lightlab.FrameSpotLight) error {
	frameGroup, err := r.frameBindGroup(frame, lights)
	if err != nil {
		return err
	}
	var bound *wgpu.RenderPipeline
	for _, d := range frame.Draws {
		mesh, ok := r.meshes[d.Mesh]
		if !ok {
			continue
		}
		pipeline := r.litPipeline
		if d.Material.Kind == lightlab.MaterialSubsurface {
			pipeline = r.subsurfacePipeline
		}
		if pipeline != bound {
			pass.SetPipeline(pipeline)
			pass.SetBindGroup(0, frameGroup, nil)
			bound = pipeline
		}
		drawGroup, err := r.drawBindGroup(d)
		if err != nil {
			return err
		}
		pass.SetBindGroup(1, drawGroup, nil)
		pass.SetVertexBuffer(0, mesh.vertexBuf, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(mesh.indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
	}
	return nil
}

func (r *Renderer) drawBindGroup(d lightlab.DrawItem) (*wgpu.BindGroup, error) {
	m := d.Material
	u := drawUniform{
		Model:  d.Model,
		Normal: d.Normal,
		Surface: [4]float32{
			m.Roughness, m.Metalness, m.Reflectivity, boolf(d.ReceiveShadow),
		},
	}
	baseID := m.Map
	thickness := r.white.view
	if s := m.Subsurface; s != nil {
		if s.Map != "" {
			baseID = s.Map
		}
		thickness, _ = r.textureView(s.ThicknessMap)
		u.SubsurfaceColor = vec4(s.Diffuse, s.Shininess)
		u.ThicknessColor = vec4(s.ThicknessColor, s.Distortion)
		u.SubsurfaceParams = [4]float32{s.Ambient, s.Attenuation, s.Power, s.Scale}
	}
	base, hasMap := r.textureView(baseID)
	u.Color = vec4(m.Color, boolf(hasMap))
	if m.Kind == lightlab.MaterialSubsurface {
		u.Color = vec4(mgl32.Vec3{1, 1, 1}, boolf(hasMap))
	}

	buf, err := r.uniforms.write(wgpu.ToBytes([]drawUniform{u}))
	if err != nil {
		return nil, err
	}
	return r.createBindGroup(r.drawLayout, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
		{Binding: 1, TextureView: base, Size: wgpu.WholeSize},
		{Binding: 2, TextureView: thickness, Size: wgpu.WholeSize},
		{Binding: 3, Sampler: r.linearSampler, Size: wgpu.WholeSize},
	})
}

func (r *Renderer) drawLines(pass *wgpu.RenderPassEncoder, frame *lightlab.Frame) error {
	if len(frame.Lines) == 0 {
		return nil
	}
	vertices := make([]lineVertex, 0, len(frame.Lines)*2)
	for _, l := range frame.Lines {
		vertices = append(vertices,
			lineVertex{Position: l.From, Color: l.Color},
			lineVertex{Position: l.To, Color: l.Color},
		)
	}
	data := wgpu.ToBytes(vertices)
	if len(data) > r.lineCapacity {
		if r.lineBuffer != nil {
			r.lineBuffer.Release()
		}
		buf, err := r.gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Line Buffer",
			Size:  uint64(len(data) * 2),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			r.lineBuffer, r.lineCapacity = nil, 0
			return err
		}
		r.lineBuffer, r.lineCapacity = buf, len(data)*2
	}
	if err := r.gpu.queue.WriteBuffer(r.lineBuffer, 0, data); err != nil {
		return err
	}
	vp := r.viewProj(frame)
	bg, err := r.uniformBindGroup(r.lineLayout, wgpu.ToBytes(vp[:]))
	if err != nil {
		return err
	}
	pass.SetPipeline(r.linePipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.SetVertexBuffer(0, r.lineBuffer, 0, uint64(len(data)))
	pass.Draw(uint32(len(vertices)), 1, 0, 0)
	return nil
}

// Close releases every GPU object. The window is left to its owner.
func (r *Renderer) Close() {
	r.releaseBindGroups()
	for id, m := range r.meshes {
		m.release()
		delete(r.meshes, id)
	}
	for id, t := range r.textures {
		t.release()
		delete(r.textures, id)
	}
	r.uniforms.release()
	if r.lineBuffer != nil {
		r.lineBuffer.Release()
		r.lineBuffer = nil
	}
	if r.noShadow != nil {
		r.noShadow.Dispose()
	}
	if r.white != nil {
		r.white.release()
	}
	for _, s := range []*wgpu.Sampler{r.linearSampler, r.shadowSampler} {
		if s != nil {
			s.Release()
		}
	}
	for _, p := range []*wgpu.RenderPipeline{r.litPipeline, r.subsurfacePipeline, r.shadowPipeline, r.linePipeline, r.backgroundPipeline} {
		if p != nil {
			p.Release()
		}
	}
	for _, l := range []*wgpu.BindGroupLayout{r.frameLayout, r.drawLayout, r.shadowLayout, r.lineLayout, r.backgroundLayout} {
		if l != nil {
			l.Release()
		}
	}
	if r.surfaceLayout != nil {
		r.surfaceLayout.Release()
	}
	if r.depthTexture != nil {
		r.depthView.Release()
		r.depthTexture.Release()
	}
	r.gpu.release()
}

func vec4(v mgl32.Vec3, w float32) [4]float32 {
	return [4]float32{v[0], v[1], v[2], w}
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
