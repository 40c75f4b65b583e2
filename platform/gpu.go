package platform

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/lightlab"
)

const depthFormat = wgpu.TextureFormatDepth32Float

type gpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createGpuState(w *Window) (*gpuState, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(w.glfw))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	width, height := w.FramebufferSize()
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      pickSurfaceFormat(caps.Formats),
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	return &gpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
	}, nil
}

// pickSurfaceFormat prefers an sRGB swapchain so lit colors are encoded on store.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

func (g *gpuState) resize(width, height int) {
	g.surfaceConfig.Width = uint32(width)
	g.surfaceConfig.Height = uint32(height)
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
}

func (g *gpuState) release() {
	g.queue.Release()
	g.device.Release()
	g.adapter.Release()
	g.surface.Release()
}

type pipelineDescriptor struct {
	name   string
	shader string
	// layout nil lets wgpu derive the bind group layouts from the shader.
	layout      *wgpu.PipelineLayout
	buffers     []wgpu.VertexBufferLayout
	colorFormat wgpu.TextureFormat // undefined for depth-only passes
	blend       *wgpu.BlendState
	topology    wgpu.PrimitiveTopology
	cullMode    wgpu.CullMode
	depthWrite  bool
	depthTest   wgpu.CompareFunction
	depthBias   int32
	slopeBias   float32
}

func createRenderPipeline(device *wgpu.Device, desc pipelineDescriptor) (*wgpu.RenderPipeline, error) {
	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.shader},
	})
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", desc.name, err)
	}
	defer shader.Release()

	var fragment *wgpu.FragmentState
	if desc.colorFormat != wgpu.TextureFormatUndefined {
		fragment = &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    desc.colorFormat,
					Blend:     desc.blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		}
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.name,
		Layout: desc.layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    desc.buffers,
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  desc.topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  desc.cullMode,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              depthFormat,
			DepthWriteEnabled:   desc.depthWrite,
			DepthCompare:        desc.depthTest,
			StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			DepthBias:           desc.depthBias,
			DepthBiasSlopeScale: desc.slopeBias,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", desc.name, err)
	}
	return pipeline, nil
}

// meshVertexLayout mirrors lightlab.Vertex.
func meshVertexLayout(withAttributes bool) wgpu.VertexBufferLayout {
	layout := wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(lightlab.Vertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}
	if withAttributes {
		layout.Attributes = append(layout.Attributes,
			wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		)
	}
	return layout
}

type lineVertex struct {
	Position [3]float32
	Color    [4]float32
}

func lineVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(lineVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
		},
	}
}

type gpuMesh struct {
	version    uint
	vertexBuf  *wgpu.Buffer
	indexBuf   *wgpu.Buffer
	indexCount uint32
}

func createMesh(device *wgpu.Device, mesh lightlab.MeshAsset) (*gpuMesh, error) {
	vertexBuf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Vertex Buffer",
		Contents: wgpu.ToBytes(mesh.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}
	indexBuf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Index Buffer",
		Contents: wgpu.ToBytes(mesh.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertexBuf.Release()
		return nil, err
	}
	return &gpuMesh{
		version:    mesh.Version,
		vertexBuf:  vertexBuf,
		indexBuf:   indexBuf,
		indexCount: uint32(len(mesh.Indices)),
	}, nil
}

func (m *gpuMesh) release() {
	m.vertexBuf.Release()
	m.indexBuf.Release()
}

type gpuTexture struct {
	version uint
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func createTexture(device *wgpu.Device, queue *wgpu.Queue, asset lightlab.TextureAsset) (*gpuTexture, error) {
	extent := wgpu.Extent3D{
		Width:              asset.Width,
		Height:             asset.Height,
		DepthOrArrayLayers: 1,
	}
	texture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         asset.Name,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormat(asset.Format),
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, err
	}
	err = queue.WriteTexture(
		texture.AsImageCopy(),
		asset.Texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  asset.Width * 4,
			RowsPerImage: asset.Height,
		},
		&extent,
	)
	if err != nil {
		view.Release()
		texture.Release()
		return nil, err
	}
	return &gpuTexture{version: asset.Version, texture: texture, view: view}, nil
}

func (t *gpuTexture) release() {
	t.view.Release()
	t.texture.Release()
}

func createDepthTarget(device *wgpu.Device, label string, width, height int, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	texture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, nil, err
	}
	return texture, view, nil
}

const uniformSlotSize = 512

// uniformPool hands out one uniform buffer per draw call. Slots are recycled
// every frame, so a buffer is never written twice before its submit.
type uniformPool struct {
	device  *wgpu.Device
	queue   *wgpu.Queue
	buffers []*wgpu.Buffer
	next    int
}

func (p *uniformPool) reset() { p.next = 0 }

func (p *uniformPool) write(data []byte) (*wgpu.Buffer, error) {
	if len(data) > uniformSlotSize {
		return nil, fmt.Errorf("uniform block of %d bytes exceeds slot", len(data))
	}
	if p.next == len(p.buffers) {
		buf, err := p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Uniform Slot",
			Size:  uniformSlotSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		p.buffers = append(p.buffers, buf)
	}
	buf := p.buffers[p.next]
	p.next++
	if err := p.queue.WriteBuffer(buf, 0, data); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *uniformPool) release() {
	for _, b := range p.buffers {
		b.Release()
	}
	p.buffers = nil
}
