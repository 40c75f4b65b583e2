package lightlab

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type AssetId string

type TextureFormat uint32

const (
	TextureFormatRGBA8Unorm     TextureFormat = 0x00000012
	TextureFormatRGBA8UnormSrgb TextureFormat = 0x00000013
)

// Vertex is the interleaved layout consumed by the lit pipelines.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

type MeshAsset struct {
	Version  uint
	Vertices []Vertex
	Indices  []uint32
}

type TextureAsset struct {
	Version uint
	Texels  []uint8
	Width   uint32
	Height  uint32
	Format  TextureFormat
	Name    string
}

type AssetServer struct {
	meshes   map[AssetId]MeshAsset
	textures map[AssetId]TextureAsset
}

type AssetServerModule struct{}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:   make(map[AssetId]MeshAsset),
		textures: make(map[AssetId]TextureAsset),
	}
}

func (server *AssetServer) CreateMesh(vertices []Vertex, indices []uint32) AssetId {
	id := makeAssetId()
	server.meshes[id] = MeshAsset{Vertices: vertices, Indices: indices}
	return id
}

func (server *AssetServer) Mesh(id AssetId) (MeshAsset, bool) {
	m, ok := server.meshes[id]
	return m, ok
}

// ReleaseMesh forgets a mesh; the renderer drops its buffers on the next frame.
func (server *AssetServer) ReleaseMesh(id AssetId) {
	delete(server.meshes, id)
}

func (server *AssetServer) CreateTexture(name string, texels []uint8, width, height uint32, format TextureFormat) AssetId {
	id := makeAssetId()
	server.textures[id] = TextureAsset{
		Texels: texels,
		Width:  width,
		Height: height,
		Format: format,
		Name:   name,
	}
	return id
}

func (server *AssetServer) Texture(id AssetId) (TextureAsset, bool) {
	t, ok := server.textures[id]
	return t, ok
}

func (server *AssetServer) MeshCount() int    { return len(server.meshes) }
func (server *AssetServer) TextureCount() int { return len(server.textures) }

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer())
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
