package lightlab

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetServerModule(t *testing.T) {
	app := newTestApp(AssetServerModule{})
	server := Resource[AssetServer](app)
	require.NotNil(t, server)
	assert.Zero(t, server.MeshCount())
}

func TestAssetServerMeshes(t *testing.T) {
	server := NewAssetServer()
	a := server.CreateMesh([]Vertex{{}, {}, {}}, []uint32{0, 1, 2})
	b := server.CreateMesh(nil, nil)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, server.MeshCount())

	mesh, ok := server.Mesh(a)
	require.True(t, ok)
	assert.Len(t, mesh.Vertices, 3)

	server.ReleaseMesh(a)
	_, ok = server.Mesh(a)
	assert.False(t, ok)
	assert.Equal(t, 1, server.MeshCount())
}

func TestAssetServerTextures(t *testing.T) {
	server := NewAssetServer()
	id := server.CreateTexture("white", []uint8{255, 255, 255, 255}, 1, 1, TextureFormatRGBA8UnormSrgb)

	tex, ok := server.Texture(id)
	require.True(t, ok)
	assert.Equal(t, "white", tex.Name)
	assert.Equal(t, uint32(1), tex.Width)
	assert.Equal(t, TextureFormatRGBA8UnormSrgb, tex.Format)
	assert.Equal(t, 1, server.TextureCount())

	_, ok = server.Texture("missing")
	assert.False(t, ok)
}

func TestCreateBoxMesh(t *testing.T) {
	server := NewAssetServer()
	mesh, ok := server.Mesh(server.CreateBoxMesh(2, 4, 6))
	require.True(t, ok)
	require.Len(t, mesh.Vertices, 24)
	require.Len(t, mesh.Indices, 36)

	for _, v := range mesh.Vertices {
		p := v.Position
		assert.InDelta(t, 1, abs32(p.X()), 1e-6)
		assert.InDelta(t, 2, abs32(p.Y()), 1e-6)
		assert.InDelta(t, 3, abs32(p.Z()), 1e-6)
		// Each vertex sits on the face its normal points out of.
		assert.Greater(t, p.Dot(v.Normal), float32(0))
	}

	// Triangles wind counter-clockwise seen from outside.
	for i := 0; i < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]]
		b := mesh.Vertices[mesh.Indices[i+1]]
		c := mesh.Vertices[mesh.Indices[i+2]]
		n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		assert.Greater(t, n.Dot(a.Normal), float32(0), "triangle %d", i/3)
	}
}

func TestCreatePlaneMesh(t *testing.T) {
	server := NewAssetServer()
	mesh, ok := server.Mesh(server.CreatePlaneMesh(10, 20))
	require.True(t, ok)
	for _, v := range mesh.Vertices {
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, v.Normal)
		assert.Zero(t, v.Position.Y())
		assert.InDelta(t, 5, abs32(v.Position.X()), 1e-6)
		assert.InDelta(t, 10, abs32(v.Position.Z()), 1e-6)
	}
	for i := 0; i < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]].Position
		b := mesh.Vertices[mesh.Indices[i+1]].Position
		c := mesh.Vertices[mesh.Indices[i+2]].Position
		assert.Greater(t, b.Sub(a).Cross(c.Sub(a)).Y(), float32(0))
	}
}
