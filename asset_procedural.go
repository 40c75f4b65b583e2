package lightlab

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CreateBoxMesh builds an axis-aligned box centered at the origin with
// per-face normals so edges shade hard.
func (server *AssetServer) CreateBoxMesh(width, height, depth float32) AssetId {
	hx, hy, hz := width/2, height/2, depth/2

	type face struct {
		normal, u, v mgl32.Vec3
	}
	faces := []face{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	half := mgl32.Vec3{hx, hy, hz}
	scale := func(a mgl32.Vec3) mgl32.Vec3 {
		return mgl32.Vec3{a.X() * half.X(), a.Y() * half.Y(), a.Z() * half.Z()}
	}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		center := scale(f.normal)
		u, v := scale(f.u), scale(f.v)
		corners := [4]struct {
			su, sv float32
			uv     mgl32.Vec2
		}{
			{-1, -1, mgl32.Vec2{0, 1}},
			{1, -1, mgl32.Vec2{1, 1}},
			{1, 1, mgl32.Vec2{1, 0}},
			{-1, 1, mgl32.Vec2{0, 0}},
		}
		for _, c := range corners {
			vertices = append(vertices, Vertex{
				Position: center.Add(u.Mul(c.su)).Add(v.Mul(c.sv)),
				Normal:   f.normal,
				UV:       c.uv,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return server.CreateMesh(vertices, indices)
}

// CreatePlaneMesh builds a horizontal quad facing +Y.
func (server *AssetServer) CreatePlaneMesh(width, depth float32) AssetId {
	hx, hz := width/2, depth/2
	n := mgl32.Vec3{0, 1, 0}
	vertices := []Vertex{
		{Position: mgl32.Vec3{-hx, 0, hz}, Normal: n, UV: mgl32.Vec2{0, 1}},
		{Position: mgl32.Vec3{hx, 0, hz}, Normal: n, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{hx, 0, -hz}, Normal: n, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{-hx, 0, -hz}, Normal: n, UV: mgl32.Vec2{0, 0}},
	}
	return server.CreateMesh(vertices, []uint32{0, 1, 2, 0, 2, 3})
}
