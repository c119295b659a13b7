package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
)

// floatsPerVertex is position (3) + normal (3) + uv (2).
const floatsPerVertex = 8

// interleave packs a primitive into the vertex layout of the mesh shader.
// Missing normals are computed from the triangles; missing UVs are zero.
func interleave(p scenegraph.Primitive) []float32 {
	normals := p.Normals
	if len(normals) != len(p.Positions) {
		normals = computeNormals(p.Positions, p.Indices)
	}

	out := make([]float32, 0, len(p.Positions)*floatsPerVertex)
	for i, pos := range p.Positions {
		var uv [2]float32
		if i < len(p.TexCoords) {
			uv = p.TexCoords[i]
		}
		n := normals[i]
		out = append(out, pos[0], pos[1], pos[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// computeNormals returns area-weighted smooth vertex normals.
func computeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	acc := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		pa, pb, pc := mgl32.Vec3(positions[a]), mgl32.Vec3(positions[b]), mgl32.Vec3(positions[c])
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}

	out := make([][3]float32, len(positions))
	for i, n := range acc {
		if n.Len() > 0 {
			out[i] = n.Normalize()
		} else {
			out[i] = [3]float32{0, 1, 0}
		}
	}
	return out
}

// normalMatrix returns the inverse transpose of the upper 3x3 of model.
func normalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	m := model.Mat3()
	if m.Det() == 0 {
		return mgl32.Ident3()
	}
	return m.Inv().Transpose()
}
