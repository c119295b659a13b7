// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultBBoxPadding is the default padding for selection boxes, as a
// fraction of the box diagonal.
const DefaultBBoxPadding = 0.01

// BoxEdges creates line vertices for a wireframe box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func BoxEdges(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return []float32{
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// BoxLines creates wireframe vertices for a world-space box grown on every
// side by padding times its diagonal. Empty boxes yield no vertices.
func BoxLines(b scenegraph.AABB, padding float32) []float32 {
	if b.IsEmpty() {
		return nil
	}
	p := b.Size().Len() * padding
	return BoxEdges(
		b.Min.X()-p, b.Min.Y()-p, b.Min.Z()-p,
		b.Max.X()+p, b.Max.Y()+p, b.Max.Z()+p,
	)
}

// NodeBoxLines creates the wireframe of one node's mesh bounds in world space.
func NodeBoxLines(g *scenegraph.Graph, n *scenegraph.Node, padding float32) []float32 {
	if n == nil || n.Mesh == nil {
		return nil
	}
	return BoxLines(n.Mesh.Bounds.Transform(g.WorldMatrix(n)), padding)
}
