// Package scenegraph holds the loaded node tree of a model: transforms,
// meshes, materials and texture references.
package scenegraph

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glbstage/internal/engine/picking"
)

// NoIndex marks an absent material or texture reference.
const NoIndex = -1

// Primitive is one drawable triangle list.
type Primitive struct {
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Indices   []uint32
	Material  int
}

// Mesh is geometry shared by one or more nodes.
type Mesh struct {
	Name       string
	Bounds     AABB // local space
	Primitives []Primitive
}

// Material is the subset of PBR inputs the viewer shades with.
type Material struct {
	Name      string
	BaseColor [4]float32
	Texture   int // index into Graph.Textures, or NoIndex
}

// Node is a positioned element of the tree.
type Node struct {
	Name  string
	Index int

	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	// Matrix, when set, replaces the TRS transform. Animated nodes never use it.
	Matrix *mgl32.Mat4

	Mesh     *Mesh
	Parent   *Node
	Children []*Node

	rest restPose
}

type restPose struct {
	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3
}

// LocalMatrix returns the node transform relative to its parent.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	t := mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	r := n.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// RestTranslation returns the translation the node was loaded with.
func (n *Node) RestTranslation() mgl32.Vec3 { return n.rest.translation }

// RestRotation returns the rotation the node was loaded with.
func (n *Node) RestRotation() mgl32.Quat { return n.rest.rotation }

// RestScale returns the scale the node was loaded with.
func (n *Node) RestScale() mgl32.Vec3 { return n.rest.scale }

// Graph is a tree of nodes plus the resources they reference.
// Nodes keeps creation order, so Nodes[i].Index == i.
type Graph struct {
	Nodes     []*Node
	Roots     []*Node
	Meshes    []*Mesh
	Materials []Material

	// Textures lists texture image paths. Image data is never stored here;
	// it is resolved by path when the graph is uploaded for drawing.
	Textures []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode creates a node with an identity transform under parent, or as a
// root when parent is nil.
func (g *Graph) AddNode(name string, parent *Node) *Node {
	n := &Node{
		Name:     name,
		Index:    len(g.Nodes),
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	g.Nodes = append(g.Nodes, n)
	g.SetParent(n, parent)
	return n
}

// SetParent moves n under parent (or to the roots when parent is nil).
func (g *Graph) SetParent(n, parent *Node) {
	if n.Parent != nil {
		n.Parent.Children = removeNode(n.Parent.Children, n)
	} else {
		g.Roots = removeNode(g.Roots, n)
	}
	n.Parent = parent
	if parent != nil {
		parent.Children = append(parent.Children, n)
	} else {
		g.Roots = append(g.Roots, n)
	}
}

func removeNode(list []*Node, n *Node) []*Node {
	for i, c := range list {
		if c == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// CaptureRestPose records every node's current TRS as its rest pose.
// Loaders call this once the tree is complete.
func (g *Graph) CaptureRestPose() {
	for _, n := range g.Nodes {
		n.rest = restPose{n.Translation, n.Rotation, n.Scale}
	}
}

// Traverse walks the tree depth first, passing each node's world matrix.
// Returning false from fn skips the node's children.
func (g *Graph) Traverse(fn func(n *Node, world mgl32.Mat4) bool) {
	var walk func(n *Node, parent mgl32.Mat4)
	walk = func(n *Node, parent mgl32.Mat4) {
		world := parent.Mul4(n.LocalMatrix())
		if !fn(n, world) {
			return
		}
		for _, c := range n.Children {
			walk(c, world)
		}
	}
	for _, r := range g.Roots {
		walk(r, mgl32.Ident4())
	}
}

// WorldMatrix returns the transform from n's space to world space.
func (g *Graph) WorldMatrix(n *Node) mgl32.Mat4 {
	m := mgl32.Ident4()
	for cur := n; cur != nil; cur = cur.Parent {
		m = cur.LocalMatrix().Mul4(m)
	}
	return m
}

// FindByName returns the first node with the given name, or nil.
func (g *Graph) FindByName(name string) *Node {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Bounds returns the world-space box around every mesh in the tree.
// The box is empty when the graph has no geometry.
func (g *Graph) Bounds() AABB {
	box := EmptyAABB()
	g.Traverse(func(n *Node, world mgl32.Mat4) bool {
		if n.Mesh != nil {
			box = box.Union(n.Mesh.Bounds.Transform(world))
		}
		return true
	})
	return box
}

// BoundingVolume implements HasBoundingVolume.
func (g *Graph) BoundingVolume() (BoundingVolume, bool) {
	box := g.Bounds()
	if box.IsEmpty() {
		return BoundingVolume{}, false
	}
	return box.Volume(), true
}

// Hit is one ray intersection with a mesh node.
type Hit struct {
	Node     *Node
	Distance float32
	Point    mgl32.Vec3
}

// RayTest intersects r with every mesh node and returns the hits ordered
// nearest first. Meshes with triangles are tested per triangle; meshes that
// only carry bounds are tested against their box.
func (g *Graph) RayTest(r picking.Ray) []Hit {
	var hits []Hit
	g.Traverse(func(n *Node, world mgl32.Mat4) bool {
		if n.Mesh == nil {
			return true
		}
		inv := world.Inv()
		// The local direction is left unnormalised so that t means the same
		// distance in both spaces.
		local := picking.Ray{
			Origin:    mgl32.TransformCoordinate(r.Origin, inv),
			Direction: mgl32.TransformNormal(r.Direction, inv),
		}
		if _, ok := local.IntersectAABB(n.Mesh.Bounds.Min, n.Mesh.Bounds.Max); !ok {
			return true
		}
		if t, ok := intersectMesh(local, n.Mesh); ok {
			hits = append(hits, Hit{Node: n, Distance: t, Point: r.At(t)})
		}
		return true
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func intersectMesh(r picking.Ray, m *Mesh) (float32, bool) {
	hasGeometry := false
	best := float32(0)
	found := false
	for _, p := range m.Primitives {
		if len(p.Positions) == 0 {
			continue
		}
		hasGeometry = true
		for i := 0; i+2 < len(p.Indices); i += 3 {
			a, b, c := p.Indices[i], p.Indices[i+1], p.Indices[i+2]
			if int(a) >= len(p.Positions) || int(b) >= len(p.Positions) || int(c) >= len(p.Positions) {
				continue
			}
			t, ok := r.IntersectTriangle(p.Positions[a], p.Positions[b], p.Positions[c])
			if ok && (!found || t < best) {
				best, found = t, true
			}
		}
	}
	if !hasGeometry {
		return r.IntersectAABB(m.Bounds.Min, m.Bounds.Max)
	}
	return best, found
}
