package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/glbstage/internal/engine/animation"
	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
)

// EmbeddedImagePrefix marks a texture path that refers to an image stored
// inside the asset itself rather than next to it.
const EmbeddedImagePrefix = "#image/"

// EmbeddedImageRef returns the texture path for image index i of the asset.
func EmbeddedImageRef(i int) string {
	return fmt.Sprintf("%s%d", EmbeddedImagePrefix, i)
}

// FromDocument converts a decoded document into a scene graph and clips.
// Image data is not copied: textures are referenced by path only.
func FromDocument(doc *gltf.Document) (*Result, error) {
	g := scenegraph.New()

	for i, m := range doc.Meshes {
		mesh, err := convertMesh(doc, m)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		g.Meshes = append(g.Meshes, mesh)
	}

	for _, m := range doc.Materials {
		g.Materials = append(g.Materials, convertMaterial(m))
	}

	paths := texturePaths(doc)
	g.Textures = paths

	// Every node is created first so indices match the document.
	for _, n := range doc.Nodes {
		node := g.AddNode(n.Name, nil)
		applyTransform(node, n)
		if n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(g.Meshes) {
			node.Mesh = g.Meshes[*n.Mesh]
		}
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < 0 || c >= len(g.Nodes) {
				return nil, fmt.Errorf("node %d: child index %d out of range", i, c)
			}
			g.SetParent(g.Nodes[c], g.Nodes[i])
		}
	}
	pruneToScene(doc, g)
	g.CaptureRestPose()

	clips, err := convertAnimations(doc, len(g.Nodes))
	if err != nil {
		return nil, err
	}

	return &Result{Graph: g, Clips: clips, TexturePaths: paths}, nil
}

// pruneToScene keeps only the roots of the document's active scene.
func pruneToScene(doc *gltf.Document, g *scenegraph.Graph) {
	scene := 0
	if doc.Scene != nil {
		scene = *doc.Scene
	}
	if scene < 0 || scene >= len(doc.Scenes) {
		return
	}
	roots := make([]*scenegraph.Node, 0, len(doc.Scenes[scene].Nodes))
	for _, idx := range doc.Scenes[scene].Nodes {
		if idx >= 0 && idx < len(g.Nodes) && g.Nodes[idx].Parent == nil {
			roots = append(roots, g.Nodes[idx])
		}
	}
	g.Roots = roots
}

func applyTransform(node *scenegraph.Node, n *gltf.Node) {
	m := n.MatrixOrDefault()
	identity := true
	var mat mgl32.Mat4
	for i := range m {
		mat[i] = float32(m[i])
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if mat[i] != want {
			identity = false
		}
	}
	if !identity {
		node.Matrix = &mat
		return
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	node.Translation = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	node.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	node.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}

func convertMesh(doc *gltf.Document, m *gltf.Mesh) (*scenegraph.Mesh, error) {
	mesh := &scenegraph.Mesh{Name: m.Name, Bounds: scenegraph.EmptyAABB()}

	for pi, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := p.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		prim := scenegraph.Primitive{Material: scenegraph.NoIndex}
		if p.Material != nil {
			prim.Material = *p.Material
		}

		pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("primitive %d positions: %w", pi, err)
		}
		prim.Positions = pos
		for _, v := range pos {
			mesh.Bounds = mesh.Bounds.Extend(mgl32.Vec3(v))
		}

		if idx, ok := p.Attributes[gltf.NORMAL]; ok {
			if prim.Normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
				return nil, fmt.Errorf("primitive %d normals: %w", pi, err)
			}
		}
		if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
			if prim.TexCoords, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
				return nil, fmt.Errorf("primitive %d uvs: %w", pi, err)
			}
		}

		if p.Indices != nil {
			if prim.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil); err != nil {
				return nil, fmt.Errorf("primitive %d indices: %w", pi, err)
			}
		} else {
			prim.Indices = make([]uint32, len(pos))
			for i := range prim.Indices {
				prim.Indices[i] = uint32(i)
			}
		}

		mesh.Primitives = append(mesh.Primitives, prim)
	}
	return mesh, nil
}

func convertMaterial(m *gltf.Material) scenegraph.Material {
	mat := scenegraph.Material{
		Name:      m.Name,
		BaseColor: [4]float32{1, 1, 1, 1},
		Texture:   scenegraph.NoIndex,
	}
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		mat.BaseColor = [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		if pbr.BaseColorTexture != nil {
			mat.Texture = pbr.BaseColorTexture.Index
		}
	}
	return mat
}

// texturePaths resolves each texture to the path of its source image.
func texturePaths(doc *gltf.Document) []string {
	paths := make([]string, len(doc.Textures))
	for i, t := range doc.Textures {
		if t.Source == nil || *t.Source < 0 || *t.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*t.Source]
		if img.URI == "" || img.IsEmbeddedResource() {
			paths[i] = EmbeddedImageRef(*t.Source)
		} else {
			paths[i] = img.URI
		}
	}
	return paths
}

func convertAnimations(doc *gltf.Document, nodeCount int) ([]*animation.Clip, error) {
	clips := make([]*animation.Clip, 0, len(doc.Animations))
	for ai, a := range doc.Animations {
		var channels []animation.Channel
		for ci, ch := range a.Channels {
			if ch.Target.Node == nil || *ch.Target.Node < 0 || *ch.Target.Node >= nodeCount {
				continue
			}
			var path animation.Path
			switch ch.Target.Path {
			case gltf.TRSTranslation:
				path = animation.PathTranslation
			case gltf.TRSRotation:
				path = animation.PathRotation
			case gltf.TRSScale:
				path = animation.PathScale
			default:
				// Morph target weights are not animated.
				continue
			}
			if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
				return nil, fmt.Errorf("animation %d channel %d: sampler out of range", ai, ci)
			}
			s := a.Samplers[ch.Sampler]

			times, err := readFloats(doc, s.Input)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d input: %w", ai, ci, err)
			}
			values, err := readVectors(doc, s.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d output: %w", ai, ci, err)
			}

			interp := animation.InterpolationLinear
			switch s.Interpolation {
			case gltf.InterpolationStep:
				interp = animation.InterpolationStep
			case gltf.InterpolationCubicSpline:
				interp = animation.InterpolationCubicSpline
				values = splineValues(values)
			}
			if len(values) < len(times) {
				return nil, fmt.Errorf("animation %d channel %d: %d keys but %d values", ai, ci, len(times), len(values))
			}

			channels = append(channels, animation.Channel{
				Node:          *ch.Target.Node,
				Path:          path,
				Interpolation: interp,
				Times:         times,
				Values:        values,
			})
		}

		name := a.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", ai)
		}
		clips = append(clips, animation.NewClip(name, channels))
	}
	return clips, nil
}

// splineValues keeps the value of each (in-tangent, value, out-tangent) triple.
func splineValues(v [][4]float32) [][4]float32 {
	out := make([][4]float32, 0, len(v)/3)
	for i := 1; i < len(v); i += 3 {
		out = append(out, v[i])
	}
	return out
}

func readFloats(doc *gltf.Document, accessor int) ([]float32, error) {
	if accessor < 0 || accessor >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessor)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, err
	}
	f, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: unexpected key type %T", accessor, data)
	}
	return f, nil
}

func readVectors(doc *gltf.Document, accessor int) ([][4]float32, error) {
	if accessor < 0 || accessor >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessor)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, err
	}

	switch d := data.(type) {
	case [][3]float32:
		out := make([][4]float32, len(d))
		for i, v := range d {
			out[i] = [4]float32{v[0], v[1], v[2], 0}
		}
		return out, nil
	case [][4]float32:
		return d, nil
	case [][4]int8:
		return normalized(d, 127), nil
	case [][4]uint8:
		return normalized(d, 255), nil
	case [][4]int16:
		return normalized(d, 32767), nil
	case [][4]uint16:
		return normalized(d, 65535), nil
	default:
		return nil, fmt.Errorf("accessor %d: unsupported value type %T", accessor, data)
	}
}

func normalized[T int8 | uint8 | int16 | uint16](d [][4]T, max float32) [][4]float32 {
	out := make([][4]float32, len(d))
	for i, v := range d {
		for j := range v {
			f := float32(v[j]) / max
			if f < -1 {
				f = -1
			}
			out[i][j] = f
		}
	}
	return out
}
