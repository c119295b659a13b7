package worker

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glbstage/internal/engine/animation"
	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
	"github.com/Faultbox/glbstage/internal/loader"
)

type wireModel struct {
	Nodes     []wireNode     `json:"nodes"`
	Roots     []int          `json:"roots"`
	Meshes    []wireMesh     `json:"meshes,omitempty"`
	Materials []wireMaterial `json:"materials,omitempty"`
	Textures  []string       `json:"textures,omitempty"`
	Clips     []wireClip     `json:"clips,omitempty"`
}

type wireNode struct {
	Name        string       `json:"name"`
	Translation [3]float32   `json:"t"`
	Rotation    [4]float32   `json:"r"` // x, y, z, w
	Scale       [3]float32   `json:"s"`
	Matrix      *[16]float32 `json:"m,omitempty"`
	Mesh        int          `json:"mesh"`
	Children    []int        `json:"children,omitempty"`
}

type wireMesh struct {
	Name       string          `json:"name"`
	Min        [3]float32      `json:"min"`
	Max        [3]float32      `json:"max"`
	Primitives []wirePrimitive `json:"primitives,omitempty"`
}

type wirePrimitive struct {
	Positions [][3]float32 `json:"positions"`
	Normals   [][3]float32 `json:"normals,omitempty"`
	TexCoords [][2]float32 `json:"uvs,omitempty"`
	Indices   []uint32     `json:"indices"`
	Material  int          `json:"material"`
}

type wireMaterial struct {
	Name      string     `json:"name"`
	BaseColor [4]float32 `json:"color"`
	Texture   int        `json:"texture"`
}

type wireClip struct {
	Name     string        `json:"name"`
	Duration float32       `json:"duration"`
	Channels []wireChannel `json:"channels"`
}

type wireChannel struct {
	Node          int          `json:"node"`
	Path          int          `json:"path"`
	Interpolation int          `json:"interp"`
	Times         []float32    `json:"times"`
	Values        [][4]float32 `json:"values"`
}

// EncodeModel serializes a loaded graph and its clips. Texture image data is
// never included; only texture paths travel.
func EncodeModel(res *loader.Result) (json.RawMessage, error) {
	g := res.Graph
	w := wireModel{
		Nodes:    make([]wireNode, len(g.Nodes)),
		Roots:    make([]int, len(g.Roots)),
		Textures: res.TexturePaths,
	}

	meshIndex := make(map[*scenegraph.Mesh]int, len(g.Meshes))
	for i, m := range g.Meshes {
		meshIndex[m] = i
		wm := wireMesh{Name: m.Name, Min: m.Bounds.Min, Max: m.Bounds.Max}
		for _, p := range m.Primitives {
			wm.Primitives = append(wm.Primitives, wirePrimitive(p))
		}
		w.Meshes = append(w.Meshes, wm)
	}

	for i, n := range g.Nodes {
		wn := wireNode{
			Name:        n.Name,
			Translation: n.Translation,
			Rotation:    [4]float32{n.Rotation.V[0], n.Rotation.V[1], n.Rotation.V[2], n.Rotation.W},
			Scale:       n.Scale,
			Mesh:        scenegraph.NoIndex,
		}
		if n.Matrix != nil {
			m := [16]float32(*n.Matrix)
			wn.Matrix = &m
		}
		if n.Mesh != nil {
			idx, ok := meshIndex[n.Mesh]
			if !ok {
				return nil, fmt.Errorf("node %q references a mesh outside the graph", n.Name)
			}
			wn.Mesh = idx
		}
		for _, c := range n.Children {
			wn.Children = append(wn.Children, c.Index)
		}
		w.Nodes[i] = wn
	}
	for i, r := range g.Roots {
		w.Roots[i] = r.Index
	}

	for _, m := range g.Materials {
		w.Materials = append(w.Materials, wireMaterial(m))
	}

	for _, c := range res.Clips {
		wc := wireClip{Name: c.Name, Duration: c.Duration}
		for _, ch := range c.Channels {
			wc.Channels = append(wc.Channels, wireChannel{
				Node:          ch.Node,
				Path:          int(ch.Path),
				Interpolation: int(ch.Interpolation),
				Times:         ch.Times,
				Values:        ch.Values,
			})
		}
		w.Clips = append(w.Clips, wc)
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	return data, nil
}

// DecodeModel rebuilds a graph and clips from EncodeModel output.
func DecodeModel(data json.RawMessage) (*loader.Result, error) {
	var w wireModel
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}

	g := scenegraph.New()
	for _, wm := range w.Meshes {
		m := &scenegraph.Mesh{Name: wm.Name, Bounds: scenegraph.AABB{Min: wm.Min, Max: wm.Max}}
		for _, p := range wm.Primitives {
			m.Primitives = append(m.Primitives, scenegraph.Primitive(p))
		}
		g.Meshes = append(g.Meshes, m)
	}
	for _, wm := range w.Materials {
		g.Materials = append(g.Materials, scenegraph.Material(wm))
	}
	g.Textures = w.Textures

	for i, wn := range w.Nodes {
		n := g.AddNode(wn.Name, nil)
		n.Translation = wn.Translation
		n.Rotation = mgl32.Quat{W: wn.Rotation[3], V: mgl32.Vec3{wn.Rotation[0], wn.Rotation[1], wn.Rotation[2]}}
		n.Scale = wn.Scale
		if wn.Matrix != nil {
			m := mgl32.Mat4(*wn.Matrix)
			n.Matrix = &m
		}
		if wn.Mesh != scenegraph.NoIndex {
			if wn.Mesh < 0 || wn.Mesh >= len(g.Meshes) {
				return nil, fmt.Errorf("decoding model: node %d mesh %d out of range", i, wn.Mesh)
			}
			n.Mesh = g.Meshes[wn.Mesh]
		}
	}
	for i, wn := range w.Nodes {
		for _, c := range wn.Children {
			if c < 0 || c >= len(g.Nodes) || c == i {
				return nil, fmt.Errorf("decoding model: node %d child %d out of range", i, c)
			}
			g.SetParent(g.Nodes[c], g.Nodes[i])
		}
	}

	roots := make([]*scenegraph.Node, 0, len(w.Roots))
	for _, r := range w.Roots {
		if r < 0 || r >= len(g.Nodes) || g.Nodes[r].Parent != nil {
			return nil, fmt.Errorf("decoding model: invalid root %d", r)
		}
		roots = append(roots, g.Nodes[r])
	}
	g.Roots = roots
	g.CaptureRestPose()

	clips := make([]*animation.Clip, 0, len(w.Clips))
	for _, wc := range w.Clips {
		c := &animation.Clip{Name: wc.Name, Duration: wc.Duration}
		for _, ch := range wc.Channels {
			c.Channels = append(c.Channels, animation.Channel{
				Node:          ch.Node,
				Path:          animation.Path(ch.Path),
				Interpolation: animation.Interpolation(ch.Interpolation),
				Times:         ch.Times,
				Values:        ch.Values,
			})
		}
		clips = append(clips, c)
	}

	return &loader.Result{Graph: g, Clips: clips, TexturePaths: w.Textures}, nil
}
