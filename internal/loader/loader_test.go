package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/glbstage/internal/engine/animation"
)

// writeTestAsset saves a GLB with a root node "Scene", two quad children
// named Base001 and Base002 and one translation clip "Bob" on Base001.
func writeTestAsset(t *testing.T) string {
	t.Helper()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{
		{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
	})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})

	doc.Images = []*gltf.Image{{URI: "textures/skin.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		Name: "Skin",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "Quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
		}},
	}}

	root := &gltf.Node{Name: "Scene", Children: []int{1, 2}}
	left := &gltf.Node{Name: "Base001", Mesh: gltf.Index(0)}
	left.Translation[0] = -2
	right := &gltf.Node{Name: "Base002", Mesh: gltf.Index(0)}
	right.Translation[0] = 2
	doc.Nodes = []*gltf.Node{root, left, right}
	doc.Scenes[0].Nodes = []int{0}

	times := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1, 2})
	values := modeler.WriteAccessor(doc, gltf.TargetNone, [][3]float32{{-2, 0, 0}, {-2, 1, 0}, {-2, 0, 0}})
	doc.Animations = []*gltf.Animation{{
		Name:     "Bob",
		Samplers: []*gltf.AnimationSampler{{Input: times, Output: values}},
		Channels: []*gltf.AnimationChannel{{
			Target: gltf.AnimationChannelTarget{Node: gltf.Index(1), Path: gltf.TRSTranslation},
		}},
	}}

	path := filepath.Join(t.TempDir(), "asset.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestGLBLoad(t *testing.T) {
	path := writeTestAsset(t)

	var calls int
	var last, total int64
	res, err := GLB{}.Load(context.Background(), path, func(l, tt int64) {
		calls++
		last, total = l, tt
	})
	require.NoError(t, err)

	g := res.Graph
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Roots, 1)
	assert.Equal(t, "Scene", g.Roots[0].Name)
	assert.Len(t, g.Roots[0].Children, 2)

	base := g.FindByName("Base001")
	require.NotNil(t, base)
	require.NotNil(t, base.Mesh)
	assert.InDelta(t, -2, base.Translation.X(), 1e-6)
	assert.InDelta(t, -2, base.RestTranslation().X(), 1e-6)
	assert.Len(t, base.Mesh.Primitives[0].Indices, 6)
	assert.Len(t, base.Mesh.Primitives[0].TexCoords, 4)
	assert.Equal(t, 0, base.Mesh.Primitives[0].Material)

	box := g.Bounds()
	assert.InDelta(t, -3, box.Min.X(), 1e-5)
	assert.InDelta(t, 3, box.Max.X(), 1e-5)

	assert.Equal(t, []string{"textures/skin.png"}, res.TexturePaths)
	require.Len(t, g.Materials, 1)
	assert.Equal(t, 0, g.Materials[0].Texture)

	require.Len(t, res.Clips, 1)
	clip := res.Clips[0]
	assert.Equal(t, "Bob", clip.Name)
	assert.InDelta(t, 2, clip.Duration, 1e-6)
	require.Len(t, clip.Channels, 1)
	assert.Equal(t, 1, clip.Channels[0].Node)
	assert.Equal(t, animation.PathTranslation, clip.Channels[0].Path)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, calls)
	assert.Equal(t, st.Size(), total)
	assert.Equal(t, total, last)
}

func TestGLBLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.glb")
	_, err := GLB{}.Load(context.Background(), path, nil)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, path, loadErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGLBLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.glb")
	require.NoError(t, os.WriteFile(path, []byte("glTF but not really"), 0o644))

	_, err := GLB{}.Load(context.Background(), path, nil)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestGLBLoadCancelled(t *testing.T) {
	path := writeTestAsset(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GLB{}.Load(ctx, path, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbeddedTexturePaths(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Images = []*gltf.Image{{MimeType: "image/png", BufferView: gltf.Index(0)}, {URI: "a.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(1)}, {Source: gltf.Index(0)}, {}}

	assert.Equal(t, []string{"a.png", "#image/0", ""}, texturePaths(doc))
}

func TestSplineValues(t *testing.T) {
	in := [][4]float32{{0}, {1}, {0}, {0}, {2}, {0}}
	assert.Equal(t, [][4]float32{{1}, {2}}, splineValues(in))
}

type stubLoader struct {
	res *Result
	err error
}

func (s stubLoader) Load(context.Context, string, ProgressFunc) (*Result, error) {
	return s.res, s.err
}

func TestAsyncDeliversOnce(t *testing.T) {
	want := &Result{}
	ch := Async(context.Background(), stubLoader{res: want}, "x.glb", nil)

	out, ok := <-ch
	require.True(t, ok)
	assert.Same(t, want, out.Result)
	assert.NoError(t, out.Err)

	_, ok = <-ch
	assert.False(t, ok, "channel closes after the single outcome")
}

func TestAsyncDeliversError(t *testing.T) {
	boom := errors.New("boom")
	out := <-Async(context.Background(), stubLoader{err: boom}, "x.glb", nil)
	assert.Nil(t, out.Result)
	assert.ErrorIs(t, out.Err, boom)
}

func TestProgressPercent(t *testing.T) {
	var p Progress
	assert.Equal(t, -1, p.Percent())

	fn := p.Func()
	fn(50, 200)
	assert.Equal(t, 25, p.Percent())
	fn(200, 200)
	assert.Equal(t, 100, p.Percent())
}
