// Package renderer draws a loaded scene graph with OpenGL.
package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/engine/debug"
	"github.com/Faultbox/glbstage/internal/engine/lighting"
	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
	"github.com/Faultbox/glbstage/internal/engine/shader"
	"github.com/Faultbox/glbstage/internal/logger"
	"github.com/Faultbox/glbstage/internal/viewer"
)

// TextureSource resolves texture paths to images. Unresolved entries are nil.
type TextureSource interface {
	ResolveAll(paths []string) []*image.NRGBA
}

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background [3]float32
	Lights     lighting.Rig
	// Multisample enables MSAA when the window has a multisampled buffer.
	Multisample bool
}

// gpuPrimitive is one uploaded triangle list.
type gpuPrimitive struct {
	vao, vbo, ebo uint32
	count         int32
	material      int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config   Config
	textures TextureSource

	meshProgram *shader.Program
	lineProgram *shader.Program

	// Scene resources, rebuilt when the session's graph changes.
	uploaded  *scenegraph.Graph
	meshes    map[*scenegraph.Mesh][]gpuPrimitive
	glTexture []uint32

	lineVAO uint32
	lineVBO uint32

	// ShowBounds draws the scene box and the highlighted node's box.
	ShowBounds bool
	// Highlight is the node under the pointer, if any.
	Highlight *scenegraph.Node
}

var _ viewer.Drawer = (*Renderer)(nil)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, textures TextureSource) (*Renderer, error) {
	log := logger.Named("renderer")

	r := &Renderer{
		config:   cfg,
		textures: textures,
		meshes:   make(map[*scenegraph.Mesh][]gpuPrimitive),
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	if cfg.Multisample {
		gl.Enable(gl.MULTISAMPLE)
	}
	bg := cfg.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.meshProgram, err = shader.NewProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh shader: %w", err)
	}
	r.lineProgram, err = shader.NewProgram(lineVertexShader, lineFragmentShader)
	if err != nil {
		r.meshProgram.Delete()
		return nil, fmt.Errorf("failed to create line shader: %w", err)
	}

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Named("renderer").Info("closing renderer")
	r.releaseScene()
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	if r.meshProgram != nil {
		r.meshProgram.Delete()
	}
	if r.lineProgram != nil {
		r.lineProgram.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Named("renderer").Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Draw renders the session's scene from its camera. Before a scene is
// attached only the background is cleared.
func (r *Renderer) Draw(s *viewer.Session) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	g := s.Graph()
	if g == nil {
		return
	}
	if g != r.uploaded {
		r.upload(g)
	}

	view := s.Camera.ViewMatrix()
	proj := s.Camera.ProjectionMatrix()

	p := r.meshProgram
	p.Use()
	p.SetMat4("uView", view)
	p.SetMat4("uProjection", proj)
	r.applyLights(p)
	p.SetInt("uTexture", 0)

	g.Traverse(func(n *scenegraph.Node, world mgl32.Mat4) bool {
		if n.Mesh == nil {
			return true
		}
		p.SetMat4("uModel", world)
		p.SetMat3("uNormalMatrix", normalMatrix(world))
		for _, prim := range r.meshes[n.Mesh] {
			r.bindMaterial(g, prim.material)
			gl.BindVertexArray(prim.vao)
			gl.DrawElements(gl.TRIANGLES, prim.count, gl.UNSIGNED_INT, nil)
		}
		return true
	})
	gl.BindVertexArray(0)

	if r.ShowBounds {
		vp := proj.Mul4(view)
		r.drawLines(vp, debug.BoxLines(g.Bounds(), debug.DefaultBBoxPadding), mgl32.Vec3{1, 1, 0})
		r.drawLines(vp, debug.NodeBoxLines(g, r.Highlight, debug.DefaultBBoxPadding), mgl32.Vec3{0, 1, 1})
	}
}

func (r *Renderer) applyLights(p *shader.Program) {
	rig := r.config.Lights
	p.SetInt("uLightCount", int32(len(rig.Directional)))
	for i, d := range rig.Directional {
		p.SetVec3(fmt.Sprintf("uLightDir[%d]", i), d.Direction)
		p.SetVec3(fmt.Sprintf("uLightColor[%d]", i), d.Color)
	}
	p.SetVec3("uAmbient", rig.Ambient)
	p.SetVec3("uSky", rig.Sky)
	p.SetVec3("uGround", rig.Ground)
}

func (r *Renderer) bindMaterial(g *scenegraph.Graph, idx int) {
	p := r.meshProgram
	color := mgl32.Vec4{1, 1, 1, 1}
	tex := uint32(0)
	if idx >= 0 && idx < len(g.Materials) {
		m := g.Materials[idx]
		color = m.BaseColor
		if m.Texture >= 0 && m.Texture < len(r.glTexture) {
			tex = r.glTexture[m.Texture]
		}
	}
	p.SetVec4("uBaseColor", color)
	if tex != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		p.SetInt("uHasTexture", 1)
	} else {
		p.SetInt("uHasTexture", 0)
	}
}

func (r *Renderer) drawLines(viewProj mgl32.Mat4, verts []float32, color mgl32.Vec3) {
	if len(verts) == 0 {
		return
	}
	p := r.lineProgram
	p.Use()
	p.SetMat4("uViewProjection", viewProj)
	p.SetVec3("uColor", color)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(verts)/3))
	gl.BindVertexArray(0)
}

// upload moves every mesh and texture of g to the GPU.
func (r *Renderer) upload(g *scenegraph.Graph) {
	log := logger.Named("renderer")
	r.releaseScene()

	for _, m := range g.Meshes {
		prims := make([]gpuPrimitive, 0, len(m.Primitives))
		for _, p := range m.Primitives {
			if len(p.Positions) == 0 || len(p.Indices) == 0 {
				continue
			}
			prims = append(prims, uploadPrimitive(p))
		}
		r.meshes[m] = prims
	}

	if r.textures != nil && len(g.Textures) > 0 {
		images := r.textures.ResolveAll(g.Textures)
		r.glTexture = make([]uint32, len(images))
		for i, img := range images {
			if img != nil {
				r.glTexture[i] = uploadTexture(img)
			}
		}
	}

	r.uploaded = g
	log.Info("scene uploaded",
		zap.Int("meshes", len(r.meshes)),
		zap.Int("textures", len(r.glTexture)))
}

func (r *Renderer) releaseScene() {
	for _, prims := range r.meshes {
		for _, p := range prims {
			gl.DeleteVertexArrays(1, &p.vao)
			gl.DeleteBuffers(1, &p.vbo)
			gl.DeleteBuffers(1, &p.ebo)
		}
	}
	r.meshes = make(map[*scenegraph.Mesh][]gpuPrimitive)
	for _, t := range r.glTexture {
		if t != 0 {
			gl.DeleteTextures(1, &t)
		}
	}
	r.glTexture = nil
	r.uploaded = nil
}

func uploadPrimitive(p scenegraph.Primitive) gpuPrimitive {
	verts := interleave(p)
	gp := gpuPrimitive{count: int32(len(p.Indices)), material: p.Material}

	gl.GenVertexArrays(1, &gp.vao)
	gl.BindVertexArray(gp.vao)

	gl.GenBuffers(1, &gp.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gp.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)

	gl.GenBuffers(1, &gp.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gp.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(p.Indices)*4, gl.Ptr(p.Indices), gl.STATIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	// Normal attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	// UV attribute (location = 2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	return gp
}

func uploadTexture(img *image.NRGBA) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	b := img.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// ReadPixels returns the current back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
