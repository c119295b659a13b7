// Package camera provides the perspective camera, auto-framing of a bounding
// volume and orbit controls.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Positionable is anything with a world-space position.
type Positionable interface {
	Position() mgl32.Vec3
	SetPosition(p mgl32.Vec3)
}

// Framable is a camera that Frame can reposition.
type Framable interface {
	Positionable
	FOV() float32 // vertical, degrees
	SetClipPlanes(near, far float32)
	LookAt(target mgl32.Vec3)
}

// PerspectiveCamera is a camera pose plus projection parameters.
type PerspectiveCamera struct {
	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32 // vertical, degrees
	aspect float32
	near   float32
	far    float32
}

var _ Framable = (*PerspectiveCamera)(nil)

// New creates a camera at the origin looking down -Z.
func New(fov, aspect, near, far float32) *PerspectiveCamera {
	return &PerspectiveCamera{
		target: mgl32.Vec3{0, 0, -1},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    fov,
		aspect: aspect,
		near:   near,
		far:    far,
	}
}

func (c *PerspectiveCamera) Position() mgl32.Vec3     { return c.position }
func (c *PerspectiveCamera) SetPosition(p mgl32.Vec3) { c.position = p }
func (c *PerspectiveCamera) Target() mgl32.Vec3       { return c.target }
func (c *PerspectiveCamera) FOV() float32             { return c.fov }
func (c *PerspectiveCamera) Aspect() float32          { return c.aspect }

// ClipPlanes returns the near and far plane distances.
func (c *PerspectiveCamera) ClipPlanes() (near, far float32) {
	return c.near, c.far
}

func (c *PerspectiveCamera) SetClipPlanes(near, far float32) {
	c.near, c.far = near, far
}

// LookAt orients the camera towards target.
func (c *PerspectiveCamera) LookAt(target mgl32.Vec3) {
	c.target = target
}

// SetAspect updates the projection after a viewport resize.
func (c *PerspectiveCamera) SetAspect(width, height int) {
	if height <= 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

// ViewMatrix returns the world-to-camera transform.
func (c *PerspectiveCamera) ViewMatrix() mgl32.Mat4 {
	up := c.up
	// Looking straight up or down makes the default up vector degenerate.
	if fwd := c.target.Sub(c.position); fwd.Len() > 0 && fwd.Normalize().Cross(up).Len() < 1e-6 {
		up = mgl32.Vec3{0, 0, -1}
	}
	return mgl32.LookAtV(c.position, c.target, up)
}

// ProjectionMatrix returns the perspective projection.
func (c *PerspectiveCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
}

// ViewProjection returns projection * view.
func (c *PerspectiveCamera) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}
