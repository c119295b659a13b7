package camera

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitControls orbits a camera around a target point.
type OrbitControls struct {
	cam Positionable

	// Target is the point the camera orbits and looks at.
	Target mgl32.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from target
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// Damping eases motion out over several updates instead of applying it at once.
	Damping       bool
	DampingFactor float32

	// Pending motion not yet applied.
	deltaYaw   float32
	deltaPitch float32
	deltaZoom  float32

	changed bool
}

// NewOrbitControls creates controls with default settings.
func NewOrbitControls() *OrbitControls {
	return &OrbitControls{
		Distance:        10.0,
		MinDistance:     0.001,
		MaxDistance:     math.MaxFloat32,
		MinPitch:        -1.55,
		MaxPitch:        1.55,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		DampingFactor:   0.05,
	}
}

// Attach binds the controls to cam, deriving the orbit from the camera's
// current position around target.
func (c *OrbitControls) Attach(cam Positionable, target mgl32.Vec3) {
	c.cam = cam
	c.Target = target

	offset := cam.Position().Sub(target)
	c.Distance = clamp(offset.Len(), c.MinDistance, c.MaxDistance)
	if d := offset.Len(); d > 0 {
		c.RotationX = clamp(math32.Asin(clamp(offset.Y()/d, -1, 1)), c.MinPitch, c.MaxPitch)
		c.RotationY = math32.Atan2(offset.X(), offset.Z())
	}
	c.deltaYaw, c.deltaPitch, c.deltaZoom = 0, 0, 0
}

// Attached reports whether a camera is bound.
func (c *OrbitControls) Attached() bool {
	return c.cam != nil
}

// Position returns the orbit position in world space.
func (c *OrbitControls) Position() mgl32.Vec3 {
	cosX := math32.Cos(c.RotationX)
	return mgl32.Vec3{
		c.Target.X() + c.Distance*cosX*math32.Sin(c.RotationY),
		c.Target.Y() + c.Distance*math32.Sin(c.RotationX),
		c.Target.Z() + c.Distance*cosX*math32.Cos(c.RotationY),
	}
}

// BeginInteraction marks the start of a pointer gesture and clears Changed.
func (c *OrbitControls) BeginInteraction() {
	c.changed = false
}

// Changed reports whether the view moved since the last BeginInteraction.
func (c *OrbitControls) Changed() bool {
	return c.changed
}

// HandleDrag queues a rotation from a mouse drag delta in pixels.
func (c *OrbitControls) HandleDrag(deltaX, deltaY float32) {
	if deltaX == 0 && deltaY == 0 {
		return
	}
	c.deltaYaw -= deltaX * c.DragSensitivity
	c.deltaPitch += deltaY * c.DragSensitivity
	c.changed = true
}

// HandleZoom queues a zoom from a scroll wheel delta. Positive zooms in.
func (c *OrbitControls) HandleZoom(delta float32) {
	if delta == 0 {
		return
	}
	c.deltaZoom += delta * c.ZoomSensitivity
	c.changed = true
}

// Update applies pending motion and writes the pose to the attached camera.
func (c *OrbitControls) Update() {
	if c.cam == nil {
		return
	}

	f := float32(1)
	if c.Damping && c.DampingFactor > 0 && c.DampingFactor < 1 {
		f = c.DampingFactor
	}

	c.RotationY += c.deltaYaw * f
	c.RotationX = clamp(c.RotationX+c.deltaPitch*f, c.MinPitch, c.MaxPitch)
	c.Distance = clamp(c.Distance-c.deltaZoom*f*c.Distance, c.MinDistance, c.MaxDistance)

	if f < 1 {
		c.deltaYaw *= 1 - f
		c.deltaPitch *= 1 - f
		c.deltaZoom *= 1 - f
	} else {
		c.deltaYaw, c.deltaPitch, c.deltaZoom = 0, 0, 0
	}

	c.cam.SetPosition(c.Position())
	if la, ok := c.cam.(interface{ LookAt(mgl32.Vec3) }); ok {
		la.LookAt(c.Target)
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
