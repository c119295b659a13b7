package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestOrbitAttachPreservesPose(t *testing.T) {
	cam := New(75, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{3, 4, 12})

	c := NewOrbitControls()
	c.Attach(cam, mgl32.Vec3{})
	assert.True(t, c.Attached())
	assert.InDelta(t, 13, c.Distance, 1e-4)

	c.Update()
	assert.True(t, cam.Position().ApproxEqualThreshold(mgl32.Vec3{3, 4, 12}, 1e-4), "got %v", cam.Position())
}

func TestOrbitDragRotates(t *testing.T) {
	cam := New(75, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})

	c := NewOrbitControls()
	c.Attach(cam, mgl32.Vec3{})
	c.HandleDrag(100, 0)
	c.Update()

	pos := cam.Position()
	assert.InDelta(t, 10, pos.Len(), 1e-4, "drag keeps the distance")
	assert.Less(t, pos.X(), float32(0), "dragging right swings the camera left")
	assert.Equal(t, mgl32.Vec3{}, cam.Target())
}

func TestOrbitZoomClamps(t *testing.T) {
	cam := New(75, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})

	c := NewOrbitControls()
	c.MinDistance = 5
	c.MaxDistance = 20
	c.Attach(cam, mgl32.Vec3{})

	c.HandleZoom(50)
	c.Update()
	assert.InDelta(t, 5, c.Distance, 1e-5)

	c.HandleZoom(-500)
	c.Update()
	assert.InDelta(t, 20, c.Distance, 1e-5)
}

func TestOrbitPitchClamps(t *testing.T) {
	cam := New(75, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})

	c := NewOrbitControls()
	c.Attach(cam, mgl32.Vec3{})
	c.HandleDrag(0, 10000)
	c.Update()
	assert.InDelta(t, c.MaxPitch, c.RotationX, 1e-6)
}

func TestOrbitDampingEasesOut(t *testing.T) {
	cam := New(75, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})

	c := NewOrbitControls()
	c.Damping = true
	c.DampingFactor = 0.5
	c.Attach(cam, mgl32.Vec3{})

	c.HandleDrag(-200, 0) // yaw +1 rad in total
	c.Update()
	assert.InDelta(t, 0.5, c.RotationY, 1e-5)
	c.Update()
	assert.InDelta(t, 0.75, c.RotationY, 1e-5)

	for i := 0; i < 40; i++ {
		c.Update()
	}
	assert.InDelta(t, 1.0, c.RotationY, 1e-4)
}

func TestOrbitChangedFlag(t *testing.T) {
	cam := New(75, 1, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 10})

	c := NewOrbitControls()
	c.Attach(cam, mgl32.Vec3{})

	c.BeginInteraction()
	assert.False(t, c.Changed())

	c.HandleDrag(0, 0)
	assert.False(t, c.Changed(), "a zero drag is a click")

	c.HandleDrag(3, 1)
	assert.True(t, c.Changed())

	c.BeginInteraction()
	assert.False(t, c.Changed())
}

func TestOrbitUpdateWithoutCamera(t *testing.T) {
	c := NewOrbitControls()
	c.HandleDrag(10, 10)
	c.Update()
	assert.False(t, c.Attached())
}
