package camera

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
)

var (
	// ErrDegenerateVolume is returned when the volume to frame has no size.
	ErrDegenerateVolume = errors.New("bounding volume has non-positive size")
	// ErrInvalidFOV is returned when the camera field of view cannot frame anything.
	ErrInvalidFOV = errors.New("field of view must be between 0 and 180 degrees")
)

// Frame moves cam so that vol fills the vertical field of view, keeping the
// camera on its current horizontal bearing around the volume center.
// Clip planes are scaled to the volume and the camera is aimed at the center.
// On error the camera is left unmodified.
func Frame(cam Framable, vol scenegraph.BoundingVolume) error {
	if !(vol.Size > 0) {
		return fmt.Errorf("frame: %w (size %v)", ErrDegenerateVolume, vol.Size)
	}
	fov := cam.FOV()
	if fov <= 0 || fov >= 180 {
		return fmt.Errorf("frame: %w (fov %v)", ErrInvalidFOV, fov)
	}

	halfFov := mgl32.DegToRad(fov) / 2
	distance := (vol.Size / 2) / math32.Tan(halfFov)

	dir := horizontalDirection(vol.Center, cam.Position())

	cam.SetPosition(vol.Center.Add(dir.Mul(distance)))
	cam.SetClipPlanes(vol.Size/100, vol.Size*100)
	cam.LookAt(vol.Center)
	return nil
}

// horizontalDirection is the unit vector from center towards pos projected
// onto the XZ plane. A camera right above or below the center looks along +Z.
func horizontalDirection(center, pos mgl32.Vec3) mgl32.Vec3 {
	d := pos.Sub(center)
	d[1] = 0
	if d.Len() < 1e-6 {
		return mgl32.Vec3{0, 0, 1}
	}
	return d.Normalize()
}
