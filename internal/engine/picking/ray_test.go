package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenToRayCenter(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	inv := proj.Mul4(view).Inv()

	r := ScreenToRay(400, 300, 800, 600, inv)

	assert.InDelta(t, 0, r.Direction.X(), 1e-4)
	assert.InDelta(t, 0, r.Direction.Y(), 1e-4)
	assert.InDelta(t, -1, r.Direction.Z(), 1e-4)
	assert.InDelta(t, 9.9, r.Origin.Z(), 1e-3, "origin lies on the near plane")
}

func TestScreenToRayCorner(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	inv := proj.Mul4(view).Inv()

	r := ScreenToRay(0, 0, 800, 800, inv)
	assert.Less(t, r.Direction.X(), float32(0), "top-left pixel points left")
	assert.Greater(t, r.Direction.Y(), float32(0), "top-left pixel points up")
}

func TestIntersectAABB(t *testing.T) {
	min := mgl32.Vec3{-1, -1, -1}
	max := mgl32.Vec3{1, 1, 1}

	tests := []struct {
		name string
		ray  Ray
		hit  bool
		t    float32
	}{
		{"front", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}}, true, 4},
		{"miss", Ray{mgl32.Vec3{3, 0, 5}, mgl32.Vec3{0, 0, -1}}, false, 0},
		{"behind", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}}, false, 0},
		{"inside", Ray{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}}, true, 1},
		{"parallel outside", Ray{mgl32.Vec3{0, 2, 5}, mgl32.Vec3{0, 0, -1}}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(min, max)
			require.Equal(t, tt.hit, hit)
			if hit {
				assert.InDelta(t, tt.t, got, 1e-5)
			}
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := mgl32.Vec3{-1, -1, 0}
	b := mgl32.Vec3{1, -1, 0}
	c := mgl32.Vec3{0, 1, 0}

	got, hit := Ray{mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, -1}}.IntersectTriangle(a, b, c)
	require.True(t, hit)
	assert.InDelta(t, 3, got, 1e-5)

	// Back face is still a hit.
	_, hit = Ray{mgl32.Vec3{0, 0, -3}, mgl32.Vec3{0, 0, 1}}.IntersectTriangle(a, b, c)
	assert.True(t, hit)

	_, hit = Ray{mgl32.Vec3{2, 2, 3}, mgl32.Vec3{0, 0, -1}}.IntersectTriangle(a, b, c)
	assert.False(t, hit)

	_, hit = Ray{mgl32.Vec3{0, 0, 3}, mgl32.Vec3{1, 0, 0}}.IntersectTriangle(a, b, c)
	assert.False(t, hit, "parallel ray")
}
