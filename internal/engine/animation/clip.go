// Package animation provides clips, playback actions and the registry that
// tracks the actions of a loaded scene.
package animation

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Path is the node property a channel animates.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func (p Path) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Interpolation selects how values between keys are computed.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	// InterpolationCubicSpline channels keep only their value keys and are
	// sampled linearly.
	InterpolationCubicSpline
)

// Channel animates one property of one node.
// Translation and scale use the first three components of each value;
// rotation values are quaternions in x, y, z, w order.
type Channel struct {
	Node          int
	Path          Path
	Interpolation Interpolation
	Times         []float32 // seconds, ascending
	Values        [][4]float32
}

// Clip is named, immutable, time-indexed motion data.
type Clip struct {
	Name     string
	Duration float32 // seconds
	Channels []Channel
}

// NewClip creates a clip whose duration is the last key time of its channels.
func NewClip(name string, channels []Channel) *Clip {
	c := &Clip{Name: name, Channels: channels}
	for _, ch := range channels {
		if n := len(ch.Times); n > 0 && ch.Times[n-1] > c.Duration {
			c.Duration = ch.Times[n-1]
		}
	}
	return c
}

// FindByName returns the clip with the given name, or nil.
func FindByName(clips []*Clip, name string) *Clip {
	for _, c := range clips {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// sample returns the channel value at time t.
func (ch *Channel) sample(t float32) [4]float32 {
	n := len(ch.Times)
	if n == 0 || len(ch.Values) < n {
		return [4]float32{}
	}
	if n == 1 || t <= ch.Times[0] {
		return ch.Values[0]
	}
	if t >= ch.Times[n-1] {
		return ch.Values[n-1]
	}

	// First key strictly after t; the previous key is at or before t.
	next := sort.Search(n, func(i int) bool { return ch.Times[i] > t })
	prev := next - 1
	v0, v1 := ch.Values[prev], ch.Values[next]

	if ch.Interpolation == InterpolationStep {
		return v0
	}

	span := ch.Times[next] - ch.Times[prev]
	f := float32(0)
	if span > 0 {
		f = (t - ch.Times[prev]) / span
	}

	if ch.Path == PathRotation {
		q := mgl32.QuatSlerp(quat(v0), quat(v1), f)
		return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
	}
	var out [4]float32
	for i := range out {
		out[i] = v0[i] + f*(v1[i]-v0[i])
	}
	return out
}

func quat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}
