package animation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
)

// State is the playback state of an action.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Playable is a playback cursor that can be started and advanced.
type Playable interface {
	Play()
	Stop()
	IsPlaying() bool
	Advance(dt float32)
}

// Action is a playback cursor over one clip bound to one scene graph.
type Action struct {
	clip  *Clip
	graph *scenegraph.Graph
	state State
	time  float32

	// TimeScale multiplies the delta passed to Advance.
	TimeScale float32
	// Weight blends the sampled pose over the node's rest pose (0..1).
	Weight float32
	// Loop wraps time at the clip duration; otherwise time clamps at the end.
	Loop bool
}

var _ Playable = (*Action)(nil)

// NewAction binds clip to graph. The action starts Stopped at time zero.
func NewAction(clip *Clip, graph *scenegraph.Graph) *Action {
	return &Action{
		clip:      clip,
		graph:     graph,
		state:     Stopped,
		TimeScale: 1,
		Weight:    1,
		Loop:      true,
	}
}

// Clip returns the clip this action plays.
func (a *Action) Clip() *Clip { return a.clip }

// Graph returns the scene graph this action animates.
func (a *Action) Graph() *scenegraph.Graph { return a.graph }

// State returns the playback state.
func (a *Action) State() State { return a.state }

// IsPlaying reports whether the action is in the Playing state.
func (a *Action) IsPlaying() bool { return a.state == Playing }

// Time returns the local playback time in seconds.
func (a *Action) Time() float32 { return a.time }

// Play starts playback from the current time.
func (a *Action) Play() {
	a.state = Playing
}

// Stop halts playback and rewinds to the start.
func (a *Action) Stop() {
	a.state = Stopped
	a.time = 0
}

// Advance moves the playback time by dt seconds and applies the sampled
// pose to the bound graph. Stopped actions are left untouched.
func (a *Action) Advance(dt float32) {
	if a.state != Playing {
		return
	}
	a.time += dt * a.TimeScale

	d := a.clip.Duration
	switch {
	case d <= 0:
		a.time = 0
	case a.Loop:
		a.time = math32.Mod(a.time, d)
		if a.time < 0 {
			a.time += d
		}
	case a.time > d:
		a.time = d
	case a.time < 0:
		a.time = 0
	}

	a.apply()
}

// apply writes every channel's value at the current time into the graph.
func (a *Action) apply() {
	w := a.Weight
	for i := range a.clip.Channels {
		ch := &a.clip.Channels[i]
		if ch.Node < 0 || ch.Node >= len(a.graph.Nodes) {
			continue
		}
		node := a.graph.Nodes[ch.Node]
		v := ch.sample(a.time)

		switch ch.Path {
		case PathTranslation:
			node.Translation = lerp3(node.RestTranslation(), mgl32.Vec3{v[0], v[1], v[2]}, w)
		case PathScale:
			node.Scale = lerp3(node.RestScale(), mgl32.Vec3{v[0], v[1], v[2]}, w)
		case PathRotation:
			q := quat(v)
			if w < 1 {
				q = mgl32.QuatSlerp(node.RestRotation(), q, w)
			}
			node.Rotation = q.Normalize()
		}
	}
}

func lerp3(from, to mgl32.Vec3, w float32) mgl32.Vec3 {
	if w >= 1 {
		return to
	}
	return from.Add(to.Sub(from).Mul(w))
}
