// Package viewer holds the state of one viewing session and the per-frame
// update that animates and redraws it.
package viewer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/engine/animation"
	"github.com/Faultbox/glbstage/internal/engine/camera"
	"github.com/Faultbox/glbstage/internal/engine/picking"
	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
	"github.com/Faultbox/glbstage/internal/loader"
	"github.com/Faultbox/glbstage/internal/logger"
)

// ErrAlreadyLoaded is returned when a second asset is attached to a session.
var ErrAlreadyLoaded = errors.New("session already has a scene")

// Session owns the loaded scene, its animation registry and the camera.
// A session loads at most one asset; there is no reload path.
type Session struct {
	Camera   *camera.PerspectiveCamera
	Controls *camera.OrbitControls

	graph    *scenegraph.Graph
	registry *animation.Registry
	textures []string
	err      error
	settled  bool
}

// NewSession creates an empty session viewed through cam. controls may be nil.
func NewSession(cam *camera.PerspectiveCamera, controls *camera.OrbitControls) *Session {
	return &Session{Camera: cam, Controls: controls}
}

// Attach installs a loaded asset: one action per clip is registered in clip
// order and started, the camera is framed on the scene once, and then the
// orbit controls take over. A framing failure is returned after the scene is
// installed, leaving the camera where it was.
func (s *Session) Attach(res *loader.Result) error {
	log := logger.Named("viewer")

	if s.graph != nil {
		return ErrAlreadyLoaded
	}
	if res == nil || res.Graph == nil {
		return fmt.Errorf("attach: empty load result")
	}

	reg := animation.NewRegistry(res.Graph)
	for _, clip := range res.Clips {
		err := reg.Register(clip.Name, animation.NewAction(clip, res.Graph))
		if errors.Is(err, animation.ErrDuplicateName) {
			log.Warn("duplicate clip name, keeping the first", zap.String("clip", clip.Name))
			continue
		}
		if err != nil {
			return fmt.Errorf("attach: %w", err)
		}
	}
	reg.PlayAll()

	s.graph = res.Graph
	s.registry = reg
	s.textures = res.TexturePaths
	s.settled = true

	var frameErr error
	target := s.Camera.Target()
	if vol, ok := res.Graph.BoundingVolume(); ok {
		if err := camera.Frame(s.Camera, vol); err != nil {
			frameErr = fmt.Errorf("attach: %w", err)
		} else {
			target = vol.Center
		}
	} else {
		frameErr = fmt.Errorf("attach: %w (scene has no geometry)", camera.ErrDegenerateVolume)
	}
	s.attachControls(target)

	pos := s.Camera.Position()
	log.Info("scene attached",
		zap.Int("nodes", len(res.Graph.Nodes)),
		zap.Strings("clips", reg.Names()),
		zap.Float32s("camera", pos[:]))
	return frameErr
}

// Fail records a failed load. The session stays empty, the camera keeps
// its initial pose and the controls are attached around it.
func (s *Session) Fail(err error) {
	s.err = err
	s.settled = true
	s.attachControls(s.Camera.Target())
}

func (s *Session) attachControls(target mgl32.Vec3) {
	if s.Controls != nil && !s.Controls.Attached() {
		s.Controls.Attach(s.Camera, target)
	}
}

// Loaded reports whether a scene is attached.
func (s *Session) Loaded() bool { return s.graph != nil }

// Settled reports whether the load finished, successfully or not.
func (s *Session) Settled() bool { return s.settled }

// Graph returns the attached scene graph, or nil.
func (s *Session) Graph() *scenegraph.Graph { return s.graph }

// Registry returns the animation registry, or nil before Attach.
func (s *Session) Registry() *animation.Registry { return s.registry }

// TexturePaths returns the texture paths of the attached asset.
func (s *Session) TexturePaths() []string { return s.textures }

// Err returns the load error recorded by Fail.
func (s *Session) Err() error { return s.err }

// RayTest returns the nearest node under the viewport point (x, y).
func (s *Session) RayTest(x, y, width, height float32) (scenegraph.Hit, bool) {
	if s.graph == nil || width <= 0 || height <= 0 {
		return scenegraph.Hit{}, false
	}
	inv := s.Camera.ViewProjection().Inv()
	hits := s.graph.RayTest(picking.ScreenToRay(x, y, width, height, inv))
	if len(hits) == 0 {
		return scenegraph.Hit{}, false
	}
	return hits[0], true
}
