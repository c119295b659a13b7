package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/engine/input"
	"github.com/Faultbox/glbstage/internal/engine/picking"
	"github.com/Faultbox/glbstage/internal/logger"
	"github.com/Faultbox/glbstage/internal/viewer"
)

// pointer turns mouse events into orbit input and picks.
// Every move picks; a release picks only when the press did not orbit.
type pointer struct {
	session *viewer.Session
	picker  *picking.Picker

	// Window size in the same units as mouse coordinates.
	width, height int

	pressed bool
	dragged bool
}

// handle processes one event and reports whether the popup message changed.
func (p *pointer) handle(ev input.Event) (msg string, changed bool) {
	c := p.session.Controls
	switch ev.Type {
	case input.EventMouseDown:
		if ev.Button == input.ButtonLeft {
			p.pressed = true
			p.dragged = false
			if c != nil {
				c.BeginInteraction()
			}
		}
	case input.EventMouseMove:
		if ev.Primary && p.pressed && (ev.DeltaX != 0 || ev.DeltaY != 0) {
			p.dragged = true
			if c != nil {
				c.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
			}
		}
		return p.pick(ev.MouseX, ev.MouseY)
	case input.EventMouseUp:
		if ev.Button != input.ButtonLeft {
			break
		}
		wasDragged := p.dragged
		p.pressed = false
		p.dragged = false
		if !wasDragged {
			return p.pick(ev.MouseX, ev.MouseY)
		}
	case input.EventMouseWheel:
		if c != nil {
			c.HandleZoom(ev.Wheel)
		}
	}
	return p.picker.Message(), false
}

func (p *pointer) pick(x, y int) (string, bool) {
	if !p.session.Loaded() {
		return p.picker.Message(), false
	}
	hit, ok := p.session.RayTest(float32(x), float32(y), float32(p.width), float32(p.height))
	name := ""
	if ok {
		name = hit.Node.Name
	}
	msg, changed := p.picker.Update(name, ok)
	if changed {
		logger.Named("app").Debug("pick",
			zap.String("node", name),
			zap.String("message", msg))
	}
	return msg, changed
}

// windowTitle renders the load state and the popup message into a title.
func windowTitle(base string, s *viewer.Session, percent int, message string) string {
	switch {
	case s.Err() != nil:
		return base + " - failed to load"
	case !s.Loaded() && percent >= 0:
		return fmt.Sprintf("%s - loading %d%%", base, percent)
	case !s.Loaded():
		return base + " - loading..."
	case message != "":
		return base + " - " + message
	default:
		return base
	}
}
