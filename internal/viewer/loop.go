package viewer

import (
	"time"
)

// Drawer renders the current state of a session.
type Drawer interface {
	Draw(s *Session)
}

// Clock measures frame deltas. The first delta is always zero.
type Clock struct {
	now  func() time.Time
	last time.Time
}

// NewClock creates a clock reading the wall time.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Delta returns the seconds elapsed since the previous call.
func (c *Clock) Delta() float32 {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	return float32(dt)
}

// RenderLoop advances a session and draws it once per frame.
type RenderLoop struct {
	Session *Session
	Drawer  Drawer
	Clock   *Clock
}

// NewRenderLoop creates a loop for session drawn by d.
func NewRenderLoop(session *Session, d Drawer) *RenderLoop {
	return &RenderLoop{Session: session, Drawer: d, Clock: NewClock()}
}

// Tick advances every playing action by dt seconds when a scene is loaded,
// updates the orbit controls and draws exactly once.
func (l *RenderLoop) Tick(dt float32) {
	s := l.Session
	if s.registry != nil {
		s.registry.Advance(dt)
	}
	if s.Controls != nil {
		s.Controls.Update()
	}
	l.Drawer.Draw(s)
}

// Frame ticks with the delta measured by the loop clock and returns it.
func (l *RenderLoop) Frame() float32 {
	dt := l.Clock.Delta()
	l.Tick(dt)
	return dt
}
