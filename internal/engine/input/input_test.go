package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  Event
		ok    bool
	}{
		{
			name:  "quit",
			event: &sdl.QuitEvent{Type: sdl.QUIT},
			want:  Event{Type: EventQuit},
			ok:    true,
		},
		{
			name:  "resize",
			event: &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600},
			want:  Event{Type: EventWindowResize, Width: 800, Height: 600},
			ok:    true,
		},
		{
			name:  "window focus ignored",
			event: &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED},
		},
		{
			name:  "key down",
			event: &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_F12}},
			want:  Event{Type: EventKeyDown, Key: sdl.SCANCODE_F12},
			ok:    true,
		},
		{
			name:  "drag with left button",
			event: &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 20, XRel: 3, YRel: -2, State: sdl.ButtonLMask()},
			want:  Event{Type: EventMouseMove, MouseX: 10, MouseY: 20, DeltaX: 3, DeltaY: -2, Primary: true},
			ok:    true,
		},
		{
			name:  "hover",
			event: &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 5, Y: 6},
			want:  Event{Type: EventMouseMove, MouseX: 5, MouseY: 6},
			ok:    true,
		},
		{
			name:  "button up",
			event: &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, X: 1, Y: 2, Button: sdl.BUTTON_LEFT},
			want:  Event{Type: EventMouseUp, MouseX: 1, MouseY: 2, Button: ButtonLeft},
			ok:    true,
		},
		{
			name:  "wheel",
			event: &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2},
			want:  Event{Type: EventMouseWheel, Wheel: 2},
			ok:    true,
		},
		{
			name:  "flipped wheel",
			event: &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 1, Direction: sdl.MOUSEWHEEL_FLIPPED},
			want:  Event{Type: EventMouseWheel, Wheel: -1},
			ok:    true,
		},
		{
			name:  "horizontal wheel ignored",
			event: &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, X: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.event)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUpdateStopsAtQuit(t *testing.T) {
	queue := []sdl.Event{
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}},
		&sdl.QuitEvent{Type: sdl.QUIT},
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_A}},
	}
	in := New()
	in.poll = func() sdl.Event {
		if len(queue) == 0 {
			return nil
		}
		e := queue[0]
		queue = queue[1:]
		return e
	}

	if !in.Update() {
		t.Fatal("expected Update to report quit")
	}
	if got := len(in.Events()); got != 2 {
		t.Errorf("expected 2 events before quit, got %d", got)
	}
	if !in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		t.Error("expected escape to be pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_A) {
		t.Error("events after quit must not be processed")
	}
}
