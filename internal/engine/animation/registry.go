package animation

import (
	"errors"
	"fmt"

	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
)

var (
	// ErrDuplicateName is returned when a clip name is registered twice.
	ErrDuplicateName = errors.New("duplicate clip name")
	// ErrNotFound is returned when no action is registered under a name.
	ErrNotFound = errors.New("clip not found")
	// ErrForeignGraph is returned when an action animates a different graph
	// than the one the registry belongs to.
	ErrForeignGraph = errors.New("action bound to another scene graph")
)

// NameError records the registry operation and clip name that failed.
type NameError struct {
	Op   string
	Name string
	Err  error
}

func (e *NameError) Error() string {
	return fmt.Sprintf("animation %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *NameError) Unwrap() error { return e.Err }

// Registry maps clip names to the actions playing them for one scene graph.
// Names keep their registration order.
type Registry struct {
	graph   *scenegraph.Graph
	names   []string
	actions map[string]*Action
}

// NewRegistry creates an empty registry for graph.
func NewRegistry(graph *scenegraph.Graph) *Registry {
	return &Registry{
		graph:   graph,
		actions: make(map[string]*Action),
	}
}

// Build creates a Stopped action for every clip, in clip order.
func Build(graph *scenegraph.Graph, clips []*Clip) (*Registry, error) {
	r := NewRegistry(graph)
	for _, c := range clips {
		if err := r.Register(c.Name, NewAction(c, graph)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds action under name. An existing entry is never replaced.
func (r *Registry) Register(name string, action *Action) error {
	if _, ok := r.actions[name]; ok {
		return &NameError{Op: "register", Name: name, Err: ErrDuplicateName}
	}
	if action.Graph() != r.graph {
		return &NameError{Op: "register", Name: name, Err: ErrForeignGraph}
	}
	r.actions[name] = action
	r.names = append(r.names, name)
	return nil
}

// Get returns the action registered under name.
func (r *Registry) Get(name string) (*Action, error) {
	a, ok := r.actions[name]
	if !ok {
		return nil, &NameError{Op: "get", Name: name, Err: ErrNotFound}
	}
	return a, nil
}

// PlayAll starts every registered action at once. Clips are superposed;
// there is no crossfade between them.
func (r *Registry) PlayAll() {
	for _, name := range r.names {
		r.actions[name].Play()
	}
}

// Advance moves every playing action forward by dt seconds.
func (r *Registry) Advance(dt float32) {
	for _, name := range r.names {
		r.actions[name].Advance(dt)
	}
}

// Names returns the registered clip names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.names)
}

// Counts returns how many actions are playing and how many are stopped.
func (r *Registry) Counts() (playing, stopped int) {
	for _, a := range r.actions {
		if a.IsPlaying() {
			playing++
		} else {
			stopped++
		}
	}
	return playing, stopped
}

// Graph returns the scene graph every action is bound to.
func (r *Registry) Graph() *scenegraph.Graph {
	return r.graph
}
