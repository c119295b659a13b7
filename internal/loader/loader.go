// Package loader turns a glTF/GLB asset into a scene graph and animation clips.
package loader

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Faultbox/glbstage/internal/engine/animation"
	"github.com/Faultbox/glbstage/internal/engine/scenegraph"
)

// ProgressFunc receives the bytes consumed so far and the total size.
// total is zero when the size is unknown.
type ProgressFunc func(loaded, total int64)

// Result is a successfully loaded asset.
type Result struct {
	Graph *scenegraph.Graph
	Clips []*animation.Clip

	// TexturePaths mirrors Graph.Textures: one path per texture, relative to
	// the asset directory or an embedded "#image/N" reference.
	TexturePaths []string
}

// SceneLoader loads an asset from path.
type SceneLoader interface {
	Load(ctx context.Context, path string, progress ProgressFunc) (*Result, error)
}

// LoadError reports a failed asset load.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Progress tracks load progress and is safe to read from another goroutine.
type Progress struct {
	loaded atomic.Int64
	total  atomic.Int64
}

// Func returns a ProgressFunc that records into p.
func (p *Progress) Func() ProgressFunc {
	return func(loaded, total int64) {
		p.loaded.Store(loaded)
		p.total.Store(total)
	}
}

// Percent returns the completed percentage, or -1 while the total is unknown.
func (p *Progress) Percent() int {
	total := p.total.Load()
	if total <= 0 {
		return -1
	}
	pct := int(p.loaded.Load() * 100 / total)
	if pct > 100 {
		pct = 100
	}
	return pct
}
