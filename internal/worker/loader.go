package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/engine/animation"
	"github.com/Faultbox/glbstage/internal/loader"
	"github.com/Faultbox/glbstage/internal/logger"
)

// ErrNoReply is returned when the transport closes without replying.
var ErrNoReply = errors.New("worker closed without a reply")

// Loader is a SceneLoader that delegates parsing to a worker.
// It sends exactly one request and never retries.
type Loader struct {
	Transport Transport

	// Timeout bounds the wait for the reply. Zero waits until ctx is done.
	Timeout time.Duration
}

var _ loader.SceneLoader = (*Loader)(nil)

// Load requests the asset from the worker. path only labels errors; the
// worker loads the asset it was configured with.
func (l *Loader) Load(ctx context.Context, path string, progress loader.ProgressFunc) (*loader.Result, error) {
	log := logger.Named("worker")

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	replies, err := l.Transport.Request(ctx, Request{LoadGLB: true})
	if err != nil {
		return nil, &loader.LoadError{Path: path, Err: err}
	}
	if progress != nil {
		progress(0, 0)
	}

	var resp Response
	select {
	case r, ok := <-replies:
		if !ok {
			return nil, &loader.LoadError{Path: path, Err: ErrNoReply}
		}
		resp = r
	case <-ctx.Done():
		return nil, &loader.LoadError{Path: path, Err: ctx.Err()}
	}

	if resp.Error != "" {
		return nil, &loader.LoadError{Path: path, Err: errors.New(resp.Error)}
	}

	res, err := DecodeModel(resp.Model)
	if err != nil {
		return nil, &loader.LoadError{Path: path, Err: err}
	}

	// Only the clips the worker listed are played, in its order.
	clips := make([]*animation.Clip, 0, len(resp.Animations))
	for _, name := range resp.Animations {
		c := animation.FindByName(res.Clips, name)
		if c == nil {
			log.Warn("animation missing from model", zap.String("name", name))
			continue
		}
		clips = append(clips, c)
	}
	res.Clips = clips
	res.TexturePaths = resp.Textures
	res.Graph.Textures = resp.Textures

	if progress != nil {
		size := int64(len(resp.Model))
		progress(size, size)
	}
	return res, nil
}
