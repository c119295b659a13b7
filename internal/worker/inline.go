package worker

import (
	"context"
)

// Inline runs the server on a goroutine of the current process.
type Inline struct {
	Server *Server
}

var _ Transport = (*Inline)(nil)

// Request starts the server on a new goroutine and returns its reply channel.
func (t *Inline) Request(ctx context.Context, req Request) (<-chan Response, error) {
	out := make(chan Response, 1)
	go func() {
		defer close(out)
		out <- t.Server.Handle(ctx, req)
	}()
	return out, nil
}
