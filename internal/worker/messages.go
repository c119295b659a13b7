// Package worker moves asset parsing off the frame loop. A Server parses the
// asset and replies with a serialized model; a Loader on the viewer side
// sends one request over a Transport and rebuilds the scene from the reply.
package worker

import (
	"context"
	"encoding/json"
)

// Request asks the worker to load the configured asset.
type Request struct {
	LoadGLB bool `json:"loadGLB"`
}

// Response carries the serialized model, the clip names to play and the
// texture paths to resolve on the receiving side. Error is set when the
// worker could not produce a model.
type Response struct {
	Model      json.RawMessage `json:"model,omitempty"`
	Animations []string        `json:"animations"`
	Textures   []string        `json:"textures"`
	Error      string          `json:"error,omitempty"`
}

// Transport delivers one request and yields its single reply.
// The channel receives at most one Response.
type Transport interface {
	Request(ctx context.Context, req Request) (<-chan Response, error)
}
