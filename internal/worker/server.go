package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/loader"
	"github.com/Faultbox/glbstage/internal/logger"
)

// ErrUnsupportedRequest is reported for requests the worker does not understand.
var ErrUnsupportedRequest = errors.New("unsupported worker request")

// Server parses the configured asset on request.
type Server struct {
	AssetPath string
	Loader    loader.SceneLoader
}

// NewServer creates a server that loads assetPath with the GLB loader.
func NewServer(assetPath string) *Server {
	return &Server{AssetPath: assetPath, Loader: loader.GLB{}}
}

// Handle answers one request. Failures are reported in Response.Error.
func (s *Server) Handle(ctx context.Context, req Request) Response {
	log := logger.Named("worker")

	if !req.LoadGLB {
		return Response{Error: ErrUnsupportedRequest.Error()}
	}

	res, err := s.Loader.Load(ctx, s.AssetPath, nil)
	if err != nil {
		log.Error("worker load failed", zap.String("path", s.AssetPath), zap.Error(err))
		return Response{Error: err.Error()}
	}

	model, err := EncodeModel(res)
	if err != nil {
		log.Error("worker encode failed", zap.Error(err))
		return Response{Error: err.Error()}
	}

	names := make([]string, len(res.Clips))
	for i, c := range res.Clips {
		names[i] = c.Name
	}

	log.Debug("worker reply ready",
		zap.Int("bytes", len(model)),
		zap.Strings("animations", names))
	return Response{Model: model, Animations: names, Textures: res.TexturePaths}
}
