package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/logger"
)

// GLB loads binary or JSON glTF files from the local filesystem.
// External buffers are resolved relative to the asset directory.
type GLB struct{}

var _ SceneLoader = GLB{}

// Load parses the asset at path and converts it into a scene graph and clips.
func (GLB) Load(ctx context.Context, path string, progress ProgressFunc) (*Result, error) {
	log := logger.Named("loader")

	doc, err := Decode(ctx, path, progress)
	if err != nil {
		return nil, err
	}

	res, err := FromDocument(doc)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	log.Info("asset loaded",
		zap.String("path", path),
		zap.Int("nodes", len(res.Graph.Nodes)),
		zap.Int("meshes", len(res.Graph.Meshes)),
		zap.Int("clips", len(res.Clips)),
		zap.Int("textures", len(res.TexturePaths)))
	return res, nil
}

// Decode reads the glTF document at path, reporting progress as bytes are consumed.
func Decode(ctx context.Context, path string, progress ProgressFunc) (*gltf.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	var total int64
	if st, err := f.Stat(); err == nil {
		total = st.Size()
	}

	r := &progressReader{r: f, total: total, progress: progress}
	dec := gltf.NewDecoderFS(r, os.DirFS(filepath.Dir(path)))

	doc := new(gltf.Document)
	if err := dec.Decode(doc); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("decoding gltf: %w", err)}
	}

	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return doc, nil
}
