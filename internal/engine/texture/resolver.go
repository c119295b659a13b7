package texture

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"sync"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/assets"
	"github.com/Faultbox/glbstage/internal/loader"
	"github.com/Faultbox/glbstage/internal/logger"
)

// DefaultMaxSize caps texture dimensions before upload.
const DefaultMaxSize = 4096

// Resolver maps texture paths of one asset to decoded images.
// External paths are read through the asset manager; embedded "#image/N"
// references are read from the asset file itself.
type Resolver struct {
	assetPath string
	files     *assets.Manager

	// MaxSize bounds each side of a resolved image. Zero disables scaling.
	MaxSize int

	docOnce sync.Once
	doc     *gltf.Document
	docErr  error

	mu     sync.Mutex
	images map[string]*image.NRGBA
}

// NewResolver creates a resolver for the asset at assetPath.
func NewResolver(assetPath string, files *assets.Manager) *Resolver {
	return &Resolver{
		assetPath: assetPath,
		files:     files,
		MaxSize:   DefaultMaxSize,
		images:    make(map[string]*image.NRGBA),
	}
}

// Resolve returns the image for one texture path. Results are cached by path.
func (r *Resolver) Resolve(ref string) (*image.NRGBA, error) {
	if ref == "" {
		return nil, fmt.Errorf("texture: empty path")
	}

	r.mu.Lock()
	img, ok := r.images[ref]
	r.mu.Unlock()
	if ok {
		return img, nil
	}

	data, name, err := r.read(ref)
	if err != nil {
		return nil, err
	}
	img, err = Decode(data, name)
	if err != nil {
		return nil, err
	}
	img = FitWithin(img, r.MaxSize)

	r.mu.Lock()
	r.images[ref] = img
	r.mu.Unlock()
	return img, nil
}

// ResolveAll resolves every path in refs. Entries that fail are logged and
// left nil so the caller can fall back to the material colour.
func (r *Resolver) ResolveAll(refs []string) []*image.NRGBA {
	log := logger.Named("texture")
	out := make([]*image.NRGBA, len(refs))
	for i, ref := range refs {
		if ref == "" {
			continue
		}
		img, err := r.Resolve(ref)
		if err != nil {
			log.Warn("texture unavailable", zap.String("path", ref), zap.Error(err))
			continue
		}
		out[i] = img
	}
	return out
}

func (r *Resolver) read(ref string) ([]byte, string, error) {
	if !strings.HasPrefix(ref, loader.EmbeddedImagePrefix) {
		if r.files == nil {
			return nil, "", fmt.Errorf("texture: no asset directory for %s", ref)
		}
		data, err := r.files.Load(ref)
		return data, ref, err
	}

	idx, err := strconv.Atoi(strings.TrimPrefix(ref, loader.EmbeddedImagePrefix))
	if err != nil {
		return nil, "", fmt.Errorf("texture: bad embedded reference %q", ref)
	}

	doc, err := r.document()
	if err != nil {
		return nil, "", err
	}
	if idx < 0 || idx >= len(doc.Images) {
		return nil, "", fmt.Errorf("texture: embedded image %d out of range", idx)
	}

	img := doc.Images[idx]
	name := img.Name + mimeExt(img.MimeType)
	switch {
	case img.BufferView != nil:
		if *img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews) {
			return nil, "", fmt.Errorf("texture: image %d buffer view out of range", idx)
		}
		data, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		return data, name, err
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		return data, name, err
	default:
		return nil, "", fmt.Errorf("texture: image %d has no embedded data", idx)
	}
}

// document decodes the asset once for embedded image access.
func (r *Resolver) document() (*gltf.Document, error) {
	r.docOnce.Do(func() {
		r.doc, r.docErr = loader.Decode(context.Background(), r.assetPath, nil)
	})
	return r.doc, r.docErr
}

func mimeExt(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
