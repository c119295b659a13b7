package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/glbstage/internal/assets"
)

func checker() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if (x+y)%2 == 1 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		file string
		want Format
	}{
		{"png magic", []byte("\x89PNG\r\n\x1a\nrest"), "x.bin", FormatPNG},
		{"jpeg magic", []byte{0xff, 0xd8, 0xff, 0xe0}, "", FormatJPEG},
		{"webp magic", []byte("RIFF\x00\x00\x00\x00WEBPVP8L"), "", FormatWebP},
		{"tga by name", []byte{0, 0, 2}, "skin.TGA", FormatTGA},
		{"extension fallback", []byte{1, 2, 3}, "a/b.jpeg", FormatJPEG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.data, tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Sniff([]byte{1, 2, 3}, "mystery")
	assert.Error(t, err)
}

func TestDecodePNG(t *testing.T) {
	img, err := Decode(encodePNG(t, checker()), "checker.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(1, 0))
}

func TestDecodeWebP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, nativewebp.Encode(&buf, checker(), nil))

	img, err := Decode(buf.Bytes(), "checker.webp")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(1, 0))
}

func TestDecodeTGA(t *testing.T) {
	// 2x1 uncompressed true-colour, bottom-up, BGR.
	data := []byte{
		0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		2, 0, 1, 0, 24, 0,
		0, 0, 255, // red
		0, 255, 0, // green
	}
	img, err := Decode(data, "tiny.tga")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.NRGBAAt(1, 0))
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("\x89PNG\r\n\x1a\ntruncated"), "bad.png")
	assert.Error(t, err)
}

func TestFitWithin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 100))

	out := FitWithin(img, 200)
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())

	assert.Same(t, img, FitWithin(img, 0))
	assert.Same(t, img, FitWithin(img, 400))
}

func TestResolverExternal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "textures", "skin.png"), encodePNG(t, checker()), 0o644))

	files := assets.NewManager()
	require.NoError(t, files.AddDir(dir))
	r := NewResolver(filepath.Join(dir, "asset.glb"), files)

	first, err := r.Resolve("textures/skin.png")
	require.NoError(t, err)
	second, err := r.Resolve("textures/skin.png")
	require.NoError(t, err)
	assert.Same(t, first, second, "resolved images are cached")

	imgs := r.ResolveAll([]string{"textures/skin.png", "", "textures/missing.png"})
	require.Len(t, imgs, 3)
	assert.NotNil(t, imgs[0])
	assert.Nil(t, imgs[1])
	assert.Nil(t, imgs[2])
}

func TestResolverEmbedded(t *testing.T) {
	doc := gltf.NewDocument()
	idx, err := modeler.WriteImage(doc, "skin", "image/png", bytes.NewReader(encodePNG(t, checker())))
	require.NoError(t, err)
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(idx)}}

	path := filepath.Join(t.TempDir(), "embedded.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	r := NewResolver(path, nil)
	img, err := r.Resolve("#image/0")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

	_, err = r.Resolve("#image/7")
	assert.Error(t, err)
	_, err = r.Resolve("#image/x")
	assert.Error(t, err)
	_, err = r.Resolve("outside.png")
	assert.Error(t, err, "external paths need an asset manager")
}
