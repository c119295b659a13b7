// Package texture decodes texture images and resolves the texture paths of a
// loaded model to pixel data.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Format identifies a supported image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatTGA  Format = "tga"
)

// Sniff detects the image format from its leading bytes, falling back to the
// file extension of name. TGA has no signature and is only chosen by name.
func Sniff(data []byte, name string) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG, nil
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return FormatJPEG, nil
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return FormatWebP, nil
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".tga":
		return FormatTGA, nil
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("texture: unknown image format for %q", name)
}

// Decode decodes data into an NRGBA image. name is used only as a format hint.
func Decode(data []byte, name string) (*image.NRGBA, error) {
	format, err := Sniff(data, name)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(data)
	var img image.Image
	switch format {
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	case FormatTGA:
		img, err = tga.Decode(r)
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s as %s: %w", name, format, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format with its origin at zero.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// FitWithin scales img down so neither side exceeds max, keeping its aspect
// ratio. Images that already fit are returned unchanged.
func FitWithin(img *image.NRGBA, max int) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if max <= 0 || (w <= max && h <= max) {
		return img
	}
	nw, nh := max, max
	if w > h {
		nh = h * max / w
	} else {
		nw = w * max / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
