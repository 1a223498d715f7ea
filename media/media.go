// Package media inspects cover images and produces width-capped thumbnails.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxWidth is the thumbnail width used by the static export.
	DefaultMaxWidth = 800
	jpegQuality     = 80
)

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Probe reads only the image header and returns its size and format name.
func Probe(r io.Reader) (Dimensions, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Dimensions{}, "", fmt.Errorf("decode image config: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, format, nil
}

// ProbeFile is Probe for a file on disk.
func ProbeFile(path string) (Dimensions, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, "", err
	}
	defer f.Close()
	return Probe(f)
}

// Thumbnail decodes src, scales it down to maxWidth when wider, and encodes it as JPEG.
func Thumbnail(src io.Reader, maxWidth int) ([]byte, Dimensions, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, Dimensions{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, Dimensions{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), Dimensions{Width: w, Height: h}, nil
}

// ThumbnailFile writes a JPEG thumbnail of srcPath to dstPath, creating parent directories.
func ThumbnailFile(srcPath, dstPath string, maxWidth int) (Dimensions, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	data, dims, err := Thumbnail(f, maxWidth)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%s: %w", srcPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return Dimensions{}, err
	}
	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		return Dimensions{}, err
	}
	return dims, nil
}
