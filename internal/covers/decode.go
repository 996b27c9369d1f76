package covers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// ThumbnailSize is the bounding box thumbnails are scaled into.
var ThumbnailSize = image.Pt(32, 48)

// Covers are decoded on the UI loop, so anything bigger than this is refused
// before its pixels are allocated.
const (
	MaxSourceDim   = 4096
	maxSourceBytes = 16 << 20
)

// ErrImageTooLarge is returned for sources over MaxSourceDim on either axis.
var ErrImageTooLarge = errors.New("cover image too large")

// Decode reads an image and scales it to fit inside box, preserving the
// aspect ratio. The result is never larger than box in either dimension and
// at least 1x1.
func Decode(r io.Reader, box image.Point) (*image.RGBA, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("decode cover: %w: over %d bytes", ErrImageTooLarge, maxSourceBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	if cfg.Width > MaxSourceDim || cfg.Height > MaxSourceDim {
		return nil, fmt.Errorf("decode cover: %w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	return Scale(src, box), nil
}

// DecodeFile is Decode for a file path.
func DecodeFile(path string, box image.Point) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, box)
}

// Scale fits src inside box.
func Scale(src image.Image, box image.Point) *image.RGBA {
	size := FitSize(src.Bounds().Size(), box)
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// FitSize returns the largest size with src's aspect ratio that fits in box.
func FitSize(src, box image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 || box.X <= 0 || box.Y <= 0 {
		return image.Pt(1, 1)
	}
	w, h := box.X, src.Y*box.X/src.X
	if h > box.Y {
		w, h = src.X*box.Y/src.Y, box.Y
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Pt(w, h)
}
