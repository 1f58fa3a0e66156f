package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	_ "image/jpeg" // register jpeg decoder

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp decoder
)

// Upload errors
var (
	ErrUnsupportedImage = errors.New("unsupported image format")        // Not jpeg, png or webp
	ErrImageTooLarge    = errors.New("image dimensions are too large") // Over MaxImageSide on a side
)

// MaxImageSide bounds the declared width and height accepted for decoding
const MaxImageSide = 8000

var allowedFormats = map[string]bool{"jpeg": true, "png": true, "webp": true}

// NormalizeImage decodes an uploaded image, shrinks it to fit maxSide x maxSide
// keeping its aspect ratio, and re-encodes it as PNG
func NormalizeImage(r io.Reader, maxSide int) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// Check the header before allocating the full bitmap
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if !allowedFormats[format] {
		return nil, ErrUnsupportedImage
	}
	if cfg.Width > MaxImageSide || cfg.Height > MaxImageSide {
		return nil, ErrImageTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxSide || h > maxSide {
		if w >= h {
			h = h * maxSide / w
			w = maxSide
		} else {
			w = w * maxSide / h
			h = maxSide
		}
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveUpload writes data under dir with a random name and returns the file name
func SaveUpload(dir string, data []byte, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
