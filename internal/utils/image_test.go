package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeImage(t *testing.T) {
	t.Run("shrinks keeping aspect ratio", func(t *testing.T) {
		out, err := NormalizeImage(bytes.NewReader(encodePNG(t, 1000, 500)), 512)
		require.NoError(t, err)
		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 512, cfg.Width)
		assert.Equal(t, 256, cfg.Height)
	})

	t.Run("small images keep their size", func(t *testing.T) {
		out, err := NormalizeImage(bytes.NewReader(encodePNG(t, 200, 300)), 512)
		require.NoError(t, err)
		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 200, cfg.Width)
		assert.Equal(t, 300, cfg.Height)
	})

	t.Run("rejects oversized dimensions before decoding", func(t *testing.T) {
		_, err := NormalizeImage(bytes.NewReader(encodePNG(t, MaxImageSide+1, 1)), 512)
		assert.ErrorIs(t, err, ErrImageTooLarge)

		_, err = NormalizeImage(bytes.NewReader(encodePNG(t, 1, MaxImageSide+1)), 512)
		assert.ErrorIs(t, err, ErrImageTooLarge)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := NormalizeImage(strings.NewReader("hello"), 512)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})
}

func TestSaveUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	name, err := SaveUpload(dir, []byte("data"), ".png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}
