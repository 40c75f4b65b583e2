package lightlab

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestNearestPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 3: 4, 5: 4, 6: 8, 1000: 1024, 1500: 1024, 1600: 2048}
	for in, want := range cases {
		assert.Equal(t, want, nearestPowerOfTwo(in, 0), "n=%d", in)
	}
	assert.Equal(t, 256, nearestPowerOfTwo(5000, 256))
}

func TestResizePowerOfTwo(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}

	out := ResizePowerOfTwo(solidImage(100, 30, red), 64)
	assert.Equal(t, image.Rect(0, 0, 64, 32), out.Bounds())
	px := out.RGBAAt(10, 10)
	assert.InDelta(t, 255, int(px.R), 1)
	assert.InDelta(t, 0, int(px.G), 1)

	same := ResizePowerOfTwo(solidImage(16, 8, red), 0)
	assert.Equal(t, image.Rect(0, 0, 16, 8), same.Bounds())
	assert.Equal(t, red, same.RGBAAt(15, 7))
}

func TestLoadTexture(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(3, 3, color.RGBA{0, 0, 255, 255})))
	path := filepath.Join(t.TempDir(), "blue.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	server := NewAssetServer()
	id, err := server.LoadTexture(path)
	require.NoError(t, err)

	tex, ok := server.Texture(id)
	require.True(t, ok)
	assert.Equal(t, "blue.png", tex.Name)
	assert.Equal(t, uint32(4), tex.Width)
	assert.Equal(t, uint32(4), tex.Height)
	assert.Len(t, tex.Texels, 4*4*4)
	assert.Equal(t, TextureFormatRGBA8UnormSrgb, tex.Format)
}

func TestLoadTextureErrors(t *testing.T) {
	server := NewAssetServer()
	_, err := server.LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))
	_, err = server.LoadTexture(path)
	assert.ErrorContains(t, err, "decode image")
	assert.Zero(t, server.TextureCount())
}

func TestAverageColor(t *testing.T) {
	img := solidImage(2, 1, color.RGBA{255, 255, 255, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 0, 0, 255})
	avg := AverageColor(TextureAsset{Texels: img.Pix, Width: 2, Height: 1})
	assert.InDelta(t, 0.5, avg.X(), 1e-4)
	assert.InDelta(t, 0.5, avg.Z(), 1e-4)

	assert.Zero(t, AverageColor(TextureAsset{}).Len())
}
