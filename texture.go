package lightlab

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxTextureSize caps uploads; larger images are downscaled.
const MaxTextureSize = 4096

// DecodeTexture decodes any registered image format and returns RGBA pixels
// whose dimensions are powers of two.
func DecodeTexture(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return ResizePowerOfTwo(img, MaxTextureSize), nil
}

// ResizePowerOfTwo resamples img to the nearest power-of-two size (at most maxSize).
// Images already of that size are converted without resampling.
func ResizePowerOfTwo(img image.Image, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := nearestPowerOfTwo(b.Dx(), maxSize), nearestPowerOfTwo(b.Dy(), maxSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func nearestPowerOfTwo(n, max int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	// Round down when the lower power is closer.
	if p-n > n-p/2 {
		p /= 2
	}
	if max > 0 && p > max {
		p = max
	}
	return p
}

// CreateTextureFromImage stores img as an sRGB texture.
func (server *AssetServer) CreateTextureFromImage(name string, img *image.RGBA) AssetId {
	b := img.Bounds()
	return server.CreateTexture(name, img.Pix, uint32(b.Dx()), uint32(b.Dy()), TextureFormatRGBA8UnormSrgb)
}

func (server *AssetServer) LoadTexture(path string) (AssetId, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, err := DecodeTexture(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return server.CreateTextureFromImage(filepath.Base(path), img), nil
}

// AverageColor is the mean linear color of a texture, used as an environment tint.
func AverageColor(tex TextureAsset) mgl32.Vec3 {
	n := len(tex.Texels) / 4
	if n == 0 {
		return mgl32.Vec3{}
	}
	var sum mgl32.Vec3
	// Sample at most ~64k pixels.
	stride := n/65536 + 1
	count := 0
	for i := 0; i < n; i += stride {
		p := tex.Texels[i*4 : i*4+3]
		c := HexToLinear(uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2]))
		sum = sum.Add(c)
		count++
	}
	return sum.Mul(1 / float32(count))
}
