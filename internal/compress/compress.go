// Package compress ограничивает размер загружаемых изображений:
// уменьшение сторон в sqrt(target/size) раз и перекодирование в JPEG
// с понижением качества до попадания в целевой размер.
package compress

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"golang.org/x/image/draw"
)

const (
	startQuality = 90
	qualityStep  = 10
	qualityFloor = 10
)

// Compressor перекодирует изображения под целевой размер в килобайтах.
type Compressor struct{}

func NewCompressor() *Compressor {
	return &Compressor{}
}

// Compress возвращает JPEG-представление изображения размером не более
// maxSizeKB килобайт, насколько это достижимо: порог качества — нижняя
// граница, а не гарантия. Изображение никогда не увеличивается.
func (c *Compressor) Compress(data []byte, maxSizeKB int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrUnsupportedMediaType)
	}

	targetBytes := maxSizeKB * 1024

	scale := math.Sqrt(float64(targetBytes) / float64(len(data)))
	if scale < 1 {
		img = downscale(img, scale)
	}

	var encoded []byte
	for quality := startQuality; quality >= qualityFloor; quality -= qualityStep {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		encoded = buf.Bytes()
		if len(encoded) <= targetBytes {
			break
		}
	}

	return encoded, nil
}

// downscale уменьшает обе стороны изображения в scale раз (scale < 1).
func downscale(img image.Image, scale float64) image.Image {
	bounds := img.Bounds()
	width := int(math.Floor(float64(bounds.Dx()) * scale))
	height := int(math.Floor(float64(bounds.Dy()) * scale))

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
