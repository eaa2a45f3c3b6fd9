package compress

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/catalogdesk/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyImage даёт плохо сжимаемую картинку, чтобы исходник был заметно
// больше целевого размера.
func noisyImage(t *testing.T, width, height int) image.Image {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

func TestCompress_ShrinksLargeImage(t *testing.T) {
	src := encodeJPEG(t, noisyImage(t, 600, 600), 100)
	const maxKB = 32
	require.Greater(t, len(src), maxKB*1024, "fixture must exceed the target size")

	out, err := NewCompressor().Compress(src, maxKB)
	require.NoError(t, err)

	assert.Less(t, len(out), len(src))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Less(t, cfg.Width, 600)
	assert.Less(t, cfg.Height, 600)
}

func TestCompress_SmallImageNotUpscaled(t *testing.T) {
	src := encodeJPEG(t, noisyImage(t, 40, 30), 80)

	out, err := NewCompressor().Compress(src, 1024)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestCompress_PNGInputBecomesJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, noisyImage(t, 120, 80)))

	out, err := NewCompressor().Compress(buf.Bytes(), 1024)
	require.NoError(t, err)

	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestCompress_NotAnImage(t *testing.T) {
	_, err := NewCompressor().Compress([]byte("definitely not an image"), 1024)
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}
