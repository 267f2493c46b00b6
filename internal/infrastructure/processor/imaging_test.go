package processor_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/andreyxaxa/Image-Tagger/internal/infrastructure/processor"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	rnd := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(rnd.Intn(256)), G: uint8(rnd.Intn(256)), B: uint8(rnd.Intn(256)), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestImageProcessor_FitBytes(t *testing.T) {
	p := processor.New()
	data := noisyPNG(t, 400, 300)
	limit := 40 * 1024
	require.Greater(t, len(data), limit)

	res, err := p.FitBytes(context.Background(), data, limit)
	require.NoError(t, err)
	require.LessOrEqual(t, len(res), limit)

	img, err := imaging.Decode(bytes.NewReader(res))
	require.NoError(t, err)
	// aspect ratio is kept
	require.InDelta(t, 4.0/3.0, float64(img.Bounds().Dx())/float64(img.Bounds().Dy()), 0.05)
}

func TestImageProcessor_FitBytes_SmallInputUnchanged(t *testing.T) {
	p := processor.New()
	data := []byte("not even an image")

	res, err := p.FitBytes(context.Background(), data, 1024)
	require.NoError(t, err)
	require.Equal(t, data, res)
}

func TestImageProcessor_FitBytes_Garbage(t *testing.T) {
	p := processor.New()

	_, err := p.FitBytes(context.Background(), bytes.Repeat([]byte{0xAB}, 4096), 1024)
	require.Error(t, err)
}
