package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, w, h int) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decodeDataURI(t *testing.T, uri string) image.Config {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	return cfg
}

func TestPrepareDownscalesLandscape(t *testing.T) {
	uri, err := Prepare(encodeJPEG(t, testImage(t, 2048, 1024)))
	require.NoError(t, err)

	cfg := decodeDataURI(t, uri)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestPrepareDownscalesPortrait(t *testing.T) {
	uri, err := Prepare(encodeJPEG(t, testImage(t, 600, 3000)))
	require.NoError(t, err)

	cfg := decodeDataURI(t, uri)
	assert.Equal(t, 1024, cfg.Height)
	assert.Equal(t, 204, cfg.Width)
}

func TestPrepareKeepsSmallImages(t *testing.T) {
	uri, err := Prepare(encodeJPEG(t, testImage(t, 640, 480)))
	require.NoError(t, err)

	cfg := decodeDataURI(t, uri)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
}

func TestPrepareAcceptsPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(t, 100, 100)))

	uri, err := Prepare(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
}

func TestPrepareRejectsGarbage(t *testing.T) {
	_, err := Prepare([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestDownscaleBounds(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "landscape", w: 4000, h: 2000, wantW: 1024, wantH: 512},
		{name: "portrait", w: 1000, h: 2000, wantW: 512, wantH: 1024},
		{name: "square", w: 2048, h: 2048, wantW: 1024, wantH: 1024},
		{name: "within bounds", w: 800, h: 600, wantW: 800, wantH: 600},
		{name: "exactly at cap", w: 1024, h: 768, wantW: 1024, wantH: 768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Downscale(testImage(t, tt.w, tt.h), MaxEdge)
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}
