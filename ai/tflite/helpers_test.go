package tflite

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLabels(t *testing.T) {
	labels, err := LoadLabels(strings.NewReader("tench, Tinca tinca\n\n  goldfish, Carassius auratus  \ntabby, tabby cat\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"tench, Tinca tinca", "goldfish, Carassius auratus", "tabby, tabby cat"}, labels)

	_, err = LoadLabels(strings.NewReader("\n \n"))
	assert.ErrorIs(t, err, ErrNoLabels)
}

func TestLoadLabelsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat\ndog\n"), 0o600))

	labels, err := loadLabelsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, labels)

	_, err = loadLabelsFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestAlignLabels(t *testing.T) {
	labels := []string{"cat", "dog"}

	got, err := alignLabels(labels, 2)
	require.NoError(t, err)
	assert.Equal(t, labels, got)

	got, err = alignLabels(labels, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"background", "cat", "dog"}, got)

	_, err = alignLabels(labels, 10)
	assert.Error(t, err)
}

func TestTopPredictions(t *testing.T) {
	labels := []string{"background", "cat", "dog", "bird", "fish"}
	scores := []float32{0.9, 0.2, 0.5, 0.2, 0.05}

	preds := topPredictions(scores, labels, 3, 0.1)
	require.Len(t, preds, 3)
	assert.Equal(t, "dog", preds[0].Label)
	assert.Equal(t, "cat", preds[1].Label, "ties keep label order")
	assert.Equal(t, "bird", preds[2].Label)

	preds = topPredictions(scores, labels, 3, 0.3)
	require.Len(t, preds, 1)
	assert.Equal(t, "dog", preds[0].Label)
}

func TestDequantize(t *testing.T) {
	assert.Equal(t, []float32{0, 1}, dequantize([]uint8{0, 255}))
}

func TestResizeRGB(t *testing.T) {
	t.Run("uniform image stays uniform", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 7, 5))
		for y := 0; y < 5; y++ {
			for x := 0; x < 7; x++ {
				img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
			}
		}
		out := resizeRGB(img, 3, 3)
		require.Len(t, out, 27)
		for i := 0; i < len(out); i += 3 {
			assert.Equal(t, []uint8{10, 20, 30}, out[i:i+3])
		}
	})

	t.Run("identity size keeps pixels", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.Set(0, 0, color.RGBA{R: 255, A: 255})
		img.Set(1, 0, color.RGBA{B: 255, A: 255})
		out := resizeRGB(img, 2, 1)
		assert.Equal(t, []uint8{255, 0, 0, 0, 0, 255}, out)
	})

	t.Run("offset bounds", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(10, 10, 12, 12))
		for y := 10; y < 12; y++ {
			for x := 10; x < 12; x++ {
				img.Set(x, y, color.RGBA{G: 200, A: 255})
			}
		}
		out := resizeRGB(img, 4, 4)
		assert.Equal(t, uint8(200), out[1])
	})

	t.Run("downscale keeps halves apart", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 2))
		for y := 0; y < 2; y++ {
			for x := 0; x < 4; x++ {
				if x < 2 {
					img.Set(x, y, color.RGBA{R: 255, A: 255})
				} else {
					img.Set(x, y, color.RGBA{B: 255, A: 255})
				}
			}
		}
		out := resizeRGB(img, 2, 1)
		require.Len(t, out, 6)
		assert.Greater(t, out[0], out[2], "left pixel stays red")
		assert.Greater(t, out[5], out[3], "right pixel stays blue")
	})

	t.Run("empty image", func(t *testing.T) {
		out := resizeRGB(image.NewRGBA(image.Rect(0, 0, 0, 0)), 2, 2)
		assert.Equal(t, make([]uint8, 12), out)
	})
}

func TestNormalizeFloat(t *testing.T) {
	dst := make([]float32, 3)
	normalizeFloat(dst, []uint8{0, 255, 127})
	assert.InDelta(t, -1, dst[0], 1e-6)
	assert.InDelta(t, 1, dst[1], 1e-6)
	assert.InDelta(t, 0, dst[2], 0.01)
}
