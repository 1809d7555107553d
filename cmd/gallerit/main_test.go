package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/gallerit"
	"github.com/poiesic/gallerit/ai"
	"github.com/poiesic/gallerit/ai/mock"
)

func writePNG(t *testing.T, dir, name string, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func testApp(t *testing.T) (*cli.App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	classifier := mock.NewMockClassifier()
	classifier.ClassifyFunc = func(_ context.Context, img image.Image) ([]ai.Prediction, error) {
		_, _, b, _ := img.At(0, 0).RGBA()
		if b > 0 {
			return []ai.Prediction{{Label: "sky, cloud", Confidence: 0.9}}, nil
		}
		return []ai.Prediction{{Label: "grass", Confidence: 0.7}}, nil
	}
	provider := mock.NewMockProviderWithClassifier(classifier)

	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr, gallerit.WithProvider(provider))
	return app, &stdout, &stderr
}

func testImages(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	sky := writePNG(t, dir, "sunset.png", color.RGBA{B: 255, A: 255})
	lawn := writePNG(t, dir, "garden.png", color.RGBA{G: 255, A: 255})
	return sky, lawn
}

func TestLabelCommand(t *testing.T) {
	sky, lawn := testImages(t)

	t.Run("prints labels in input order", func(t *testing.T) {
		app, stdout, _ := testApp(t)
		err := app.Run([]string{"gallerit", "label", "--quiet", sky, lawn})
		require.NoError(t, err)
		assert.Equal(t, "sunset.png\tsky, cloud\ngarden.png\tgrass\n", stdout.String())
	})

	t.Run("requires files", func(t *testing.T) {
		app, _, _ := testApp(t)
		err := app.Run([]string{"gallerit", "label"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image file")
	})

	t.Run("missing file", func(t *testing.T) {
		app, _, _ := testApp(t)
		err := app.Run([]string{"gallerit", "label", filepath.Join(t.TempDir(), "nope.png")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope.png")
	})

	t.Run("undecodable files are skipped", func(t *testing.T) {
		broken := filepath.Join(t.TempDir(), "broken.png")
		require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0o644))

		app, stdout, stderr := testApp(t)
		err := app.Run([]string{"gallerit", "label", "--quiet", sky, broken})
		require.NoError(t, err)
		assert.Equal(t, "sunset.png\tsky, cloud\n", stdout.String())
		assert.Contains(t, stderr.String(), "skipped broken.png")
	})

	t.Run("nothing labeled is an error", func(t *testing.T) {
		broken := filepath.Join(t.TempDir(), "broken.png")
		require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0o644))

		app, _, _ := testApp(t)
		err := app.Run([]string{"gallerit", "label", "--quiet", broken})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "labeling failed")
	})

	t.Run("stats", func(t *testing.T) {
		app, _, stderr := testApp(t)
		err := app.Run([]string{"gallerit", "label", "--quiet", "--stats", sky, lawn})
		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "gallerit_images_enriched_total 2")
	})
}

func TestSearchCommand(t *testing.T) {
	sky, lawn := testImages(t)

	t.Run("empty query lists everything", func(t *testing.T) {
		app, stdout, _ := testApp(t)
		err := app.Run([]string{"gallerit", "search", "--quiet", sky, lawn})
		require.NoError(t, err)
		assert.Equal(t, "sunset.png\tsky, cloud\ngarden.png\tgrass\n", stdout.String())
	})

	t.Run("fuzzy label match", func(t *testing.T) {
		app, stdout, _ := testApp(t)
		err := app.Run([]string{"gallerit", "search", "--quiet", "--query", "clodu", sky, lawn})
		require.NoError(t, err)
		assert.Equal(t, "sunset.png\tsky, cloud\n", stdout.String())
	})

	t.Run("title match", func(t *testing.T) {
		app, stdout, _ := testApp(t)
		err := app.Run([]string{"gallerit", "search", "--quiet", "-q", "garden", sky, lawn})
		require.NoError(t, err)
		assert.Equal(t, "garden.png\tgrass\n", stdout.String())
	})

	t.Run("disabled fields match nothing", func(t *testing.T) {
		app, stdout, stderr := testApp(t)
		err := app.Run([]string{"gallerit", "search", "--quiet", "--no-titles", "--no-classifications",
			"--query", "cloud", sky, lawn})
		require.NoError(t, err)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "no matching images")
	})

	t.Run("no titles", func(t *testing.T) {
		app, stdout, _ := testApp(t)
		err := app.Run([]string{"gallerit", "search", "--quiet", "--no-titles", "--query", "garden", sky, lawn})
		require.NoError(t, err)
		assert.Empty(t, stdout.String())
	})

	t.Run("yaml output", func(t *testing.T) {
		app, stdout, _ := testApp(t)
		err := app.Run([]string{"gallerit", "search", "--quiet", "--format", "yaml", "--query", "sky", sky, lawn})
		require.NoError(t, err)

		var out []imageOutput
		require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "sunset.png", out[0].Title)
		assert.NotEmpty(t, out[0].Key)
		assert.Equal(t, []string{"sky", "cloud"}, out[0].Classifications)
		assert.Equal(t, "image/png", out[0].MIMEType)
		assert.Positive(t, out[0].Size)
	})

	t.Run("invalid format", func(t *testing.T) {
		app, _, _ := testApp(t)
		err := app.Run([]string{"gallerit", "search", "--format", "xml", sky})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})

	t.Run("invalid threshold", func(t *testing.T) {
		app, _, _ := testApp(t)
		err := app.Run([]string{"gallerit", "search", "--threshold", "2", "--query", "x", sky})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("config file", func(t *testing.T) {
		cfg := filepath.Join(t.TempDir(), "gallerit.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("search:\n  titles: false\n"), 0o600))

		app, stdout, _ := testApp(t)
		err := app.Run([]string{"gallerit", "--config", cfg, "search", "--quiet", "--query", "garden", sky, lawn})
		require.NoError(t, err)
		assert.Empty(t, stdout.String())
	})
}

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "error"} {
		app, _, _ := testApp(t)
		app.Commands = nil
		app.Action = func(*cli.Context) error { return nil }
		assert.NoError(t, app.Run([]string{"gallerit", "--log-level", level}), level)
	}

	app, _, _ := testApp(t)
	app.Action = func(*cli.Context) error { return nil }
	err := app.Run([]string{"gallerit", "--log-level", "verbose"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
