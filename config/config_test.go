package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/gallerit/ai"
	"github.com/poiesic/gallerit/search"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gallerit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	s := Default()
	d := ai.DefaultConfig()

	assert.Equal(t, string(d.Backend), s.Classifier.Backend)
	assert.Equal(t, d.ModelPath, s.Classifier.ModelPath)
	assert.Equal(t, d.TopK, s.Classifier.TopK)
	assert.Equal(t, d.LoadRetryDelay, s.Classifier.LoadRetryDelay)
	assert.Equal(t, search.DefaultThreshold, s.Search.Threshold)
	assert.True(t, s.Search.Titles)
	assert.True(t, s.Search.Classifications)
	assert.Equal(t, 10, s.Pipeline.ProgressEvery)
	assert.NoError(t, s.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
classifier:
  backend: OpenAI
  host: http://vision.local:8080
  model: gpt-4o-mini
  topk: 5
  minconfidence: 0.2
  loadretrydelay: 2s
pipeline:
  poolsize: 4
search:
  threshold: 0.25
  titles: false
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Pipeline.PoolSize)
	assert.Equal(t, 0.25, s.Search.Threshold)
	assert.False(t, s.FieldConfig().Title)
	assert.True(t, s.FieldConfig().Classifications)

	cfg := s.AIConfig()
	assert.Equal(t, ai.BackendOpenAI, cfg.Backend)
	assert.Equal(t, "http://vision.local:8080/v1", cfg.Host)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 5, cfg.TopK)
	assert.InDelta(t, 0.2, cfg.MinConfidence, 1e-6)
	assert.Equal(t, 2*time.Second, cfg.LoadRetryDelay)
	assert.Equal(t, ai.DefaultConfig().LoadAttempts, cfg.LoadAttempts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "classifier:\n  topk: 5\n")
	t.Setenv("GALLERIT_CLASSIFIER_TOPK", "7")
	t.Setenv("GALLERIT_SEARCH_LIMIT", "10")
	t.Setenv("GALLERIT_CLASSIFIER_APIKEY", "secret")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Classifier.TopK)
	assert.Equal(t, 10, s.Search.Limit)
	assert.Equal(t, "secret", s.AIConfig().APIKey)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "classifier: [unterminated\n"))
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, "classifier:\n  backend: onnx\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown backend")
	})

	t.Run("all problems reported", func(t *testing.T) {
		_, err := Load(writeConfig(t, "search:\n  threshold: 2\n  limit: -1\npipeline:\n  poolsize: -3\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, search.ErrInvalidThreshold)
		assert.ErrorIs(t, err, search.ErrInvalidLimit)
		assert.Contains(t, err.Error(), "PoolSize")
	})
}
