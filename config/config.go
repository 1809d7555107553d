// Package config loads gallerit settings from a YAML file and GALLERIT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/poiesic/gallerit/ai"
	"github.com/poiesic/gallerit/core"
	"github.com/poiesic/gallerit/search"
)

// EnvPrefix is prepended to every environment variable, e.g.
// GALLERIT_CLASSIFIER_BACKEND overrides classifier.backend.
const EnvPrefix = "GALLERIT"

// Settings is the complete gallerit configuration.
type Settings struct {
	Classifier ClassifierSettings `mapstructure:"classifier"`
	Pipeline   PipelineSettings   `mapstructure:"pipeline"`
	Search     SearchSettings     `mapstructure:"search"`
}

// ClassifierSettings mirrors ai.Config.
type ClassifierSettings struct {
	Backend           string        `mapstructure:"backend"`
	ModelPath         string        `mapstructure:"modelpath"`
	LabelsPath        string        `mapstructure:"labelspath"`
	Threads           int           `mapstructure:"threads"`
	Host              string        `mapstructure:"host"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"apikey"`
	TopK              int           `mapstructure:"topk"`
	MinConfidence     float64       `mapstructure:"minconfidence"`
	RequestsPerSecond float64       `mapstructure:"requestspersecond"`
	LoadAttempts      int           `mapstructure:"loadattempts"`
	LoadRetryDelay    time.Duration `mapstructure:"loadretrydelay"`
}

// PipelineSettings configures enrichment.
type PipelineSettings struct {
	PoolSize      int `mapstructure:"poolsize"`      // 0 picks a size from the CPU count
	ProgressEvery int `mapstructure:"progressevery"` // report every N images, 0 disables progress output
}

// SearchSettings configures fuzzy search.
type SearchSettings struct {
	Threshold       float64 `mapstructure:"threshold"`
	Limit           int     `mapstructure:"limit"`
	Titles          bool    `mapstructure:"titles"`
	Classifications bool    `mapstructure:"classifications"`
}

// Default returns the settings used when neither a file nor the
// environment provides a value.
func Default() *Settings {
	d := ai.DefaultConfig()
	fields := core.DefaultFieldConfig()
	return &Settings{
		Classifier: ClassifierSettings{
			Backend:           string(d.Backend),
			ModelPath:         d.ModelPath,
			LabelsPath:        d.LabelsPath,
			Threads:           d.Threads,
			Host:              d.Host,
			Model:             d.Model,
			APIKey:            d.APIKey,
			TopK:              d.TopK,
			MinConfidence:     float64(d.MinConfidence),
			RequestsPerSecond: d.RequestsPerSecond,
			LoadAttempts:      d.LoadAttempts,
			LoadRetryDelay:    d.LoadRetryDelay,
		},
		Pipeline: PipelineSettings{
			ProgressEvery: 10,
		},
		Search: SearchSettings{
			Threshold:       search.DefaultThreshold,
			Titles:          fields.Title,
			Classifications: fields.Classifications,
		},
	}
}

// setDefaults registers every key so that environment overrides are seen
// by Unmarshal even when no file sets them.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("classifier.backend", d.Classifier.Backend)
	v.SetDefault("classifier.modelpath", d.Classifier.ModelPath)
	v.SetDefault("classifier.labelspath", d.Classifier.LabelsPath)
	v.SetDefault("classifier.threads", d.Classifier.Threads)
	v.SetDefault("classifier.host", d.Classifier.Host)
	v.SetDefault("classifier.model", d.Classifier.Model)
	v.SetDefault("classifier.apikey", d.Classifier.APIKey)
	v.SetDefault("classifier.topk", d.Classifier.TopK)
	v.SetDefault("classifier.minconfidence", d.Classifier.MinConfidence)
	v.SetDefault("classifier.requestspersecond", d.Classifier.RequestsPerSecond)
	v.SetDefault("classifier.loadattempts", d.Classifier.LoadAttempts)
	v.SetDefault("classifier.loadretrydelay", d.Classifier.LoadRetryDelay)

	v.SetDefault("pipeline.poolsize", d.Pipeline.PoolSize)
	v.SetDefault("pipeline.progressevery", d.Pipeline.ProgressEvery)

	v.SetDefault("search.threshold", d.Search.Threshold)
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.titles", d.Search.Titles)
	v.SetDefault("search.classifications", d.Search.Classifications)
}

// Load reads settings from path, which may be empty, then applies
// environment overrides and validates the result.
func Load(path string) (*Settings, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	s, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &s, nil
}

// AIConfig converts the classifier settings into a normalized ai.Config.
func (s *Settings) AIConfig() *ai.Config {
	c := s.Classifier
	cfg := ai.NewConfig(
		ai.WithBackend(ai.Backend(c.Backend)),
		ai.WithModelPath(c.ModelPath),
		ai.WithLabelsPath(c.LabelsPath),
		ai.WithThreads(c.Threads),
		ai.WithHost(c.Host),
		ai.WithModel(c.Model),
		ai.WithAPIKey(c.APIKey),
		ai.WithTopK(c.TopK),
		ai.WithMinConfidence(float32(c.MinConfidence)),
		ai.WithRequestsPerSecond(c.RequestsPerSecond),
		ai.WithLoadRetry(c.LoadAttempts, c.LoadRetryDelay),
	)
	cfg.Normalize()
	return cfg
}

// FieldConfig returns the configured search fields.
func (s *Settings) FieldConfig() core.FieldConfig {
	return core.FieldConfig{Title: s.Search.Titles, Classifications: s.Search.Classifications}
}

// Validate checks every section and reports all problems at once.
func (s *Settings) Validate() error {
	var errs []error
	if err := s.AIConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Pipeline.PoolSize < 0 {
		errs = append(errs, errors.New("pipeline config: PoolSize cannot be negative"))
	}
	if s.Pipeline.ProgressEvery < 0 {
		errs = append(errs, errors.New("pipeline config: ProgressEvery cannot be negative"))
	}
	if s.Search.Threshold < 0 || s.Search.Threshold > 1 {
		errs = append(errs, fmt.Errorf("search config: %w", search.ErrInvalidThreshold))
	}
	if s.Search.Limit < 0 {
		errs = append(errs, fmt.Errorf("search config: %w", search.ErrInvalidLimit))
	}
	return errors.Join(errs...)
}
