// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/gallerit"
	"github.com/poiesic/gallerit/ai"
	"github.com/poiesic/gallerit/config"
	"github.com/poiesic/gallerit/ingestion"
	"github.com/poiesic/gallerit/metrics"
	"github.com/poiesic/gallerit/search"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. Extra gallery options are applied after the
// configured ones, which lets tests swap in a mock classifier.
func newApp(stdout, stderr io.Writer, extra ...gallerit.Option) *cli.App {
	classifierFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Classifier backend (tflite, openai)",
		},
		&cli.StringFlag{
			Name:  "model-path",
			Usage: "TFLite model file",
		},
		&cli.StringFlag{
			Name:  "labels-path",
			Usage: "TFLite label file",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible vision service host URL",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Vision model name",
		},
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Maximum predictions per image",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Do not report progress",
		},
		&cli.BoolFlag{
			Name:  "stats",
			Usage: "Print enrichment and search statistics when done",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format (text, yaml)",
			Value: formatText,
		},
	}

	return &cli.App{
		Name:      "gallerit",
		Usage:     "Label images and search them by title and content",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"GALLERIT_CONFIG"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "label",
				Usage:     "Classify image files and print their labels",
				ArgsUsage: "FILE...",
				Flags:     classifierFlags,
				Action: func(c *cli.Context) error {
					return labelCommand(c, extra)
				},
			},
			{
				Name:      "search",
				Usage:     "Label image files, then list those matching a query",
				ArgsUsage: "FILE...",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Search query; empty lists every image",
					},
					&cli.BoolFlag{
						Name:  "no-titles",
						Usage: "Do not match against titles",
					},
					&cli.BoolFlag{
						Name:  "no-classifications",
						Usage: "Do not match against labels",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Largest edit ratio accepted as a fuzzy match (0-1)",
					},
				}, classifierFlags...),
				Action: func(c *cli.Context) error {
					return searchCommand(c, extra)
				},
			},
		},
	}
}

// session is a gallery with its metrics, built from the command line.
type session struct {
	gallery  *gallerit.Gallery
	settings *config.Settings
	registry *prometheus.Registry
}

func openSession(c *cli.Context, extra []gallerit.Option) (*session, error) {
	if c.NArg() == 0 {
		return nil, errors.New("at least one image file is required")
	}
	if f := c.String("format"); f != formatText && f != formatYAML {
		return nil, fmt.Errorf("invalid format %q: must be one of text, yaml", f)
	}

	settings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.NewGalleryMetrics(registry)
	if err != nil {
		return nil, err
	}

	monitors := []ingestion.Monitor{m}
	if !c.Bool("quiet") && settings.Pipeline.ProgressEvery > 0 {
		monitors = append(monitors, ingestion.NewProgressTracker(c.App.ErrWriter, settings.Pipeline.ProgressEvery))
	}

	opts := []gallerit.Option{
		gallerit.WithSettings(settings),
		gallerit.WithPipelineOptions(ingestion.WithMonitor(ingestion.Monitors(monitors...))),
		gallerit.WithSearchOptions(search.WithMonitor(m)),
	}
	g, err := gallerit.New(append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gallery: %w", err)
	}
	return &session{gallery: g, settings: settings, registry: registry}, nil
}

// loadSettings reads the configuration file and applies flag overrides.
func loadSettings(c *cli.Context) (*config.Settings, error) {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	cl := &settings.Classifier
	if c.IsSet("backend") {
		cl.Backend = c.String("backend")
	}
	if c.IsSet("model-path") {
		cl.ModelPath = c.String("model-path")
	}
	if c.IsSet("labels-path") {
		cl.LabelsPath = c.String("labels-path")
	}
	if c.IsSet("host") {
		cl.Host = c.String("host")
		if !c.IsSet("backend") {
			cl.Backend = string(ai.BackendOpenAI)
		}
	}
	if c.IsSet("model") {
		cl.Model = c.String("model")
	}
	if c.IsSet("top-k") {
		cl.TopK = c.Int("top-k")
	}
	if c.IsSet("threshold") {
		settings.Search.Threshold = c.Float64("threshold")
	}
	if c.Bool("no-titles") {
		settings.Search.Titles = false
	}
	if c.Bool("no-classifications") {
		settings.Search.Classifications = false
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// ingest uploads and labels the files named on the command line. Images
// that fail to label are reported and left out; the returned error is
// non-nil only if nothing could be labeled.
func (s *session) ingest(ctx context.Context, c *cli.Context) error {
	files := make([]gallerit.File, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, gallerit.File{Name: path, Data: data})
	}

	captured, err := s.gallery.Upload(ctx, files)
	if err != nil {
		return err
	}

	err = s.gallery.Enrich(ctx, captured)
	var batchErr *ingestion.BatchError
	switch {
	case err == nil:
	case errors.As(err, &batchErr) && len(batchErr.Failed) < len(captured):
		titles := make(map[string]string, len(captured))
		for _, img := range captured {
			titles[img.Key] = img.Title
		}
		for _, f := range batchErr.Failed {
			fmt.Fprintf(c.App.ErrWriter, "skipped %s: %v\n", titles[f.Key], f.Err)
		}
	default:
		return fmt.Errorf("labeling failed: %w", err)
	}
	if !c.Bool("quiet") {
		fmt.Fprintln(c.App.ErrWriter)
	}
	return nil
}

func (s *session) close(c *cli.Context) {
	if c.Bool("stats") {
		printStats(c.App.ErrWriter, s.registry)
	}
	if err := s.gallery.Close(); err != nil {
		slog.Error("error closing gallery", "err", err)
	}
}

func labelCommand(c *cli.Context, extra []gallerit.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := openSession(c, extra)
	if err != nil {
		return err
	}
	defer s.close(c)

	if err := s.ingest(ctx, c); err != nil {
		return err
	}
	return printRecords(ctx, c.App.Writer, c.String("format"), s.gallery.Images(), s.gallery)
}

func searchCommand(c *cli.Context, extra []gallerit.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := openSession(c, extra)
	if err != nil {
		return err
	}
	defer s.close(c)

	if err := s.ingest(ctx, c); err != nil {
		return err
	}

	results := s.gallery.Display(c.String("query"), s.settings.FieldConfig())
	if len(results) == 0 {
		fmt.Fprintln(c.App.ErrWriter, "no matching images")
		return nil
	}
	return printRecords(ctx, c.App.Writer, c.String("format"), results, s.gallery)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
