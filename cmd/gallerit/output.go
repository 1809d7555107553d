package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/gallerit/core"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

// imageOutput is the YAML shape of one listed image.
type imageOutput struct {
	Title           string   `yaml:"title"`
	Key             string   `yaml:"key"`
	MIMEType        string   `yaml:"mime_type"`
	Size            int64    `yaml:"size"`
	Classifications []string `yaml:"classifications,flow"`
}

// blobStatter looks up pixel metadata. *gallerit.Gallery satisfies it.
type blobStatter interface {
	Stat(ctx context.Context, url string) (*core.BlobInfo, error)
}

func printRecords(ctx context.Context, w io.Writer, format string, records []core.ImageRecord, blobs blobStatter) error {
	if format == formatYAML {
		out := make([]imageOutput, len(records))
		for i, r := range records {
			info, err := blobs.Stat(ctx, r.URL)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", r.Title, err)
			}
			out[i] = imageOutput{
				Title:           r.Title,
				Key:             r.Key,
				MIMEType:        info.MIMEType,
				Size:            info.Size,
				Classifications: r.Classifications,
			}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	}

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\n", r.Title, strings.Join(r.Classifications, ", "))
	}
	return nil
}
