package ingestion

import (
	"context"
	"fmt"
	"image"
	"io"

	// Formats accepted from uploads.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/poiesic/gallerit/core"
)

// PixelSource resolves an image URL to its encoded bytes.
// storage.BlobRepository satisfies this interface.
type PixelSource interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

// decodeImage opens url and decodes it into pixels. Failures are wrapped
// with core.ErrDecode unless ctx was cancelled.
func decodeImage(ctx context.Context, pixels PixelSource, url string) (image.Image, string, error) {
	rc, err := pixels.Open(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: open %s: %w", core.ErrDecode, url, err)
	}
	defer rc.Close()

	img, format, err := image.Decode(&contextReader{ctx: ctx, r: rc})
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: %w", core.ErrDecode, err)
	}
	return img, format, nil
}
