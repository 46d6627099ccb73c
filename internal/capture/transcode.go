package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // raw captures are PNG
	"os"

	"github.com/manav03panchal/worklog/internal/storage"
)

// Transcoder converts a raw capture into the compressed format.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string, quality int) error
}

// JPEGTranscoder decodes any registered image format and encodes JPEG.
type JPEGTranscoder struct{}

// Transcode writes src as a JPEG at dst. The output is encoded in memory and
// written atomically, so dst never holds a partial image.
func (JPEGTranscoder) Transcode(ctx context.Context, src, dst string, quality int) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	img, format, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: clampQuality(quality)}); err != nil {
		return fmt.Errorf("encode %s image as jpeg: %w", format, err)
	}
	return storage.SafeWrite(dst, buf.Bytes(), 0o644)
}

// clampQuality maps the 0..100 setting onto the encoder's 1..100 range.
func clampQuality(q int) int {
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	}
	return q
}
