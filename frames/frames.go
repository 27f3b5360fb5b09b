// Package frames decodes still frames handed over by a frame source (an upload, a file,
// a capture loop) into images the classifier can encode.
package frames

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode reports bytes that no registered decoder accepts.
var ErrDecode = errors.New("cannot decode frame")

// MaxFrameBytes bounds how much Decode reads from a reader.
const MaxFrameBytes = 32 << 20

// Decode reads one encoded frame (jpeg, png, gif, webp, avif, bmp or tiff), applying the
// EXIF orientation when present.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFrameBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	if len(data) > MaxFrameBytes {
		return nil, fmt.Errorf("%w: frame larger than %d bytes", ErrDecode, MaxFrameBytes)
	}
	return decodeBytes(data)
}

// Open decodes the frame stored at path.
func Open(path string) (image.Image, error) {
	if img, err := imaging.Open(path, imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func decodeBytes(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	// x/image/webp does not cover every WebP variant libwebp writes
	if isWebP(data) {
		if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrDecode, err)
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}
