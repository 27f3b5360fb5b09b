package classifier

import (
	"fmt"
	"image"
)

// Encode converts img into the model input: img stretched to size x size, pixels in
// row-major order, R G B interleaved per pixel, each channel mapped from [0, 255] to
// [-1, 1] as (v - 127.5) / 127.5. Alpha is dropped.
func Encode(img image.Image, size int, resample Resampler) ([]float32, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, b.Dx(), b.Dy())
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: target size %d", ErrInvalidImage, size)
	}
	if resample == nil {
		resample = ImagingLinear
	}

	dst := resample(img, size, size)
	db := dst.Bounds()
	if db.Dx() != size || db.Dy() != size {
		return nil, fmt.Errorf("%w: resampled to %dx%d, want %dx%d", ErrInvalidImage, db.Dx(), db.Dy(), size, size)
	}

	out := make([]float32, 0, size*size*3)
	for y := db.Min.Y; y < db.Max.Y; y++ {
		off := dst.PixOffset(db.Min.X, y)
		row := dst.Pix[off : off+size*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, normalize(row[x]), normalize(row[x+1]), normalize(row[x+2]))
		}
	}
	return out, nil
}

func normalize(v uint8) float32 {
	return (float32(v) - 127.5) / 127.5
}
