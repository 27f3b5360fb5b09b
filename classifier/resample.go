package classifier

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Resampler stretches img to exactly width x height. The result is non-premultiplied so
// color channels can be read without undoing alpha.
type Resampler func(img image.Image, width, height int) *image.NRGBA

// ImagingLinear is the default resampler: a bilinear (triangle) filter.
func ImagingLinear(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Linear)
}

func XDrawBiLinear(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func NfntBilinear(img image.Image, width, height int) *image.NRGBA {
	return imaging.Clone(resize.Resize(uint(width), uint(height), img, resize.Bilinear))
}

// ResamplerByName maps the config names imaging, xdraw and nfnt to resamplers.
func ResamplerByName(name string) (Resampler, error) {
	switch name {
	case "", "imaging":
		return ImagingLinear, nil
	case "xdraw":
		return XDrawBiLinear, nil
	case "nfnt":
		return NfntBilinear, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q", name)
	}
}
