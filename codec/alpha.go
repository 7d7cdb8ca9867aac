package codec

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// hasAlphaMode reports whether img uses a color mode with an alpha channel or a palette.
// The check is on the mode, not the pixels: a fully opaque NRGBA image still qualifies.
func hasAlphaMode(img image.Image) bool {
	switch img.(type) {
	case *image.Paletted, *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64, *image.NYCbCrA:
		return true
	}
	switch img.ColorModel() {
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model:
		return true
	}
	return false
}

// Flatten converts img to an opaque RGB image. Color values are kept as they are and
// the alpha channel is dropped, so fully transparent pixels show their stored color.
func Flatten(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// prepare applies the alpha policy once, before any encode attempt.
// Without preserveAlpha every alpha or palette image is flattened; with it, only
// images headed for a format that cannot carry alpha are.
func prepare(img image.Image, format Format, preserveAlpha bool) image.Image {
	if !hasAlphaMode(img) {
		return img
	}
	if preserveAlpha && format.SupportsAlpha() {
		return img
	}
	return Flatten(img)
}
