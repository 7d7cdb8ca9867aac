package codec

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SourceImage is a decoded upload. Format is empty when the decoder name is not one of [Formats].
type SourceImage struct {
	Image  image.Image
	Format Format
}

// Decode decodes raw image bytes with every registered decoder.
func Decode(data []byte) (SourceImage, error) {
	if len(data) == 0 {
		return SourceImage{}, &DecodeError{Err: ErrEmptyInput}
	}
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return SourceImage{}, &DecodeError{Err: err}
	}
	src := SourceImage{Image: img}
	if f, err := ParseFormat(name); err == nil && f != FormatAuto {
		src.Format = f
	}
	return src, nil
}

// Sniff returns the format detected from the content header, without decoding pixels.
func Sniff(data []byte) (Format, bool) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	f, err := ParseFormat(name)
	if err != nil || f == FormatAuto {
		return "", false
	}
	return f, true
}
