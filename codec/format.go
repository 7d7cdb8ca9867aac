package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an output raster format. Values are lower-case names.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"

	// FormatAuto requests the source image’s own format.
	FormatAuto Format = "auto"
)

// Formats lists every concrete format, in the order they are offered to users.
var Formats = []Format{FormatJPEG, FormatPNG, FormatWebP, FormatGIF, FormatBMP, FormatTIFF}

var formatAliases = map[string]Format{
	"jpeg": FormatJPEG,
	"jpg":  FormatJPEG,
	"jpe":  FormatJPEG,
	"png":  FormatPNG,
	"gif":  FormatGIF,
	"webp": FormatWebP,
	"bmp":  FormatBMP,
	"tiff": FormatTIFF,
	"tif":  FormatTIFF,
}

// ParseFormat maps a user-supplied name (case-insensitive, optional leading dot) to a Format.
// An empty name is treated as "auto".
func ParseFormat(name string) (Format, error) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	if name == "" || name == string(FormatAuto) {
		return FormatAuto, nil
	}
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromFilename returns the format implied by the file extension, if any.
func FormatFromFilename(filename string) (Format, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	f, ok := formatAliases[ext]
	return f, ok
}

// Extension returns the canonical file extension, without a dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	default:
		return string(f)
	}
}

// MIMEType returns the Content-Type for encoded data of this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	}
	return "application/octet-stream"
}

// SupportsAlpha reports whether the encoder for f can carry transparency.
func (f Format) SupportsAlpha() bool {
	switch f {
	case FormatPNG, FormatGIF, FormatWebP, FormatTIFF:
		return true
	}
	return false
}

func (f Format) String() string {
	return string(f)
}
