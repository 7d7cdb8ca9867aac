package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"

	nativewebp "github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Encoder encodes an image to one format.
type Encoder interface {
	// Format returns the format this encoder produces.
	Format() Format

	// Encode converts the image to bytes at the given quality (1-100).
	// Encoders for lossless formats ignore quality, as does WebP without cwebp.
	Encode(img image.Image, quality int) ([]byte, error)
}

// Registry maps formats to encoders.
type Registry struct {
	encoders map[Format]Encoder
}

// NewRegistry returns a registry holding the given encoders.
func NewRegistry(encoders ...Encoder) *Registry {
	r := &Registry{encoders: make(map[Format]Encoder, len(encoders))}
	for _, enc := range encoders {
		r.Register(enc)
	}
	return r
}

// DefaultRegistry returns a registry with an encoder for every entry in [Formats].
func DefaultRegistry() *Registry {
	return NewRegistry(
		&JPEGEncoder{},
		&PNGEncoder{},
		&GIFEncoder{},
		&WebPEncoder{},
		&BMPEncoder{},
		&TIFFEncoder{},
	)
}

// Register adds enc, replacing any encoder already registered for its format.
func (r *Registry) Register(enc Encoder) {
	r.encoders[enc.Format()] = enc
}

// Get returns the encoder for f, or nil.
func (r *Registry) Get(f Format) Encoder {
	return r.encoders[f]
}

// Formats returns the registered formats, sorted by name.
func (r *Registry) Formats() []Format {
	formats := make([]Format, 0, len(r.encoders))
	for f := range r.encoders {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// JPEGEncoder uses the standard library baseline encoder.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() Format { return FormatJPEG }

func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("quality %d out of range", quality)
	}
	var buf bytes.Buffer
	buf.Grow(256 * 1024)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGEncoder always uses the best zlib compression level.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() Format { return FormatPNG }

func (e *PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type GIFEncoder struct{}

func (e *GIFEncoder) Format() Format { return FormatGIF }

func (e *GIFEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, &gif.Options{NumColors: 256}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WebPEncoder produces lossy WebP at the requested quality by shelling out to cwebp.
// When cwebp is not in PATH, or Lossless is set, it falls back to nativewebp, which
// only writes lossless WebP and ignores quality.
type WebPEncoder struct {
	Lossless bool

	once      sync.Once
	cwebpPath string
}

func (e *WebPEncoder) Format() Format { return FormatWebP }

// Available reports whether cwebp was found, i.e. whether quality has any effect.
func (e *WebPEncoder) Available() bool {
	e.once.Do(func() {
		if path, err := exec.LookPath("cwebp"); err == nil {
			e.cwebpPath = path
		}
	})
	return e.cwebpPath != ""
}

func (e *WebPEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if e.Lossless || !e.Available() {
		var buf bytes.Buffer
		if err := nativewebp.Encode(&buf, img, &nativewebp.Options{}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("quality %d out of range", quality)
	}
	return e.encodeLossy(img, quality)
}

func (e *WebPEncoder) encodeLossy(img image.Image, quality int) ([]byte, error) {
	// cwebp only reads files, so the source goes through a temporary PNG.
	src, err := os.CreateTemp("", "webp-src-*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := src.Name()
	defer os.Remove(srcPath)

	if err := (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(src, img); err != nil {
		src.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	if err := src.Close(); err != nil {
		return nil, fmt.Errorf("close temp: %w", err)
	}

	dstPath := strings.TrimSuffix(srcPath, ".png") + ".webp"
	defer os.Remove(dstPath)

	cmd := exec.Command(e.cwebpPath,
		"-q", strconv.Itoa(quality),
		"-m", "4",
		"-alpha_q", "100",
		"-quiet",
		srcPath,
		"-o", dstPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("cwebp: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return os.ReadFile(dstPath)
}

type BMPEncoder struct{}

func (e *BMPEncoder) Format() Format { return FormatBMP }

func (e *BMPEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TIFFEncoder writes Deflate-compressed TIFF with the horizontal predictor.
type TIFFEncoder struct{}

func (e *TIFFEncoder) Format() Format { return FormatTIFF }

func (e *TIFFEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
