// Package codec re-encodes raster images at a fixed quality, or searches for the
// quality that fits an encoded size budget.
package codec

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/dustin/go-humanize"
)

const (
	// StartQuality is the first quality tried when searching for a size budget.
	StartQuality = 95
	// MinQuality is the floor of the search; the encoding at this quality is
	// returned even if it is still over budget.
	MinQuality = 5
	// QualityStep is subtracted after every attempt that misses the budget.
	QualityStep = 5
	// DefaultQuality is used for single-shot encodes that do not specify one.
	DefaultQuality = 75
)

// Request describes one compression.
type Request struct {
	Format        Format // explicit format, or FormatAuto
	Quality       int    // 1-100; used only when TargetSize is 0
	TargetSize    int64  // budget in bytes; 0 means no budget
	Filename      string // extension hint for FormatAuto
	PreserveAlpha bool
}

// Result is the outcome of a compression.
type Result struct {
	Data     []byte
	Format   Format
	Size     int64
	Quality  int
	Attempts int
	Width    int
	Height   int
}

// Compressor resolves formats and runs encoders from its registry.
// It holds no per-call state and is safe for concurrent use.
type Compressor struct {
	registry *Registry
	fallback Format
}

// Option configures a Compressor.
type Option func(*Compressor)

// WithRegistry replaces the default encoder registry.
func WithRegistry(r *Registry) Option {
	return func(c *Compressor) {
		c.registry = r
	}
}

// WithFallbackFormat sets the format used when "auto" cannot be resolved.
func WithFallbackFormat(f Format) Option {
	return func(c *Compressor) {
		if f != "" && f != FormatAuto {
			c.fallback = f
		}
	}
}

// NewCompressor returns a Compressor using [DefaultRegistry] and a JPEG fallback unless overridden.
func NewCompressor(opts ...Option) *Compressor {
	c := &Compressor{
		registry: DefaultRegistry(),
		fallback: FormatJPEG,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the encoders available to c.
func (c *Compressor) Registry() *Registry {
	return c.registry
}

// Compress decodes data and compresses the result. Each call decodes its own copy.
func (c *Compressor) Compress(ctx context.Context, data []byte, req Request) (*Result, error) {
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return c.CompressImage(ctx, src, req)
}

// CompressImage encodes an already decoded image.
//
// With a TargetSize, quality starts at [StartQuality] and drops by [QualityStep] until the
// encoding fits or quality reaches [MinQuality]. Any encoder error aborts the whole call.
// The context is checked before every attempt.
func (c *Compressor) CompressImage(ctx context.Context, src SourceImage, req Request) (*Result, error) {
	if src.Image == nil {
		return nil, &DecodeError{Err: ErrEmptyInput}
	}

	format := ResolveFormat(req.Format, req.Filename, src.Format, c.fallback)
	enc := c.registry.Get(format)
	if enc == nil {
		return nil, &EncodeError{Format: format, Err: ErrUnsupportedFormat}
	}

	img := prepare(src.Image, format, req.PreserveAlpha)
	bounds := img.Bounds()
	res := &Result{
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	if req.TargetSize > 0 {
		return search(ctx, enc, img, req.TargetSize, res)
	}

	quality := req.Quality
	if quality == 0 {
		quality = DefaultQuality
	}
	if quality < 1 || quality > 100 {
		return nil, &EncodeError{Format: format, Err: fmt.Errorf("quality %d out of range 1-100", quality)}
	}
	if err := ctx.Err(); err != nil {
		return nil, &EncodeError{Format: format, Quality: quality, Err: err}
	}
	data, err := enc.Encode(img, quality)
	if err != nil {
		return nil, &EncodeError{Format: format, Quality: quality, Err: err}
	}
	res.Data = data
	res.Size = int64(len(data))
	res.Quality = quality
	res.Attempts = 1
	return res, nil
}

// search is a linear descent over quality; at most (StartQuality-MinQuality)/QualityStep+1 attempts.
func search(ctx context.Context, enc Encoder, img image.Image, target int64, res *Result) (*Result, error) {
	for quality := StartQuality; ; quality -= QualityStep {
		if err := ctx.Err(); err != nil {
			return nil, &EncodeError{Format: res.Format, Quality: quality, Err: err}
		}
		data, err := enc.Encode(img, quality)
		if err != nil {
			return nil, &EncodeError{Format: res.Format, Quality: quality, Err: err}
		}
		res.Attempts++
		size := int64(len(data))
		slog.Debug("compression attempt",
			"format", res.Format,
			"quality", quality,
			"size", humanize.Bytes(uint64(size)),
			"target", humanize.Bytes(uint64(target)))

		if size <= target || quality <= MinQuality {
			res.Data = data
			res.Size = size
			res.Quality = quality
			return res, nil
		}
	}
}
