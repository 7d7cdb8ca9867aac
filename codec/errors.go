package codec

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyInput        = errors.New("empty input")
)

// DecodeError reports input that could not be read as an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a codec failure for the requested format and quality.
// Quality is 0 when the failure happened before any encode attempt.
type EncodeError struct {
	Format  Format
	Quality int
	Err     error
}

func (e *EncodeError) Error() string {
	if e.Quality > 0 {
		return fmt.Sprintf("encode %s at quality %d: %v", e.Format, e.Quality, e.Err)
	}
	if e.Format != "" {
		return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("encode: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err (or anything it wraps) is a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsEncodeError reports whether err (or anything it wraps) is an *EncodeError.
func IsEncodeError(err error) bool {
	var ee *EncodeError
	return errors.As(err, &ee)
}
