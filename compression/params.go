package compression

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/42Wor/Compress-image-M-dev/codec"
)

var (
	errInvalidQuality    = errors.New("Invalid quality")
	errInvalidFormat     = errors.New("Invalid format")
	errInvalidTargetSize = errors.New("Invalid target size")
)

var sizeUnits = map[string]float64{
	"b":  1,
	"kb": 1024,
	"mb": 1024 * 1024,
}

// parseQuality returns def for an empty value.
func parseQuality(value string, def int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	q, err := strconv.Atoi(value)
	if err != nil || q < 1 || q > 100 {
		return 0, errInvalidQuality
	}
	return q, nil
}

// parseFormat accepts any registered format or "auto".
func parseFormat(value string, registry *codec.Registry) (codec.Format, error) {
	f, err := codec.ParseFormat(value)
	if err != nil {
		return "", errInvalidFormat
	}
	if f != codec.FormatAuto && registry.Get(f) == nil {
		return "", errInvalidFormat
	}
	return f, nil
}

// parseTargetSize converts a decimal amount in unit (b, kb or mb; default mb) to bytes.
// An empty amount means no target. Amounts that round down to zero bytes are invalid.
func parseTargetSize(amount, unit string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, nil
	}
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		unit = "mb"
	}
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, errInvalidTargetSize
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errInvalidTargetSize
	}
	bytes := v * multiplier
	if bytes < 1 || bytes > math.MaxInt64/2 {
		return 0, errInvalidTargetSize
	}
	return int64(bytes), nil
}
