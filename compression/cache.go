package compression

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/42Wor/Compress-image-M-dev/codec"
	"github.com/42Wor/Compress-image-M-dev/core"
	"github.com/fxamacker/cbor/v2"
	"github.com/lmittmann/tint"
)

// cacheVersion is bumped whenever encoders change their output, so stale entries stop matching.
const cacheVersion = "1"

// cachedResult is the on-disk envelope for a [codec.Result].
type cachedResult struct {
	Format   string `cbor:"1,keyasint"`
	Quality  int    `cbor:"2,keyasint"`
	Attempts int    `cbor:"3,keyasint"`
	Width    int    `cbor:"4,keyasint"`
	Height   int    `cbor:"5,keyasint"`
	Data     []byte `cbor:"6,keyasint"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("compression: CBOR encoder initialization failed: " + err.Error())
	}
}

// resultCache stores encoded results keyed by upload contents plus request parameters.
// A nil *resultCache is a valid, always-missing cache.
type resultCache struct {
	disk *core.DiskCache
}

// cacheKey identifies a compression. For auto requests the filename extension takes part
// in format resolution, so it is part of the key.
func cacheKey(data []byte, req codec.Request) string {
	hint := ""
	if req.Format == codec.FormatAuto {
		if f, ok := codec.FormatFromFilename(req.Filename); ok {
			hint = string(f)
		}
	}
	return core.HashKey(
		cacheVersion,
		core.ContentHash(data),
		strconv.Itoa(len(data)),
		string(req.Format),
		hint,
		strconv.Itoa(req.Quality),
		strconv.FormatInt(req.TargetSize, 10),
		strconv.FormatBool(req.PreserveAlpha),
	)
}

// find returns nil on a miss or on any cache failure.
func (c *resultCache) find(key string) *codec.Result {
	if c == nil {
		return nil
	}
	raw, err := c.disk.Find(key)
	if err != nil {
		slog.Error("error during cache lookup", tint.Err(err), "key", key)
		return nil
	}
	if raw == nil {
		return nil
	}
	var env cachedResult
	if err := cbor.Unmarshal(raw, &env); err != nil {
		slog.Warn("discarding corrupt cache entry", tint.Err(err), "key", key)
		c.disk.Delete(key)
		return nil
	}
	format, err := codec.ParseFormat(env.Format)
	if err != nil || format == codec.FormatAuto || len(env.Data) == 0 {
		slog.Warn("discarding invalid cache entry", "key", key, "format", env.Format)
		c.disk.Delete(key)
		return nil
	}
	return &codec.Result{
		Data:     env.Data,
		Format:   format,
		Size:     int64(len(env.Data)),
		Quality:  env.Quality,
		Attempts: env.Attempts,
		Width:    env.Width,
		Height:   env.Height,
	}
}

func (c *resultCache) write(key string, res *codec.Result) error {
	if c == nil {
		return nil
	}
	raw, err := encMode.Marshal(cachedResult{
		Format:   string(res.Format),
		Quality:  res.Quality,
		Attempts: res.Attempts,
		Width:    res.Width,
		Height:   res.Height,
		Data:     res.Data,
	})
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %w", err)
	}
	return c.disk.Write(key, raw)
}
