// Package archive bundles compressed images into a single ZIP download.
package archive

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/42Wor/Compress-image-M-dev/codec"
	"github.com/42Wor/Compress-image-M-dev/core"
	"github.com/klauspost/compress/zip"
)

// DefaultName is the attachment name used for batch downloads.
const DefaultName = "compressed_images.zip"

type Entry struct {
	Name string
	Data []byte
}

// Write streams a deflated ZIP of entries to w. Entry names are reduced to bare file names,
// and repeated names get a " (n)" suffix so no entry shadows another.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]bool, len(entries))
	modified := time.Now()

	for i, e := range entries {
		name := uniqueName(entryName(e.Name, i), seen)
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, err := f.Write(e.Data); err != nil {
			zw.Close()
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return zw.Close()
}

func entryName(name string, i int) string {
	if safe := core.SafeFilename(name); safe != "" {
		return safe
	}
	return "image-" + strconv.Itoa(i+1)
}

func uniqueName(name string, seen map[string]bool) string {
	if !seen[strings.ToLower(name)] {
		seen[strings.ToLower(name)] = true
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !seen[strings.ToLower(candidate)] {
			seen[strings.ToLower(candidate)] = true
			return candidate
		}
	}
}

// UniqueFilename names a download as <base>_<unix-millis>.<format>,
// e.g. "cat.png" compressed to jpeg becomes "cat_1700000000000.jpeg".
func UniqueFilename(original string, format codec.Format, now time.Time) string {
	base := core.SafeFilename(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s_%d.%s", base, now.UnixMilli(), format)
}
