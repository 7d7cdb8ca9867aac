package core

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ContentHash returns the xxHash64 of data as 16 lower-case hex characters.
func ContentHash(data []byte) string {
	return formatHash(xxhash.Sum64(data))
}

// HashKey combines several parts into one hex key. Parts are length-prefixed so that
// ("ab", "c") and ("a", "bc") never collide.
func HashKey(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		d.WriteString(strconv.Itoa(len(p)))
		d.WriteString(":")
		d.WriteString(p)
	}
	return formatHash(d.Sum64())
}

func formatHash(h uint64) string {
	s := strconv.FormatUint(h, 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}
