package compression

import (
	"testing"

	"github.com/42Wor/Compress-image-M-dev/codec"
	"github.com/42Wor/Compress-image-M-dev/core"
)

func TestResultCache_RoundTrip(t *testing.T) {
	c := &resultCache{disk: core.NewDiskCache(t.TempDir())}
	res := &codec.Result{
		Data:     []byte{1, 2, 3, 4},
		Format:   codec.FormatWebP,
		Size:     4,
		Quality:  35,
		Attempts: 13,
		Width:    10,
		Height:   20,
	}
	if err := c.write("k", res); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got := c.find("k")
	if got == nil {
		t.Fatal("Expected a hit")
	}
	if string(got.Data) != string(res.Data) || got.Format != res.Format || got.Size != 4 ||
		got.Quality != 35 || got.Attempts != 13 || got.Width != 10 || got.Height != 20 {
		t.Errorf("Round trip mismatch: %+v", got)
	}
}

func TestResultCache_CorruptEntryIsDropped(t *testing.T) {
	disk := core.NewDiskCache(t.TempDir())
	c := &resultCache{disk: disk}
	disk.Write("k", []byte{0xff, 0xfe, 0xfd})

	if got := c.find("k"); got != nil {
		t.Errorf("Expected a miss for a corrupt entry, got %+v", got)
	}
	if raw, _ := disk.Find("k"); raw != nil {
		t.Error("Expected corrupt entry to be deleted")
	}
}

func TestResultCache_Nil(t *testing.T) {
	var c *resultCache
	if c.find("k") != nil {
		t.Error("Expected nil cache to miss")
	}
	if err := c.write("k", &codec.Result{}); err != nil {
		t.Errorf("Expected nil cache write to be a no-op, got %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	data := []byte("image bytes")
	base := codec.Request{Format: codec.FormatAuto, Quality: 75, Filename: "a.png"}

	if cacheKey(data, base) != cacheKey(data, base) {
		t.Error("Expected a stable key")
	}

	variants := []codec.Request{
		{Format: codec.FormatAuto, Quality: 75, Filename: "a.jpg"},
		{Format: codec.FormatJPEG, Quality: 75, Filename: "a.png"},
		{Format: codec.FormatAuto, Quality: 74, Filename: "a.png"},
		{Format: codec.FormatAuto, Quality: 75, TargetSize: 1000, Filename: "a.png"},
		{Format: codec.FormatAuto, Quality: 75, Filename: "a.png", PreserveAlpha: true},
	}
	for i, v := range variants {
		if cacheKey(data, v) == cacheKey(data, base) {
			t.Errorf("Variant %d should not share a key with the base request", i)
		}
	}

	// Only the extension matters for auto resolution, not the rest of the name.
	renamed := base
	renamed.Filename = "other.png"
	if cacheKey(data, renamed) != cacheKey(data, base) {
		t.Error("Expected names with the same extension to share a key")
	}
	if cacheKey([]byte("other bytes"), base) == cacheKey(data, base) {
		t.Error("Expected different uploads to differ")
	}
}
