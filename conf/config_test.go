package conf

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compressimg.yml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestReadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	c, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	dir := filepath.Dir(path)
	if c.DataDir != dir {
		t.Errorf("Expected DataDir %s, got %s", dir, c.DataDir)
	}
	if c.Web.Port != 5000 {
		t.Errorf("Expected port 5000, got %d", c.Web.Port)
	}
	if c.Uploads.Dir != filepath.Join(dir, "uploads") {
		t.Errorf("Expected uploads dir under DataDir, got %s", c.Uploads.Dir)
	}
	if c.Uploads.MaxContentLength != 16*1024*1024 {
		t.Errorf("Expected 16MB limit, got %d", c.Uploads.MaxContentLength)
	}
	if len(c.Uploads.AllowedExtensions) != 5 {
		t.Errorf("Expected 5 default extensions, got %v", c.Uploads.AllowedExtensions)
	}
	if c.Compression.DefaultQuality != 75 {
		t.Errorf("Expected default quality 75, got %d", c.Compression.DefaultQuality)
	}
	if c.Compression.DefaultFormat != "jpeg" {
		t.Errorf("Expected default format jpeg, got %s", c.Compression.DefaultFormat)
	}
	if c.Compression.MaxConcurrent != runtime.NumCPU() {
		t.Errorf("Expected max-concurrent %d, got %d", runtime.NumCPU(), c.Compression.MaxConcurrent)
	}
	if c.Compression.PreserveAlpha {
		t.Error("Expected alpha to be discarded by default")
	}
	if c.Cache.Enabled == nil || !*c.Cache.Enabled {
		t.Error("Expected cache enabled by default")
	}
	if c.Maintenance.Interval != 2*time.Hour {
		t.Errorf("Expected 2h maintenance interval, got %s", c.Maintenance.Interval)
	}
	if c.CacheDir() != filepath.Join(dir, "cache", "compressed") {
		t.Errorf("Unexpected cache dir %s", c.CacheDir())
	}
}

func TestReadConfig_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yml")

	c, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got error: %v", err)
	}
	if c.Web.Port != 5000 {
		t.Errorf("Expected default port, got %d", c.Web.Port)
	}
}

func TestReadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
web:
  host: 127.0.0.1
  port: 8081
uploads:
  dir: /var/tmp/compressimg
  allowed-extensions: [png, tiff]
  max-content-length: 1024
compression:
  default-quality: 60
  default-format: webp
  preserve-alpha: true
  max-concurrent: 3
  timeout: 5s
cache:
  enabled: false
  ttl: 1h
maintenance:
  interval: 10m
  workspace-stale-after: 30m
debug: true
`)

	c, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if c.Web.Host != "127.0.0.1" || c.Web.Port != 8081 {
		t.Errorf("Unexpected web config %+v", c.Web)
	}
	if c.Uploads.Dir != "/var/tmp/compressimg" {
		t.Errorf("Expected absolute uploads dir to be kept, got %s", c.Uploads.Dir)
	}
	if len(c.Uploads.AllowedExtensions) != 2 || c.Uploads.MaxContentLength != 1024 {
		t.Errorf("Unexpected uploads config %+v", c.Uploads)
	}
	if c.Compression.DefaultQuality != 60 || c.Compression.DefaultFormat != "webp" ||
		!c.Compression.PreserveAlpha || c.Compression.MaxConcurrent != 3 ||
		c.Compression.Timeout != 5*time.Second {
		t.Errorf("Unexpected compression config %+v", c.Compression)
	}
	if *c.Cache.Enabled {
		t.Error("Expected cache to be disabled")
	}
	if c.Cache.TTL != time.Hour {
		t.Errorf("Expected 1h TTL, got %s", c.Cache.TTL)
	}
	if c.Maintenance.Interval != 10*time.Minute || c.Maintenance.WorkspaceStaleAfter != 30*time.Minute {
		t.Errorf("Unexpected maintenance config %+v", c.Maintenance)
	}
	if !c.Debug {
		t.Error("Expected debug mode")
	}
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{name: "malformed yaml", contents: "web: [unterminated"},
		{name: "quality out of range", contents: "compression:\n  default-quality: 150\n"},
		{name: "unknown format", contents: "compression:\n  default-format: heic\n"},
		{name: "auto is not a default", contents: "compression:\n  default-format: auto\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadConfig(writeConfig(t, tt.contents)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}
