package conf

// App-specific configuration structs & data.
// Read once at startup and passed explicitly to the packages that need it.

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/42Wor/Compress-image-M-dev/codec"
	"gopkg.in/yaml.v3"
)

var AppName = "Compress Image"

var BuildTimestamp string

type AppConfig struct {
	DataDir string // The directory containing the config file; relative paths resolve against it.
	Web     struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"web"`
	Uploads struct {
		Dir               string   `yaml:"dir"`
		AllowedExtensions []string `yaml:"allowed-extensions"`
		MaxContentLength  int64    `yaml:"max-content-length"`
	} `yaml:"uploads"`
	Compression struct {
		DefaultQuality int           `yaml:"default-quality"`
		DefaultFormat  string        `yaml:"default-format"`
		PreserveAlpha  bool          `yaml:"preserve-alpha"`
		MaxConcurrent  int           `yaml:"max-concurrent"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"compression"`
	Cache struct {
		Enabled      *bool         `yaml:"enabled"`
		TTL          time.Duration `yaml:"ttl"`
		MaxSizeBytes int64         `yaml:"max-size-bytes"`
	} `yaml:"cache"`
	Maintenance struct {
		Interval            time.Duration `yaml:"interval"`
		WorkspaceStaleAfter time.Duration `yaml:"workspace-stale-after"`
	} `yaml:"maintenance"`
	Debug bool `yaml:"debug"`
}

// ReadConfig parses the YAML file at configYmlFile. A missing file is not an error:
// the defaults are returned, with DataDir set to the directory the file would live in.
func ReadConfig(configYmlFile string) (AppConfig, error) {
	if BuildTimestamp == "" {
		BuildTimestamp = time.Now().Local().Format("2006-01-02 15:04:05")
	}

	c := &AppConfig{}
	configYmlPath, err := filepath.Abs(configYmlFile)
	if err != nil {
		return *c, fmt.Errorf("Failed to get path to config file: %w", err)
	}
	c.DataDir = filepath.Dir(configYmlPath)

	buf, err := os.ReadFile(configYmlPath)
	if err != nil && !os.IsNotExist(err) {
		SetDefaults(c)
		return *c, fmt.Errorf("Failed to read config file: %w", err)
	}
	if err != nil {
		slog.Warn("Config file not found; using defaults", "path", configYmlPath)
	}

	if err := yaml.Unmarshal(buf, c); err != nil {
		SetDefaults(c)
		return *c, fmt.Errorf("Failed to parse config: %w", err)
	}

	if err := SetDefaults(c); err != nil {
		return *c, err
	}
	printConfig(c)
	return *c, nil
}

// SetDefaults fills in every unset field and validates the ones that were set.
func SetDefaults(c *AppConfig) error {
	if c.Web.Port == 0 {
		c.Web.Port = 5000
	}

	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "uploads"
	}
	if !filepath.IsAbs(c.Uploads.Dir) {
		c.Uploads.Dir = filepath.Join(c.DataDir, c.Uploads.Dir)
	}
	if len(c.Uploads.AllowedExtensions) == 0 {
		c.Uploads.AllowedExtensions = []string{"png", "jpg", "jpeg", "gif", "webp"}
	}
	if c.Uploads.MaxContentLength == 0 {
		c.Uploads.MaxContentLength = 16 * 1024 * 1024 // 16MB
	}

	if c.Compression.DefaultQuality == 0 {
		c.Compression.DefaultQuality = 75
	}
	if c.Compression.DefaultQuality < 1 || c.Compression.DefaultQuality > 100 {
		return fmt.Errorf("compression.default-quality must be between 1 and 100, got %d", c.Compression.DefaultQuality)
	}
	if c.Compression.DefaultFormat == "" {
		c.Compression.DefaultFormat = "jpeg"
	}
	if f, err := codec.ParseFormat(c.Compression.DefaultFormat); err != nil || f == codec.FormatAuto {
		return fmt.Errorf("compression.default-format must be a concrete format, got %q", c.Compression.DefaultFormat)
	}
	if c.Compression.MaxConcurrent <= 0 {
		c.Compression.MaxConcurrent = runtime.NumCPU()
	}
	if c.Compression.Timeout == 0 {
		c.Compression.Timeout = 60 * time.Second
	}

	// Result cache is enabled by default; only disable it when testing or debugging.
	if c.Cache.Enabled == nil {
		enabled := true
		c.Cache.Enabled = &enabled
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.MaxSizeBytes == 0 {
		c.Cache.MaxSizeBytes = 256 * 1024 * 1024 // 256MB
	}

	if c.Maintenance.Interval == 0 {
		c.Maintenance.Interval = 2 * time.Hour
	}
	if c.Maintenance.WorkspaceStaleAfter == 0 {
		c.Maintenance.WorkspaceStaleAfter = time.Hour
	}
	return nil
}

// CacheDir is where compressed results are cached.
func (c AppConfig) CacheDir() string {
	return filepath.Join(c.DataDir, "cache", "compressed")
}

// printConfig writes the effective config, and warnings for unsafe settings, just as FYI.
func printConfig(c *AppConfig) {
	json, _ := json.MarshalIndent(*c, "", "\t")
	fmt.Println(string(json))
	if c.Debug {
		slog.Warn("Debug mode is enabled")
	}
	if !*c.Cache.Enabled {
		slog.Warn("Result cache disabled; repeated uploads will be re-encoded")
	}
	if c.Compression.PreserveAlpha {
		slog.Info("Alpha channels will be preserved where the output format allows it")
	}
}
