// Package compression serves the upload and batch-download endpoints.
package compression

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/42Wor/Compress-image-M-dev/codec"
	"github.com/42Wor/Compress-image-M-dev/conf"
	"github.com/42Wor/Compress-image-M-dev/core"
	"github.com/42Wor/Compress-image-M-dev/workspace"
	"github.com/justinas/alice"
)

// Service holds everything the handlers share. Create with [New].
type Service struct {
	cfg        conf.AppConfig
	compressor *codec.Compressor
	workspaces *workspace.Manager
	cache      *resultCache
	sem        chan struct{}
	allowed    map[string]bool
}

// Option configures a Service.
type Option func(*Service)

// WithCompressor replaces the compressor built from config.
func WithCompressor(c *codec.Compressor) Option {
	return func(s *Service) {
		s.compressor = c
	}
}

// New builds a Service from cfg. cfg is expected to have been through [conf.SetDefaults].
func New(cfg conf.AppConfig, opts ...Option) (*Service, error) {
	fallback, err := codec.ParseFormat(cfg.Compression.DefaultFormat)
	if err != nil {
		return nil, err
	}
	if cfg.Compression.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("compression.max-concurrent must be positive, got %d", cfg.Compression.MaxConcurrent)
	}

	workspaces, err := workspace.NewManager(cfg.Uploads.Dir, cfg.Maintenance.WorkspaceStaleAfter)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:        cfg,
		compressor: codec.NewCompressor(codec.WithFallbackFormat(fallback)),
		workspaces: workspaces,
		sem:        make(chan struct{}, cfg.Compression.MaxConcurrent),
		allowed:    make(map[string]bool, len(cfg.Uploads.AllowedExtensions)),
	}
	for _, ext := range cfg.Uploads.AllowedExtensions {
		s.allowed[strings.TrimPrefix(strings.ToLower(ext), ".")] = true
	}
	if cfg.Cache.Enabled != nil && *cfg.Cache.Enabled {
		s.cache = &resultCache{disk: core.NewDiskCache(cfg.CacheDir(),
			core.WithTTL(cfg.Cache.TTL),
			core.WithMaxSize(cfg.Cache.MaxSizeBytes))}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetupHandlers registers the compress and ZIP endpoints, both capped at the upload size limit.
func (s *Service) SetupHandlers(mux *http.ServeMux) {
	limited := alice.New(core.LimitBody(s.cfg.Uploads.MaxContentLength))
	mux.Handle("POST /compress", limited.ThenFunc(s.handleCompress))
	mux.Handle("POST /download_zip", limited.ThenFunc(s.handleDownloadZip))
}

// Cache returns the result cache's disk store, or nil when caching is disabled.
func (s *Service) Cache() *core.DiskCache {
	if s.cache == nil {
		return nil
	}
	return s.cache.disk
}

// Workspaces returns the manager that stages uploads and outputs on disk.
func (s *Service) Workspaces() *workspace.Manager {
	return s.workspaces
}
