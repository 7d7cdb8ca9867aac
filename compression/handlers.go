package compression

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/42Wor/Compress-image-M-dev/archive"
	"github.com/42Wor/Compress-image-M-dev/codec"
	"github.com/42Wor/Compress-image-M-dev/core"
	"github.com/42Wor/Compress-image-M-dev/workspace"
	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"
)

// multipartMemory is how much of a multipart body is held in memory before spilling to disk.
const multipartMemory = 8 << 20

type compressResponse struct {
	Success      bool         `json:"success"`
	Image        string       `json:"image"`
	Format       codec.Format `json:"format"`
	Size         int64        `json:"size"`
	Filename     string       `json:"filename"`
	DownloadName string       `json:"downloadName"`
	Quality      int          `json:"quality"`
	OriginalSize int64        `json:"originalSize"`
	Attempts     int          `json:"attempts"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Cached       bool         `json:"cached"`
}

// POST /compress
// Multipart form: file, quality, format, targetSize, sizeUnit, preserveAlpha.
func (s *Service) handleCompress(w http.ResponseWriter, req *http.Request) {
	if limit := s.cfg.Uploads.MaxContentLength; limit > 0 && req.ContentLength > limit {
		s.fail(w, req, http.StatusRequestEntityTooLarge, "File too large", nil)
		return
	}
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			s.fail(w, req, http.StatusRequestEntityTooLarge, "File too large", err)
			return
		}
		s.fail(w, req, http.StatusBadRequest, "No file part", err)
		return
	}
	defer req.MultipartForm.RemoveAll()

	// A file input submitted with nothing selected arrives as a plain field with an empty filename.
	file, header, err := req.FormFile("file")
	if err != nil && !(errors.Is(err, http.ErrMissingFile) && len(req.MultipartForm.Value["file"]) > 0) {
		s.fail(w, req, http.StatusBadRequest, "No file part", err)
		return
	}
	if file != nil {
		defer file.Close()
	}
	if file == nil || header.Filename == "" {
		s.fail(w, req, http.StatusBadRequest, "No selected file", nil)
		return
	}

	quality, err := parseQuality(req.FormValue("quality"), s.cfg.Compression.DefaultQuality)
	if err != nil {
		s.fail(w, req, http.StatusBadRequest, err.Error(), nil)
		return
	}
	format, err := parseFormat(req.FormValue("format"), s.compressor.Registry())
	if err != nil {
		s.fail(w, req, http.StatusBadRequest, err.Error(), nil)
		return
	}
	targetSize, err := parseTargetSize(req.FormValue("targetSize"), req.FormValue("sizeUnit"))
	if err != nil {
		s.fail(w, req, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if !s.allowedFile(header.Filename) {
		s.fail(w, req, http.StatusBadRequest, "Invalid file type", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		if isTooLarge(err) {
			s.fail(w, req, http.StatusRequestEntityTooLarge, "File too large", err)
			return
		}
		s.fail(w, req, http.StatusBadRequest, "No file part", err)
		return
	}

	creq := codec.Request{
		Format:        format,
		Quality:       quality,
		TargetSize:    targetSize,
		Filename:      header.Filename,
		PreserveAlpha: s.cfg.Compression.PreserveAlpha,
	}
	if v := req.FormValue("preserveAlpha"); v != "" {
		creq.PreserveAlpha = v == "true" || v == "on" || v == "1"
	}

	ctx, cancel := context.WithTimeout(req.Context(), s.cfg.Compression.Timeout)
	defer cancel()

	res, cached, err := s.compress(ctx, data, creq)
	if err != nil {
		status, msg := http.StatusInternalServerError, "Compression failed"
		if errors.Is(err, errBusy) {
			status, msg = http.StatusServiceUnavailable, "Server busy"
		}
		slog.Error("compression failed", tint.Err(err),
			"method", req.Method,
			"path", req.URL.Path,
			"filename", header.Filename,
			"kind", errorKind(err),
			"status", status)
		core.WriteJSONError(w, status, msg)
		return
	}

	slog.Info("image compressed",
		"method", req.Method,
		"path", req.URL.Path,
		"filename", header.Filename,
		"format", res.Format,
		"quality", res.Quality,
		"attempts", res.Attempts,
		"from", humanize.Bytes(uint64(len(data))),
		"to", humanize.Bytes(uint64(res.Size)),
		"cached", cached,
		"status", http.StatusOK)
	core.WriteJSON(w, http.StatusOK, compressResponse{
		Success:      true,
		Image:        base64.StdEncoding.EncodeToString(res.Data),
		Format:       res.Format,
		Size:         res.Size,
		Filename:     header.Filename,
		DownloadName: archive.UniqueFilename(header.Filename, res.Format, time.Now()),
		Quality:      res.Quality,
		OriginalSize: int64(len(data)),
		Attempts:     res.Attempts,
		Width:        res.Width,
		Height:       res.Height,
		Cached:       cached,
	})
}

var errBusy = errors.New("timed out waiting for a compression slot")

// compress serves from the result cache when possible; otherwise it runs the compressor
// inside a workspace while holding a semaphore slot.
func (s *Service) compress(ctx context.Context, data []byte, creq codec.Request) (*codec.Result, bool, error) {
	key := cacheKey(data, creq)
	if res := s.cache.find(key); res != nil {
		return res, true, nil
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%w: %w", errBusy, ctx.Err())
	}

	ws := s.openWorkspace(creq.Filename, data)
	if ws != nil {
		defer func() {
			if err := ws.Cleanup(); err != nil {
				slog.Error("Failed to remove workspace", tint.Err(err), "id", ws.ID)
			}
		}()
	}

	res, err := s.compressor.Compress(ctx, data, creq)
	if err != nil {
		return nil, false, err
	}

	if ws != nil {
		name := strings.TrimSuffix(core.SafeFilename(creq.Filename), filepath.Ext(creq.Filename)) + "." + res.Format.Extension()
		if _, err := ws.WriteOutput(name, res.Data); err != nil {
			slog.Error("Failed to write output to workspace", tint.Err(err), "id", ws.ID)
		}
	}
	if err := s.cache.write(key, res); err != nil {
		slog.Error("error writing to cache", tint.Err(err), "key", key)
		// Still continue serving the result even if caching failed.
	}
	return res, false, nil
}

// openWorkspace returns nil if the upload could not be staged; compression proceeds in memory.
func (s *Service) openWorkspace(filename string, data []byte) *workspace.Workspace {
	ws, err := s.workspaces.Create()
	if err != nil {
		slog.Error("Failed to create workspace", tint.Err(err))
		return nil
	}
	if _, err := ws.SaveUpload(filename, data); err != nil {
		slog.Error("Failed to save upload", tint.Err(err), "id", ws.ID, "filename", filename)
	}
	return ws
}

type zipItem struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

// POST /download_zip
// JSON body: [{"image": <base64>, "filename": "..."}]
func (s *Service) handleDownloadZip(w http.ResponseWriter, req *http.Request) {
	var items []zipItem
	if err := json.NewDecoder(req.Body).Decode(&items); err != nil {
		if isTooLarge(err) {
			s.fail(w, req, http.StatusRequestEntityTooLarge, "Request too large", err)
			return
		}
		s.fail(w, req, http.StatusBadRequest, "No images provided", err)
		return
	}
	if len(items) == 0 {
		s.fail(w, req, http.StatusBadRequest, "No images provided", nil)
		return
	}

	entries := make([]archive.Entry, 0, len(items))
	for i, item := range items {
		if item.Image == "" {
			err := fmt.Errorf("image %d (%s): missing image data", i+1, item.Filename)
			s.fail(w, req, http.StatusInternalServerError, "Error creating ZIP: "+err.Error(), err)
			return
		}
		data, err := base64.StdEncoding.DecodeString(item.Image)
		if err != nil {
			err = fmt.Errorf("image %d (%s): %w", i+1, item.Filename, err)
			s.fail(w, req, http.StatusInternalServerError, "Error creating ZIP: "+err.Error(), err)
			return
		}
		entries = append(entries, archive.Entry{Name: item.Filename, Data: data})
	}

	// Build in memory so that a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := archive.Write(&buf, entries); err != nil {
		s.fail(w, req, http.StatusInternalServerError, "Error creating ZIP: "+err.Error(), err)
		return
	}

	slog.Info("zip created",
		"method", req.Method,
		"path", req.URL.Path,
		"images", len(entries),
		"size", humanize.Bytes(uint64(buf.Len())),
		"status", http.StatusOK)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archive.DefaultName+`"`)
	w.Write(buf.Bytes())
}

func (s *Service) allowedFile(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext != "" && s.allowed[ext]
}

// fail logs a rejected request and responds with {"error": msg}. err may be nil.
func (s *Service) fail(w http.ResponseWriter, req *http.Request, status int, msg string, err error) {
	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
	}
	if err != nil {
		attrs = append(attrs, tint.Err(err))
	}
	if status >= http.StatusInternalServerError {
		slog.Error(msg, attrs...)
	} else {
		slog.Info(msg, attrs...)
	}
	core.WriteJSONError(w, status, msg)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func errorKind(err error) string {
	switch {
	case codec.IsDecodeError(err):
		return "decode"
	case codec.IsEncodeError(err):
		return "encode"
	case errors.Is(err, errBusy):
		return "busy"
	default:
		return "internal"
	}
}
